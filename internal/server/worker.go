package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/rggbconv/internal/bench"
	"github.com/cwbudde/rggbconv/internal/store"
)

// runJob executes a benchmark job in the background. Only one job runs
// at a time; the others block here until the running one finishes.
// If runStore is not nil the report and raw samples are saved under the
// job ID; a failed or cancelled job leaves nothing behind.
func runJob(ctx context.Context, jm *JobManager, runStore *store.FSStore, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	// Jobs wait as pending until no other job is running.
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	case jm.slot <- struct{}{}:
	}
	defer func() { <-jm.slot }()

	if ctx.Err() != nil {
		markJobCancelled(jm, jobID)
		return ctx.Err()
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	slog.Info("Starting job", "job_id", jobID, "tiers", job.Config.PixelTiers, "strategies", len(job.Config.Strategies))

	var samples *store.SampleWriter
	if runStore != nil {
		samples, err = store.NewSampleWriter(runStore.BaseDir(), jobID)
		if err != nil {
			markJobFailed(jm, jobID, err)
			return err
		}
	}

	onSample := func(e store.SampleEntry) error {
		if samples != nil {
			if err := samples.Write(e); err != nil {
				return err
			}
		}
		return jm.UpdateJob(jobID, func(j *Job) {
			j.SamplesDone++
		})
	}

	runner, err := bench.NewRunner(job.bench,
		bench.WithRunID(jobID),
		bench.WithLogger(slog.Default().With("job_id", jobID)),
		bench.WithSampleFunc(onSample),
	)
	if err != nil {
		discardSamples(runStore, samples, jobID)
		markJobFailed(jm, jobID, err)
		return err
	}

	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, progressDone)

	run, err := runner.Run(ctx)
	close(progressDone)

	if err != nil {
		discardSamples(runStore, samples, jobID)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			markJobCancelled(jm, jobID)
		} else {
			markJobFailed(jm, jobID, err)
		}
		return err
	}

	report := bench.Summarize(run)

	if runStore != nil {
		if err := samples.Close(); err != nil {
			discardSamples(runStore, nil, jobID)
			markJobFailed(jm, jobID, err)
			return err
		}
		if err := runStore.SaveReport(jobID, report); err != nil {
			discardSamples(runStore, nil, jobID)
			markJobFailed(jm, jobID, err)
			return err
		}
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Report = report
		j.run = run
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", endTime.Sub(run.Started),
		"results", len(report.Results),
	)

	final, _ := jm.GetJob(jobID)
	jm.broadcaster.Broadcast(progressEvent(final))

	return nil
}

// discardSamples closes the sample writer, if any, and removes the run
// directory.
func discardSamples(runStore *store.FSStore, samples *store.SampleWriter, jobID string) {
	if samples != nil {
		samples.Close()
	}
	if runStore == nil {
		return
	}
	if err := runStore.DeleteReport(jobID); err != nil && !errors.Is(err, store.ErrNotFound) {
		slog.Warn("Failed to remove partial run", "job_id", jobID, "error", err)
	}
}

// monitorProgress periodically broadcasts progress events while a job runs
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}
			jm.broadcaster.Broadcast(progressEvent(job))
		}
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)

	if job, ok := jm.GetJob(jobID); ok {
		jm.broadcaster.Broadcast(progressEvent(job))
	}
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)

	if job, ok := jm.GetJob(jobID); ok {
		jm.broadcaster.Broadcast(progressEvent(job))
	}
}
