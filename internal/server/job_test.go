package server

import (
	"testing"
	"time"

	"github.com/cwbudde/rggbconv/internal/bench"
	"github.com/cwbudde/rggbconv/internal/convert"
)

// tinyConfig returns a benchmark configuration that finishes in a few
// milliseconds.
func tinyConfig() bench.Config {
	cfg := bench.DefaultConfig()
	cfg.PixelTiers = []int{16}
	cfg.SampleSize = 3
	cfg.WarmUp = time.Millisecond
	cfg.MeasurementTime = 3 * time.Millisecond
	cfg.Strategies = []convert.Strategy{convert.FuncIntSafe, convert.ProcIntUnsafe2}
	cfg.Baseline = convert.FuncIntSafe
	return cfg
}

func TestJobManager_CreateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(tinyConfig())

	if job.ID == "" {
		t.Error("Job ID should not be empty")
	}

	if job.State != StatePending {
		t.Errorf("Initial state should be pending, got %s", job.State)
	}

	if job.Config.SampleSize != 3 || job.Config.Baseline != "func_int_safe" {
		t.Errorf("Config not set correctly: %+v", job.Config)
	}

	// 1 tier x 2 strategies x 3 samples
	if job.SamplesTotal != 6 {
		t.Errorf("Expected 6 samples in total, got %d", job.SamplesTotal)
	}
}

func TestJobManager_GetJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(tinyConfig())

	retrieved, exists := jm.GetJob(job.ID)
	if !exists {
		t.Error("Job should exist")
	}

	if retrieved.ID != job.ID {
		t.Error("Retrieved wrong job")
	}

	_, exists = jm.GetJob("nonexistent")
	if exists {
		t.Error("Should not find nonexistent job")
	}
}

func TestJobManager_GetJobReturnsSnapshot(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(tinyConfig())

	snapshot, _ := jm.GetJob(job.ID)
	snapshot.State = StateFailed

	current, _ := jm.GetJob(job.ID)
	if current.State != StatePending {
		t.Errorf("Modifying a snapshot changed the job: %s", current.State)
	}
}

func TestJobManager_ListJobs(t *testing.T) {
	jm := NewJobManager()

	if len(jm.ListJobs()) != 0 {
		t.Error("Should start with no jobs")
	}

	first := jm.CreateJob(tinyConfig())
	time.Sleep(time.Millisecond)
	jm.CreateJob(tinyConfig())

	jobs := jm.ListJobs()
	if len(jobs) != 2 {
		t.Fatalf("Expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].ID != first.ID {
		t.Error("Jobs should be listed oldest first")
	}
}

func TestJobManager_UpdateJob(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(tinyConfig())

	err := jm.UpdateJob(job.ID, func(j *Job) {
		j.State = StateRunning
		j.SamplesDone = 4
	})

	if err != nil {
		t.Errorf("Update should succeed: %v", err)
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.State != StateRunning {
		t.Error("State should be updated")
	}
	if updated.SamplesDone != 4 {
		t.Error("SamplesDone should be updated")
	}

	err = jm.UpdateJob("nonexistent", func(j *Job) {})
	if err == nil {
		t.Error("Update of nonexistent job should fail")
	}
}

func TestJobManager_CancelJob(t *testing.T) {
	jm := NewJobManager()
	job := jm.CreateJob(tinyConfig())

	if jm.CancelJob(job.ID) {
		t.Error("A job without a cancel func cannot be cancelled")
	}

	cancelled := false
	jm.UpdateJob(job.ID, func(j *Job) {
		j.cancel = func() { cancelled = true }
	})

	if !jm.CancelJob(job.ID) || !cancelled {
		t.Error("Pending job should be cancelled")
	}

	jm.UpdateJob(job.ID, func(j *Job) { j.State = StateCompleted })
	if jm.CancelJob(job.ID) {
		t.Error("Finished job should not be cancelled")
	}

	if jm.CancelJob("nonexistent") {
		t.Error("Nonexistent job should not be cancelled")
	}
}

func TestJobManager_GetRunningJobs(t *testing.T) {
	jm := NewJobManager()
	a := jm.CreateJob(tinyConfig())
	jm.CreateJob(tinyConfig())

	jm.UpdateJob(a.ID, func(j *Job) { j.State = StateRunning })

	running := jm.GetRunningJobs()
	if len(running) != 1 || running[0].ID != a.ID {
		t.Errorf("Expected only %s running, got %v", a.ID, running)
	}
}

func TestJobState_Finished(t *testing.T) {
	tests := []struct {
		state    JobState
		finished bool
	}{
		{StatePending, false},
		{StateRunning, false},
		{StateCompleted, true},
		{StateFailed, true},
		{StateCancelled, true},
	}
	for _, tt := range tests {
		if got := tt.state.Finished(); got != tt.finished {
			t.Errorf("%s.Finished() = %v, expected %v", tt.state, got, tt.finished)
		}
	}
}

func TestJobManager_ThreadSafety(t *testing.T) {
	jm := NewJobManager()

	job := jm.CreateJob(tinyConfig())

	// Simulate concurrent updates
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func() {
			jm.UpdateJob(job.ID, func(j *Job) {
				j.SamplesDone++
				time.Sleep(1 * time.Millisecond)
			})
			done <- true
		}()
	}

	// Wait for all updates
	for i := 0; i < 10; i++ {
		<-done
	}

	updated, _ := jm.GetJob(job.ID)
	if updated.SamplesDone != 10 {
		t.Errorf("Expected 10 samples after concurrent updates, got %d", updated.SamplesDone)
	}
}
