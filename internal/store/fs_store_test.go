package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// setupTestStore creates a temporary directory and returns an FSStore for testing.
func setupTestStore(t *testing.T) (*FSStore, string) {
	t.Helper()

	tempDir := t.TempDir()
	store, err := NewFSStore(tempDir)
	if err != nil {
		t.Fatalf("Failed to create test store: %v", err)
	}

	return store, tempDir
}

// createTestReport creates a report with two results on one tier.
func createTestReport(runID string) *Report {
	return &Report{
		RunID:     runID,
		Timestamp: time.Now(),
		Config: RunConfig{
			Group:           "rggb10_to_rggb8",
			PixelTiers:      []int{16384},
			SampleSize:      500,
			Significance:    0.01,
			WarmUp:          time.Second,
			MeasurementTime: 5 * time.Second,
			Strategies:      []string{"func_int_safe", "proc_int_unsafe"},
			Baseline:        "func_int_safe",
		},
		Env: Environment{GOOS: "linux", GOARCH: "amd64", CPU: "Test CPU"},
		Results: []Result{
			{Strategy: "func_int_safe", Pixels: 16384, Bytes: 32768, Samples: 500, Iters: 100, MedianNs: 12000, MBps: 2730.7},
			{Strategy: "proc_int_unsafe", Pixels: 16384, Bytes: 32768, Samples: 500, Iters: 100, MedianNs: 8000, MBps: 4096, Delta: "-33.33%", P: 0.000, Significant: true},
		},
	}
}

func TestNewFSStore(t *testing.T) {
	tempDir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewFSStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)
	require.Equal(t, tempDir, store.BaseDir())

	_, err = os.Stat(tempDir)
	require.NoError(t, err, "base directory was not created")
}

func TestSaveReport(t *testing.T) {
	store, tempDir := setupTestStore(t)

	runID := "run-123"
	require.NoError(t, store.SaveReport(runID, createTestReport(runID)))

	expectedPath := filepath.Join(tempDir, "runs", runID, "report.json")
	if _, err := os.Stat(expectedPath); os.IsNotExist(err) {
		t.Fatalf("Report file was not created at %s", expectedPath)
	}

	if _, err := os.Stat(expectedPath + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("Temp file should not exist after save: %s.tmp", expectedPath)
	}
}

func TestSaveReport_EmptyRunID(t *testing.T) {
	store, _ := setupTestStore(t)

	err := store.SaveReport("", createTestReport("any-id"))
	require.Error(t, err)
}

func TestSaveReport_NilReport(t *testing.T) {
	store, _ := setupTestStore(t)

	err := store.SaveReport("run", nil)
	require.Error(t, err)
}

func TestSaveReport_Invalid(t *testing.T) {
	store, _ := setupTestStore(t)

	report := createTestReport("run-invalid")
	report.Results = nil

	err := store.SaveReport(report.RunID, report)
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %T", err)
	require.Equal(t, "Results", validationErr.Field)
}

func TestSaveReport_Overwrite(t *testing.T) {
	store, _ := setupTestStore(t)

	runID := "run-overwrite"
	first := createTestReport(runID)
	first.Results[0].MedianNs = 5000

	second := createTestReport(runID)
	second.Results[0].MedianNs = 4000

	require.NoError(t, store.SaveReport(runID, first))
	require.NoError(t, store.SaveReport(runID, second))

	loaded, err := store.LoadReport(runID)
	require.NoError(t, err)
	require.Equal(t, 4000.0, loaded.Results[0].MedianNs)
}

func TestLoadReport(t *testing.T) {
	store, _ := setupTestStore(t)

	runID := "run-load"
	original := createTestReport(runID)
	require.NoError(t, store.SaveReport(runID, original))

	loaded, err := store.LoadReport(runID)
	require.NoError(t, err)

	require.Equal(t, original.RunID, loaded.RunID)
	require.True(t, original.Timestamp.Equal(loaded.Timestamp))
	require.Equal(t, original.Config, loaded.Config)
	require.Equal(t, original.Env, loaded.Env)
	require.Equal(t, original.Results, loaded.Results)
}

func TestLoadReport_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.LoadReport("nonexistent-run")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrNotFound), "expected NotFoundError, got %T: %v", err, err)
}

func TestLoadReport_Corrupt(t *testing.T) {
	store, tempDir := setupTestStore(t)

	dir := filepath.Join(tempDir, "runs", "corrupt")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.json"), []byte("{not json"), 0644))

	_, err := store.LoadReport("corrupt")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))
}

func TestLoadReport_EmptyRunID(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.LoadReport("")
	require.Error(t, err)
}

func TestListReports_Empty(t *testing.T) {
	store, _ := setupTestStore(t)

	infos, err := store.ListReports()
	require.NoError(t, err)
	require.Empty(t, infos)
}

func TestListReports_SortedOldestFirst(t *testing.T) {
	store, _ := setupTestStore(t)

	now := time.Now()
	ages := map[string]int{"run-a": 3, "run-b": 1, "run-c": 2}
	for runID, days := range ages {
		report := createTestReport(runID)
		report.Timestamp = now.AddDate(0, 0, -days)
		require.NoError(t, store.SaveReport(runID, report))
	}

	infos, err := store.ListReports()
	require.NoError(t, err)
	require.Len(t, infos, 3)
	require.Equal(t, "run-a", infos[0].RunID)
	require.Equal(t, "run-c", infos[1].RunID)
	require.Equal(t, "run-b", infos[2].RunID)
}

func TestListReports_SkipsInvalidDirectories(t *testing.T) {
	store, tempDir := setupTestStore(t)

	require.NoError(t, store.SaveReport("valid-run", createTestReport("valid-run")))

	// Directory without report.json
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "runs", "empty-run"), 0755))

	// Non-directory entry
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "runs", "dummy.txt"), []byte("test"), 0644))

	// Corrupt report
	corrupt := filepath.Join(tempDir, "runs", "corrupt-run")
	require.NoError(t, os.MkdirAll(corrupt, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(corrupt, "report.json"), []byte("]"), 0644))

	infos, err := store.ListReports()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	require.Equal(t, "valid-run", infos[0].RunID)
}

func TestDeleteReport(t *testing.T) {
	store, _ := setupTestStore(t)

	runID := "run-delete"
	require.NoError(t, store.SaveReport(runID, createTestReport(runID)))

	w, err := NewSampleWriter(store.BaseDir(), runID)
	require.NoError(t, err)
	require.NoError(t, w.Write(SampleEntry{Strategy: "func_int_safe", Pixels: 16384, Iters: 1, NsPerOp: 1}))
	require.NoError(t, w.Close())

	require.NoError(t, store.DeleteReport(runID))

	_, err = store.LoadReport(runID)
	require.True(t, errors.Is(err, ErrNotFound))

	_, err = os.Stat(store.RunDir(runID))
	require.True(t, os.IsNotExist(err), "run directory should be removed")
}

func TestDeleteReport_NotFound(t *testing.T) {
	store, _ := setupTestStore(t)

	err := store.DeleteReport("nonexistent-run")
	require.True(t, errors.Is(err, ErrNotFound), "expected NotFoundError, got %T: %v", err, err)
}

func TestDeleteReport_EmptyRunID(t *testing.T) {
	store, _ := setupTestStore(t)

	require.Error(t, store.DeleteReport(""))
}

func TestConcurrentSave(t *testing.T) {
	store, _ := setupTestStore(t)

	const numRuns = 10
	done := make(chan bool, numRuns)

	for i := 0; i < numRuns; i++ {
		go func(idx int) {
			runID := fmt.Sprintf("concurrent-run-%d", idx)
			if err := store.SaveReport(runID, createTestReport(runID)); err != nil {
				t.Errorf("Concurrent save failed for run %s: %v", runID, err)
			}
			done <- true
		}(i)
	}

	for i := 0; i < numRuns; i++ {
		<-done
	}

	infos, err := store.ListReports()
	require.NoError(t, err)
	require.Len(t, infos, numRuns)
}

var _ Store = (*FSStore)(nil)

func TestFSStore_RejectsPathRunIDs(t *testing.T) {
	store, tmpDir := setupTestStore(t)

	// A report directly under the base directory must stay unreachable.
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "report.json"), []byte("{}"), 0644))

	for _, id := range []string{".", "..", "../x", `a\b`, "a/b"} {
		_, err := store.LoadReport(id)
		require.Error(t, err, id)
		require.NotErrorIs(t, err, ErrNotFound, id)

		require.Error(t, store.SaveReport(id, createTestReport("any-id")), id)
		require.Error(t, store.DeleteReport(id), id)

		_, err = NewSampleWriter(tmpDir, id)
		require.Error(t, err, id)
		_, err = NewSampleReader(tmpDir, id)
		require.Error(t, err, id)
	}

	_, err := os.Stat(filepath.Join(tmpDir, "report.json"))
	require.NoError(t, err)
}
