package store

// Store defines the interface for benchmark run persistence.
// Implementations must be safe for concurrent use.
//
// Error handling conventions:
//   - Return ErrNotFound if a run doesn't exist (for Load/Delete)
//   - Wrap underlying errors with context using fmt.Errorf("context: %w", err)
type Store interface {
	// SaveReport atomically saves the report for the given run,
	// overwriting any previous report with the same runID.
	SaveReport(runID string, report *Report) error

	// LoadReport retrieves the report for the given run.
	// Returns ErrNotFound if no report exists for this runID.
	LoadReport(runID string) (*Report, error)

	// ListReports returns metadata for all stored runs.
	ListReports() ([]ReportInfo, error)

	// DeleteReport removes the run directory, including report.json and
	// samples.jsonl. Returns ErrNotFound if the run does not exist.
	DeleteReport(runID string) error
}

// ErrNotFound is returned when a requested run does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing run.
type NotFoundError struct {
	RunID string
}

func (e *NotFoundError) Error() string {
	if e.RunID != "" {
		return "run not found: " + e.RunID
	}
	return "run not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
