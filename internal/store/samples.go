package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// SampleEntry is one timing sample, serialized as a JSON line in
// samples.jsonl.
type SampleEntry struct {
	Strategy string `json:"strategy"`
	Pixels   int    `json:"pixels"`

	// Iters is the number of calls timed together in this sample.
	Iters int `json:"iters"`

	// NsPerOp is the sample's elapsed time divided by Iters.
	NsPerOp float64 `json:"nsPerOp"`

	Timestamp time.Time `json:"timestamp"`
}

// SampleWriter writes sample entries to a JSONL file.
// It uses buffered I/O and is safe for concurrent use.
type SampleWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	path   string
}

func samplesPath(baseDir, runID string) string {
	return filepath.Join(runDir(baseDir, runID), "samples.jsonl")
}

// NewSampleWriter creates a sample writer for the given run at
// <baseDir>/runs/<runID>/samples.jsonl, truncating any existing file.
func NewSampleWriter(baseDir, runID string) (*SampleWriter, error) {
	if err := checkRunID(runID); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(runDir(baseDir, runID), 0755); err != nil {
		return nil, fmt.Errorf("failed to create run directory: %w", err)
	}

	path := samplesPath(baseDir, runID)
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open samples file: %w", err)
	}

	return &SampleWriter{
		file:   file,
		writer: bufio.NewWriterSize(file, 64*1024),
		path:   path,
	}, nil
}

// Write appends a sample entry to the file.
// The entry is buffered and will be written on Flush() or Close().
func (sw *SampleWriter) Write(entry SampleEntry) error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal sample entry: %w", err)
	}

	if _, err := sw.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write sample entry: %w", err)
	}
	if err := sw.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

// Flush writes any buffered data to the file and syncs it.
func (sw *SampleWriter) Flush() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if err := sw.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush sample writer: %w", err)
	}
	if err := sw.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync samples file: %w", err)
	}

	return nil
}

// Close flushes buffered data and closes the samples file.
func (sw *SampleWriter) Close() error {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if err := sw.writer.Flush(); err != nil {
		sw.file.Close()
		return fmt.Errorf("failed to flush on close: %w", err)
	}
	if err := sw.file.Close(); err != nil {
		return fmt.Errorf("failed to close samples file: %w", err)
	}

	return nil
}

// Path returns the filesystem path to the samples file.
func (sw *SampleWriter) Path() string {
	return sw.path
}

// SampleReader reads sample entries from a JSONL file.
type SampleReader struct {
	file    *os.File
	scanner *bufio.Scanner
}

// NewSampleReader opens the samples file of the given run.
func NewSampleReader(baseDir, runID string) (*SampleReader, error) {
	if err := checkRunID(runID); err != nil {
		return nil, err
	}
	file, err := os.Open(samplesPath(baseDir, runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{RunID: runID}
		}
		return nil, fmt.Errorf("failed to open samples file: %w", err)
	}

	return &SampleReader{
		file:    file,
		scanner: bufio.NewScanner(file),
	}, nil
}

// Read reads the next sample entry.
// Returns io.EOF when no more entries are available.
func (sr *SampleReader) Read() (*SampleEntry, error) {
	if !sr.scanner.Scan() {
		if err := sr.scanner.Err(); err != nil {
			return nil, fmt.Errorf("failed to scan sample line: %w", err)
		}
		return nil, io.EOF
	}

	var entry SampleEntry
	if err := json.Unmarshal(sr.scanner.Bytes(), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sample entry: %w", err)
	}

	return &entry, nil
}

// ReadAll reads all remaining sample entries.
func (sr *SampleReader) ReadAll() ([]SampleEntry, error) {
	var entries []SampleEntry

	for {
		entry, err := sr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}

	return entries, nil
}

// Close closes the sample reader.
func (sr *SampleReader) Close() error {
	if err := sr.file.Close(); err != nil {
		return fmt.Errorf("failed to close samples file: %w", err)
	}
	return nil
}

// SampleKey identifies one strategy on one pixel tier.
type SampleKey struct {
	Strategy string
	Pixels   int
}

// LoadSamples reads a run's samples grouped by strategy and tier, as
// ns/op values in file order.
func LoadSamples(baseDir, runID string) (map[SampleKey][]float64, error) {
	reader, err := NewSampleReader(baseDir, runID)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	entries, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	grouped := make(map[SampleKey][]float64)
	for _, e := range entries {
		key := SampleKey{Strategy: e.Strategy, Pixels: e.Pixels}
		grouped[key] = append(grouped[key], e.NsPerOp)
	}
	return grouped, nil
}
