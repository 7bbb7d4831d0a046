// Package storage persists completed analysis reports as JSON files, one
// per report, keyed by report ID.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/avelar/critique/internal/analysis"
)

// Status tracks the lifecycle of a stored report.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// ErrNotFound is returned when no report exists for the given ID.
var ErrNotFound = errors.New("report not found")

// Record wraps a report with its storage metadata.
type Record struct {
	Report      analysis.Report `json:"report"`
	Status      Status          `json:"status"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}

// Store is a directory-backed report store.
type Store struct {
	dir string
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if dir == "" {
		dir = "reports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the storage directory path.
func (s *Store) Dir() string { return s.dir }

// Save writes a record under its report ID, replacing any previous version.
func (s *Store) Save(rec Record) error {
	if err := validateID(rec.Report.ReportID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	return os.WriteFile(s.recordPath(rec.Report.ReportID), data, 0o644)
}

// Get loads the record for the given report ID.
func (s *Store) Get(id string) (Record, error) {
	if err := validateID(id); err != nil {
		return Record{}, err
	}
	data, err := os.ReadFile(s.recordPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("reading report %s: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("parsing report %s: %w", id, err)
	}
	return rec, nil
}

// List returns stored records newest first. limit <= 0 means no limit;
// offset skips the first records after sorting.
func (s *Store) List(limit, offset int) ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading storage directory: %w", err)
	}

	records := make([]Record, 0, len(entries))
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		var rec Record
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if offset > 0 {
		if offset >= len(records) {
			return []Record{}, nil
		}
		records = records[offset:]
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Count returns the number of stored reports.
func (s *Store) Count() (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading storage directory: %w", err)
	}
	n := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			n++
		}
	}
	return n, nil
}

// Delete removes the record for the given report ID.
func (s *Store) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	err := os.Remove(s.recordPath(id))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

func (s *Store) recordPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// validateID rejects anything that is not a UUID, which keeps report IDs
// safe to use as filenames.
func validateID(id string) error {
	if err := uuid.Validate(id); err != nil {
		return fmt.Errorf("invalid report ID %q: %w", id, err)
	}
	return nil
}
