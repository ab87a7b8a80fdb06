// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics persists daily academic-metrics snapshots and computes
// day-over-day deltas against the most recent prior snapshot.
package metrics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/snlongmore/morning-report/pkg/types"
)

// DateFormat is the history key format. ISO dates sort lexicographically in
// calendar order, which the delta computation depends on.
const DateFormat = "2006-01-02"

// Today returns the local calendar date formatted as a history key.
func Today() string {
	return time.Now().Format(DateFormat)
}

// Store reads and writes the metrics history file. The whole document is
// loaded into memory and rewritten on save; the history grows by one small
// entry per day, so streaming updates would buy nothing.
//
// The file is shared across daily runs but the scheduler triggers at most
// one run at a time, so the store does no locking of its own.
type Store struct {
	path string
}

// NewStore returns a store backed by the JSON document at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the history file location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the full history. A missing file is the normal first-run state
// and yields an empty history. An unreadable or corrupt file is a hard
// error: silently treating it as empty would reset the delta baseline for
// every future run without the operator noticing.
func (s *Store) Load() (types.MetricsHistory, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.MetricsHistory{}, nil
		}
		return nil, fmt.Errorf("reading metrics history %s: %w", s.path, err)
	}

	var history types.MetricsHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("parsing metrics history %s: %w", s.path, err)
	}
	if history == nil {
		history = types.MetricsHistory{}
	}
	return history, nil
}

// Save writes the full history atomically (temp file, then rename),
// creating parent directories as needed.
func (s *Store) Save(history types.MetricsHistory) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating history directory: %w", err)
	}

	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding metrics history: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing metrics history: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing metrics history: %w", err)
	}
	return nil
}

// Record stores today's snapshot under date and persists the history.
// Callers must compute deltas before calling Record: the pre-write history
// is the comparison basis, and saving first would make every run compare
// against itself.
func (s *Store) Record(date string, snapshot types.MetricsSnapshot, history types.MetricsHistory) error {
	history[date] = snapshot
	return s.Save(history)
}
