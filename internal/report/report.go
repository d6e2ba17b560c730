// Package report accumulates per-file outcomes for one run and persists
// them as a JSON artifact.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomePatched        Outcome = "patched"
	OutcomeAlreadyPatched Outcome = "already-patched"
	OutcomeNotAnFSM       Outcome = "not-an-fsm"
	OutcomeLocateFailed   Outcome = "locate-failed"
	OutcomeIOError        Outcome = "io-error"
)

// String renders the outcome for console lines. JSON output keeps the
// hyphenated form.
func (o Outcome) String() string {
	switch o {
	case OutcomeAlreadyPatched:
		return "already patched"
	case OutcomeNotAnFSM:
		return "not an FSM"
	case OutcomeLocateFailed:
		return "dispatch block unclosed"
	case OutcomeIOError:
		return "io error"
	}
	return string(o)
}

type FileResult struct {
	Path    string  `json:"path"`
	Outcome Outcome `json:"outcome"`
	Error   string  `json:"error,omitempty"`
}

type Report struct {
	mu       sync.Mutex
	RunID    string       `json:"run_id"`
	Started  time.Time    `json:"started"`
	Finished time.Time    `json:"finished,omitempty"`
	Files    []FileResult `json:"files"`
}

// New creates a report for a fresh run with a unique id.
func New() *Report {
	return &Report{
		RunID:   uuid.NewString(),
		Started: time.Now(),
	}
}

// Add records the outcome for one file. Safe for concurrent use.
func (r *Report) Add(path string, o Outcome, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fr := FileResult{Path: path, Outcome: o}
	if err != nil {
		fr.Error = err.Error()
	}
	r.Files = append(r.Files, fr)
}

// Finish stamps the end of the run.
func (r *Report) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Finished = time.Now()
}

// Count returns how many files ended with the given outcome.
func (r *Report) Count(o Outcome) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, f := range r.Files {
		if f.Outcome == o {
			n++
		}
	}
	return n
}

// Summary returns the files scanned and the files actually rewritten.
func (r *Report) Summary() (scanned, patched int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.Files {
		if f.Outcome == OutcomePatched {
			patched++
		}
	}
	return len(r.Files), patched
}

// Duration reports elapsed run time, against now when the run is still
// going.
func (r *Report) Duration() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	end := r.Finished
	if end.IsZero() {
		end = time.Now()
	}
	return formatDuration(end.Sub(r.Started))
}

// Save writes the report to path. Files are sorted so output is stable
// regardless of worker completion order.
func (r *Report) Save(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sort.Slice(r.Files, func(i, j int) bool { return r.Files[i].Path < r.Files[j].Path })
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, 0644)
}

// Load reads a previously saved report.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %02ds", m, s)
}
