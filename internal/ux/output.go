package ux

import (
	"fmt"
	"time"

	"github.com/jorge-barreto/statetrap/internal/report"
)

// ANSI color helpers
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Cyan   = "\033[36m"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// Reporter receives batch progress. The runner talks only to this
// interface, so output can be swapped or silenced without touching the
// pipeline.
type Reporter interface {
	Start(total, workers int)
	File(path string, outcome report.Outcome, err error)
	Done(rep *report.Report)
}

// Console prints timestamped, colored progress lines, one per file.
type Console struct {
	// Verbose also prints files that were scanned but not recognized.
	Verbose bool
}

// Start prints the run header.
func (c *Console) Start(total, workers int) {
	fmt.Printf("%s[%s]%s  Scanning %d files with %d workers\n",
		Dim, timestamp(), Reset, total, workers)
}

// File prints one outcome line. Unrecognized files stay quiet unless
// Verbose is set.
func (c *Console) File(path string, outcome report.Outcome, err error) {
	if outcome == report.OutcomeNotAnFSM && !c.Verbose {
		return
	}
	mark, color := glyph(outcome)
	if err != nil {
		fmt.Printf("%s[%s]%s  %s%s %s: %s: %v%s\n",
			Dim, timestamp(), Reset, color, mark, path, outcome, err, Reset)
		return
	}
	fmt.Printf("%s[%s]%s  %s%s %s: %s%s\n",
		Dim, timestamp(), Reset, color, mark, path, outcome, Reset)
}

// Done prints the run summary and any non-zero failure counts.
func (c *Console) Done(rep *report.Report) {
	scanned, patched := rep.Summary()
	fmt.Printf("\n%s[%s]%s  %s%s══ %d files scanned, %d patched (%s) ══%s\n",
		Dim, timestamp(), Reset, Bold, Green, scanned, patched, rep.Duration(), Reset)
	for _, o := range []report.Outcome{
		report.OutcomeAlreadyPatched,
		report.OutcomeLocateFailed,
		report.OutcomeIOError,
	} {
		if n := rep.Count(o); n > 0 {
			fmt.Printf("%s[%s]%s  %s%d %s%s\n",
				Dim, timestamp(), Reset, Dim, n, o, Reset)
		}
	}
}

func glyph(o report.Outcome) (mark, color string) {
	switch o {
	case report.OutcomePatched:
		return "✓", Green
	case report.OutcomeAlreadyPatched:
		return "–", Yellow
	case report.OutcomeLocateFailed:
		return "✗", Yellow
	case report.OutcomeIOError:
		return "✗", Red
	}
	return "·", Dim
}

// Quiet discards all progress output. Used by tests and report-only runs.
type Quiet struct{}

func (Quiet) Start(total, workers int) {}

func (Quiet) File(path string, outcome report.Outcome, err error) {}

func (Quiet) Done(rep *report.Report) {}
