// Package runner drives the detect/plan/apply pipeline across many files
// with a bounded worker pool.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/jorge-barreto/statetrap/internal/config"
	"github.com/jorge-barreto/statetrap/internal/detect"
	"github.com/jorge-barreto/statetrap/internal/patch"
	"github.com/jorge-barreto/statetrap/internal/report"
	"github.com/jorge-barreto/statetrap/internal/ux"
)

// Runner patches a batch of files. Every file runs the full pipeline on
// one worker; a file's failure never stops the batch.
type Runner struct {
	Config   *config.Config
	Reporter ux.Reporter

	// DryRun plans every file but never backs up or writes.
	DryRun bool
}

// Run processes the candidate files with at most Config.Workers in flight
// and returns the collected report. Cancellation stops scheduling further
// files; a file already being written finishes its write.
func (r *Runner) Run(ctx context.Context, files []string) (*report.Report, error) {
	rep := report.New()
	r.Reporter.Start(len(files), r.Config.Workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.Config.Workers)

	for _, path := range files {
		path := path
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcome, err := r.processFile(path)
			rep.Add(path, outcome, err)
			r.Reporter.File(path, outcome, err)
			return nil
		})
	}

	err := g.Wait()
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	rep.Finish()
	r.Reporter.Done(rep)
	return rep, err
}

// processFile runs one file through read, quick scan, detect, plan, backup,
// and write. The returned error is recorded, never propagated to Run.
func (r *Runner) processFile(path string) (report.Outcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return report.OutcomeIOError, err
	}
	if !detect.QuickScan(data) {
		return report.OutcomeNotAnFSM, nil
	}
	desc, ok := detect.New(r.Config.Payload).Detect(data)
	if !ok {
		return report.OutcomeNotAnFSM, nil
	}

	mutated, err := patch.NewPlanner(r.Config.Payload).Rewrite(data, desc)
	if errors.Is(err, patch.ErrAlreadyPatched) {
		return report.OutcomeAlreadyPatched, nil
	}
	if errors.Is(err, patch.ErrLocateFailed) {
		return report.OutcomeLocateFailed, nil
	}
	if err != nil {
		return report.OutcomeIOError, err
	}

	if r.DryRun {
		return report.OutcomePatched, nil
	}

	perm := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		perm = info.Mode().Perm()
	}
	if err := r.backup(path, data, perm); err != nil {
		return report.OutcomeIOError, fmt.Errorf("backup: %w", err)
	}
	if err := report.WriteFileAtomic(path, mutated, perm); err != nil {
		return report.OutcomeIOError, fmt.Errorf("writing: %w", err)
	}
	return report.OutcomePatched, nil
}

// backup preserves the pre-patch bytes next to the file. Under
// skip-if-exists an existing backup is left alone, so the oldest original
// survives repeated runs.
func (r *Runner) backup(path string, data []byte, perm os.FileMode) error {
	bak := path + r.Config.Backup.Suffix
	if r.Config.Backup.Policy == config.PolicySkipIfExists {
		if _, err := os.Stat(bak); err == nil {
			return nil
		}
	}
	return os.WriteFile(bak, data, perm)
}
