// Package pipeline drives a run: it discovers input files, relocates each
// one under its generated name, applies the duplicate policy, and reports
// per-file outcomes and batch statistics.
package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/backmassage/rname/internal/apperr"
	"github.com/backmassage/rname/internal/config"
	"github.com/backmassage/rname/internal/display"
	"github.com/backmassage/rname/internal/logging"
	"github.com/backmassage/rname/internal/naming"
	"github.com/backmassage/rname/internal/relocate"
	"github.com/backmassage/rname/internal/report"
)

// PreserveFolder is the default duplicates folder inside each destination.
const PreserveFolder = "duplicates"

type runner struct {
	cfg      *config.Config
	log      *logging.Logger
	rel      *relocate.Relocator
	out      *display.Formatter
	rec      *report.Recorder // nil without --save
	hashing  bool
	preserve string // absolute --preserve-dir, or empty for per-destination folders
	stats    RunStats
}

// Run is the top-level entry point. It discovers files under cfg.Input,
// relocates them one at a time, and returns aggregate stats. A per-file
// error aborts the run unless cfg.KeepGoing; contract violations from the
// relocator always abort. With cfg.SaveFile the run log is written even
// when the run stops early.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger) (RunStats, error) {
	r, err := newRunner(cfg, log)
	if err != nil {
		return RunStats{}, err
	}

	err = r.run(ctx)
	if r.rec != nil {
		if serr := r.rec.Save(cfg.SaveFile); serr != nil {
			log.Error("Cannot save run log: %v", serr)
			if err == nil {
				err = serr
			}
		} else {
			log.Debug("Run log saved to %s", cfg.SaveFile)
		}
	}
	return r.stats, err
}

func newRunner(cfg *config.Config, log *logging.Logger) (*runner, error) {
	strategy, err := NewStrategy(cfg, log)
	if err != nil {
		return nil, err
	}
	_, random := strategy.(*naming.RandomToken)

	r := &runner{
		cfg:     cfg,
		log:     log,
		out:     display.NewFormatter(cfg.Verbose, cfg.DryRun),
		hashing: !random,
		rel: relocate.New(strategy, relocate.Options{
			DryRun:      cfg.DryRun,
			MaxAttempts: cfg.MaxAttempts,
			Log:         log,
		}),
	}
	if cfg.PreserveDir != "" {
		if r.preserve, err = filepath.Abs(cfg.PreserveDir); err != nil {
			return nil, apperr.Userf("resolve preserve directory: %w", err)
		}
	}
	if cfg.SaveFile != "" {
		r.rec = report.NewRecorder(strategy.String(), cfg.DryRun)
	}
	return r, nil
}

func (r *runner) run(ctx context.Context) error {
	input, err := filepath.Abs(r.cfg.Input)
	if err != nil {
		return apperr.Userf("resolve input %s: %w", r.cfg.Input, err)
	}
	var output string
	if r.cfg.Output != "" {
		if output, err = filepath.Abs(r.cfg.Output); err != nil {
			return apperr.Userf("resolve output %s: %w", r.cfg.Output, err)
		}
		if !relocate.IsDir(output) {
			return apperr.Userf("output directory not found: %s", r.cfg.Output)
		}
	}

	found, err := Discover(input, r.discoverOptions(output), r.log)
	if err != nil {
		return err
	}
	for _, f := range found.Files {
		if err := r.cfg.ValidatePaths(f.DestDir, r.preserve); err != nil {
			return apperr.Userf("%w", err)
		}
	}

	r.stats.Total = len(found.Files) + len(found.Skipped)
	r.logBatchHeader()

	for _, s := range found.Skipped {
		r.log.Warn("Skipping %s: %s", r.out.Path(s.Path), s.Reason)
		r.stats.Skipped++
		r.record(report.Record{Origin: s.Path, Action: report.ActionSkipped, Error: s.Reason})
	}

	for i, f := range found.Files {
		if ctx.Err() != nil {
			r.log.Warn("Interrupted")
			r.stats.Interrupted = true
			break
		}
		r.stats.Current = i + 1

		err := r.processFile(f)
		if err == nil {
			continue
		}
		r.stats.Failed++
		r.record(report.Record{Origin: f.Path, Action: report.ActionFailed, Error: err.Error()})
		if !r.cfg.KeepGoing || fatal(err) {
			r.logSummary()
			return err
		}
		r.log.Error("%v", err)
	}

	r.logSummary()
	return nil
}

func (r *runner) discoverOptions(output string) DiscoverOptions {
	opts := DiscoverOptions{Recursive: r.cfg.Recursive, Output: output}
	if exe, err := os.Executable(); err == nil {
		opts.Exclude = append(opts.Exclude, exe)
	}
	if p := r.log.FilePath(); p != "" {
		opts.Exclude = append(opts.Exclude, p)
	}
	if r.cfg.SaveFile != "" {
		opts.Exclude = append(opts.Exclude, r.cfg.SaveFile)
	}
	if r.cfg.Duplicates == config.DuplicatesPreserve {
		if r.preserve != "" {
			opts.SkipDirs = append(opts.SkipDirs, r.preserve)
		} else {
			opts.SkipName = PreserveFolder
		}
	}
	return opts
}

// fatal reports whether err is a relocator contract violation.
func fatal(err error) bool {
	return errors.Is(err, relocate.ErrNotRegular) || errors.Is(err, relocate.ErrNoDestination)
}

// processFile relocates one file and applies the duplicate policy.
func (r *runner) processFile(f Entry) error {
	var size int64
	if r.hashing {
		if fi, err := os.Lstat(f.Path); err == nil {
			size = fi.Size()
		}
	}

	out, err := r.rel.Relocate(relocate.Request{Source: f.Path, DestDir: f.DestDir})
	if err != nil {
		return err
	}
	r.stats.BytesHashed += size

	rec := report.Record{Origin: f.Path, Destination: out.Destination, Name: out.Name}
	switch {
	case out.Action == relocate.ActionMoved:
		r.stats.Moved++
		r.log.Info("%s", r.out.Moved(out.Source, out.Destination))
		rec.Action = report.ActionMoved
	case out.Action == relocate.ActionAlreadyNamed:
		r.stats.AlreadyNamed++
		r.log.Info("%s", r.out.AlreadyNamed(out.Destination))
		rec.Action = report.ActionAlreadyNamed
	case out.IsDuplicate():
		if err := r.dispose(out, f.DestDir, &rec); err != nil {
			return err
		}
		r.stats.Duplicates++
	default:
		r.stats.Skipped++
		r.log.Warn("%s", r.out.CollisionLimit(out.Source, out.Attempts))
		rec.Action = report.ActionCollisionLimit
		rec.Destination = ""
	}
	r.record(rec)
	return nil
}

// dispose applies the duplicate policy to a verified duplicate. In a dry
// run nothing is removed or moved.
func (r *runner) dispose(out relocate.Outcome, destDir string, rec *report.Record) error {
	rec.Destination = out.Twin
	switch r.cfg.Duplicates {
	case config.DuplicatesDelete:
		if err := r.rel.Remove(out.Source); err != nil {
			return err
		}
		r.log.Info("%s", r.out.DuplicateDeleted(out.Source, out.Twin))
		rec.Action = report.ActionDuplicateDeleted
	case config.DuplicatesPreserve:
		dir := r.preserve
		if dir == "" {
			dir = filepath.Join(destDir, PreserveFolder)
		}
		dst, err := r.rel.Preserve(out.Source, dir)
		if err != nil {
			return err
		}
		r.log.Info("%s", r.out.DuplicatePreserved(out.Source, out.Twin, dst))
		rec.Action = report.ActionDuplicatePreserved
		rec.Destination = dst
	default:
		r.log.Info("%s", r.out.DuplicateKept(out.Source, out.Twin))
		rec.Action = report.ActionDuplicateKept
	}
	return nil
}

func (r *runner) record(rec report.Record) {
	if r.rec != nil {
		r.rec.Add(rec)
	}
}

// --- Logging helpers ---

func (r *runner) logBatchHeader() {
	r.log.Info("Found %s files", display.FormatCount(r.stats.Total))
	r.log.Debug("Naming: %s", r.rel.Strategy())
	r.log.Debug("Duplicates: %s", r.cfg.Duplicates)
	if r.cfg.DryRun {
		r.log.Warn("DRY RUN: no files will be moved or deleted")
	}
}

func (r *runner) logSummary() {
	s := r.stats
	r.log.Info("==============================")
	r.log.Info("Done: %d moved, %d already named, %d duplicates, %d skipped, %d failed",
		s.Moved, s.AlreadyNamed, s.Duplicates, s.Skipped, s.Failed)
	r.log.Info("  Total files: %s", display.FormatCount(s.Total))
	if r.hashing {
		r.log.Info("  Hashed: %s", display.FormatBytes(s.BytesHashed))
	}
	if s.Failed > 0 {
		r.log.Warn("  %d files could not be processed", s.Failed)
	}
}
