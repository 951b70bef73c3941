// Package relocate moves a file to the name a [naming.Strategy] gives it,
// resolving collisions without ever overwriting or deleting existing data.
//
// For each request the relocator examines candidate names in the
// destination directory:
//
//   - a free slot: the source is moved there (Moved);
//   - the source itself: nothing happens (AlreadyNamed);
//   - another file: a content-hash strategy compares bytes and reports a
//     verified duplicate, or appends _1, _2, … to the digest; a random-token
//     strategy draws a fresh token.
//
// The directory is re-queried on every decision, never cached. In dry-run
// mode nothing is mutated and an in-run overlay stands in for the moves.
package relocate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/backmassage/rname/internal/apperr"
	"github.com/backmassage/rname/internal/naming"
)

// Contract violations. Both are returned wrapped in an apperr Logic error.
var (
	ErrNotRegular    = errors.New("not a regular file")
	ErrNoDestination = errors.New("destination is not a directory")
)

// DefaultMaxAttempts bounds the collision loop per file.
const DefaultMaxAttempts = 10000

// Logger is the minimal logging interface the relocator needs. Defined here
// so the package stays testable without the logging package.
type Logger interface {
	Debug(string, ...any)
	Warn(string, ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}

// Options configures a Relocator.
type Options struct {
	DryRun      bool
	MaxAttempts int    // 0 selects DefaultMaxAttempts.
	Log         Logger // nil discards.
}

// Request asks for Source to be renamed into DestDir. The extension is taken
// from Source.
type Request struct {
	Source  string
	DestDir string
}

// Relocator applies one naming strategy to a sequence of files. It is meant
// for sequential use within a single run.
type Relocator struct {
	strategy naming.Strategy
	dryRun   bool
	max      int
	log      Logger
	overlay  *overlay // dry run only
	move     func(src, dst string) error
}

// New returns a Relocator using strategy.
func New(strategy naming.Strategy, opts Options) *Relocator {
	r := &Relocator{
		strategy: strategy,
		dryRun:   opts.DryRun,
		max:      opts.MaxAttempts,
		log:      opts.Log,
		move:     moveNoClobber,
	}
	if r.max <= 0 {
		r.max = DefaultMaxAttempts
	}
	if r.log == nil {
		r.log = nopLogger{}
	}
	if r.dryRun {
		r.overlay = newOverlay()
	}
	return r
}

// Strategy returns the naming strategy in use.
func (r *Relocator) Strategy() naming.Strategy { return r.strategy }

// DryRun reports whether the relocator only simulates moves.
func (r *Relocator) DryRun() bool { return r.dryRun }

// slot classifies a candidate destination.
type slot int

const (
	slotFree  slot = iota
	slotSelf       // occupied by the source itself
	slotTaken      // occupied by anything else
)

// Relocate decides and performs the move for req. Errors are fatal for the
// file: a contract violation (apperr Logic), naming.ErrUnreadableFile, or an
// I/O failure while probing or moving.
func (r *Relocator) Relocate(req Request) (Outcome, error) {
	out := Outcome{Source: req.Source, DryRun: r.dryRun}
	if err := r.checkRequest(req); err != nil {
		return out, err
	}

	ext := naming.Extension(req.Source)
	var base string
	suffix := 0

	for attempt := 1; attempt <= r.max; attempt++ {
		if attempt == 1 || r.strategy.Regenerates() {
			name, err := r.strategy.Name(req.Source)
			if err != nil {
				return out, err
			}
			base = name
			out.Name = name
		}
		candidate := filepath.Join(req.DestDir, naming.Suffixed(base, suffix)+ext)
		out.Attempts = attempt

		s, err := r.probe(req.Source, candidate)
		if err != nil {
			return out, err
		}

		switch s {
		case slotSelf:
			out.Action = ActionAlreadyNamed
			out.Destination = candidate
			return out, nil

		case slotFree:
			err := r.claim(req.Source, candidate)
			if errors.Is(err, errTaken) {
				// Created by someone else after the probe; examine it again.
				r.log.Debug("Lost race for %s, retrying", candidate)
				continue
			}
			if err != nil {
				return out, fmt.Errorf("move %s: %w", req.Source, err)
			}
			out.Action = ActionMoved
			out.Destination = candidate
			return out, nil

		case slotTaken:
			if r.strategy.Regenerates() {
				r.log.Debug("Token collision at %s, drawing a new one", candidate)
				continue
			}
			if r.sameContent(req.Source, candidate) {
				out.Action = ActionSkipped
				out.Reason = ReasonDuplicate
				out.Twin = candidate
				return out, nil
			}
			r.log.Debug("Digest collision with different content at %s", candidate)
			suffix++
		}
	}

	r.log.Warn("Gave up on %s after %d collisions", req.Source, r.max)
	out.Action = ActionSkipped
	out.Reason = ReasonCollisionLimit
	return out, nil
}

func (r *Relocator) checkRequest(req Request) error {
	if !IsRegularFile(req.Source) {
		return apperr.Logicf("cannot move %q: %w", req.Source, ErrNotRegular)
	}
	if !IsDir(req.DestDir) {
		return apperr.Logicf("cannot move to %q: %w", req.DestDir, ErrNoDestination)
	}
	return nil
}

// probe classifies candidate against the current directory state (plus the
// dry-run overlay).
func (r *Relocator) probe(src, candidate string) (slot, error) {
	if r.overlay != nil {
		if owner, ok := r.overlay.owner(candidate); ok {
			if owner == src {
				return slotSelf, nil
			}
			return slotTaken, nil
		}
		if r.overlay.isVacated(candidate) {
			return slotFree, nil
		}
	}

	if _, err := os.Lstat(candidate); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return slotFree, nil
		}
		return slotTaken, fmt.Errorf("inspect %s: %w", candidate, err)
	}
	if SameFile(src, candidate) {
		return slotSelf, nil
	}
	return slotTaken, nil
}

// sameContent compares src with whatever occupies candidate, resolving
// dry-run claims to the file that would be there.
func (r *Relocator) sameContent(src, candidate string) bool {
	occupant := candidate
	if r.overlay != nil {
		if owner, ok := r.overlay.owner(candidate); ok {
			occupant = owner
		}
	}
	return SameContent(src, occupant)
}

func (r *Relocator) claim(src, dst string) error {
	if r.dryRun {
		r.overlay.move(src, dst)
		return nil
	}
	return r.move(src, dst)
}

// Remove deletes the duplicate src. In a dry run nothing is deleted; the
// overlay marks src as gone so later decisions see its slot as free.
func (r *Relocator) Remove(src string) error {
	if !IsRegularFile(src) {
		return apperr.Logicf("cannot remove %q: %w", src, ErrNotRegular)
	}
	if r.dryRun {
		r.overlay.remove(src)
		return nil
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("delete duplicate %s: %w", src, err)
	}
	return nil
}

// Preserve moves src into dir under its own base name, adding _1, _2, … before
// the extension until a free name is found. It never replaces an existing
// file. dir is created if missing (not in a dry run). Returns the final path.
func (r *Relocator) Preserve(src, dir string) (string, error) {
	if !IsRegularFile(src) {
		return "", apperr.Logicf("cannot preserve %q: %w", src, ErrNotRegular)
	}
	if !r.dryRun {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create preserve directory: %w", err)
		}
	}

	name := filepath.Base(src)
	ext := filepath.Ext(strings.TrimLeft(name, "."))
	stem := strings.TrimSuffix(name, ext)

	for n := 0; n < r.max; n++ {
		candidate := filepath.Join(dir, naming.Suffixed(stem, n)+ext)
		s, err := r.probe(src, candidate)
		if err != nil {
			return "", err
		}
		if s != slotFree {
			continue
		}
		err = r.claim(src, candidate)
		if errors.Is(err, errTaken) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("preserve %s: %w", src, err)
		}
		return candidate, nil
	}
	return "", fmt.Errorf("preserve %s: no free name in %s after %d attempts", src, dir, r.max)
}
