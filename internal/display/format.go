// Package display renders run output: the banner, byte sizes, and one line
// per relocation outcome.
package display

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// FormatBytes returns a human-readable IEC size (B, KiB, MiB, GiB, ...).
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.IBytes(uint64(-bytes))
	}
	return humanize.IBytes(uint64(bytes))
}

// FormatCount returns n with thousands separators.
func FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// Formatter turns relocation results into output lines. Paths are shown
// relative to the working directory unless Verbose is set.
type Formatter struct {
	Verbose bool
	DryRun  bool
	cwd     string
}

// NewFormatter returns a Formatter relative to the current working directory.
func NewFormatter(verbose, dryRun bool) *Formatter {
	cwd, _ := os.Getwd()
	return &Formatter{Verbose: verbose, DryRun: dryRun, cwd: cwd}
}

// Path returns p as it should be displayed.
func (f *Formatter) Path(p string) string {
	if f.Verbose || f.cwd == "" {
		if abs, err := filepath.Abs(p); err == nil {
			return abs
		}
		return p
	}
	if !filepath.IsAbs(p) {
		return p
	}
	rel, err := filepath.Rel(f.cwd, p)
	if err != nil {
		return p
	}
	return rel
}

func (f *Formatter) prefix(s string) string {
	if f.DryRun {
		return "(dry-run) " + s
	}
	return s
}

// Moved renders "src --> dst".
func (f *Formatter) Moved(src, dst string) string {
	return f.prefix(fmt.Sprintf("%s --> %s", f.Path(src), f.Path(dst)))
}

// AlreadyNamed renders the line for a file that already carries its name.
func (f *Formatter) AlreadyNamed(path string) string {
	return fmt.Sprintf("file %s already hashed", f.Path(path))
}

// DuplicateKept renders a duplicate left in place.
func (f *Formatter) DuplicateKept(src, twin string) string {
	return fmt.Sprintf("duplicate %s of %s kept", f.Path(src), f.Path(twin))
}

// DuplicateDeleted renders a removed duplicate.
func (f *Formatter) DuplicateDeleted(src, twin string) string {
	return f.prefix(fmt.Sprintf("duplicate %s of %s deleted", f.Path(src), f.Path(twin)))
}

// DuplicatePreserved renders a duplicate moved to the preserve folder.
func (f *Formatter) DuplicatePreserved(src, twin, dst string) string {
	return f.prefix(fmt.Sprintf("duplicate %s of %s --> %s", f.Path(src), f.Path(twin), f.Path(dst)))
}

// CollisionLimit renders a file left in place after every candidate was taken.
func (f *Formatter) CollisionLimit(src string, attempts int) string {
	return fmt.Sprintf("no free name for %s after %s attempts, left in place", f.Path(src), FormatCount(attempts))
}
