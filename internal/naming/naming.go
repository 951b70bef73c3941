// Package naming produces the base filename a file is renamed to: a hex digest
// of its content ([ContentHash]) or a random token ([RandomToken]).
//
// Both implement [Strategy]. The relocator calls Name once per file for a
// content hash and once per attempt for a random token, as reported by
// Regenerates.
package naming

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnreadableFile is returned when the file to name is not a regular file
// or cannot be opened or read.
var ErrUnreadableFile = errors.New("unreadable file")

// Strategy generates base names (without extension).
type Strategy interface {
	// Name returns the base name for the regular file at path.
	Name(path string) (string, error)
	// Regenerates reports whether a name collision is resolved by drawing a
	// fresh name (true) or by suffixing the current one (false).
	Regenerates() bool
	// String describes the strategy for logs, e.g. "blake3/16".
	String() string
}

// Extension returns the final suffix of path's base name, lower-cased and
// including the dot. Leading dots do not start an extension, so ".bashrc"
// and "README" have none.
func Extension(path string) string {
	base := strings.TrimLeft(filepath.Base(path), ".")
	return strings.ToLower(filepath.Ext(base))
}

// Suffixed returns base with a "_n" disambiguation suffix, or base itself
// when n is 0 (e.g. "d41d8c", 2 -> "d41d8c_2").
func Suffixed(base string, n int) string {
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s_%d", base, n)
}
