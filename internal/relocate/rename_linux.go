//go:build linux

package relocate

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// renameNoReplace renames src to dst with RENAME_NOREPLACE, failing with
// EEXIST instead of replacing dst.
func renameNoReplace(src, dst string) error {
	err := unix.Renameat2(unix.AT_FDCWD, src, unix.AT_FDCWD, dst, unix.RENAME_NOREPLACE)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ENOSYS), errors.Is(err, unix.EINVAL):
		// Old kernel, or a filesystem without renameat2 flag support.
		return errNoReplaceUnsupported
	default:
		return &os.LinkError{Op: "renameat2", Old: src, New: dst, Err: err}
	}
}
