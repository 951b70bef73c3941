//go:build darwin

package relocate

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// renameNoReplace renames src to dst with RENAME_EXCL, failing with EEXIST
// instead of replacing dst.
func renameNoReplace(src, dst string) error {
	err := unix.RenamexNp(src, dst, unix.RENAME_EXCL)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, unix.ENOTSUP), errors.Is(err, unix.EINVAL):
		return errNoReplaceUnsupported
	default:
		return &os.LinkError{Op: "renamex_np", Old: src, New: dst, Err: err}
	}
}
