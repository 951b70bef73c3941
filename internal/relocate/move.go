package relocate

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"syscall"
)

// errTaken reports that the destination was occupied when the move was
// attempted. The relocator treats it like an occupied slot found by probing.
var errTaken = errors.New("destination already exists")

// errNoReplaceUnsupported is returned by renameNoReplace when the platform or
// filesystem has no atomic "rename unless exists" primitive.
var errNoReplaceUnsupported = errors.New("no-replace rename not supported")

// moveNoClobber moves src to dst without ever replacing an existing dst.
//
// Where renameNoReplace is available the kernel enforces that. Otherwise the
// move is check-then-rename: an external process creating dst between the
// check and the rename would be overwritten. That window is accepted on
// platforms without the primitive.
func moveNoClobber(src, dst string) error {
	err := renameNoReplace(src, dst)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrExist):
		return errTaken
	case errors.Is(err, syscall.EXDEV):
		return copyThenRemove(src, dst)
	case !errors.Is(err, errNoReplaceUnsupported):
		return err
	}

	if _, err := os.Lstat(dst); err == nil {
		return errTaken
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.Rename(src, dst); err != nil {
		if errors.Is(err, syscall.EXDEV) {
			return copyThenRemove(src, dst)
		}
		return err
	}
	return nil
}

// copyThenRemove moves src across filesystems: dst is created exclusively,
// filled, synced, and only then is src removed.
func copyThenRemove(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fi.Mode().Perm())
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return errTaken
		}
		return err
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(dst)
		}
	}()

	if _, err = io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	if err = out.Sync(); err != nil {
		return err
	}
	if err = out.Close(); err != nil {
		return err
	}
	_ = os.Chtimes(dst, fi.ModTime(), fi.ModTime())

	if rmErr := os.Remove(src); rmErr != nil {
		// dst is complete; leave it and report that the source survived.
		return fmt.Errorf("copied to %s but could not remove source: %w", dst, rmErr)
	}
	return nil
}
