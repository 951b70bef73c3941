package relocate

import (
	"bytes"
	"io"
	"os"
)

// IsRegularFile reports whether path names a regular file. Symlinks are not
// followed, so a link to a file is not a regular file.
func IsRegularFile(path string) bool {
	fi, err := os.Lstat(path)
	return err == nil && fi.Mode().IsRegular()
}

// IsDir reports whether path names a directory (following symlinks, so a
// linked output folder is accepted).
func IsDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// SameFile reports whether a and b are the same filesystem object (device
// and inode), not merely equal path strings. Neither path is dereferenced.
func SameFile(a, b string) bool {
	fa, err := os.Lstat(a)
	if err != nil {
		return false
	}
	fb, err := os.Lstat(b)
	if err != nil {
		return false
	}
	return os.SameFile(fa, fb)
}

// compareBlock is the read size used by SameContent.
const compareBlock = 64 * 1024

// SameContent reports whether a and b are both regular files with identical
// bytes. Any read error counts as "different" so callers never act on a
// comparison that could not be completed.
func SameContent(a, b string) bool {
	fa, err := os.Lstat(a)
	if err != nil || !fa.Mode().IsRegular() {
		return false
	}
	fb, err := os.Lstat(b)
	if err != nil || !fb.Mode().IsRegular() {
		return false
	}
	if fa.Size() != fb.Size() {
		return false
	}

	ra, err := os.Open(a)
	if err != nil {
		return false
	}
	defer ra.Close()
	rb, err := os.Open(b)
	if err != nil {
		return false
	}
	defer rb.Close()

	bufA := make([]byte, compareBlock)
	bufB := make([]byte, compareBlock)
	for {
		na, errA := io.ReadFull(ra, bufA)
		nb, errB := io.ReadFull(rb, bufB)
		if na != nb || !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false
		}
		doneA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		doneB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if errA != nil && !doneA || errB != nil && !doneB {
			return false
		}
		if doneA || doneB {
			return doneA && doneB
		}
	}
}
