//go:build !linux && !darwin

package relocate

func renameNoReplace(src, dst string) error {
	return errNoReplaceUnsupported
}
