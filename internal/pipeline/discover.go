package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/backmassage/rname/internal/apperr"
	"github.com/backmassage/rname/internal/relocate"
)

// Entry is one file to relocate and the directory it is named into.
type Entry struct {
	Path    string
	DestDir string
}

// Skip is an input left out of the run, with the reason.
type Skip struct {
	Path   string
	Reason string
}

// Discovery is the result of walking the input.
type Discovery struct {
	Files   []Entry
	Skipped []Skip
}

// DiscoverOptions controls the walk. All paths are absolute.
type DiscoverOptions struct {
	Recursive bool
	Output    string   // Empty: each file is named within its own directory.
	Exclude   []string // Files never touched (own binary, log, report).
	SkipDirs  []string // Directories never entered.
	SkipName  string   // Subdirectory name never entered (per-directory preserve folder).
}

// Debugger is the logging subset Discover needs.
type Debugger interface {
	Debug(string, ...any)
}

// Discover walks input and returns regular files in lexicographic order.
// Without Recursive only the top level of a directory input is read.
// Symlinks, devices, sockets and pipes are reported in Skipped.
func Discover(input string, opts DiscoverOptions, log Debugger) (Discovery, error) {
	var d Discovery

	fi, err := os.Lstat(input)
	if err != nil {
		return d, apperr.Userf("input not found: %w", err)
	}
	if !fi.IsDir() {
		if !fi.Mode().IsRegular() {
			d.Skipped = append(d.Skipped, Skip{Path: input, Reason: "not a regular file"})
			return d, nil
		}
		if !excluded(input, opts.Exclude) {
			d.Files = append(d.Files, Entry{Path: input, DestDir: destFor(input, opts.Output)})
		}
		return d, nil
	}

	err = filepath.WalkDir(input, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			if path == input {
				return err
			}
			d.Skipped = append(d.Skipped, Skip{Path: path, Reason: err.Error()})
			if de != nil && de.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if de.IsDir() {
			if path == input {
				return nil
			}
			switch {
			case !opts.Recursive:
				log.Debug("Skipping directory %s", path)
			case opts.SkipName != "" && de.Name() == opts.SkipName,
				slices.Contains(opts.SkipDirs, path):
				log.Debug("Skipping preserve folder %s", path)
			default:
				return nil
			}
			return filepath.SkipDir
		}
		if !de.Type().IsRegular() {
			d.Skipped = append(d.Skipped, Skip{Path: path, Reason: "not a regular file"})
			return nil
		}
		if excluded(path, opts.Exclude) {
			log.Debug("Skipping excluded file %s", path)
			return nil
		}
		d.Files = append(d.Files, Entry{Path: path, DestDir: destFor(path, opts.Output)})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return d, apperr.Userf("cannot read input %s: %w", input, err)
		}
		return d, fmt.Errorf("walk %s: %w", input, err)
	}
	return d, nil
}

func destFor(path, output string) string {
	if output != "" {
		return output
	}
	return filepath.Dir(path)
}

func excluded(path string, exclude []string) bool {
	for _, ex := range exclude {
		if ex != "" && relocate.SameFile(path, ex) {
			return true
		}
	}
	return false
}
