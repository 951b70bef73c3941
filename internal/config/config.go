// Package config holds runtime configuration: defaults, CLI flag binding,
// optional YAML config file, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// --- Enum types for validated string fields ---

// Duplicates selects what happens to a source file whose content already
// exists under its digest name in the destination directory.
type Duplicates string

const (
	DuplicatesKeep     Duplicates = "keep"     // Leave the source where it is (default).
	DuplicatesDelete   Duplicates = "delete"   // Remove the source.
	DuplicatesPreserve Duplicates = "preserve" // Move the source into PreserveDir.
)

// ParseDuplicates maps a policy name, or its alias "remove" or "move", to a
// Duplicates value. Case is ignored.
func ParseDuplicates(s string) (Duplicates, error) {
	switch strings.ToLower(s) {
	case "keep":
		return DuplicatesKeep, nil
	case "delete", "remove":
		return DuplicatesDelete, nil
	case "preserve", "move":
		return DuplicatesPreserve, nil
	}
	return "", fmt.Errorf("invalid duplicates policy %q (use 'keep', 'delete' or 'preserve')", s)
}

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Default naming parameters.
const (
	DefaultBlakeDigestSize = 16 // bytes; keeps names short on Windows paths.
	DefaultTokenLength     = 16 // characters.
	DefaultMaxAttempts     = 10000
)

// Config holds all runtime settings. It is populated by [DefaultConfig],
// optionally overlaid by a YAML file, and finally by CLI flags.
type Config struct {
	// Paths.
	Input  string `yaml:"input"`
	Output string `yaml:"output"` // Empty: each file stays in its own directory.

	// Naming.
	Hash      string `yaml:"hash"`      // Algorithm name; empty selects blake3.
	Length    int    `yaml:"length"`    // 0 = algorithm default.
	Uppercase bool   `yaml:"uppercase"` // Upper-case digest / uppercase token alphabet.

	// Behavior.
	Recursive   bool       `yaml:"recursive"`
	DryRun      bool       `yaml:"dry_run"`
	Duplicates  Duplicates `yaml:"duplicates"`
	PreserveDir string     `yaml:"preserve_dir"` // Default: <destination>/duplicates.
	KeepGoing   bool       `yaml:"keep_going"`   // Log per-file errors and continue.
	MaxAttempts int        `yaml:"max_attempts"` // Collision retries per file.
	AllowGit    bool       `yaml:"allow_git"`    // Run even inside a git work tree.

	// Display and logging.
	Debug     bool      `yaml:"debug"`
	Silent    bool      `yaml:"silent"`
	Verbose   bool      `yaml:"verbose"` // Absolute paths in output lines.
	ColorMode ColorMode `yaml:"color"`
	LogFile   string    `yaml:"log_file"`
	SaveFile  string    `yaml:"save"` // Structured run log (.json, .yaml).
	CheckOnly bool      `yaml:"-"`

	ConfigFile string `yaml:"-"`
}

// DefaultConfig returns a Config with all defaults. Used as the base before
// the config file and flags apply overrides.
func DefaultConfig() Config {
	return Config{
		Input:       ".",
		Duplicates:  DuplicatesKeep,
		MaxAttempts: DefaultMaxAttempts,
		ColorMode:   ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and flag combinations. It does not touch the
// filesystem; see [Config.ValidatePaths].
func (c *Config) Validate() error {
	switch c.Duplicates {
	case DuplicatesKeep, DuplicatesDelete, DuplicatesPreserve:
		// valid
	default:
		return fmt.Errorf("invalid duplicates policy %q (use 'keep', 'delete' or 'preserve')", c.Duplicates)
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid color mode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if c.Silent && c.Debug {
		return errors.New("--silent and --debug cannot be used together")
	}
	if c.Length < 0 {
		return fmt.Errorf("length must not be negative (got %d)", c.Length)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1 (got %d)", c.MaxAttempts)
	}
	if c.PreserveDir != "" && c.Duplicates != DuplicatesPreserve {
		return errors.New("--preserve-dir requires --duplicates preserve")
	}

	if c.CheckOnly {
		return nil
	}
	if c.Input == "" {
		return errors.New("input path must not be empty")
	}
	// Recursing with a single output folder would flatten every traversed
	// directory into it.
	if c.Recursive && c.Output != "" {
		return errors.New("--recursive and --output cannot be used together")
	}
	return nil
}

// ValidatePaths ensures the preserve folder is not the destination itself,
// which would make a preserved duplicate indistinguishable from a renamed
// file. Both arguments must be absolute, cleaned paths.
func (c *Config) ValidatePaths(destAbs, preserveAbs string) error {
	if preserveAbs == "" {
		return nil
	}
	if filepath.Clean(destAbs) == filepath.Clean(preserveAbs) {
		return errors.New("preserve directory must not be the destination directory")
	}
	return nil
}
