package config

// This file binds Config fields to command-line flags. Flags are grouped into
// naming, behavior, display, and utility. The cobra command in cmd/rname owns
// the FlagSet; --help and --version are handled by cobra.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// BindFlags registers every configuration flag on fs, writing into cfg.
// Defaults shown in help are the current cfg values.
func BindFlags(fs *pflag.FlagSet, cfg *Config) {
	defineNamingFlags(fs, cfg)
	defineBehaviorFlags(fs, cfg)
	defineDisplayFlags(fs, cfg)
	defineUtilityFlags(fs, cfg)
}

// defineNamingFlags registers -i/--input, -o/--output, -H/--hash, -l/--length, -u/--uppercase.
func defineNamingFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Input, "input", "i", cfg.Input, "File or directory whose files will be renamed")
	fs.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Directory renamed files are moved into")
	fs.StringVarP(&cfg.Hash, "hash", "H", cfg.Hash,
		"Naming algorithm: md5 | sha1 | sha224 | sha256 | sha384 | sha512 | blake2 | blake3 | random (default blake3)")
	fs.IntVarP(&cfg.Length, "length", "l", cfg.Length,
		"Digest bytes for blake2/blake3, hex characters kept for other hashes, token characters for random")
	fs.BoolVarP(&cfg.Uppercase, "uppercase", "u", cfg.Uppercase, "Use UPPERCASE characters when possible")
}

// defineBehaviorFlags registers recursion, dry-run, duplicate policy and safety switches.
func defineBehaviorFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.BoolVarP(&cfg.Recursive, "recursive", "r", cfg.Recursive, "Recurse into directories (not allowed with --output)")
	fs.BoolVarP(&cfg.DryRun, "dry-run", "d", cfg.DryRun, "Preview only; do not rename, move or delete files")
	fs.Var(&duplicatesValue{&cfg.Duplicates}, "duplicates", "Duplicate handling: keep | delete | preserve")
	fs.StringVar(&cfg.PreserveDir, "preserve-dir", cfg.PreserveDir, "Folder preserved duplicates are moved into (default <destination>/duplicates)")
	fs.BoolVar(&cfg.KeepGoing, "keep-going", cfg.KeepGoing, "Log per-file errors and continue with the next file")
	fs.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "Collision retries per file before giving up")
	fs.BoolVar(&cfg.AllowGit, "allow-git", cfg.AllowGit, "Run even when the input is inside a git work tree")
}

// defineDisplayFlags registers log levels, colors, log file and report file.
func defineDisplayFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Print debug logs")
	fs.BoolVar(&cfg.Silent, "silent", cfg.Silent, "Only print warnings and errors")
	fs.BoolVarP(&cfg.Verbose, "verbose", "V", cfg.Verbose, "Show full paths")
	fs.Var(&colorFlag{p: &cfg.ColorMode, mode: ColorAlways}, "color", "Force colored logs")
	fs.Var(&colorFlag{p: &cfg.ColorMode, mode: ColorNever}, "no-color", "Disable colored logs")
	fs.Lookup("color").NoOptDefVal = "true"
	fs.Lookup("no-color").NoOptDefVal = "true"
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "Append logs to file")
	fs.StringVarP(&cfg.SaveFile, "save", "s", cfg.SaveFile, "Save a structured run log (.json or .yaml)")
}

// defineUtilityFlags registers --config and --check.
func defineUtilityFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.ConfigFile, "config", "c", cfg.ConfigFile, "YAML config file; flags override its values")
	fs.BoolVar(&cfg.CheckOnly, "check", cfg.CheckOnly, "Verify hash algorithms and git availability, then exit")
}

// pflag.Value adapters so enum types can be used with fs.Var.

type duplicatesValue struct{ p *Duplicates }

func (d *duplicatesValue) String() string { return string(*d.p) }
func (d *duplicatesValue) Type() string   { return "policy" }
func (d *duplicatesValue) Set(s string) error {
	v, err := ParseDuplicates(s)
	if err != nil {
		return err
	}
	*d.p = v
	return nil
}

// colorFlag is a boolean switch that sets ColorMode to mode when true.
type colorFlag struct {
	p    *ColorMode
	mode ColorMode
}

func (c *colorFlag) String() string { return fmt.Sprint(*c.p == c.mode) }
func (c *colorFlag) Type() string   { return "bool" }
func (c *colorFlag) Set(s string) error {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		*c.p = c.mode
	case "false", "0", "no":
		if *c.p == c.mode {
			*c.p = ColorAuto
		}
	default:
		return fmt.Errorf("invalid boolean %q", s)
	}
	return nil
}
