package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// LoadFile decodes the YAML file at path into cfg. Keys absent from the file
// leave cfg unchanged; unknown keys are rejected so typos are not ignored.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// UnmarshalYAML accepts the same policy names and aliases as --duplicates.
func (d *Duplicates) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	v, err := ParseDuplicates(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ApplyFile merges the config file named by cfg.ConfigFile underneath the
// flags already parsed into fs: the file overrides defaults, and every flag
// the user set explicitly overrides the file. It is a no-op without a
// config file.
func ApplyFile(fs *pflag.FlagSet, cfg *Config) error {
	if cfg.ConfigFile == "" {
		return nil
	}
	merged := DefaultConfig()
	if err := LoadFile(cfg.ConfigFile, &merged); err != nil {
		return err
	}

	replay := pflag.NewFlagSet("replay", pflag.ContinueOnError)
	BindFlags(replay, &merged)

	var replayErr error
	fs.Visit(func(f *pflag.Flag) {
		if replayErr != nil || replay.Lookup(f.Name) == nil {
			return
		}
		if err := replay.Set(f.Name, f.Value.String()); err != nil {
			replayErr = fmt.Errorf("flag --%s: %w", f.Name, err)
		}
	})
	if replayErr != nil {
		return replayErr
	}

	merged.ConfigFile = cfg.ConfigFile
	merged.CheckOnly = cfg.CheckOnly
	*cfg = merged
	return nil
}
