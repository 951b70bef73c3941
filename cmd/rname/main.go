// Command rname renames files after a digest of their content (or a random
// token) without ever overwriting existing files.
//
// It parses flags and the optional config file, validates paths, refuses to
// run inside a git work tree unless told to, and either runs the system
// check (--check) or the renaming pipeline.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/backmassage/rname/internal/apperr"
	"github.com/backmassage/rname/internal/check"
	"github.com/backmassage/rname/internal/config"
	"github.com/backmassage/rname/internal/display"
	"github.com/backmassage/rname/internal/logging"
	"github.com/backmassage/rname/internal/pipeline"
	"github.com/backmassage/rname/internal/relocate"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI with args and returns the process exit code.
func run(args []string) int {
	cfg := config.DefaultConfig()
	code := apperr.ExitOK

	cmd := newRootCmd(&cfg, &code)
	cmd.SetArgs(args)

	// Bootstrap errors happen before the logger exists and go straight to
	// stderr.
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rname: %v\n", err)
		return apperr.ExitCode(err)
	}
	return code
}

func newRootCmd(cfg *config.Config, code *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rname",
		Short: "Rename files after their content hash or a random token",
		Long: `rname renames every file in a directory (or a single file) to the hex
digest of its content, keeping the lower-cased extension. Files with
identical content are detected as duplicates and kept, deleted or preserved.
With --hash random each file gets a fresh random token instead.

Existing files are never overwritten.`,
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.NoArgs(cmd, args); err != nil {
				return apperr.Userf("%w (use --input)", err)
			}
			return nil
		},
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.ApplyFile(cmd.Flags(), cfg); err != nil {
				return apperr.Wrap(apperr.User, err)
			}
			cfg.Input = config.NormalizeDirArg(cfg.Input)
			cfg.Output = config.NormalizeDirArg(cfg.Output)
			if err := cfg.Validate(); err != nil {
				return apperr.Wrap(apperr.User, err)
			}

			log, err := logging.NewLogger(cfg)
			if err != nil {
				return apperr.Userf("open log file: %w", err)
			}
			defer log.Close()

			*code = execute(cmd.Context(), cfg, log)
			return nil
		},
	}
	cmd.SetVersionTemplate("rname {{.Version}}\n")
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperr.Userf("%w", err)
	})
	config.BindFlags(cmd.Flags(), cfg)
	return cmd
}

// execute runs with a ready logger; all output goes through log from here on.
func execute(ctx context.Context, cfg *config.Config, log *logging.Logger) int {
	if cfg.Debug || cfg.CheckOnly {
		display.PrintBanner(os.Stdout)
	}

	if cfg.CheckOnly {
		if !check.RunCheck(ctx, log) {
			return apperr.ExitFailures
		}
		return apperr.ExitOK
	}

	if _, err := os.Stat(cfg.Input); err != nil {
		log.Error("Input not found: %s", cfg.Input)
		return apperr.ExitUser
	}
	if cfg.Output != "" && !relocate.IsDir(cfg.Output) {
		log.Error("Output directory not found: %s", cfg.Output)
		return apperr.ExitUser
	}

	if err := gitGuard(ctx, cfg, log); err != nil {
		log.Error("%v", err)
		log.Error("Use --allow-git to run anyway")
		return apperr.ExitCode(err)
	}

	if cfg.DryRun || cfg.Debug {
		logConfig(cfg, log)
	}

	// Cancel on SIGINT/SIGTERM so the pipeline stops between files.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			log.Warn("Received interrupt, stopping after the current file")
			cancel()
		case <-ctx.Done():
		}
	}()

	stats, err := pipeline.Run(ctx, cfg, log)
	if err != nil {
		log.Error("%v", err)
		return apperr.ExitCode(err)
	}
	if stats.Failed > 0 || stats.Interrupted {
		return apperr.ExitFailures
	}
	return apperr.ExitOK
}

// gitGuard refuses inputs inside a git work tree unless --allow-git is set.
// A failed lookup is only a warning.
func gitGuard(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	if cfg.AllowGit {
		return nil
	}
	inRepo, err := check.IsGitRepo(ctx, cfg.Input)
	if err != nil {
		log.Warn("Cannot check for a git repository: %v", err)
	}
	if inRepo {
		return apperr.Softf("%s is inside a git repository; renaming would rewrite tracked files", cfg.Input)
	}
	return nil
}

func logConfig(cfg *config.Config, log *logging.Logger) {
	out := cfg.Output
	if out == "" {
		out = "(each file's own directory)"
	}
	hash := cfg.Hash
	if hash == "" {
		hash = "(default)"
	}
	log.Info("=== rname v%s ===", version)
	log.Info("In:         %s", cfg.Input)
	log.Info("Out:        %s", out)
	log.Info("Hash:       %s (length %d, uppercase %t)", hash, cfg.Length, cfg.Uppercase)
	log.Info("Recursive:  %t", cfg.Recursive)
	log.Info("Duplicates: %s", cfg.Duplicates)
	if cfg.PreserveDir != "" {
		log.Info("Preserve:   %s", cfg.PreserveDir)
	}
	if cfg.SaveFile != "" {
		log.Info("Run log:    %s", cfg.SaveFile)
	}
	if cfg.ConfigFile != "" {
		log.Info("Config:     %s", cfg.ConfigFile)
	}
}
