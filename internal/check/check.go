// Package check provides the git work tree guard and the --check
// diagnostics (git availability and hash algorithm self-tests).
package check

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/backmassage/rname/internal/naming"
)

// ErrGitNotFound is returned by execGit when git is not on PATH.
var ErrGitNotFound = errors.New("git not found on PATH")

// gitTimeout bounds each git invocation.
const gitTimeout = 5 * time.Second

// Logger is the minimal logging interface needed by RunCheck.
type Logger interface {
	Info(string, ...any)
	Success(string, ...any)
	Warn(string, ...any)
	Error(string, ...any)
}

// lookPath is replaced in tests to simulate a missing git binary.
var lookPath = exec.LookPath

// IsGitRepo reports whether path (a directory, or the directory containing
// a file) is inside a git work tree. It asks git when available and falls
// back to walking up the tree looking for a .git entry.
func IsGitRepo(ctx context.Context, path string) (bool, error) {
	dir, err := filepath.Abs(path)
	if err != nil {
		return false, fmt.Errorf("resolve path %s: %w", path, err)
	}
	if fi, err := os.Stat(dir); err != nil {
		return false, err
	} else if !fi.IsDir() {
		dir = filepath.Dir(dir)
	}

	_, err = execGit(ctx, dir, "rev-parse", "--git-dir")
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrGitNotFound):
		return hasDotGit(dir), nil
	default:
		return false, nil
	}
}

// hasDotGit walks from dir to the filesystem root looking for a .git file
// or directory (worktrees and submodules use a .git file).
func hasDotGit(dir string) bool {
	for {
		if _, err := os.Lstat(filepath.Join(dir, ".git")); err == nil {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return false
		}
		dir = parent
	}
}

// execGit runs git in dir and returns trimmed stdout.
func execGit(ctx context.Context, dir string, args ...string) (string, error) {
	gitPath, err := lookPath("git")
	if err != nil {
		return "", ErrGitNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, gitPath, append([]string{"-C", dir}, args...)...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0", "LC_ALL=C")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(stderr.String()), err)
	}
	return strings.TrimRight(stdout.String(), "\n\r"), nil
}

// vector is a known digest of the empty input.
type vector struct {
	alg    naming.Algorithm
	length int
	want   string
}

var vectors = []vector{
	{naming.MD5, 0, "d41d8cd98f00b204e9800998ecf8427e"},
	{naming.SHA1, 0, "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
	{naming.SHA224, 0, "d14a028c2a3a2bc9476102bb288234c415a2b01f828ea62ac5b3e42f"},
	{naming.SHA256, 0, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
	{naming.SHA384, 0, "38b060a751ac96384cd9327eb1b1e36a21fdb71114be07434c0cc7bf63f6e1da274edebfe76f65fbd51ad2f14898b95b"},
	{naming.SHA512, 0, "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e"},
	{naming.BLAKE2B, 64, "786a02f742015903c6c6fd852552d272912f4740e15847618a86e217f71f5419d25e1031afee585313896444934eb04b903a685b1448b755d56f701afe9be2ce"},
	{naming.BLAKE3, 32, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
}

// RunCheck prints git availability and verifies every hash algorithm against
// a known vector. It returns false if any algorithm produced a wrong digest.
func RunCheck(ctx context.Context, log Logger) bool {
	log.Info("=== System Check ===")
	checkGit(ctx, log)
	ok := checkAlgorithms(log)
	checkRandom(log)
	return ok
}

func checkGit(ctx context.Context, log Logger) {
	if _, err := lookPath("git"); err != nil {
		log.Warn("git not found; repository detection falls back to .git lookup")
		return
	}
	out, err := execGit(ctx, ".", "--version")
	if err != nil {
		log.Warn("git found but --version failed: %v", err)
		return
	}
	log.Success("%s", out)
}

func checkAlgorithms(log Logger) bool {
	ok := true
	for _, v := range vectors {
		h, err := naming.NewContentHash(v.alg, v.length, false)
		if err != nil {
			log.Error("%s: %v", v.alg, err)
			ok = false
			continue
		}
		got, err := h.Sum(strings.NewReader(""))
		switch {
		case err != nil:
			log.Error("%s: %v", v.alg, err)
			ok = false
		case got != v.want:
			log.Error("%s: digest mismatch (got %s)", v.alg, got)
			ok = false
		default:
			log.Success("%s works", h)
		}
	}
	return ok
}

func checkRandom(log Logger) {
	tok, err := naming.NewRandomToken(0, false)
	if err == nil {
		_, err = tok.Name("")
	}
	if err != nil {
		log.Error("random tokens unavailable: %v", err)
		return
	}
	log.Success("%s works", tok)
}
