package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects log lines by level.
type recorder struct{ lines []string }

func (r *recorder) add(level, format string, args ...any) {
	r.lines = append(r.lines, level+" "+fmt.Sprintf(format, args...))
}
func (r *recorder) Info(f string, a ...any)    { r.add("INFO", f, a...) }
func (r *recorder) Success(f string, a ...any) { r.add("SUCCESS", f, a...) }
func (r *recorder) Warn(f string, a ...any)    { r.add("WARN", f, a...) }
func (r *recorder) Error(f string, a ...any)   { r.add("ERROR", f, a...) }

func (r *recorder) joined() string { return strings.Join(r.lines, "\n") }

func withoutGit(t *testing.T) {
	t.Helper()
	orig := lookPath
	lookPath = func(string) (string, error) { return "", errors.New("not found") }
	t.Cleanup(func() { lookPath = orig })
}

func TestIsGitRepo_FallbackWithoutGit(t *testing.T) {
	withoutGit(t)

	repo := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(repo, ".git"), 0o755))
	sub := filepath.Join(repo, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	file := filepath.Join(sub, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	for _, p := range []string{repo, sub, file} {
		ok, err := IsGitRepo(context.Background(), p)
		require.NoError(t, err)
		assert.True(t, ok, "%s is inside the work tree", p)
	}

	ok, err := IsGitRepo(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsGitRepo_WithGit(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	repo := t.TempDir()
	cmd := exec.Command("git", "init", "-q", repo)
	require.NoError(t, cmd.Run())
	file := filepath.Join(repo, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	ok, err := IsGitRepo(context.Background(), repo)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsGitRepo(context.Background(), file)
	require.NoError(t, err)
	assert.True(t, ok, "a file input is checked through its directory")
}

func TestIsGitRepo_MissingPath(t *testing.T) {
	_, err := IsGitRepo(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestRunCheck(t *testing.T) {
	withoutGit(t)
	var log recorder

	assert.True(t, RunCheck(context.Background(), &log))
	out := log.joined()
	assert.Contains(t, out, "WARN git not found")
	assert.Contains(t, out, "SUCCESS md5 works")
	assert.Contains(t, out, "SUCCESS blake3/32 works")
	assert.Contains(t, out, "SUCCESS random/16 works")
	assert.NotContains(t, out, "ERROR")
}
