package relocate

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/rname/internal/apperr"
	"github.com/backmassage/rname/internal/naming"
)

// scripted returns names from a fixed list, repeating the last one.
type scripted struct {
	names []string
	regen bool
	calls int
	err   error
}

func (s *scripted) Name(string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	i := s.calls
	if i >= len(s.names) {
		i = len(s.names) - 1
	}
	s.calls++
	return s.names[i], nil
}

func (s *scripted) Regenerates() bool { return s.regen }
func (s *scripted) String() string    { return "scripted" }

func md5Strategy(t *testing.T) naming.Strategy {
	t.Helper()
	h, err := naming.NewContentHash(naming.MD5, 0, false)
	require.NoError(t, err)
	return h
}

const helloMD5 = "5d41402abc4b2a76b9719d911017c592" // md5("hello")

func TestRelocate_MovesToDigestName(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "Greeting.TXT", "hello")

	r := New(md5Strategy(t), Options{})
	out, err := r.Relocate(Request{Source: src, DestDir: dir})
	require.NoError(t, err)

	want := filepath.Join(dir, helloMD5+".txt")
	assert.Equal(t, ActionMoved, out.Action)
	assert.Equal(t, want, out.Destination)
	assert.Equal(t, helloMD5, out.Name)
	assert.Equal(t, 1, out.Attempts)
	assert.NoFileExists(t, src)
	assert.Equal(t, "hello", readFile(t, want))
}

func TestRelocate_NoExtension(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "README", "hello")

	out, err := New(md5Strategy(t), Options{}).Relocate(Request{Source: src, DestDir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, helloMD5), out.Destination)
}

func TestRelocate_MultipleDots(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "backup.tar.GZ", "hello")

	out, err := New(md5Strategy(t), Options{}).Relocate(Request{Source: src, DestDir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, helloMD5+".gz"), out.Destination)
}

func TestRelocate_Idempotent(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.txt", "hello")
	r := New(md5Strategy(t), Options{})

	first, err := r.Relocate(Request{Source: src, DestDir: dir})
	require.NoError(t, err)
	require.Equal(t, ActionMoved, first.Action)

	second, err := r.Relocate(Request{Source: first.Destination, DestDir: dir})
	require.NoError(t, err)
	assert.Equal(t, ActionAlreadyNamed, second.Action)
	assert.Equal(t, first.Destination, second.Destination)
	assert.NoFileExists(t, filepath.Join(dir, helloMD5+"_1.txt"), "no suffix spiral")
}

func TestRelocate_IdempotentAfterSuffix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x.txt", "occupant")
	src := writeFile(t, dir, "b.txt", "other bytes")
	s := &scripted{names: []string{"x"}}
	r := New(s, Options{})

	first, err := r.Relocate(Request{Source: src, DestDir: dir})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "x_1.txt"), first.Destination)

	second, err := r.Relocate(Request{Source: first.Destination, DestDir: dir})
	require.NoError(t, err)
	assert.Equal(t, ActionAlreadyNamed, second.Action)
	assert.Equal(t, first.Destination, second.Destination)
}

func TestRelocate_TrueDuplicate(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	a := writeFile(t, dir, "a.txt", "hello")
	b := writeFile(t, dir, "b.txt", "hello")
	r := New(md5Strategy(t), Options{})

	oa, err := r.Relocate(Request{Source: a, DestDir: out})
	require.NoError(t, err)
	assert.Equal(t, ActionMoved, oa.Action)

	ob, err := r.Relocate(Request{Source: b, DestDir: out})
	require.NoError(t, err)
	assert.True(t, ob.IsDuplicate())
	assert.Equal(t, oa.Destination, ob.Twin)
	assert.FileExists(t, b, "the relocator never removes duplicates itself")
	assert.NoFileExists(t, filepath.Join(out, helloMD5+"_1.txt"))
}

func TestRelocate_TruncatedCollisionsTerminate(t *testing.T) {
	dir := t.TempDir()
	out := t.TempDir()
	s := &scripted{names: []string{"abcd"}}
	r := New(s, Options{})

	var dests []string
	for i, body := range []string{"one", "two", "three", "four"} {
		src := writeFile(t, dir, string(rune('a'+i))+".bin", body)
		o, err := r.Relocate(Request{Source: src, DestDir: out})
		require.NoError(t, err)
		require.Equal(t, ActionMoved, o.Action)
		dests = append(dests, filepath.Base(o.Destination))
	}
	assert.Equal(t, []string{"abcd.bin", "abcd_1.bin", "abcd_2.bin", "abcd_3.bin"}, dests)
	assert.Equal(t, "three", readFile(t, filepath.Join(out, "abcd_2.bin")))
}

func TestRelocate_DuplicateInSuffixedSlot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "abcd.bin", "first")
	writeFile(t, dir, "abcd_1.bin", "second")
	src := writeFile(t, dir, "new.bin", "second")

	o, err := New(&scripted{names: []string{"abcd"}}, Options{}).Relocate(Request{Source: src, DestDir: dir})
	require.NoError(t, err)
	assert.True(t, o.IsDuplicate())
	assert.Equal(t, filepath.Join(dir, "abcd_1.bin"), o.Twin)
	assert.Equal(t, 2, o.Attempts)
}

func TestRelocate_NoClobber(t *testing.T) {
	dir := t.TempDir()
	existing := writeFile(t, dir, helloMD5+".txt", "unrelated content")
	src := writeFile(t, dir, "a.txt", "hello")

	o, err := New(md5Strategy(t), Options{}).Relocate(Request{Source: src, DestDir: dir})
	require.NoError(t, err)
	assert.Equal(t, ActionMoved, o.Action)
	assert.Equal(t, filepath.Join(dir, helloMD5+"_1.txt"), o.Destination)
	assert.Equal(t, "unrelated content", readFile(t, existing))
}

func TestRelocate_DirectoryOccupant(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, helloMD5+".txt"), 0o755))
	src := writeFile(t, dir, "a.txt", "hello")

	o, err := New(md5Strategy(t), Options{}).Relocate(Request{Source: src, DestDir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, helloMD5+"_1.txt"), o.Destination)
	assert.DirExists(t, filepath.Join(dir, helloMD5+".txt"))
}

func TestRelocate_SymlinkOccupantIsNotDuplicate(t *testing.T) {
	dir := t.TempDir()
	twin := writeFile(t, dir, "twin.txt", "hello")
	require.NoError(t, os.Symlink(twin, filepath.Join(dir, helloMD5+".txt")))
	src := writeFile(t, dir, "a.txt", "hello")

	o, err := New(md5Strategy(t), Options{}).Relocate(Request{Source: src, DestDir: dir})
	require.NoError(t, err)
	assert.Equal(t, ActionMoved, o.Action, "a link is not verified content")
	assert.Equal(t, filepath.Join(dir, helloMD5+"_1.txt"), o.Destination)
}

func TestRelocate_RandomTokenRegenerates(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "TAKEN1.txt", "x")
	writeFile(t, dir, "TAKEN2.txt", "y")
	src := writeFile(t, dir, "a.TXT", "hello")
	s := &scripted{names: []string{"TAKEN1", "TAKEN2", "FREE"}, regen: true}

	o, err := New(s, Options{}).Relocate(Request{Source: src, DestDir: dir})
	require.NoError(t, err)
	assert.Equal(t, ActionMoved, o.Action)
	assert.Equal(t, filepath.Join(dir, "FREE.txt"), o.Destination)
	assert.Equal(t, "FREE", o.Name)
	assert.Equal(t, 3, o.Attempts)
	assert.Equal(t, 3, s.calls, "a fresh token per attempt")
	assert.NoFileExists(t, filepath.Join(dir, "TAKEN1_1.txt"), "tokens are never suffixed")
}

func TestRelocate_RandomTokenDistinctNames(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	tok, err := naming.NewRandomToken(16, true)
	require.NoError(t, err)
	r := New(tok, Options{})

	a, err := r.Relocate(Request{Source: writeFile(t, in, "a.txt", "same"), DestDir: out})
	require.NoError(t, err)
	b, err := r.Relocate(Request{Source: writeFile(t, in, "b.txt", "same"), DestDir: out})
	require.NoError(t, err)

	assert.Equal(t, ActionMoved, a.Action)
	assert.Equal(t, ActionMoved, b.Action, "identical content is not a duplicate for random names")
	assert.NotEqual(t, a.Destination, b.Destination)
}

func TestRelocate_CollisionLimit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "TAKEN.txt", "x")
	src := writeFile(t, dir, "a.txt", "hello")

	o, err := New(&scripted{names: []string{"TAKEN"}, regen: true}, Options{MaxAttempts: 3}).
		Relocate(Request{Source: src, DestDir: dir})
	require.NoError(t, err)
	assert.Equal(t, ActionSkipped, o.Action)
	assert.Equal(t, ReasonCollisionLimit, o.Reason)
	assert.Equal(t, 3, o.Attempts)
	assert.FileExists(t, src)
}

func TestRelocate_ContractViolations(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.txt", "hello")
	r := New(md5Strategy(t), Options{})

	_, err := r.Relocate(Request{Source: dir, DestDir: dir})
	assert.ErrorIs(t, err, ErrNotRegular)
	assert.Equal(t, apperr.Logic, apperr.KindOf(err))

	_, err = r.Relocate(Request{Source: filepath.Join(dir, "missing"), DestDir: dir})
	assert.ErrorIs(t, err, ErrNotRegular)

	_, err = r.Relocate(Request{Source: src, DestDir: filepath.Join(dir, "gone")})
	assert.ErrorIs(t, err, ErrNoDestination)
	assert.Equal(t, apperr.ExitLogic, apperr.ExitCode(err))
	assert.FileExists(t, src)
}

func TestRelocate_NameErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.txt", "hello")
	boom := errors.New("boom")

	_, err := New(&scripted{err: boom}, Options{}).Relocate(Request{Source: src, DestDir: dir})
	assert.ErrorIs(t, err, boom)
}

func TestRelocate_LostRace(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "a.txt", "hello")
	r := New(&scripted{names: []string{"abcd"}}, Options{})

	raced := false
	r.move = func(s, d string) error {
		if !raced {
			raced = true
			// Another process wins the slot between probe and move.
			require.NoError(t, os.WriteFile(d, []byte("intruder"), 0o644))
			return errTaken
		}
		return moveNoClobber(s, d)
	}

	o, err := r.Relocate(Request{Source: src, DestDir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abcd_1.txt"), o.Destination)
	assert.Equal(t, "intruder", readFile(t, filepath.Join(dir, "abcd.txt")))
}

func TestRelocate_DryRunDoesNotMutate(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "hello")
	b := writeFile(t, dir, "b.txt", "hello")
	c := writeFile(t, dir, "c.txt", "world")
	r := New(md5Strategy(t), Options{DryRun: true})
	require.True(t, r.DryRun())

	oa, err := r.Relocate(Request{Source: a, DestDir: dir})
	require.NoError(t, err)
	assert.Equal(t, ActionMoved, oa.Action)
	assert.True(t, oa.DryRun)

	ob, err := r.Relocate(Request{Source: b, DestDir: dir})
	require.NoError(t, err)
	assert.True(t, ob.IsDuplicate(), "the overlay sees the simulated move")
	assert.Equal(t, oa.Destination, ob.Twin)

	oc, err := r.Relocate(Request{Source: c, DestDir: dir})
	require.NoError(t, err)
	assert.Equal(t, ActionMoved, oc.Action)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.FileExists(t, a)
	assert.NoFileExists(t, oa.Destination)
}

func TestRelocate_DryRunSuffixes(t *testing.T) {
	dir := t.TempDir()
	r := New(&scripted{names: []string{"abcd"}}, Options{DryRun: true})

	o1, err := r.Relocate(Request{Source: writeFile(t, dir, "a.bin", "1"), DestDir: dir})
	require.NoError(t, err)
	o2, err := r.Relocate(Request{Source: writeFile(t, dir, "b.bin", "2"), DestDir: dir})
	require.NoError(t, err)
	assert.Equal(t, "abcd.bin", filepath.Base(o1.Destination))
	assert.Equal(t, "abcd_1.bin", filepath.Base(o2.Destination))
}

func TestPreserve(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(t.TempDir(), "duplicates")
	r := New(md5Strategy(t), Options{})

	p1, err := r.Preserve(writeFile(t, dir, "photo.JPG", "1"), keep)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(keep, "photo.JPG"), p1)

	other := t.TempDir()
	p2, err := r.Preserve(writeFile(t, other, "photo.JPG", "2"), keep)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(keep, "photo_1.JPG"), p2)
	assert.Equal(t, "1", readFile(t, p1))
	assert.Equal(t, "2", readFile(t, p2))

	p3, err := r.Preserve(writeFile(t, dir, ".hidden", "3"), keep)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(keep, ".hidden"), p3)
}

func TestPreserve_DryRun(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "duplicates")
	r := New(md5Strategy(t), Options{DryRun: true})

	src := writeFile(t, dir, "a.txt", "1")
	p, err := r.Preserve(src, keep)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(keep, "a.txt"), p)
	assert.NoDirExists(t, keep)
	assert.FileExists(t, src)
}

func TestRemove(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "dup.txt", "x")

	require.NoError(t, New(md5Strategy(t), Options{}).Remove(src))
	assert.NoFileExists(t, src)
}

func TestRemove_NotRegular(t *testing.T) {
	err := New(md5Strategy(t), Options{}).Remove(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotRegular)
	assert.Equal(t, apperr.Logic, apperr.KindOf(err))
}

func TestRemove_DryRunFreesSlot(t *testing.T) {
	for _, dry := range []bool{false, true} {
		name := "real"
		if dry {
			name = "dry-run"
		}
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, dir, "abcd.bin", "x")
			dup := writeFile(t, dir, "abcd_1.bin", "x")
			r := New(&scripted{names: []string{"abcd"}}, Options{DryRun: dry})

			require.NoError(t, r.Remove(dup))
			assert.Equal(t, dry, fileExists(dup), "only a real run deletes")

			out, err := r.Relocate(Request{Source: writeFile(t, dir, "z.bin", "y"), DestDir: dir})
			require.NoError(t, err)
			assert.Equal(t, ActionMoved, out.Action)
			assert.Equal(t, filepath.Join(dir, "abcd_1.bin"), out.Destination, "the removed duplicate's slot is free again")
		})
	}
}

func fileExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}
