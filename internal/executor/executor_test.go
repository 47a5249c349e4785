package executor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/sortsense/internal/common"
	"github.com/Veraticus/sortsense/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRecorder struct {
	err     error
	entries []model.TransactionEntry
}

func (m *memoryRecorder) Append(e model.TransactionEntry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, e)
	return nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestMove_CollisionNaming(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "dest", "work")
	writeFile(t, filepath.Join(dest, "report.pdf"), "existing")

	rec := &memoryRecorder{}
	ex := New(rec, "ss-test")

	for i, want := range []string{"report_1.pdf", "report_2.pdf"} {
		src := filepath.Join(root, "src", "batch", string(rune('a'+i)), "report.pdf")
		writeFile(t, src, "new")

		got, err := ex.Move(src, dest, "work")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dest, want), got)
		assert.NoFileExists(t, src)
		assert.FileExists(t, got)
	}

	content, err := os.ReadFile(filepath.Join(dest, "report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "existing", string(content), "existing files are never overwritten")

	require.Len(t, rec.entries, 2)
	assert.Equal(t, "ss-test", rec.entries[0].SessionID)
	assert.Equal(t, model.CategoryID("work"), rec.entries[0].Category)
	assert.Equal(t, filepath.Join(dest, "report_1.pdf"), rec.entries[0].Destination)
	assert.False(t, rec.entries[0].Timestamp.IsZero())
}

func TestMove_Directory(t *testing.T) {
	root := t.TempDir()
	dest := filepath.Join(root, "dest", "photos")
	require.NoError(t, os.MkdirAll(filepath.Join(dest, "Trip"), 0o755))

	src := filepath.Join(root, "src", "Trip")
	writeFile(t, filepath.Join(src, "a.jpg"), "a")
	writeFile(t, filepath.Join(src, "nested", "b.jpg"), "b")

	ex := New(&memoryRecorder{}, "ss-test")
	got, err := ex.Move(src, dest, "photos")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "Trip_1"), got)
	assert.FileExists(t, filepath.Join(got, "nested", "b.jpg"))
	assert.NoDirExists(t, src)
}

func TestMove_Errors(t *testing.T) {
	root := t.TempDir()

	ex := New(&memoryRecorder{}, "s")
	_, err := ex.Move(filepath.Join(root, "missing.txt"), filepath.Join(root, "dest"), "work")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMove)

	src := filepath.Join(root, "src", "a.txt")
	writeFile(t, src, "a")
	failing := New(&memoryRecorder{err: errors.New("disk full")}, "s")
	_, err = failing.Move(src, filepath.Join(root, "dest"), "work")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrMove)
	assert.FileExists(t, src, "unrecorded moves are rolled back")
}

func TestFreeName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes"), "")
	writeFile(t, filepath.Join(dir, "archive.tar.gz"), "")

	got, err := FreeName(dir, "notes", true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "notes_1"), got)

	got, err = FreeName(dir, "archive.tar.gz", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "archive.tar_1.gz"), got)

	got, err = FreeName(dir, "fresh.txt", false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "fresh.txt"), got)
}

func TestRelocate_RefusesExistingTarget(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a"), "a")
	writeFile(t, filepath.Join(dir, "b"), "b")

	err := Relocate(filepath.Join(dir, "a"), filepath.Join(dir, "b"))
	assert.ErrorIs(t, err, os.ErrExist)
}

func TestCopyTree(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src")
	writeFile(t, filepath.Join(src, "one.txt"), "1")
	writeFile(t, filepath.Join(src, "deep", "two.txt"), "22")
	require.NoError(t, os.Symlink("one.txt", filepath.Join(src, "link")))

	dst := filepath.Join(root, "dst")
	require.NoError(t, copyTree(src, dst))

	data, err := os.ReadFile(filepath.Join(dst, "deep", "two.txt"))
	require.NoError(t, err)
	assert.Equal(t, "22", string(data))

	link, err := os.Readlink(filepath.Join(dst, "link"))
	require.NoError(t, err)
	assert.Equal(t, "one.txt", link)
}
