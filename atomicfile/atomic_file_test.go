package atomicfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kjk/catalog/assert"
	"github.com/kjk/catalog/require"
)

func fileExists(path string) bool {
	st, err := os.Stat(path)
	return err == nil && st.Mode().IsRegular()
}

func TestWriteReplaces(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "catalog.txt")
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0644))

	f, err := New(dst)
	require.NoError(t, err)
	assert.True(t, fileExists(f.tmpPath))
	n, err := f.WriteString("new content")
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	// destination untouched until Close
	d, _ := os.ReadFile(dst)
	assert.Equal(t, "old", string(d))

	require.NoError(t, f.Close())
	assert.False(t, fileExists(f.tmpPath))
	d, _ = os.ReadFile(dst)
	assert.Equal(t, "new content", string(d))
	// second Close is a no-op
	assert.NoError(t, f.Close())
}

func TestSimulatedError(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "genres.json")
	f, err := New(dst)
	require.NoError(t, err)
	_, err = f.Write([]byte("foo"))
	require.NoError(t, err)

	errSimulated := errors.New("simulated")
	f.err = errSimulated
	assert.Equal(t, errSimulated, f.Close())
	assert.False(t, fileExists(f.tmpPath))
	assert.False(t, fileExists(dst))
	assert.Equal(t, errSimulated, f.Close())
}

func writeWithPanic(f *File) {
	defer f.RemoveIfNotClosed()
	_, _ = f.Write([]byte("foo"))
	panic("simulating a crash")
}

func TestRemoveIfNotClosed(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "catalog.txt")
	f, err := New(dst)
	require.NoError(t, err)
	func() {
		defer func() {
			assert.NotNil(t, recover())
		}()
		writeWithPanic(f)
	}()
	assert.False(t, fileExists(f.tmpPath))
	assert.False(t, fileExists(dst))

	_, err = f.Write([]byte("x"))
	assert.Equal(t, ErrCancelled, err)
	assert.Equal(t, ErrCancelled, f.Close())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "data.bin")
	require.NoError(t, WriteFile(dst, []byte("hello")))
	d, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(d))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// directory must exist
	assert.Error(t, WriteFile(filepath.Join(dir, "missing", "x.txt"), nil))
}
