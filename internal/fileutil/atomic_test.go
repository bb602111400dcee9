package fileutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteCreatesAndReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".mise.toml")

	require.NoError(t, AtomicWriteString(path, "[tools]\n", 0o644))
	require.NoError(t, AtomicWriteString(path, "[tools]\nnode = \"20\"\n", 0o644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[tools]\nnode = \"20\"\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestReplaceFileKeepsPermissions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o600))

	require.NoError(t, ReplaceFile(path, []byte("b"), 0o644))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestAtomicWriteMissingDirectory(t *testing.T) {
	err := AtomicWriteString(filepath.Join(t.TempDir(), "nope", "x"), "x", 0o644)
	assert.Error(t, err)
}
