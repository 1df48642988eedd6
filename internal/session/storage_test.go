package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageRoundTrip(t *testing.T) {
	s := NewMemoryStorage()

	v, err := s.Get(KeyToken)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.Set(KeyToken, "abc"))
	v, err = s.Get(KeyToken)
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	require.NoError(t, s.Delete(KeyToken))
	v, _ = s.Get(KeyToken)
	assert.Empty(t, v)
}

func TestFileStorageRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewFileStorage(path)

	v, err := s.Get(KeyToken)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.Set(KeyToken, "abc"))
	require.NoError(t, s.Set(KeyRole, "Admin"))

	// A fresh instance reads what the first one wrote.
	s2 := NewFileStorage(path)
	v, err = s2.Get(KeyRole)
	require.NoError(t, err)
	assert.Equal(t, "Admin", v)

	require.NoError(t, s2.Delete(KeyToken))
	v, _ = s.Get(KeyToken)
	assert.Empty(t, v)
	v, _ = s.Get(KeyRole)
	assert.Equal(t, "Admin", v)
}

func TestFileStorageCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "session.json")
	s := NewFileStorage(path)
	require.NoError(t, s.Set(KeyToken, "abc"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileStorageCorruptFileReadsAsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	s := NewFileStorage(path)
	v, err := s.Get(KeyToken)
	require.NoError(t, err)
	assert.Empty(t, v)
}
