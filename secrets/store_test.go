package secrets

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract exercises the behavior every backend must share.
func storeContract(t *testing.T, s Store) {
	t.Helper()

	// Missing key is not an error.
	_, ok, err := s.Get("etradesandbox", "apikey")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Put("etradesandbox", "apikey", "consumer-key"))
	v, ok, err := s.Get("etradesandbox", "apikey")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "consumer-key", v)

	// Overwrite replaces.
	require.NoError(t, s.Put("etradesandbox", "apikey", "rotated"))
	v, _, err = s.Get("etradesandbox", "apikey")
	require.NoError(t, err)
	assert.Equal(t, "rotated", v)

	// Namespaces are isolated.
	require.NoError(t, s.Put("etrade", "apikey", "live-key"))
	v, _, err = s.Get("etradesandbox", "apikey")
	require.NoError(t, err)
	assert.Equal(t, "rotated", v)

	// Delete, then delete again: both succeed.
	require.NoError(t, s.Del("etradesandbox", "apikey"))
	_, ok, err = s.Get("etradesandbox", "apikey")
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, s.Del("etradesandbox", "apikey"))
	require.NoError(t, s.Del("neverexisted", "apikey"))
}

func TestMemstoreContract(t *testing.T) {
	storeContract(t, NewMemstore())
}

func TestMemstoreConcurrentAccess(t *testing.T) {
	s := NewMemstore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Put("ns", "key", "value")
				_, _, _ = s.Get("ns", "key")
				_ = s.Del("ns", "key")
			}
		}()
	}
	wg.Wait()
}

func TestFileContract(t *testing.T) {
	storeContract(t, NewFile(t.TempDir()))
}

func TestFilePersistsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	first := NewFile(dir)
	require.NoError(t, first.Put("etradesandbox", "apikey", "consumer-key"))

	second := NewFile(dir)
	v, ok, err := second.Get("etradesandbox", "apikey")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "consumer-key", v)
}

func TestFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permission bits")
	}

	dir := t.TempDir()
	s := NewFile(dir)
	require.NoError(t, s.Put("etradesandbox", "secret", "hush"))

	info, err := os.Stat(filepath.Join(dir, "secrets.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFileCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")
	s := NewFile(dir)
	require.NoError(t, s.Put("etradesandbox", "apikey", "consumer-key"))

	_, ok, err := s.Get("etradesandbox", "apikey")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileRejectsCorruptData(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "secrets.json"), []byte("not json"), 0o600))

	s := NewFile(dir)
	_, _, err := s.Get("etradesandbox", "apikey")
	assert.Error(t, err)
}
