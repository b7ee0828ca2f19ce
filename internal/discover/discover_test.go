package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))
}

func TestReports(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "stats.json"))
	writeFile(t, filepath.Join(root, "nested", "child-stats.json"))
	writeFile(t, filepath.Join(root, "nested", "notes.txt"))
	writeFile(t, filepath.Join(root, "node_modules", "pkg", "package.json"))
	writeFile(t, filepath.Join(root, ".cache", "old.json"))

	got, err := Reports([]string{root}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "nested", "child-stats.json"),
		filepath.Join(root, "stats.json"),
	}, got)
}

func TestReports_PatternsAndFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "stats.json"))
	writeFile(t, filepath.Join(root, "other.json"))
	explicit := filepath.Join(root, "explicit.txt")
	writeFile(t, explicit)

	got, err := Reports([]string{root, explicit, explicit}, Options{Patterns: []string{"stats*.json"}})
	require.NoError(t, err)
	assert.Equal(t, []string{explicit, filepath.Join(root, "stats.json")}, got)
}

func TestReports_IncludeHidden(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ".cache", "old.json"))

	got, err := Reports([]string{root}, Options{IncludeHidden: true})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, ".cache", "old.json")}, got)
}

func TestReports_MissingPath(t *testing.T) {
	_, err := Reports([]string{filepath.Join(t.TempDir(), "missing")}, Options{})
	assert.Error(t, err)
}
