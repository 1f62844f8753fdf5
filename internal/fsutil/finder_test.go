package fsutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/quantcost/internal/testutil"
)

func TestFindFiles(t *testing.T) {
	// --- Arrange ---
	root := testutil.WriteFiles(t, map[string]string{
		"reports/b.txt":        "b",
		"reports/a.txt":        "a",
		"reports/nested/c.log": "c",
		"reports/notes.md":     "skip",
		"single.out":           "kept as given",
	})
	reports := filepath.Join(root, "reports")
	single := filepath.Join(root, "single.out")

	// --- Act ---
	files, err := FindFiles([]string{reports, single, filepath.Join(reports, "a.txt")}, ".txt", ".log")

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(reports, "a.txt"),
		filepath.Join(reports, "b.txt"),
		filepath.Join(reports, "nested", "c.log"),
		single,
	}, files)
}

func TestFindFiles_MissingPath(t *testing.T) {
	_, err := FindFiles([]string{filepath.Join(t.TempDir(), "missing")}, ".hcl")

	assert.ErrorContains(t, err, "error accessing path")
}

func TestFindFiles_RequiresExtension(t *testing.T) {
	assert.Panics(t, func() { _, _ = FindFiles([]string{"."}) })
}
