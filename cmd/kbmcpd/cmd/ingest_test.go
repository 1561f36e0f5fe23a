package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/kbmcp/internal/store"
)

func TestIngestFile_PersistsItemAndChunks(t *testing.T) {
	kc := newTestContext(t)

	path := filepath.Join(t.TempDir(), "notes.md")
	content := "# Heading\n\nSome notes about Go channels and goroutines."
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	n, err := ingestFile(t.Context(), kc, path, store.SourceDocument)

	require.NoError(t, err)
	assert.Greater(t, n, 0)

	stats, err := kc.Store.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Items)
	assert.Equal(t, n, stats.Chunks)
}

func TestIngestFile_MissingFileReturnsError(t *testing.T) {
	kc := newTestContext(t)

	_, err := ingestFile(t.Context(), kc, filepath.Join(t.TempDir(), "missing.md"), store.SourceDocument)

	assert.Error(t, err)
}

func TestGenerateItemID_ProducesDistinctHexIDs(t *testing.T) {
	a := generateItemID()
	b := generateItemID()

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 16)
}

func TestDetectSourceType_CodeVsDocumentVsUnknown(t *testing.T) {
	assert.Equal(t, store.SourceCode, detectSourceType("main.go"))
	assert.Equal(t, store.SourceDocument, detectSourceType("notes.md"))
	assert.Equal(t, store.SourceDocument, detectSourceType("data.bin"))
}

func TestExpandIngestPaths_ExpandsDirectoryRecursively(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.md"), []byte("a"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.go"), []byte("package sub"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "image.png"), []byte("x"), 0o644))

	paths, err := expandIngestPaths([]string{dir}, true)

	require.NoError(t, err)
	var found []string
	for _, p := range paths {
		found = append(found, filepath.Base(p.path))
	}
	assert.Contains(t, found, "a.md")
	assert.Contains(t, found, "b.go")
	assert.NotContains(t, found, "image.png")
}

func TestExpandIngestPaths_SingleFileBypassesScan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(path, []byte("hi"), 0o644))

	paths, err := expandIngestPaths([]string{path}, true)

	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, path, paths[0].path)
	assert.Equal(t, store.SourceDocument, paths[0].sourceType)
}
