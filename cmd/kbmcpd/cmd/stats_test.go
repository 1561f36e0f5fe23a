package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/kbmcp/internal/invindex"
	"github.com/Aman-CERP/kbmcp/internal/kbconfig"
	"github.com/Aman-CERP/kbmcp/internal/kbcontext"
	"github.com/Aman-CERP/kbmcp/internal/store"
	"github.com/Aman-CERP/kbmcp/internal/vecindex"
)

func newTestContext(t *testing.T) *kbcontext.Context {
	t.Helper()
	dir := t.TempDir()

	cfg := kbconfig.New()
	cfg.Storage.Path = filepath.Join(dir, "kb.db")
	cfg.Storage.IndexDir = dir

	s, err := store.Open(cfg.Storage.Path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	inv, err := invindex.Open(cfg.Storage.IndexDir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = inv.Close() })

	return kbcontext.New(cfg, s, inv, vecindex.New(), slog.Default())
}

func TestCollectStats_EmptyKnowledgeBase(t *testing.T) {
	kc := newTestContext(t)

	info, err := collectStats(kc)

	require.NoError(t, err)
	assert.Equal(t, 0, info.TotalItems)
	assert.Equal(t, "empty", info.InvIndexStatus)
	assert.Equal(t, "empty", info.VecIndexStatus)
}

func TestCollectStats_AfterIngest(t *testing.T) {
	kc := newTestContext(t)

	item := &store.Item{ID: "a", Title: "Go Notes", Content: "Go generics let you write reusable type-safe code."}
	require.NoError(t, kc.Store.SaveItem(item))

	chunks := kc.Chunker.Chunk(item.Content, item.Title)
	storeChunks := make([]store.Chunk, len(chunks))
	for i, c := range chunks {
		storeChunks[i] = store.Chunk{ID: c.ID, ItemID: item.ID, ChunkIndex: i, Content: c.Content}
	}
	require.NoError(t, kc.Store.SaveChunks(item.ID, storeChunks))
	kc.Core.OnItemUpserted(t.Context(), item, storeChunks)

	info, err := collectStats(kc)

	require.NoError(t, err)
	assert.Equal(t, 1, info.TotalItems)
	assert.Equal(t, "ready", info.InvIndexStatus)
}

func TestGetFileSize_MissingFileReturnsZero(t *testing.T) {
	assert.Equal(t, int64(0), getFileSize(filepath.Join(t.TempDir(), "nope")))
}

func TestGetDirSize_SumsFileSizes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("abc"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b.txt"), []byte("hello"), 0o644))
	assert.Equal(t, int64(8), getDirSize(dir))
}
