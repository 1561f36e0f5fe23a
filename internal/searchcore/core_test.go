package searchcore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/kbmcp/internal/chunk"
	"github.com/Aman-CERP/kbmcp/internal/invindex"
	"github.com/Aman-CERP/kbmcp/internal/store"
	"github.com/Aman-CERP/kbmcp/internal/vecindex"
)

func newTestCore(t *testing.T) *Core {
	t.Helper()
	dir := t.TempDir()

	s, err := store.Open(filepath.Join(dir, "kb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	inv, err := invindex.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = inv.Close() })

	vec := vecindex.New()
	chunker := chunk.New(chunk.DefaultOptions())

	return New(s, inv, vec, chunker)
}

func seedItem(t *testing.T, c *Core, id, title, content string) {
	t.Helper()
	item := &store.Item{ID: id, Title: title, Content: content, SourceType: store.SourceDocument}
	require.NoError(t, c.store.SaveItem(item))

	chunks := c.chunker.Chunk(content, title)
	storeChunks := make([]store.Chunk, len(chunks))
	for i, ch := range chunks {
		storeChunks[i] = store.Chunk{
			ID: ch.ID, ItemID: id, ChunkIndex: ch.ChunkIndex, Content: ch.Content,
			Heading: ch.Heading, StartPosition: ch.StartPosition, EndPosition: ch.EndPosition,
		}
	}
	c.OnItemUpserted(context.Background(), item, storeChunks)
}

func TestSearch_FindsChunkByKeyword(t *testing.T) {
	c := newTestCore(t)
	seedItem(t, c, "item-1", "Deployment Notes", "Our deployment pipeline uses blue-green rollouts with canary analysis.")
	seedItem(t, c, "item-2", "Recipe", "Mix flour, sugar, and butter until smooth.")

	result, err := c.Search(context.Background(), "deployment rollout", Options{})
	require.NoError(t, err)
	require.NotEmpty(t, result.Results)
	assert.Equal(t, "item-1", result.Results[0].Item.ID)
	assert.NotEmpty(t, result.Results[0].MatchedChunks)
}

func TestSearch_MinRelevanceFiltersOutWeakMatches(t *testing.T) {
	c := newTestCore(t)
	seedItem(t, c, "item-1", "Deployment Notes", "Our deployment pipeline uses blue-green rollouts with canary analysis.")

	result, err := c.Search(context.Background(), "deployment", Options{MinRelevance: 0.99})
	require.NoError(t, err)
	assert.Empty(t, result.Results)
}

func TestSearch_FallsBackToLegacyWhenNoChunkIndex(t *testing.T) {
	c := newTestCore(t)
	item := &store.Item{ID: "item-1", Title: "Plain Item", Content: "contains the word lighthouse somewhere"}
	require.NoError(t, c.store.SaveItem(item))
	// no OnItemUpserted call: chunk index stays empty, HasChunkIndex() is false

	result, err := c.Search(context.Background(), "lighthouse", Options{})
	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, "item-1", result.Results[0].Item.ID)
}

func TestOnItemDeleted_RemovesFromBothIndices(t *testing.T) {
	c := newTestCore(t)
	seedItem(t, c, "item-1", "Deployment Notes", "Our deployment pipeline uses blue-green rollouts with canary analysis.")
	require.NoError(t, c.store.DeleteItem("item-1"))
	c.OnItemDeleted(context.Background(), "item-1")

	result, err := c.Search(context.Background(), "deployment", Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Results)
}

func TestRebuildAll_RepopulatesIndicesFromStore(t *testing.T) {
	c := newTestCore(t)
	seedItem(t, c, "item-1", "Deployment Notes", "Our deployment pipeline uses blue-green rollouts with canary analysis.")

	require.NoError(t, c.RebuildAll(context.Background()))

	result, err := c.Search(context.Background(), "deployment", Options{})
	require.NoError(t, err)
	require.NotEmpty(t, result.Results)
}

func TestSearch_SortByTitleOrdersLexicographically(t *testing.T) {
	c := newTestCore(t)
	seedItem(t, c, "item-1", "Zebra Notes", "deployment notes for zebra team")
	seedItem(t, c, "item-2", "Alpha Notes", "deployment notes for alpha team")

	result, err := c.Search(context.Background(), "deployment", Options{SortBy: SortByTitle})
	require.NoError(t, err)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "Alpha Notes", result.Results[0].Item.Title)
}
