package invindex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestAddChunks_ThenSearchFindsByContent(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.AddChunks(ctx, []SourceChunk{
		{ID: "c1", ItemID: "item-1", ChunkIndex: 0, Heading: "Intro", Content: "the quick brown fox"},
		{ID: "c2", ItemID: "item-1", ChunkIndex: 1, Heading: "Body", Content: "jumps over the lazy dog"},
	}))

	hits, err := idx.SearchChunks(ctx, "fox", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c1", hits[0].ChunkID)
	assert.Equal(t, "item-1", hits[0].ItemID)
	assert.Equal(t, 0, hits[0].ChunkIndex)
}

func TestSearchChunks_HeadingMatchScoresHigherThanContentMatch(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.AddChunks(ctx, []SourceChunk{
		{ID: "c1", ItemID: "item-1", ChunkIndex: 0, Heading: "deployment checklist", Content: "unrelated text"},
		{ID: "c2", ItemID: "item-2", ChunkIndex: 0, Heading: "notes", Content: "deployment mentioned here in passing"},
	}))

	hits, err := idx.SearchChunks(ctx, "deployment", 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "c1", hits[0].ChunkID)
}

func TestRemoveChunksForItem_DropsOnlyThatItemsDocs(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()

	require.NoError(t, idx.AddChunks(ctx, []SourceChunk{
		{ID: "c1", ItemID: "item-1", ChunkIndex: 0, Heading: "", Content: "alpha"},
		{ID: "c2", ItemID: "item-2", ChunkIndex: 0, Heading: "", Content: "alpha"},
	}))

	require.NoError(t, idx.RemoveChunksForItem(ctx, "item-1"))

	hits, err := idx.SearchChunks(ctx, "alpha", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "item-2", hits[0].ItemID)
}

func TestSearchChunks_EmptyQueryReturnsNoHits(t *testing.T) {
	idx := openTestIndex(t)
	hits, err := idx.SearchChunks(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestHasChunkIndex_FalseUntilDocumentsAdded(t *testing.T) {
	idx := openTestIndex(t)
	assert.False(t, idx.HasChunkIndex())

	require.NoError(t, idx.AddChunk(context.Background(), SourceChunk{ID: "c1", ItemID: "item-1", Content: "x"}))
	assert.True(t, idx.HasChunkIndex())
}

func TestRebuildChunkIndex_ReplacesContents(t *testing.T) {
	idx := openTestIndex(t)
	ctx := context.Background()
	require.NoError(t, idx.AddChunk(ctx, SourceChunk{ID: "stale", ItemID: "item-1", Content: "stale content"}))

	require.NoError(t, idx.RebuildChunkIndex(ctx, []SourceChunk{
		{ID: "fresh", ItemID: "item-2", Content: "fresh content"},
	}))

	hits, err := idx.SearchChunks(ctx, "stale", 10)
	require.NoError(t, err)
	assert.Empty(t, hits)

	hits, err = idx.SearchChunks(ctx, "fresh", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "fresh", hits[0].ChunkID)
}
