package mcpserver

import (
	"context"
	"log/slog"
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

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()

	s, err := store.Open(filepath.Join(dir, "kb.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	inv, err := invindex.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { _ = inv.Close() })

	vec := vecindex.New()
	kc := kbcontext.New(kbconfig.New(), s, inv, vec, slog.Default())

	srv, err := NewServer(kc)
	require.NoError(t, err)
	return srv
}

func TestIngestItemHandler_PersistsAndIndexes(t *testing.T) {
	srv := newTestServer(t)

	_, out, err := srv.ingestItemHandler(context.Background(), nil, IngestItemInput{
		Title:      "Deployment Notes",
		Content:    "Our deployment pipeline uses blue-green rollouts with canary analysis across every region.",
		Categories: []string{"ops"},
		Tags:       []string{"deploy"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.ItemID)
	assert.Greater(t, out.ChunkCount, 0)

	item, err := srv.ctx.Store.GetItem(out.ItemID)
	require.NoError(t, err)
	assert.Equal(t, "Deployment Notes", item.Title)
	assert.Contains(t, item.Categories, "ops")
}

func TestIngestItemHandler_RejectsEmptyContent(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.ingestItemHandler(context.Background(), nil, IngestItemInput{Title: "Empty"})
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrCodeInvalidParams, mcpErr.Code)
}

func TestGetItemHandler_ReturnsItemWithChunks(t *testing.T) {
	srv := newTestServer(t)

	_, ingested, err := srv.ingestItemHandler(context.Background(), nil, IngestItemInput{
		Title:   "Recipe",
		Content: "Mix flour, sugar, and butter until smooth, then bake for thirty minutes.",
	})
	require.NoError(t, err)

	_, out, err := srv.getItemHandler(context.Background(), nil, GetItemInput{ID: ingested.ItemID})
	require.NoError(t, err)
	assert.Equal(t, "Recipe", out.Title)
	assert.NotEmpty(t, out.Chunks)
}

func TestGetItemHandler_UnknownIDReturnsMappedError(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.getItemHandler(context.Background(), nil, GetItemInput{ID: "does-not-exist"})
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrCodeItemNotFound, mcpErr.Code)
}

func TestSearchKnowledgeHandler_FindsIngestedItem(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.ingestItemHandler(context.Background(), nil, IngestItemInput{
		Title:   "Deployment Notes",
		Content: "Our deployment pipeline uses blue-green rollouts with canary analysis across every region.",
	})
	require.NoError(t, err)

	_, out, err := srv.searchKnowledgeHandler(context.Background(), nil, SearchKnowledgeInput{Query: "deployment rollout"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Results)
	assert.NotEmpty(t, out.Results[0].MatchedChunks)
}

func TestSearchKnowledgeHandler_RejectsEmptyQuery(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.searchKnowledgeHandler(context.Background(), nil, SearchKnowledgeInput{})
	require.Error(t, err)
}

func TestDeleteItemHandler_RemovesFromIndex(t *testing.T) {
	srv := newTestServer(t)

	_, ingested, err := srv.ingestItemHandler(context.Background(), nil, IngestItemInput{
		Title:   "Deployment Notes",
		Content: "Our deployment pipeline uses blue-green rollouts with canary analysis across every region.",
	})
	require.NoError(t, err)

	_, delOut, err := srv.deleteItemHandler(context.Background(), nil, DeleteItemInput{ID: ingested.ItemID})
	require.NoError(t, err)
	assert.True(t, delOut.Deleted)

	_, searchOut, err := srv.searchKnowledgeHandler(context.Background(), nil, SearchKnowledgeInput{Query: "deployment"})
	require.NoError(t, err)
	assert.Empty(t, searchOut.Results)
}

func TestRebuildIndexHandler_RepopulatesFromStore(t *testing.T) {
	srv := newTestServer(t)

	_, _, err := srv.ingestItemHandler(context.Background(), nil, IngestItemInput{
		Title:   "Deployment Notes",
		Content: "Our deployment pipeline uses blue-green rollouts with canary analysis across every region.",
	})
	require.NoError(t, err)

	_, out, err := srv.rebuildIndexHandler(context.Background(), nil, RebuildIndexInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Items)
	assert.Greater(t, out.Chunks, 0)
}
