package invindex

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/blevesearch/bleve/v2"

	"github.com/Aman-CERP/kbmcp/internal/kberrors"
)

// chunkDocument is the Bleve document shape: heading/content analyzed,
// item_id a stored keyword term, chunk_index stored-only, so a hit can be
// reassembled without a store round trip. chunk_id is the Bleve document
// ID, not a field.
type chunkDocument struct {
	ItemID     string `json:"item_id"`
	ChunkIndex int    `json:"chunk_index"`
	Heading    string `json:"heading"`
	Content    string `json:"content"`
}

// SourceChunk is the subset of store.Chunk this package needs to index.
type SourceChunk struct {
	ID         string
	ItemID     string
	ChunkIndex int
	Heading    string
	Content    string
}

// Hit is one scored match from searchChunks.
type Hit struct {
	ChunkID    string
	ItemID     string
	ChunkIndex int
	Score      float64
}

// AddChunk upserts a single chunk document.
func (x *Index) AddChunk(ctx context.Context, c SourceChunk) error {
	return x.AddChunks(ctx, []SourceChunk{c})
}

// AddChunks upserts many chunk documents in one batch.
func (x *Index) AddChunks(ctx context.Context, chunks []SourceChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return kberrors.New(kberrors.ErrCodeIndexUnavailable, "chunk index is closed", nil)
	}

	batch := x.index.NewBatch()
	for _, c := range chunks {
		doc := chunkDocument{ItemID: c.ItemID, ChunkIndex: c.ChunkIndex, Heading: c.Heading, Content: c.Content}
		if err := batch.Index(c.ID, doc); err != nil {
			return kberrors.Wrap(kberrors.ErrCodeIndexUnavailable, fmt.Errorf("index chunk %s: %w", c.ID, err))
		}
	}
	if err := x.index.Batch(batch); err != nil {
		return kberrors.Wrap(kberrors.ErrCodeIndexUnavailable, fmt.Errorf("execute batch: %w", err))
	}
	return nil
}

// RemoveChunksForItem deletes every indexed chunk belonging to itemID.
// Chunk IDs aren't tracked separately here, so this queries the index for
// the item's own documents first, then deletes that batch.
func (x *Index) RemoveChunksForItem(ctx context.Context, itemID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.closed {
		return kberrors.New(kberrors.ErrCodeIndexUnavailable, "chunk index is closed", nil)
	}

	query := bleve.NewTermQuery(itemID)
	query.SetField("item_id")
	req := bleve.NewSearchRequest(query)
	req.Size = 10000

	result, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return kberrors.Wrap(kberrors.ErrCodeIndexUnavailable, fmt.Errorf("find chunks for %s: %w", itemID, err))
	}
	if len(result.Hits) == 0 {
		return nil
	}

	batch := x.index.NewBatch()
	for _, hit := range result.Hits {
		batch.Delete(hit.ID)
	}
	if err := x.index.Batch(batch); err != nil {
		return kberrors.Wrap(kberrors.ErrCodeIndexUnavailable, fmt.Errorf("delete chunks for %s: %w", itemID, err))
	}
	return nil
}

// SearchChunks runs a BM25-scored match query over heading+content, limited
// to `limit` hits, descending by score.
func (x *Index) SearchChunks(ctx context.Context, queryString string, limit int) ([]Hit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.closed {
		return nil, kberrors.New(kberrors.ErrCodeIndexUnavailable, "chunk index is closed", nil)
	}
	if limit <= 0 {
		limit = 50
	}

	trimmed := queryString
	if trimmed == "" {
		return nil, nil
	}

	headingQuery := bleve.NewMatchQuery(trimmed)
	headingQuery.SetField("heading")
	headingQuery.SetBoost(2.0)

	contentQuery := bleve.NewMatchQuery(trimmed)
	contentQuery.SetField("content")

	disjunction := bleve.NewDisjunctionQuery(headingQuery, contentQuery)
	req := bleve.NewSearchRequest(disjunction)
	req.Size = limit
	req.Fields = []string{"item_id", "chunk_index"}

	result, err := x.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeIndexUnavailable, fmt.Errorf("search chunks: %w", err))
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		itemID, _ := h.Fields["item_id"].(string)
		chunkIndex := 0
		switch v := h.Fields["chunk_index"].(type) {
		case float64:
			chunkIndex = int(v)
		case string:
			chunkIndex, _ = strconv.Atoi(v)
		}
		hits = append(hits, Hit{ChunkID: h.ID, ItemID: itemID, ChunkIndex: chunkIndex, Score: h.Score})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return hits, nil
}

// RebuildChunkIndex wipes and recreates the index, then reindexes the
// given chunks from scratch. Used by maintenance tooling after detecting
// drift between the store and this index.
func (x *Index) RebuildChunkIndex(ctx context.Context, chunks []SourceChunk) error {
	x.mu.Lock()
	path := x.path
	if !x.closed {
		_ = x.index.Close()
	}
	x.mu.Unlock()

	if err := os.RemoveAll(path); err != nil {
		return kberrors.Wrap(kberrors.ErrCodeIndexUnavailable, fmt.Errorf("rebuildChunkIndex: clear: %w", err))
	}

	mapping, err := buildIndexMapping()
	if err != nil {
		return kberrors.Wrap(kberrors.ErrCodeIndexUnavailable, err)
	}
	idx, err := bleve.New(path, mapping)
	if err != nil {
		return kberrors.Wrap(kberrors.ErrCodeIndexUnavailable, fmt.Errorf("rebuildChunkIndex: create: %w", err))
	}

	x.mu.Lock()
	x.index = idx
	x.closed = false
	x.mu.Unlock()

	return x.AddChunks(ctx, chunks)
}

// HasChunkIndex reports whether a usable chunk index is present: the
// directory exists, is readable, and contains at least one document. Used
// by the search orchestrator to decide between chunk-aware and legacy
// item-level search.
func (x *Index) HasChunkIndex() bool {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.closed {
		return false
	}
	if _, err := os.Stat(x.path); err != nil {
		return false
	}
	count, err := x.index.DocCount()
	if err != nil {
		return false
	}
	return count > 0
}
