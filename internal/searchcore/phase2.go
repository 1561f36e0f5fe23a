package searchcore

import (
	"context"
	"sort"

	"github.com/Aman-CERP/kbmcp/internal/store"
)

const (
	maxMatchedChunksPerItem = 5
	maxContextChunksPerItem = 3
)

// itemIDs pulls byItem's keys into a sorted slice so the order results are
// built in is independent of Go's randomized map iteration, keeping
// equal-relevance ties resolved the same way on every call.
func itemIDs(byItem map[string][]chunkCandidate) []string {
	ids := make([]string, 0, len(byItem))
	for id := range byItem {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// phase2 groups phase-1 chunk candidates by item, caps each item's chunk
// lists, loads adjacent context via the store, and assembles one Result per
// surviving item. Relevance is the maximum combined chunk score in the item.
func (c *Core) phase2(ctx context.Context, query string, candidates []chunkCandidate, opts Options) ([]Result, error) {
	byItem := make(map[string][]chunkCandidate)
	for _, cand := range candidates {
		byItem[cand.itemID] = append(byItem[cand.itemID], cand)
	}

	results := make([]Result, 0, len(byItem))
	for _, itemID := range itemIDs(byItem) {
		chunks := byItem[itemID]
		sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].score > chunks[j].score })
		if len(chunks) > maxMatchedChunksPerItem {
			chunks = chunks[:maxMatchedChunksPerItem]
		}

		item, err := c.store.GetItem(itemID)
		if err != nil {
			c.log.Warn("phase2: item missing for matched chunk", "item_id", itemID, "error", err)
			continue
		}

		matched := make([]ChunkView, 0, len(chunks))
		var relevance float64
		for _, cand := range chunks {
			if cand.score > relevance {
				relevance = cand.score
			}
			sc, err := c.store.GetChunkByID(cand.chunkID)
			if err != nil {
				continue
			}
			matched = append(matched, ChunkView{
				ChunkID: sc.ID, Content: sc.Content, Heading: sc.Heading,
				ChunkIndex: sc.ChunkIndex, StartPosition: sc.StartPosition,
				EndPosition: sc.EndPosition, Score: cand.score,
			})
		}

		contextChunks := c.loadContextChunks(itemID, matched)

		results = append(results, Result{
			Item:           toItemView(item),
			RelevanceScore: relevance,
			MatchedFields:  []string{"content"},
			MatchedChunks:  matched,
			ContextChunks:  contextChunks,
		})
	}

	return results, nil
}

// loadContextChunks fetches up to two adjacent chunks per matched chunk,
// deduplicated across the item, capped at maxContextChunksPerItem.
func (c *Core) loadContextChunks(itemID string, matched []ChunkView) []ChunkView {
	seen := make(map[string]bool, len(matched))
	for _, m := range matched {
		seen[m.ChunkID] = true
	}

	var context []ChunkView
	for _, m := range matched {
		if len(context) >= maxContextChunksPerItem {
			break
		}
		adj, err := c.store.GetAdjacentChunks(itemID, m.ChunkIndex)
		if err != nil {
			continue
		}
		for _, a := range adj {
			if seen[a.ID] {
				continue
			}
			seen[a.ID] = true
			context = append(context, ChunkView{
				ChunkID: a.ID, Content: a.Content, Heading: a.Heading,
				ChunkIndex: a.ChunkIndex, StartPosition: a.StartPosition,
				EndPosition: a.EndPosition,
			})
			if len(context) >= maxContextChunksPerItem {
				break
			}
		}
	}
	return context
}

func toItemView(item *store.Item) ItemView {
	return ItemView{
		ID: item.ID, Title: item.Title, Content: item.Content,
		SourceType: string(item.SourceType), SourcePath: item.SourcePath,
		Categories: item.Categories, Tags: item.Tags,
		CreatedAt: item.CreatedAt, UpdatedAt: item.UpdatedAt,
	}
}
