package searchcore

import (
	"context"
	"sort"
	"strings"

	"github.com/Aman-CERP/kbmcp/internal/invindex"
	"github.com/Aman-CERP/kbmcp/internal/store"
	"github.com/Aman-CERP/kbmcp/internal/vecindex"
)

// legacySearch runs when the chunk index is unavailable or phase 1 found
// nothing: a plain substring scan over every item's title/content. The scan
// stands in for a legacy item-level index unconditionally; no legacy index
// directory is opened or probed.
//
// Before giving up chunk-aware results entirely, each candidate item is
// offered to the late-chunking path so a query against a never-chunked
// item still returns matched_chunks when possible.
func (c *Core) legacySearch(ctx context.Context, query string, opts Options) (QueryResult, error) {
	items, err := c.store.GetAllItemsEager()
	if err != nil {
		return QueryResult{}, err
	}

	tokens := queryTokens(query)
	var results []Result
	for _, item := range items {
		if !matchesAny(item.Title, item.Content, tokens) {
			continue
		}

		view := toItemView(item)
		result := Result{
			Item:           view,
			RelevanceScore: relevanceFor(item.Title, item.Content, tokens),
			MatchedFields:  matchedFields(item.Title, item.Content, tokens),
		}

		if len(item.Content) > LateChunkThreshold {
			result.MatchedChunks = c.lateChunk(ctx, item, tokens)
		}

		results = append(results, result)
	}

	return c.finalize(query, results, opts), nil
}

// lateChunk implements §4.5.4: chunk the item on demand, persist the
// result, update both indices, then pick chunks whose content contains a
// query token. If chunking itself fails, fall back to snippet extraction.
func (c *Core) lateChunk(ctx context.Context, item *store.Item, tokens []string) []ChunkView {
	chunks := c.chunker.Chunk(item.Content, item.Title)
	if len(chunks) == 0 {
		return c.snippetExtract(item.Content, tokens)
	}

	storeChunks := make([]store.Chunk, len(chunks))
	for i, ch := range chunks {
		storeChunks[i] = store.Chunk{
			ID: ch.ID, ItemID: item.ID, ChunkIndex: ch.ChunkIndex, Content: ch.Content,
			Heading: ch.Heading, StartPosition: ch.StartPosition, EndPosition: ch.EndPosition,
		}
	}
	if err := c.store.SaveChunks(item.ID, storeChunks); err != nil {
		c.log.Warn("late chunking: save chunks failed", "item_id", item.ID, "error", err)
	} else {
		if err := c.inv.AddChunks(ctx, toInvChunks(storeChunks)); err != nil {
			c.log.Warn("late chunking: inverted index update failed", "item_id", item.ID, "error", err)
		}
		if c.vec != nil {
			if err := c.vec.UpdateChunksForItem(item.ID, toVecChunks(storeChunks)); err != nil {
				c.log.Warn("late chunking: vector index update failed", "item_id", item.ID, "error", err)
			}
		}
	}

	var matched []ChunkView
	for _, sc := range storeChunks {
		if containsAnyToken(sc.Content, tokens) {
			matched = append(matched, ChunkView{
				ChunkID: sc.ID, Content: sc.Content, Heading: sc.Heading,
				ChunkIndex: sc.ChunkIndex, StartPosition: sc.StartPosition, EndPosition: sc.EndPosition,
			})
			if len(matched) >= MaxMatchedChunks {
				break
			}
		}
	}
	if len(matched) == 0 {
		return c.snippetExtract(item.Content, tokens)
	}
	return matched
}

// snippetExtract builds synthetic, fabricated chunks (chunk_index = -1)
// around each query token's first occurrence, deduplicating overlapping
// windows, as the last-resort fallback when chunking itself fails.
func (c *Core) snippetExtract(content string, tokens []string) []ChunkView {
	type window struct{ start, end int }
	var windows []window

	lower := strings.ToLower(content)
	for _, tok := range tokens {
		idx := strings.Index(lower, tok)
		if idx == -1 {
			continue
		}
		start := idx - SnippetRadius
		if start < 0 {
			start = 0
		}
		end := idx + len(tok) + SnippetRadius
		if end > len(content) {
			end = len(content)
		}
		windows = append(windows, window{start, end})
	}

	// merge overlapping windows, in content order: tokens can occur in any
	// order, so sort by start first
	sort.Slice(windows, func(i, j int) bool { return windows[i].start < windows[j].start })
	var merged []window
	for _, w := range windows {
		if len(merged) > 0 && w.start <= merged[len(merged)-1].end {
			if w.end > merged[len(merged)-1].end {
				merged[len(merged)-1].end = w.end
			}
			continue
		}
		merged = append(merged, w)
	}

	var out []ChunkView
	for _, w := range merged {
		if len(out) >= MaxMatchedChunks {
			break
		}
		out = append(out, ChunkView{
			ChunkID: "", Content: content[w.start:w.end], ChunkIndex: -1,
			StartPosition: w.start, EndPosition: w.end,
		})
	}
	return out
}

func toInvChunks(chunks []store.Chunk) []invindex.SourceChunk {
	out := make([]invindex.SourceChunk, len(chunks))
	for i, ch := range chunks {
		out[i] = invindex.SourceChunk{ID: ch.ID, ItemID: ch.ItemID, ChunkIndex: ch.ChunkIndex, Heading: ch.Heading, Content: ch.Content}
	}
	return out
}

func toVecChunks(chunks []store.Chunk) []vecindex.SourceChunk {
	out := make([]vecindex.SourceChunk, len(chunks))
	for i, ch := range chunks {
		out[i] = vecindex.SourceChunk{ID: ch.ID, ItemID: ch.ItemID, ChunkIndex: ch.ChunkIndex, Content: ch.Content}
	}
	return out
}

func queryTokens(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	return fields
}

func matchesAny(title, content string, tokens []string) bool {
	return containsAnyToken(title, tokens) || containsAnyToken(content, tokens)
}

func containsAnyToken(text string, tokens []string) bool {
	lower := strings.ToLower(text)
	for _, t := range tokens {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}

func relevanceFor(title, content string, tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	var hits int
	lowerTitle, lowerContent := strings.ToLower(title), strings.ToLower(content)
	for _, t := range tokens {
		if strings.Contains(lowerTitle, t) {
			hits++
		}
		if strings.Contains(lowerContent, t) {
			hits++
		}
	}
	return float64(hits) / float64(2*len(tokens))
}

func matchedFields(title, content string, tokens []string) []string {
	var fields []string
	if containsAnyToken(title, tokens) {
		fields = append(fields, "title")
	}
	if containsAnyToken(content, tokens) {
		fields = append(fields, "content")
	}
	return fields
}
