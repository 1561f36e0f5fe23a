package searchcore

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/kbmcp/internal/invindex"
	"github.com/Aman-CERP/kbmcp/internal/vecindex"
)

// phase1 retrieves chunk-level candidates from both indices concurrently
// via errgroup and merges them by chunk_id using max-normalized weighted
// sum, fusing keyword and TF-IDF chunk scores into one ranked candidate set.
func (c *Core) phase1(ctx context.Context, query string) ([]chunkCandidate, error) {
	var kwHits []invindex.Hit
	var semHits []vecindex.Hit

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hits, err := c.inv.SearchChunks(gctx, query, defaultKeywordLimit)
		if err != nil {
			c.log.Warn("keyword chunk search failed", "error", err)
			return nil // graceful degradation: let semantic search continue
		}
		kwHits = hits
		return nil
	})
	g.Go(func() error {
		if c.vec == nil {
			return nil
		}
		hits, err := c.vec.SearchChunks(query, defaultSemanticTopK, defaultSemanticMinSimilarity)
		if err != nil {
			c.log.Warn("semantic chunk search failed", "error", err)
			return nil
		}
		semHits = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeHits(kwHits, semHits, c.cfg.MergeAlpha), nil
}

// mergeHits combines keyword and semantic hits by chunk_id using
// α·s_kw_norm + (1−α)·s_sem, where s_kw_norm rescales keyword scores to
// [0,1] by the phase's own maximum. A chunk present in only one source
// keeps that source's normalized score times its weight.
func mergeHits(kwHits []invindex.Hit, semHits []vecindex.Hit, alpha float64) []chunkCandidate {
	var kwMax float64
	for _, h := range kwHits {
		if h.Score > kwMax {
			kwMax = h.Score
		}
	}

	merged := make(map[string]*chunkCandidate)
	for _, h := range kwHits {
		norm := 0.0
		if kwMax > 0 {
			norm = h.Score / kwMax
		}
		merged[h.ChunkID] = &chunkCandidate{
			chunkID: h.ChunkID, itemID: h.ItemID, chunkIndex: h.ChunkIndex,
			score: alpha * norm,
		}
	}
	for _, h := range semHits {
		// semantic similarity is already in [0,1] by construction (cosine).
		if existing, ok := merged[h.ChunkID]; ok {
			existing.score += (1 - alpha) * h.Similarity
		} else {
			merged[h.ChunkID] = &chunkCandidate{
				chunkID: h.ChunkID, itemID: h.ItemID, chunkIndex: h.ChunkIndex,
				score: (1 - alpha) * h.Similarity,
			}
		}
	}

	out := make([]chunkCandidate, 0, len(merged))
	for _, cand := range merged {
		out = append(out, *cand)
	}
	return out
}
