package vecindex

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/Aman-CERP/kbmcp/internal/invindex"
	"github.com/Aman-CERP/kbmcp/internal/kberrors"
)

// Index is an in-memory, exact TF-IDF cosine-similarity index over chunks.
// Approximate nearest-neighbor search is explicitly out of scope, so this
// does brute-force exact scoring rather than a graph-based ANN structure,
// keeping only an RWMutex-guarded in-memory layout and a Save/Load
// persistence shape with atomic rename.
type Index struct {
	mu sync.RWMutex

	docs  map[string]SourceChunk    // chunk_id -> source
	terms map[string]map[string]int // chunk_id -> term -> raw term frequency

	vocab map[string]float64        // term -> idf weight, recomputed on fit
	vecs  map[string]map[string]float64 // chunk_id -> term -> tf-idf weight
	norms map[string]float64        // chunk_id -> vector L2 norm
}

// New returns an empty index.
func New() *Index {
	return &Index{
		docs:  make(map[string]SourceChunk),
		terms: make(map[string]map[string]int),
		vocab: make(map[string]float64),
		vecs:  make(map[string]map[string]float64),
		norms: make(map[string]float64),
	}
}

// FitChunks replaces the index's entire document set and recomputes TF-IDF
// weights over it.
func (x *Index) FitChunks(chunks []SourceChunk) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.docs = make(map[string]SourceChunk, len(chunks))
	x.terms = make(map[string]map[string]int, len(chunks))
	for _, c := range chunks {
		x.docs[c.ID] = c
		x.terms[c.ID] = termFrequencies(c.Content)
	}
	return x.refitLocked()
}

// UpdateChunksForItem replaces all chunks belonging to itemID with
// newChunks, then refits the whole corpus: TF-IDF weights are corpus-wide,
// so a partial update always requires a full IDF recompute.
func (x *Index) UpdateChunksForItem(itemID string, newChunks []SourceChunk) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.removeItemLocked(itemID)
	for _, c := range newChunks {
		x.docs[c.ID] = c
		x.terms[c.ID] = termFrequencies(c.Content)
	}
	return x.refitLocked()
}

// RemoveChunksForItem drops every chunk belonging to itemID and refits.
func (x *Index) RemoveChunksForItem(itemID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.removeItemLocked(itemID)
	return x.refitLocked()
}

func (x *Index) removeItemLocked(itemID string) {
	for id, c := range x.docs {
		if c.ItemID == itemID {
			delete(x.docs, id)
			delete(x.terms, id)
			delete(x.vecs, id)
			delete(x.norms, id)
		}
	}
}

// refitLocked recomputes idf weights and every document vector. Callers
// must hold x.mu.
func (x *Index) refitLocked() error {
	df := make(map[string]int)
	for _, tf := range x.terms {
		for term := range tf {
			df[term]++
		}
	}

	n := float64(len(x.docs))
	vocab := make(map[string]float64, len(df))
	for term, count := range df {
		// smoothed idf, always positive, never divides by zero
		vocab[term] = math.Log((n+1)/(float64(count)+1)) + 1
	}
	x.vocab = vocab

	vecs := make(map[string]map[string]float64, len(x.docs))
	norms := make(map[string]float64, len(x.docs))
	for id, tf := range x.terms {
		vec := make(map[string]float64, len(tf))
		var sumSq float64
		for term, freq := range tf {
			w := float64(freq) * vocab[term]
			vec[term] = w
			sumSq += w * w
		}
		vecs[id] = vec
		norms[id] = math.Sqrt(sumSq)
	}
	x.vecs = vecs
	x.norms = norms

	return nil
}

// SearchChunks scores query against every indexed document by cosine
// similarity, returning up to topK hits at or above minSimilarity, sorted
// by descending similarity with chunk_id as a stable tiebreaker.
func (x *Index) SearchChunks(query string, topK int, minSimilarity float64) ([]Hit, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if topK <= 0 {
		topK = 10
	}

	qTF := termFrequencies(query)
	if len(qTF) == 0 {
		return nil, nil
	}

	qVec := make(map[string]float64, len(qTF))
	var qSumSq float64
	for term, freq := range qTF {
		idf, ok := x.vocab[term]
		if !ok {
			continue // term never seen in corpus, contributes zero weight
		}
		w := float64(freq) * idf
		qVec[term] = w
		qSumSq += w * w
	}
	qNorm := math.Sqrt(qSumSq)
	if qNorm == 0 {
		return nil, nil
	}

	hits := make([]Hit, 0, len(x.docs))
	for id, vec := range x.vecs {
		docNorm := x.norms[id]
		if docNorm == 0 {
			continue
		}
		var dot float64
		for term, qw := range qVec {
			if dw, ok := vec[term]; ok {
				dot += qw * dw
			}
		}
		sim := dot / (qNorm * docNorm)
		if sim < minSimilarity {
			continue
		}
		c := x.docs[id]
		hits = append(hits, Hit{ChunkID: id, ItemID: c.ItemID, ChunkIndex: c.ChunkIndex, Similarity: sim})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

// Len reports the number of indexed chunks.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.docs)
}

// persistedIndex is the on-disk snapshot format for Save/Load.
type persistedIndex struct {
	Docs  map[string]SourceChunk    `json:"docs"`
	Terms map[string]map[string]int `json:"terms"`
}

// Save atomically writes the index to path via a temp-file-then-rename, so a
// crash mid-write never leaves a corrupt index at the destination path.
func (x *Index) Save(path string) error {
	x.mu.RLock()
	snap := persistedIndex{Docs: x.docs, Terms: x.terms}
	x.mu.RUnlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return kberrors.Wrap(kberrors.ErrCodeVectorFitFailed, fmt.Errorf("marshal vector index: %w", err))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return kberrors.Wrap(kberrors.ErrCodeVectorFitFailed, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return kberrors.Wrap(kberrors.ErrCodeVectorFitFailed, fmt.Errorf("write temp vector index: %w", err))
	}
	if err := os.Rename(tmp, path); err != nil {
		return kberrors.Wrap(kberrors.ErrCodeVectorFitFailed, fmt.Errorf("rename vector index into place: %w", err))
	}
	return nil
}

// Load reads a previously Saved index and refits it, recomputing idf and
// vectors rather than trusting stale weights on disk.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeVectorFitFailed, err)
	}

	var snap persistedIndex
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, kberrors.Wrap(kberrors.ErrCodeVectorFitFailed, fmt.Errorf("vector index snapshot corrupt: %w", err))
	}

	x := New()
	x.docs = snap.Docs
	x.terms = snap.Terms
	if err := x.refitLocked(); err != nil {
		return nil, err
	}
	return x, nil
}

// termFrequencies tokenizes text with the same analyzer the chunk inverted
// index uses, so the two phase-1 searches agree on what counts as a term.
func termFrequencies(text string) map[string]int {
	tf := make(map[string]int)
	for _, tok := range invindex.TokenizeChunk(text) {
		tf[tok]++
	}
	return tf
}
