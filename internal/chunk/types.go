// Package chunk splits extracted item content into ordered, heading-aware
// chunks for dual indexing (inverted + vector) at chunk granularity.
package chunk

import "github.com/Aman-CERP/kbmcp/internal/kbconfig"

// Chunk is a retrievable slice of an item's content.
type Chunk struct {
	ID            string // set by the chunker: hex of the first 8 bytes of SHA-256(Content); equal content gives equal IDs
	ItemID        string // owner item; the chunker leaves it empty
	ChunkIndex    int    // 0-based, contiguous within an item
	Content       string
	Heading       string // section/heading text; empty if none
	StartPosition int    // half-open offset into the item's original content
	EndPosition   int
	Metadata      map[string]kbconfig.Value
}

// Options configures the three-tier chunking algorithm. Sizes are in
// characters.
type Options struct {
	MinChunkSize int
	MaxChunkSize int
	OverlapRatio float64
}

// DefaultOptions mirrors the configuration pinned in the chunking contract.
func DefaultOptions() Options {
	return Options{
		MinChunkSize: 100,
		MaxChunkSize: 1500,
		OverlapRatio: 0.2,
	}
}

// FromConfig builds chunker Options from the resolved application config.
func FromConfig(cfg kbconfig.ChunkingConfig) Options {
	return Options{
		MinChunkSize: cfg.MinChunkSize,
		MaxChunkSize: cfg.MaxChunkSize,
		OverlapRatio: cfg.OverlapRatio,
	}
}
