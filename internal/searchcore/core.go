package searchcore

import (
	"context"
	"log/slog"

	"github.com/Aman-CERP/kbmcp/internal/chunk"
	"github.com/Aman-CERP/kbmcp/internal/invindex"
	"github.com/Aman-CERP/kbmcp/internal/kbconfig"
	"github.com/Aman-CERP/kbmcp/internal/store"
	"github.com/Aman-CERP/kbmcp/internal/vecindex"
)

// Core is the search orchestrator: it owns no storage itself, only the
// phase-1/phase-2 algorithm and maintenance hooks over three injected
// dependencies, fusing keyword and TF-IDF chunk scores into item-level
// results.
type Core struct {
	store   *store.Store
	inv     *invindex.Index
	vec     *vecindex.Index
	chunker *chunk.Chunker
	cfg     kbconfig.SearchConfig
	log     *slog.Logger
}

// Option configures a Core at construction time.
type Option func(*Core)

// WithLogger overrides the default logger, slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Core) { c.log = l }
}

// WithConfig overrides the default SearchConfig (kbconfig.New().Search)
// with cfg.
func WithConfig(cfg kbconfig.SearchConfig) Option {
	return func(c *Core) { c.cfg = cfg }
}

// New builds a Core over the given store and indices. chunker is used for
// late (on-demand) chunking during search.
func New(s *store.Store, inv *invindex.Index, vec *vecindex.Index, chunker *chunk.Chunker, opts ...Option) *Core {
	c := &Core{
		store:   s,
		inv:     inv,
		vec:     vec,
		chunker: chunker,
		cfg:     kbconfig.New().Search,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search runs the two-phase chunk-aware search algorithm: phase 1 retrieves
// and fuses chunk candidates, phase 2 aggregates them by item. It falls
// back to legacy item-level search when the chunk index is unavailable or
// returns nothing.
func (c *Core) Search(ctx context.Context, query string, opts Options) (QueryResult, error) {
	opts = opts.withDefaults()

	if c.inv == nil || !c.inv.HasChunkIndex() {
		return c.legacySearch(ctx, query, opts)
	}

	candidates, err := c.phase1(ctx, query)
	if err != nil {
		c.log.Warn("searchcore phase1 failed", slog.String("error", err.Error()))
	}
	if len(candidates) == 0 {
		return c.legacySearch(ctx, query, opts)
	}

	results, err := c.phase2(ctx, query, candidates, opts)
	if err != nil {
		return QueryResult{}, err
	}

	return c.finalize(query, results, opts), nil
}
