// Package kbcontext holds the single Context value threaded explicitly
// through every entry point, so no dependency is reached through
// package-level state.
package kbcontext

import (
	"log/slog"

	"github.com/Aman-CERP/kbmcp/internal/chunk"
	"github.com/Aman-CERP/kbmcp/internal/invindex"
	"github.com/Aman-CERP/kbmcp/internal/kbconfig"
	"github.com/Aman-CERP/kbmcp/internal/searchcore"
	"github.com/Aman-CERP/kbmcp/internal/store"
	"github.com/Aman-CERP/kbmcp/internal/vecindex"
)

// Context bundles every long-lived dependency a request handler needs:
// configuration, the store, both indices, the search core built over them,
// and a logger. Constructed once in cmd/kbmcpd and passed by value or
// pointer into mcpserver/CLI subcommands.
type Context struct {
	Config  *kbconfig.Config
	Store   *store.Store
	Inv     *invindex.Index
	Vec     *vecindex.Index
	Chunker *chunk.Chunker
	Core    *searchcore.Core
	Logger  *slog.Logger
}

// New wires a Context from an already-open store and indices. Open/Close
// lifecycle is the caller's responsibility (cmd/kbmcpd owns it so it can
// release the writer lock on shutdown).
func New(cfg *kbconfig.Config, s *store.Store, inv *invindex.Index, vec *vecindex.Index, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	chunker := chunk.New(chunk.FromConfig(cfg.Chunking))
	core := searchcore.New(s, inv, vec, chunker,
		searchcore.WithLogger(logger),
		searchcore.WithConfig(cfg.Search),
	)
	return &Context{
		Config:  cfg,
		Store:   s,
		Inv:     inv,
		Vec:     vec,
		Chunker: chunker,
		Core:    core,
		Logger:  logger,
	}
}

// Close releases the store and chunk index; the vector index is in-memory
// only and needs no release.
func (c *Context) Close() error {
	if err := c.Inv.Close(); err != nil {
		return err
	}
	return c.Store.Close()
}
