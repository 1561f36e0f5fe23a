// Package mcpserver bridges AI clients (Claude Code, Cursor) to the
// knowledge core over the Model Context Protocol: a thin tool layer with
// no business logic of its own, delegating every call straight into
// searchcore.Core / store.Store through a single injected kbcontext.Context.
package mcpserver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/kbmcp/internal/kbcontext"
	"github.com/Aman-CERP/kbmcp/pkg/version"
)

// Server is the MCP server for kbmcp.
type Server struct {
	mcp *mcp.Server
	ctx *kbcontext.Context
	log *slog.Logger

	mu sync.RWMutex
}

// ToolInfo describes a registered tool, returned by ListTools for CLI
// introspection (`kbmcpd serve --list-tools`).
type ToolInfo struct {
	Name        string
	Description string
}

// NewServer builds the MCP server and registers every tool against kc.
func NewServer(kc *kbcontext.Context) (*Server, error) {
	s := &Server{
		ctx: kc,
		log: kc.Logger,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "kbmcp",
			Version: version.Version,
		},
		nil, // capabilities inferred from registered tools
	)

	s.registerTools()
	return s, nil
}

// MCPServer returns the underlying MCP SDK server, e.g. to run it over a
// stdio transport from cmd/kbmcpd.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return "kbmcp", version.Version
}

// Serve starts the server over the given transport. Only "stdio" is
// currently supported.
func (s *Server) Serve(ctx context.Context, transport string) error {
	s.log.Info("starting MCP server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && err != context.Canceled {
			s.log.Error("MCP server stopped with error", slog.String("error", err.Error()))
			return err
		}
		s.log.Info("MCP server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// ListTools returns the full set of registered tools.
func (s *Server) ListTools() []ToolInfo {
	return []ToolInfo{
		{
			Name:        "search_knowledge",
			Description: "Two-phase chunk-aware search over the knowledge base: finds matching chunks first, then aggregates them by item with adjacent context and a relevance score. Results carry no highlights.",
		},
		{
			Name:        "get_item",
			Description: "Fetch a single item by ID with its full content, categories, tags, and chunks.",
		},
		{
			Name:        "ingest_item",
			Description: "Add or update an item: chunks its content, persists it, and updates both search indices.",
		},
		{
			Name:        "delete_item",
			Description: "Remove an item and its chunks from the store and both search indices.",
		},
		{
			Name:        "rebuild_index",
			Description: "Rebuild both search indices from the store's current chunks. Use after detected index corruption or bulk external changes.",
		},
	}
}
