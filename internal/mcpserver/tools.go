package mcpserver

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Aman-CERP/kbmcp/internal/kbconfig"
	"github.com/Aman-CERP/kbmcp/internal/searchcore"
	"github.com/Aman-CERP/kbmcp/internal/store"
)

func (s *Server) registerTools() {
	s.log.Debug("registering MCP tools")

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_knowledge",
		Description: "Two-phase chunk-aware search over the knowledge base: finds matching chunks first, then aggregates them by item with adjacent context and a relevance score. Results carry no highlights.",
	}, s.searchKnowledgeHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "get_item",
		Description: "Fetch a single item by ID with its full content, categories, tags, and chunks.",
	}, s.getItemHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "ingest_item",
		Description: "Add or update an item: chunks its content, persists it, and updates both search indices.",
	}, s.ingestItemHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "delete_item",
		Description: "Remove an item and its chunks from the store and both search indices.",
	}, s.deleteItemHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "rebuild_index",
		Description: "Rebuild both search indices from the store's current chunks. Use after detected index corruption or bulk external changes.",
	}, s.rebuildIndexHandler)

	s.log.Info("MCP tools registered", slog.Int("count", 5))
}

// --- search_knowledge ---

// SearchKnowledgeInput defines the input schema for the search_knowledge tool.
type SearchKnowledgeInput struct {
	Query              string   `json:"query" jsonschema:"the search query"`
	MaxResults         int      `json:"max_results,omitempty" jsonschema:"maximum number of items to return, default 50"`
	MinRelevance       float64  `json:"min_relevance,omitempty" jsonschema:"minimum relevance score to include a result, default 0.1"`
	IncludeCategories  []string `json:"include_categories,omitempty" jsonschema:"restrict results to these category names"`
	IncludeTags        []string `json:"include_tags,omitempty" jsonschema:"restrict results to these tag names"`
	IncludeSourceTypes []string `json:"include_source_types,omitempty" jsonschema:"restrict results to these source types: document, pdf, code, web"`
	SortBy             string   `json:"sort_by,omitempty" jsonschema:"result ordering: relevance, date, or title (default relevance)"`
	GroupByCategory    bool     `json:"group_by_category,omitempty" jsonschema:"group results by category in the response"`
	IncludeHighlights  bool     `json:"include_highlights,omitempty" jsonschema:"accepted but ignored: no highlighted excerpts are generated"`
}

// SearchKnowledgeOutput defines the output schema for the search_knowledge tool.
type SearchKnowledgeOutput struct {
	Total             int                       `json:"total" jsonschema:"number of results returned, after max_results truncation and content budgeting"`
	Results           []SearchResultOutput      `json:"results" jsonschema:"item-aggregated search results"`
	GroupedByCategory map[string][]SearchResultOutput `json:"grouped_by_category,omitempty" jsonschema:"results grouped by category, present only when group_by_category was set"`
}

// SearchResultOutput is one item-aggregated search hit.
type SearchResultOutput struct {
	ItemID         string              `json:"item_id"`
	Title          string              `json:"title"`
	SourceType     string              `json:"source_type"`
	SourcePath     string              `json:"source_path,omitempty"`
	Categories     []string            `json:"categories,omitempty"`
	Tags           []string            `json:"tags,omitempty"`
	RelevanceScore float64             `json:"relevance_score"`
	MatchedFields  []string            `json:"matched_fields,omitempty"`
	Highlights     []string            `json:"highlights,omitempty"`
	MatchedChunks  []ChunkOutput       `json:"matched_chunks"`
	ContextChunks  []ChunkOutput       `json:"context_chunks,omitempty"`
}

// ChunkOutput is a chunk-level projection within a search result.
type ChunkOutput struct {
	ChunkID    string  `json:"chunk_id"`
	ChunkIndex int     `json:"chunk_index"`
	Heading    string  `json:"heading,omitempty"`
	Content    string  `json:"content"`
	Score      float64 `json:"score"`
}

func (s *Server) searchKnowledgeHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchKnowledgeInput) (
	*mcp.CallToolResult,
	SearchKnowledgeOutput,
	error,
) {
	if input.Query == "" {
		return nil, SearchKnowledgeOutput{}, NewInvalidParamsError("query is required")
	}

	opts := searchcore.Options{
		MaxResults:         input.MaxResults,
		MinRelevance:       input.MinRelevance,
		IncludeCategories:  input.IncludeCategories,
		IncludeTags:        input.IncludeTags,
		IncludeSourceTypes: input.IncludeSourceTypes,
		SortBy:             searchcore.SortBy(input.SortBy),
		GroupByCategory:    input.GroupByCategory,
		IncludeHighlights:  input.IncludeHighlights,
	}

	result, err := s.ctx.Core.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchKnowledgeOutput{}, MapError(err)
	}

	output := SearchKnowledgeOutput{
		Total:   result.Total,
		Results: toResultOutputs(result.Results),
	}
	if result.GroupedByCategory != nil {
		output.GroupedByCategory = make(map[string][]SearchResultOutput, len(result.GroupedByCategory))
		for cat, rs := range result.GroupedByCategory {
			output.GroupedByCategory[cat] = toResultOutputs(rs)
		}
	}

	return nil, output, nil
}

func toResultOutputs(results []searchcore.Result) []SearchResultOutput {
	out := make([]SearchResultOutput, len(results))
	for i, r := range results {
		out[i] = SearchResultOutput{
			ItemID:         r.Item.ID,
			Title:          r.Item.Title,
			SourceType:     r.Item.SourceType,
			SourcePath:     r.Item.SourcePath,
			Categories:     r.Item.Categories,
			Tags:           r.Item.Tags,
			RelevanceScore: r.RelevanceScore,
			MatchedFields:  r.MatchedFields,
			Highlights:     r.Highlights,
			MatchedChunks:  toChunkOutputs(r.MatchedChunks),
			ContextChunks:  toChunkOutputs(r.ContextChunks),
		}
	}
	return out
}

func toChunkOutputs(chunks []searchcore.ChunkView) []ChunkOutput {
	out := make([]ChunkOutput, len(chunks))
	for i, c := range chunks {
		out[i] = ChunkOutput{
			ChunkID:    c.ChunkID,
			ChunkIndex: c.ChunkIndex,
			Heading:    c.Heading,
			Content:    c.Content,
			Score:      c.Score,
		}
	}
	return out
}

// --- get_item ---

// GetItemInput defines the input schema for the get_item tool.
type GetItemInput struct {
	ID string `json:"id" jsonschema:"the item ID to fetch"`
}

// GetItemOutput defines the output schema for the get_item tool.
type GetItemOutput struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	Content    string        `json:"content"`
	SourceType string        `json:"source_type"`
	SourcePath string        `json:"source_path,omitempty"`
	Categories []string      `json:"categories,omitempty"`
	Tags       []string      `json:"tags,omitempty"`
	Chunks     []ChunkOutput `json:"chunks"`
}

func (s *Server) getItemHandler(_ context.Context, _ *mcp.CallToolRequest, input GetItemInput) (
	*mcp.CallToolResult,
	GetItemOutput,
	error,
) {
	if input.ID == "" {
		return nil, GetItemOutput{}, NewInvalidParamsError("id is required")
	}

	item, err := s.ctx.Store.GetItem(input.ID)
	if err != nil {
		return nil, GetItemOutput{}, MapError(err)
	}

	chunks, err := s.ctx.Store.GetChunksForItem(input.ID)
	if err != nil {
		return nil, GetItemOutput{}, MapError(err)
	}

	chunkOutputs := make([]ChunkOutput, len(chunks))
	for i, c := range chunks {
		chunkOutputs[i] = ChunkOutput{ChunkID: c.ID, ChunkIndex: c.ChunkIndex, Heading: c.Heading, Content: c.Content}
	}

	return nil, GetItemOutput{
		ID:         item.ID,
		Title:      item.Title,
		Content:    item.Content,
		SourceType: string(item.SourceType),
		SourcePath: item.SourcePath,
		Categories: item.Categories,
		Tags:       item.Tags,
		Chunks:     chunkOutputs,
	}, nil
}

// --- ingest_item ---

// IngestItemInput defines the input schema for the ingest_item tool.
type IngestItemInput struct {
	ID         string            `json:"id,omitempty" jsonschema:"item ID to update; a new ID is generated if omitted"`
	Title      string            `json:"title" jsonschema:"item title"`
	Content    string            `json:"content" jsonschema:"full item content to chunk and index"`
	SourceType string            `json:"source_type,omitempty" jsonschema:"document, pdf, code, or web (default document)"`
	SourcePath string            `json:"source_path,omitempty" jsonschema:"originating file path or URL"`
	Categories []string          `json:"categories,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// IngestItemOutput defines the output schema for the ingest_item tool.
type IngestItemOutput struct {
	ItemID     string `json:"item_id"`
	ChunkCount int    `json:"chunk_count"`
}

func (s *Server) ingestItemHandler(ctx context.Context, _ *mcp.CallToolRequest, input IngestItemInput) (
	*mcp.CallToolResult,
	IngestItemOutput,
	error,
) {
	if input.Content == "" {
		return nil, IngestItemOutput{}, NewInvalidParamsError("content is required")
	}

	id := input.ID
	if id == "" {
		id = generateItemID()
	}

	sourceType := store.SourceDocument
	if input.SourceType != "" {
		sourceType = store.SourceType(input.SourceType)
	}

	item := &store.Item{
		ID:         id,
		Title:      input.Title,
		Content:    input.Content,
		SourceType: sourceType,
		SourcePath: input.SourcePath,
		Metadata:   toMetadataValues(input.Metadata),
	}

	if err := s.ctx.Store.SaveItem(item); err != nil {
		return nil, IngestItemOutput{}, MapError(err)
	}
	if err := s.ctx.Store.SetCategories(id, input.Categories); err != nil {
		return nil, IngestItemOutput{}, MapError(err)
	}
	if err := s.ctx.Store.SetTags(id, input.Tags); err != nil {
		return nil, IngestItemOutput{}, MapError(err)
	}

	chunks := s.ctx.Chunker.Chunk(input.Content, input.Title)
	storeChunks := make([]store.Chunk, len(chunks))
	for i, c := range chunks {
		storeChunks[i] = store.Chunk{
			ID: c.ID, ItemID: id, ChunkIndex: c.ChunkIndex, Content: c.Content,
			Heading: c.Heading, StartPosition: c.StartPosition, EndPosition: c.EndPosition,
		}
	}

	s.ctx.Core.OnItemUpserted(ctx, item, storeChunks)

	return nil, IngestItemOutput{ItemID: id, ChunkCount: len(storeChunks)}, nil
}

func toMetadataValues(m map[string]string) map[string]kbconfig.Value {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]kbconfig.Value, len(m))
	for k, v := range m {
		out[k] = kbconfig.StringValue(v)
	}
	return out
}

func generateItemID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// --- delete_item ---

// DeleteItemInput defines the input schema for the delete_item tool.
type DeleteItemInput struct {
	ID string `json:"id" jsonschema:"the item ID to delete"`
}

// DeleteItemOutput defines the output schema for the delete_item tool.
type DeleteItemOutput struct {
	Deleted bool `json:"deleted"`
}

func (s *Server) deleteItemHandler(ctx context.Context, _ *mcp.CallToolRequest, input DeleteItemInput) (
	*mcp.CallToolResult,
	DeleteItemOutput,
	error,
) {
	if input.ID == "" {
		return nil, DeleteItemOutput{}, NewInvalidParamsError("id is required")
	}

	if err := s.ctx.Store.DeleteItem(input.ID); err != nil {
		return nil, DeleteItemOutput{}, MapError(err)
	}
	s.ctx.Core.OnItemDeleted(ctx, input.ID)

	return nil, DeleteItemOutput{Deleted: true}, nil
}

// --- rebuild_index ---

// RebuildIndexInput defines the (empty) input schema for the rebuild_index tool.
type RebuildIndexInput struct{}

// RebuildIndexOutput defines the output schema for the rebuild_index tool.
type RebuildIndexOutput struct {
	Items  int `json:"items"`
	Chunks int `json:"chunks"`
}

func (s *Server) rebuildIndexHandler(ctx context.Context, _ *mcp.CallToolRequest, _ RebuildIndexInput) (
	*mcp.CallToolResult,
	RebuildIndexOutput,
	error,
) {
	if err := s.ctx.Core.RebuildAll(ctx); err != nil {
		return nil, RebuildIndexOutput{}, MapError(err)
	}

	stats, err := s.ctx.Store.GetStats()
	if err != nil {
		return nil, RebuildIndexOutput{}, MapError(err)
	}

	return nil, RebuildIndexOutput{Items: stats.Items, Chunks: stats.Chunks}, nil
}
