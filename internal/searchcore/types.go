package searchcore

import "time"

// Result budgeting constants, applied while serializing query results.
const (
	MaxChunkContentSize        = 1500
	MaxMatchedChunks            = 5
	MaxContextChunks            = 3
	MaxResultContentSize        = 30_000
	MaxTotalContentSize         = 100_000
	ContentTruncationThreshold  = 2000
	LateChunkThreshold          = 2000
	SnippetRadius               = 750
	defaultKeywordLimit         = 50
	defaultSemanticTopK         = 50
	defaultSemanticMinSimilarity = 0.05
	mergeAlpha                  = 0.6
)

// SortBy selects the result ordering applied after filtering.
type SortBy string

const (
	SortByRelevance SortBy = "relevance"
	SortByDate      SortBy = "date"
	SortByTitle     SortBy = "title"
)

// Options controls one search call. All fields are optional; zero values
// fall back to the defaults documented per field.
type Options struct {
	MaxResults         int // default 50
	MinRelevance       float64 // default 0.1
	IncludeCategories  []string
	IncludeTags        []string
	IncludeSourceTypes []string
	SortBy             SortBy // default SortByRelevance
	GroupByCategory    bool
	IncludeHighlights  bool
}

func (o Options) withDefaults() Options {
	if o.MaxResults <= 0 {
		o.MaxResults = 50
	}
	if o.MinRelevance <= 0 {
		o.MinRelevance = 0.1
	}
	if o.SortBy == "" {
		o.SortBy = SortByRelevance
	}
	return o
}

// ItemView is the item-level projection returned in a result.
type ItemView struct {
	ID         string
	Title      string
	Content    string
	SourceType string
	SourcePath string
	Categories []string
	Tags       []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ChunkView is the chunk-level projection returned in matched/context lists.
type ChunkView struct {
	ChunkID       string
	Content       string
	Heading       string
	ChunkIndex    int
	StartPosition int
	EndPosition   int
	Score         float64
}

// Result is one item-aggregated search hit.
type Result struct {
	Item           ItemView
	RelevanceScore float64
	MatchedFields  []string
	Highlights     []string
	MatchedChunks  []ChunkView
	ContextChunks  []ChunkView
}

// QueryResult is the top-level response of Search.
type QueryResult struct {
	Query            string
	Total            int
	Results          []Result
	GroupedByCategory map[string][]Result
}

// chunkCandidate is an internal phase-1 working value before item
// aggregation: a chunk plus its merged relevance score.
type chunkCandidate struct {
	chunkID    string
	itemID     string
	chunkIndex int
	heading    string
	content    string
	score      float64
}
