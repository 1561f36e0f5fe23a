// Package extract implements the content-extractor capability table: a
// small registry of per-source-type extractors that recover a title (and,
// for code, symbol information) from raw item content. Full per-format
// extraction (PDF parsing, web fetch+readability) is out of core scope —
// this package ships the concrete text and code extractors plus stubs for
// the rest.
package extract

// Tree represents a parsed AST, used only by the code extractor for title
// and symbol derivation — never for chunking.
type Tree struct {
	Root     *Node
	Source   []byte
	Language string
}

// Node represents a node in the AST.
type Node struct {
	Type       string
	StartByte  uint32
	EndByte    uint32
	StartPoint Point
	EndPoint   Point
	Children   []*Node
	HasError   bool
}

// Point represents a position in the source code.
type Point struct {
	Row    uint32
	Column uint32
}

// LanguageConfig names the tree-sitter node types topLevelSymbols treats as
// a function, method, or type declaration for one language. NameField
// records the grammar's identifier field; symbolName does not read it and
// takes the first child whose node type contains "identifier" instead.
type LanguageConfig struct {
	Name       string
	Extensions []string

	FunctionTypes []string
	MethodTypes   []string
	TypeDefTypes  []string
	NameField     string
}

// SourceType identifies the kind of content an item holds, mirroring the
// store's source_type column.
type SourceType string

const (
	SourceDocument SourceType = "document"
	SourcePDF      SourceType = "pdf"
	SourceCode     SourceType = "code"
	SourceWeb      SourceType = "web"
)

// Symbol is a code symbol recovered by the code extractor (supplemental;
// not part of the chunk contract).
type Symbol struct {
	Name      string
	Type      string
	StartLine int
	EndLine   int
	Signature string
}

// Result is what an Extractor recovers from raw content.
type Result struct {
	Title   string
	Symbols []Symbol
}

// Extractor recovers a synthetic title (and, where applicable, symbols)
// from an item's raw content.
type Extractor interface {
	Extract(content []byte, sourcePath string) (Result, error)
	SupportedTypes() []SourceType
}
