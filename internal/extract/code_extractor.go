package extract

import (
	"context"
	"path/filepath"
	"strings"
)

// CodeExtractor recovers a synthetic title for source files: the package
// or module declaration plus the top doc comment, when tree-sitter can
// parse the file; otherwise it falls back to the file's base name. It
// never chunks — chunking stays the generic three-tier algorithm in
// internal/chunk.
type CodeExtractor struct {
	parser   *Parser
	registry *LanguageRegistry
}

func NewCodeExtractor() *CodeExtractor {
	registry := DefaultRegistry()
	return &CodeExtractor{
		parser:   NewParser(registry),
		registry: registry,
	}
}

func (c *CodeExtractor) SupportedTypes() []SourceType {
	return []SourceType{SourceCode}
}

func (c *CodeExtractor) Extract(content []byte, sourcePath string) (Result, error) {
	ext := filepath.Ext(sourcePath)
	lang, ok := c.registry.GetByExtension(ext)
	if !ok {
		return Result{Title: filepath.Base(sourcePath)}, nil
	}

	tree, err := c.parser.Parse(context.Background(), content, lang.Name)
	if err != nil || tree == nil || tree.Root == nil {
		return Result{Title: filepath.Base(sourcePath)}, nil
	}

	title := packageTitle(tree, content)
	if title == "" {
		title = filepath.Base(sourcePath)
	}

	return Result{Title: title, Symbols: topLevelSymbols(tree, lang, content)}, nil
}

// packageTitle builds "<package name>: <leading doc comment>" from the
// file's package/module declaration and an immediately preceding comment.
func packageTitle(tree *Tree, source []byte) string {
	var pkgName string
	var doc string

	tree.Root.Walk(func(n *Node) bool {
		switch n.Type {
		case "package_clause", "package_identifier":
			if pkgName == "" {
				text := strings.TrimSpace(n.GetContent(source))
				text = strings.TrimPrefix(text, "package")
				pkgName = strings.TrimSpace(text)
			}
		case "comment":
			if pkgName == "" && doc == "" {
				doc = strings.TrimSpace(strings.TrimPrefix(n.GetContent(source), "//"))
			}
		}
		return pkgName == "" || doc == ""
	})

	switch {
	case pkgName != "" && doc != "":
		return pkgName + ": " + doc
	case pkgName != "":
		return pkgName
	default:
		return doc
	}
}

// topLevelSymbols recovers function/method/type declarations at the root
// level, supplemental metadata the core never requires for chunking.
func topLevelSymbols(tree *Tree, lang *LanguageConfig, source []byte) []Symbol {
	var symbols []Symbol
	types := map[string]string{}
	for _, t := range lang.FunctionTypes {
		types[t] = "function"
	}
	for _, t := range lang.MethodTypes {
		types[t] = "method"
	}
	for _, t := range lang.TypeDefTypes {
		types[t] = "type"
	}

	for _, child := range tree.Root.Children {
		kind, ok := types[child.Type]
		if !ok {
			continue
		}
		name := symbolName(child, lang.NameField, source)
		symbols = append(symbols, Symbol{
			Name:      name,
			Type:      kind,
			StartLine: int(child.StartPoint.Row) + 1,
			EndLine:   int(child.EndPoint.Row) + 1,
		})
	}
	return symbols
}

func symbolName(n *Node, nameField string, source []byte) string {
	for _, child := range n.Children {
		if strings.Contains(child.Type, "identifier") {
			return child.GetContent(source)
		}
	}
	return ""
}
