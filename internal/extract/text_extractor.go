package extract

import "strings"

// TextExtractor is a passthrough extractor for document and web content:
// the core already receives extracted text, so it only needs to recover a
// reasonable title when the caller didn't supply one.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor { return &TextExtractor{} }

func (t *TextExtractor) SupportedTypes() []SourceType {
	return []SourceType{SourceDocument, SourceWeb}
}

// Extract returns the first non-empty line of content as the title.
func (t *TextExtractor) Extract(content []byte, sourcePath string) (Result, error) {
	text := string(content)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return Result{Title: line}, nil
		}
	}
	return Result{Title: sourcePath}, nil
}
