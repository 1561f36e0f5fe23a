package extract

import "github.com/Aman-CERP/kbmcp/internal/kberrors"

// Registry maps SourceType to the Extractor that handles it.
type Registry struct {
	byType map[SourceType]Extractor
}

// NewRegistry builds a Registry with the text and code extractors
// registered, and a stub that reports not-supported for each stub type
// neither of them claims: pdf (web is handled by the text extractor).
func NewRegistry() *Registry {
	r := &Registry{byType: make(map[SourceType]Extractor)}

	text := NewTextExtractor()
	for _, t := range text.SupportedTypes() {
		r.byType[t] = text
	}

	code := NewCodeExtractor()
	for _, t := range code.SupportedTypes() {
		r.byType[t] = code
	}

	stub := notSupportedExtractor{}
	for _, t := range stub.SupportedTypes() {
		if _, exists := r.byType[t]; !exists {
			r.byType[t] = stub
		}
	}

	return r
}

// Extract dispatches to the registered extractor for sourceType.
func (r *Registry) Extract(sourceType SourceType, content []byte, sourcePath string) (Result, error) {
	ex, ok := r.byType[sourceType]
	if !ok {
		return Result{}, kberrors.New(kberrors.ErrCodeNotSupported, "no extractor registered for source type "+string(sourceType), nil)
	}
	return ex.Extract(content, sourcePath)
}

// notSupportedExtractor lists pdf/web but only answers the types no other
// extractor has claimed (in NewRegistry, pdf): no concrete extraction is
// implemented for them, keeping per-format content
// extraction to a thin capability table rather than real parsing.
type notSupportedExtractor struct{}

func (notSupportedExtractor) Extract([]byte, string) (Result, error) {
	return Result{}, kberrors.New(kberrors.ErrCodeNotSupported, "extraction for this source type is not implemented", nil)
}

func (notSupportedExtractor) SupportedTypes() []SourceType {
	return []SourceType{SourcePDF, SourceWeb}
}
