package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_TextExtractor_UsesFirstNonEmptyLine(t *testing.T) {
	r := NewRegistry()
	result, err := r.Extract(SourceDocument, []byte("\n\n  My Document Title  \nbody text"), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "My Document Title", result.Title)
}

func TestRegistry_Web_UsesTextExtractor(t *testing.T) {
	r := NewRegistry()
	result, err := r.Extract(SourceWeb, []byte("Hello Page"), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, "Hello Page", result.Title)
}

func TestRegistry_PDF_ReturnsNotSupported(t *testing.T) {
	r := NewRegistry()
	_, err := r.Extract(SourcePDF, []byte("%PDF-1.4"), "doc.pdf")
	assert.Error(t, err)
}

func TestRegistry_Code_FallsBackToFileNameOnUnknownExtension(t *testing.T) {
	r := NewRegistry()
	result, err := r.Extract(SourceCode, []byte("some content"), "file.unknownlang")
	require.NoError(t, err)
	assert.Equal(t, "file.unknownlang", result.Title)
}

func TestRegistry_Code_RecoversGoPackageTitle(t *testing.T) {
	r := NewRegistry()
	src := "// widget provides the Widget type.\npackage widget\n\nfunc New() *Widget { return nil }\n"
	result, err := r.Extract(SourceCode, []byte(src), "widget.go")
	require.NoError(t, err)
	assert.Contains(t, result.Title, "widget")
}

func TestRegistry_UnregisteredSourceType_ReturnsError(t *testing.T) {
	r := NewRegistry()
	_, err := r.Extract(SourceType("video"), []byte("x"), "x.mp4")
	assert.Error(t, err)
}
