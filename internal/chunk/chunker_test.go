package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_EmptyContentReturnsEmptySequence(t *testing.T) {
	c := New(DefaultOptions())
	assert.Empty(t, c.Chunk("", "Title"))
}

func TestChunk_ShortContentReturnsSingleChunk(t *testing.T) {
	c := New(Options{MinChunkSize: 100, MaxChunkSize: 1500, OverlapRatio: 0.2})
	content := "short note"
	chunks := c.Chunk(content, "My Title")

	require.Len(t, chunks, 1)
	assert.Equal(t, content, chunks[0].Content)
	assert.Equal(t, "My Title", chunks[0].Heading)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 0, chunks[0].StartPosition)
	assert.Equal(t, len(content), chunks[0].EndPosition)
}

func TestChunk_ShortContentWithNoTitleHasEmptyHeading(t *testing.T) {
	c := New(DefaultOptions())
	chunks := c.Chunk("tiny", "")
	require.Len(t, chunks, 1)
	assert.Equal(t, "", chunks[0].Heading)
}

func TestChunk_HeadingSplitProducesPerSectionChunks(t *testing.T) {
	c := New(Options{MinChunkSize: 10, MaxChunkSize: 1500, OverlapRatio: 0.2})
	content := "# Intro\n\n" + strings.Repeat("intro body text. ", 10) +
		"\n\n## Details\n\n" + strings.Repeat("details body text. ", 10)

	chunks := c.Chunk(content, "")
	require.NotEmpty(t, chunks)

	headings := map[string]bool{}
	for _, ch := range chunks {
		headings[ch.Heading] = true
	}
	assert.True(t, headings["Intro"])
	assert.True(t, headings["Details"])
}

func TestChunk_ChunkIndexIsContiguousFromZero(t *testing.T) {
	c := New(Options{MinChunkSize: 10, MaxChunkSize: 50, OverlapRatio: 0.2})
	content := strings.Repeat("paragraph one is fairly long text here.\n\nparagraph two also has some length.\n\n", 10)

	chunks := c.Chunk(content, "")
	require.NotEmpty(t, chunks)
	for i, ch := range chunks {
		assert.Equal(t, i, ch.ChunkIndex)
	}
}

func TestChunk_OversizedParagraphIsSlidingWindowSplit(t *testing.T) {
	c := New(Options{MinChunkSize: 10, MaxChunkSize: 100, OverlapRatio: 0.2})
	content := strings.Repeat("x", 500)

	chunks := c.Chunk(content, "")
	require.Greater(t, len(chunks), 1)
	for _, ch := range chunks {
		assert.LessOrEqual(t, len(ch.Content), 100)
	}
}

func TestChunk_OffsetsArePreservedIntoOriginalContent(t *testing.T) {
	c := New(Options{MinChunkSize: 10, MaxChunkSize: 1500, OverlapRatio: 0.2})
	content := "# Heading\n\nSome body content that is long enough to not be degenerate single chunk output here."

	chunks := c.Chunk(content, "")
	for _, ch := range chunks {
		assert.Equal(t, ch.Content, content[ch.StartPosition:ch.EndPosition])
	}
}

func TestChunk_AdjacentSmallParagraphsAreCoalesced(t *testing.T) {
	c := New(Options{MinChunkSize: 50, MaxChunkSize: 200, OverlapRatio: 0.2})
	content := "a tiny bit.\n\nanother tiny bit.\n\nand a third tiny bit of text here to push size."

	chunks := c.Chunk(content, "")
	for i, ch := range chunks {
		assert.True(t, len(ch.Content) >= 50 || i == len(chunks)-1)
	}
}

func TestChunk_NeverFailsOnPathologicalInput(t *testing.T) {
	c := New(DefaultOptions())
	inputs := []string{
		strings.Repeat("#", 10000),
		"\n\n\n\n\n\n",
		strings.Repeat("<h1>x</h1>", 1000),
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			c.Chunk(in, "t")
		})
	}
}

func TestChunk_IdempotentReparse(t *testing.T) {
	c := New(Options{MinChunkSize: 20, MaxChunkSize: 300, OverlapRatio: 0.2})
	content := "# A\n\nfirst section body text that has enough length to matter here.\n\n# B\n\nsecond section body text also long enough to matter."

	first := c.Chunk(content, "")
	second := c.Chunk(content, "")

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Content, second[i].Content)
	}
}

func TestHeadingText_StripsHTMLTags(t *testing.T) {
	segments := splitHeadings("<h2>Bold <b>Title</b></h2>\n\nbody")
	require.Len(t, segments, 1)
	assert.Equal(t, "Bold Title", segments[0].heading)
}
