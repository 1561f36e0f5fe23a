package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// headingPattern matches ATX-style markdown headings and literal HTML
// heading tags, both of which the contract treats as section boundaries.
var headingPattern = regexp.MustCompile(`(?m)^(?:(#{1,6})\s+(.+)|<h([1-6])[^>]*>(.*?)</h[1-6]>)\s*$`)

// Chunker splits (title, content) into an ordered sequence of chunks with
// ItemID left unset; the store assigns ownership on save.
type Chunker struct {
	opts Options
}

// New creates a Chunker with the given options, filling in zero fields from
// DefaultOptions.
func New(opts Options) *Chunker {
	d := DefaultOptions()
	if opts.MinChunkSize <= 0 {
		opts.MinChunkSize = d.MinChunkSize
	}
	if opts.MaxChunkSize <= 0 {
		opts.MaxChunkSize = d.MaxChunkSize
	}
	if opts.OverlapRatio <= 0 || opts.OverlapRatio >= 1 {
		opts.OverlapRatio = d.OverlapRatio
	}
	return &Chunker{opts: opts}
}

// Chunk splits content into chunks. It never returns an error to the
// caller: any internal failure degrades to the single-chunk fallback.
func (c *Chunker) Chunk(content, title string) []Chunk {
	if content == "" {
		return nil
	}

	defer func() { recover() }() //nolint:errcheck // degenerate fallback below covers true failures

	if len(content) < c.opts.MinChunkSize*2 {
		return []Chunk{singleChunk(content, title)}
	}

	chunks := c.chunkSafely(content, title)
	if len(chunks) == 0 {
		return []Chunk{singleChunk(content, title)}
	}
	return chunks
}

// chunkSafely runs the three-tier algorithm and recovers to a degenerate
// single chunk on any panic, per the "chunking must never fail" contract.
func (c *Chunker) chunkSafely(content, title string) (result []Chunk) {
	defer func() {
		if r := recover(); r != nil {
			result = []Chunk{singleChunk(content, title)}
		}
	}()

	segments := splitHeadings(content)
	var chunks []Chunk
	for _, seg := range segments {
		paras := splitParagraphs(seg, c.opts.MinChunkSize, c.opts.MaxChunkSize)
		for _, p := range paras {
			if len(p.content) > c.opts.MaxChunkSize {
				chunks = append(chunks, slidingWindow(p, c.opts.MaxChunkSize, c.opts.OverlapRatio)...)
			} else {
				chunks = append(chunks, Chunk{
					Content:       p.content,
					Heading:       p.heading,
					StartPosition: p.start,
					EndPosition:   p.start + len(p.content),
				})
			}
		}
	}

	for i := range chunks {
		chunks[i].ChunkIndex = i
		chunks[i].ID = chunkID(chunks[i].StartPosition, chunks[i].Content)
	}
	return chunks
}

func singleChunk(content, title string) Chunk {
	return Chunk{
		ID:            chunkID(0, content),
		ChunkIndex:    0,
		Content:       content,
		Heading:       title,
		StartPosition: 0,
		EndPosition:   len(content),
	}
}

func chunkID(offset int, content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:8])
}

// headingSegment is one heading-delimited section of the original content.
type headingSegment struct {
	heading string
	content string
	start   int // absolute offset into the original content
}

// splitHeadings detects section boundaries at lines beginning with one or
// more '#' markers, or literal HTML heading tags, and produces segments
// carrying each section's absolute start offset.
func splitHeadings(content string) []headingSegment {
	matches := headingPattern.FindAllStringSubmatchIndex(content, -1)
	if len(matches) == 0 {
		return []headingSegment{{heading: "", content: content, start: 0}}
	}

	var segments []headingSegment
	for i, m := range matches {
		heading := headingText(content, m)
		bodyStart := m[1]
		// advance past the trailing newline, if any, so the body doesn't
		// repeat the heading line itself
		if bodyStart < len(content) && content[bodyStart] == '\n' {
			bodyStart++
		}

		var bodyEnd int
		if i+1 < len(matches) {
			bodyEnd = matches[i+1][0]
		} else {
			bodyEnd = len(content)
		}

		// content preceding the very first heading becomes its own
		// heading-less segment.
		if i == 0 && m[0] > 0 {
			segments = append(segments, headingSegment{heading: "", content: content[0:m[0]], start: 0})
		}

		segments = append(segments, headingSegment{
			heading: heading,
			content: content[bodyStart:bodyEnd],
			start:   bodyStart,
		})
	}
	return segments
}

func headingText(content string, m []int) string {
	// m[4]:m[5] is the markdown heading text (group 2); m[8]:m[9] is the
	// HTML heading text (group 4). Exactly one is present per match.
	if m[4] >= 0 && m[5] >= 0 {
		return strings.TrimSpace(content[m[4]:m[5]])
	}
	if len(m) > 9 && m[8] >= 0 && m[9] >= 0 {
		return strings.TrimSpace(stripTags(content[m[8]:m[9]]))
	}
	return ""
}

var tagPattern = regexp.MustCompile(`<[^>]+>`)

func stripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// paragraph is an intermediate unit carrying its absolute offset and
// inherited heading, produced by splitParagraphs and consumed either
// directly or by slidingWindow.
type paragraph struct {
	heading string
	content string
	start   int
}

// splitParagraphs splits a heading segment on double-newline boundaries,
// coalescing adjacent small paragraphs up to minSize while staying under
// maxSize, per the chunker's coalescing allowance.
func splitParagraphs(seg headingSegment, minSize, maxSize int) []paragraph {
	type piece struct {
		text  string
		start int
	}
	var pieces []piece

	rel := 0 // offset within seg.content
	for {
		idx := strings.Index(seg.content[rel:], "\n\n")
		var raw string
		if idx < 0 {
			raw = seg.content[rel:]
		} else {
			raw = seg.content[rel : rel+idx]
		}

		leading := len(raw) - len(strings.TrimLeft(raw, " \t\n"))
		trimmed := strings.TrimSpace(raw)
		if trimmed != "" {
			pieces = append(pieces, piece{text: trimmed, start: seg.start + rel + leading})
		}

		if idx < 0 {
			break
		}
		rel += idx + 2
	}

	if len(pieces) == 0 {
		if strings.TrimSpace(seg.content) == "" {
			return nil
		}
		return []paragraph{{heading: seg.heading, content: strings.TrimSpace(seg.content), start: seg.start}}
	}

	var result []paragraph
	cur := pieces[0]
	for i := 1; i < len(pieces); i++ {
		next := pieces[i]
		combinedLen := len(cur.text) + 2 + len(next.text)
		if len(cur.text) < minSize && combinedLen <= maxSize {
			cur.text = cur.text + "\n\n" + next.text
			continue
		}
		result = append(result, paragraph{heading: seg.heading, content: cur.text, start: cur.start})
		cur = next
	}
	result = append(result, paragraph{heading: seg.heading, content: cur.text, start: cur.start})

	return result
}

// slidingWindow secondarily cuts an oversized paragraph into overlapping
// windows of size maxSize and stride maxSize*(1-overlapRatio).
func slidingWindow(p paragraph, maxSize int, overlapRatio float64) []Chunk {
	stride := int(float64(maxSize) * (1 - overlapRatio))
	if stride <= 0 {
		stride = maxSize
	}

	var chunks []Chunk
	for start := 0; start < len(p.content); start += stride {
		end := start + maxSize
		if end > len(p.content) {
			end = len(p.content)
		}
		chunks = append(chunks, Chunk{
			Content:       p.content[start:end],
			Heading:       p.heading,
			StartPosition: p.start + start,
			EndPosition:   p.start + end,
		})
		if end == len(p.content) {
			break
		}
	}
	return chunks
}
