package invindex

import (
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/registry"
)

const (
	// chunkTokenizerName is the custom tokenizer registered below.
	chunkTokenizerName = "kbmcp_chunk_tokenizer"
	// chunkStopFilterName is the custom stop-word filter registered below.
	chunkStopFilterName = "kbmcp_chunk_stop"
	// chunkAnalyzerName combines the two into the index's default analyzer.
	chunkAnalyzerName = "kbmcp_chunk_analyzer"
)

func init() {
	_ = registry.RegisterTokenizer(chunkTokenizerName, chunkTokenizerConstructor)
	_ = registry.RegisterTokenFilter(chunkStopFilterName, chunkStopFilterConstructor)
}

// buildIndexMapping constructs the chunk document mapping: heading and
// content are analyzed, full-text fields; item_id is indexed as a single
// keyword term (so a term query can select one item's chunks) and stored;
// chunk_index is stored-only. The stored fields let a SearchHit be
// reassembled without a store round trip.
func buildIndexMapping() (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()

	if err := im.AddCustomAnalyzer(chunkAnalyzerName, map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": chunkTokenizerName,
		"token_filters": []string{
			lowercase.Name,
			chunkStopFilterName,
		},
	}); err != nil {
		return nil, err
	}
	im.DefaultAnalyzer = chunkAnalyzerName

	docMapping := bleve.NewDocumentMapping()

	heading := bleve.NewTextFieldMapping()
	heading.Analyzer = chunkAnalyzerName
	docMapping.AddFieldMappingsAt("heading", heading)

	content := bleve.NewTextFieldMapping()
	content.Analyzer = chunkAnalyzerName
	docMapping.AddFieldMappingsAt("content", content)

	itemID := bleve.NewTextFieldMapping()
	itemID.Analyzer = keyword.Name
	itemID.Store = true
	docMapping.AddFieldMappingsAt("item_id", itemID)

	chunkIndex := bleve.NewNumericFieldMapping()
	chunkIndex.Index = false
	chunkIndex.Store = true
	docMapping.AddFieldMappingsAt("chunk_index", chunkIndex)

	im.DefaultMapping = docMapping
	return im, nil
}

func chunkTokenizerConstructor(_ map[string]interface{}, _ *registry.Cache) (analysis.Tokenizer, error) {
	return &chunkTokenizer{}, nil
}

// chunkTokenizer implements analysis.Tokenizer using TokenizeChunk.
type chunkTokenizer struct{}

func (t *chunkTokenizer) Tokenize(input []byte) analysis.TokenStream {
	text := string(input)
	tokens := TokenizeChunk(text)

	stream := make(analysis.TokenStream, 0, len(tokens))
	pos := 1
	offset := 0
	for _, tok := range tokens {
		start := strings.Index(strings.ToLower(text[offset:]), strings.ToLower(tok))
		if start == -1 {
			start = 0
		}
		start += offset
		end := start + len(tok)

		stream = append(stream, &analysis.Token{
			Term:     []byte(tok),
			Start:    start,
			End:      end,
			Position: pos,
			Type:     analysis.AlphaNumeric,
		})
		pos++
		offset = end
	}
	return stream
}

func chunkStopFilterConstructor(_ map[string]interface{}, _ *registry.Cache) (analysis.TokenFilter, error) {
	return &chunkStopFilter{stopWords: BuildStopWordMap(defaultStopWords)}, nil
}

// chunkStopFilter implements analysis.TokenFilter, dropping stop words.
type chunkStopFilter struct {
	stopWords map[string]struct{}
}

func (f *chunkStopFilter) Filter(input analysis.TokenStream) analysis.TokenStream {
	result := make(analysis.TokenStream, 0, len(input))
	for _, tok := range input {
		if _, isStop := f.stopWords[strings.ToLower(string(tok.Term))]; !isStop {
			result = append(result, tok)
		}
	}
	return result
}
