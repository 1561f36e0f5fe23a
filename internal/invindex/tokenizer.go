package invindex

import (
	"regexp"
	"strings"
	"unicode"
)

// wordRegex matches alphanumeric runs (including underscores), the unit a
// chunk's heading/content text gets split into before sub-tokenization.
var wordRegex = regexp.MustCompile(`[\pL\pN_]+`)

// defaultStopWords are dropped after tokenization; short and purely
// structural, unlikely to distinguish one note chunk from another.
var defaultStopWords = []string{
	"the", "a", "an", "and", "or", "of", "to", "in", "is", "it", "on",
	"for", "with", "as", "at", "by", "be", "this", "that", "are", "was",
}

// BuildStopWordMap converts a stop word slice into a lookup set.
func BuildStopWordMap(words []string) map[string]struct{} {
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[strings.ToLower(w)] = struct{}{}
	}
	return m
}

// TokenizeChunk splits heading/content text into lowercased sub-tokens,
// splitting camelCase and snake_case identifiers so code-like terms in
// note chunks (function names, config keys) become searchable words.
func TokenizeChunk(text string) []string {
	var tokens []string
	for _, word := range wordRegex.FindAllString(text, -1) {
		for _, sub := range splitToken(word) {
			lower := strings.ToLower(sub)
			if len(lower) >= 2 {
				tokens = append(tokens, lower)
			}
		}
	}
	return tokens
}

// splitToken splits snake_case then delegates each part to splitCamelCase.
func splitToken(token string) []string {
	if strings.Contains(token, "_") {
		var result []string
		for _, part := range strings.Split(token, "_") {
			if part != "" {
				result = append(result, splitCamelCase(part)...)
			}
		}
		return result
	}
	return splitCamelCase(token)
}

// splitCamelCase splits camelCase/PascalCase identifiers, keeping runs of
// uppercase letters (acronyms) together: "parseHTTPRequest" -> ["parse",
// "HTTP", "Request"].
func splitCamelCase(s string) []string {
	if s == "" {
		return []string{}
	}

	var result []string
	var current strings.Builder

	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				if current.Len() > 0 {
					result = append(result, current.String())
					current.Reset()
				}
			}
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		result = append(result, current.String())
	}
	return result
}
