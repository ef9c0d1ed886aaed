package catalog

import "strings"

// minTermLength is the shortest keyword that participates in matching.
// Shorter tokens ("a", "of", "to") produce noise substring hits.
const minTermLength = 3

// Tokenize lowercases a free-text query and splits it into keyword terms,
// discarding terms shorter than three characters. An empty result means the
// query carried no usable keywords and callers should fall back to a full
// listing.
func Tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < minTermLength {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}
