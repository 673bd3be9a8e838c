// Package tokenizer normalizes page text into the term set that feeds the
// inverted index. Tokens are lowercased, stripped of surrounding
// punctuation, and filtered: non-alphabetic tokens, stop words, and tokens
// below the minimum length are discarded. Duplicates collapse to one term.
package tokenizer

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// cutset trimmed from both ends of each raw token.
const cutset = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~ \t\n\r\v\f"

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "and": {}, "or": {}, "but": {},
	"about": {}, "above": {}, "after": {}, "along": {}, "amid": {},
	"among": {}, "as": {}, "at": {}, "by": {}, "for": {}, "from": {},
	"in": {}, "into": {}, "like": {}, "minus": {}, "near": {}, "of": {},
	"off": {}, "on": {}, "onto": {}, "out": {}, "over": {}, "past": {},
	"per": {}, "plus": {}, "since": {}, "till": {}, "to": {}, "under": {},
	"until": {}, "up": {}, "via": {}, "vs": {}, "with": {}, "that": {},
	"can": {}, "cannot": {}, "could": {}, "may": {}, "might": {},
	"must": {}, "need": {}, "ought": {}, "shall": {}, "should": {},
	"will": {}, "would": {}, "have": {}, "had": {}, "has": {},
	"having": {}, "be": {}, "is": {}, "am": {}, "are": {}, "was": {},
	"were": {}, "being": {}, "been": {}, "get": {}, "gets": {},
	"got": {}, "gotten": {}, "getting": {}, "use": {}, "uses": {},
	"used": {}, "using": {}, "one": {}, "two": {}, "three": {},
	"four": {}, "five": {}, "six": {}, "seven": {}, "eight": {},
	"nine": {}, "ten": {}, "first": {}, "second": {}, "third": {},
	"many": {}, "much": {}, "more": {}, "most": {}, "other": {},
	"another": {},
}

// Tokenize splits text on whitespace and returns the resulting term set,
// sorted for determinism. minTermLength is measured in runes.
func Tokenize(text string, minTermLength int) []string {
	seen := make(map[string]struct{})
	for _, raw := range strings.Fields(text) {
		term := strings.ToLower(strings.Trim(raw, cutset))
		if term == "" || utf8.RuneCountInString(term) < minTermLength {
			continue
		}
		if !isAlphabetic(term) {
			continue
		}
		if _, stop := stopWords[term]; stop {
			continue
		}
		seen[term] = struct{}{}
	}

	terms := make([]string, 0, len(seen))
	for term := range seen {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// IsStopWord reports whether the word is in the fixed stop-word list.
func IsStopWord(word string) bool {
	_, stop := stopWords[word]
	return stop
}

func isAlphabetic(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
