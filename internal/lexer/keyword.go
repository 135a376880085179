package lexer

import "sort"

// keywords is the closed reserved-word set, sorted for binary search.
// IMPORTANT: this slice must remain sorted alphabetically.
var keywords = []string{
	"enum",
	"int",
	"notifications",
	"service",
	"struct",
	"void",
}

// IsKeyword reports whether word is a reserved word. Everything else that
// scans as a word is an identifier.
func IsKeyword(word string) bool {
	idx := sort.SearchStrings(keywords, word)
	return idx < len(keywords) && keywords[idx] == word
}
