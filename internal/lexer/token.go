// Package lexer tokenizes ms-ipc IDL source text.
package lexer

// TokenKind identifies a lexical category.
type TokenKind int

const (
	// TokKeyword is one of the reserved words: service, notifications,
	// int, void, enum, struct.
	TokKeyword TokenKind = iota
	// TokIdentifier is a name: letters, digits and underscores, not
	// starting with a digit.
	TokIdentifier
	// TokNumber is a maximal run of decimal digits.
	TokNumber
	// TokSymbol is a single punctuation character: { } ( ) ; , * =
	TokSymbol
	// TokAttribute is the trimmed text between '[' and ']'. Direction
	// markers, array sizes and method/notify ids all arrive as this one
	// kind; the parser resolves the meaning from position and content.
	TokAttribute
	// TokEOF terminates every token stream.
	TokEOF
)

// String returns the kind name used in diagnostics.
func (k TokenKind) String() string {
	switch k {
	case TokKeyword:
		return "keyword"
	case TokIdentifier:
		return "identifier"
	case TokNumber:
		return "number"
	case TokSymbol:
		return "symbol"
	case TokAttribute:
		return "attribute"
	case TokEOF:
		return "end of input"
	default:
		return "unknown"
	}
}

// Token is one lexical unit with its 1-based source line. Tokens are
// produced once and consumed left to right by the parser.
type Token struct {
	Kind TokenKind
	Text string
	Line int
}
