package lexer

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/msos-dev/ipcgen/idl"
	"github.com/msos-dev/ipcgen/internal/types"
)

// Lexer tokenizes ms-ipc IDL source text. It scans bytes left to right,
// tracking the 1-based line number for diagnostics.
type Lexer struct {
	source []byte
	pos    int
	line   int
	types.Logger
}

// New returns a Lexer over the given source bytes.
func New(source []byte, logger *slog.Logger) *Lexer {
	l := &Lexer{
		source: source,
		line:   1,
		Logger: types.Logger{L: logger},
	}
	l.Debug("lexer initialized", slog.Int("bytes", len(source)))
	return l
}

// Tokenize consumes the whole input and returns the token stream, always
// terminated by exactly one TokEOF token. The first lexical violation aborts
// with an *idl.Error carrying the offending line; no tokens are returned in
// that case.
func (l *Lexer) Tokenize() ([]Token, error) {
	estimatedTokens := max(len(l.source)/6, 64)
	tokens := make([]Token, 0, estimatedTokens)
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	l.Debug("tokenization complete", slog.Int("tokens", len(tokens)))
	return tokens, nil
}

// next scans the next token, skipping whitespace and comments.
func (l *Lexer) next() (Token, error) {
	for l.pos < len(l.source) {
		b := l.source[l.pos]
		switch {
		case b == '\n':
			l.line++
			l.pos++
		case b == ' ' || b == '\t' || b == '\r':
			l.pos++
		case l.lookingAt("//"):
			l.skipLineComment()
		case l.lookingAt("/*"):
			if err := l.skipBlockComment(); err != nil {
				return Token{}, err
			}
		case b == '[':
			return l.scanAttribute()
		case isSymbol(b):
			l.pos++
			return l.token(TokSymbol, string(b)), nil
		case isDigit(b):
			return l.scanNumber(), nil
		case isIdentStart(b):
			return l.scanWord(), nil
		default:
			return Token{}, idl.Errorf(idl.KindLex, idl.CodeUnexpectedCharacter,
				l.line, "unexpected character '%c'", b)
		}
	}
	return l.token(TokEOF, ""), nil
}

// skipLineComment consumes up to, but not including, the next newline, so
// the newline is counted by the main loop.
func (l *Lexer) skipLineComment() {
	for l.pos < len(l.source) && l.source[l.pos] != '\n' {
		l.pos++
	}
}

// skipBlockComment consumes a /* ... */ span, advancing the line counter by
// the number of embedded newlines. An unterminated comment fails at the line
// where it began.
func (l *Lexer) skipBlockComment() error {
	start := l.pos
	end := bytes.Index(l.source[l.pos+2:], []byte("*/"))
	if end < 0 {
		return idl.Errorf(idl.KindLex, idl.CodeUnterminatedComment,
			l.line, "unterminated block comment")
	}
	stop := l.pos + 2 + end + 2 // one past the closing */
	l.line += bytes.Count(l.source[start:stop], []byte{'\n'})
	l.pos = stop
	return nil
}

// scanAttribute captures the text between '[' and ']' as one token, trimmed
// of surrounding whitespace. The token carries the line of the opening
// bracket.
func (l *Lexer) scanAttribute() (Token, error) {
	end := bytes.IndexByte(l.source[l.pos+1:], ']')
	if end < 0 {
		return Token{}, idl.Errorf(idl.KindLex, idl.CodeUnterminatedAttribute,
			l.line, "unterminated attribute")
	}
	inner := l.source[l.pos+1 : l.pos+1+end]
	l.pos += end + 2
	return l.token(TokAttribute, strings.TrimSpace(string(inner))), nil
}

func (l *Lexer) scanNumber() Token {
	start := l.pos
	for l.pos < len(l.source) && isDigit(l.source[l.pos]) {
		l.pos++
	}
	return l.token(TokNumber, string(l.source[start:l.pos]))
}

func (l *Lexer) scanWord() Token {
	start := l.pos
	for l.pos < len(l.source) && isIdentPart(l.source[l.pos]) {
		l.pos++
	}
	word := string(l.source[start:l.pos])
	if IsKeyword(word) {
		return l.token(TokKeyword, word)
	}
	return l.token(TokIdentifier, word)
}

func (l *Lexer) lookingAt(s string) bool {
	return bytes.HasPrefix(l.source[l.pos:], []byte(s))
}

func (l *Lexer) token(kind TokenKind, text string) Token {
	tok := Token{Kind: kind, Text: text, Line: l.line}
	if l.TraceEnabled() {
		l.Trace("token",
			slog.String("kind", kind.String()),
			slog.String("text", text),
			slog.Int("line", l.line))
	}
	return tok
}

func isSymbol(b byte) bool {
	switch b {
	case '{', '}', '(', ')', ';', ',', '*', '=':
		return true
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentPart(b byte) bool { return isIdentStart(b) || isDigit(b) }
