package idl

import "fmt"

// ErrorKind classifies a compile error by the phase that detected it.
type ErrorKind int

const (
	// KindLex marks tokenizer failures.
	KindLex ErrorKind = iota
	// KindParse marks grammar violations: the wrong token kind or value
	// where a specific one was required.
	KindParse
	// KindSemantic marks rule violations on structurally valid input, such
	// as duplicate type names or references to undeclared types.
	KindSemantic
)

// String returns a short human-readable phase name.
func (k ErrorKind) String() string {
	switch k {
	case KindLex:
		return "lex"
	case KindParse:
		return "parse"
	case KindSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// Lexer error codes.
const (
	CodeUnterminatedComment   = "unterminated-comment"
	CodeUnterminatedAttribute = "unterminated-attribute"
	CodeUnexpectedCharacter   = "unexpected-character"
)

// Parser error codes.
const (
	CodeUnexpectedToken = "unexpected-token"
	CodeBadAnnotation   = "bad-annotation"
	CodeNumberRange     = "number-out-of-range"
)

// Semantic error codes.
const (
	CodeDuplicateType        = "duplicate-type"
	CodeUnknownType          = "unknown-type"
	CodeEmptyStruct          = "empty-struct"
	CodeInvalidArraySize     = "invalid-array-size"
	CodeStringMissingSize    = "string-missing-size"
	CodeServiceNameMismatch  = "service-name-mismatch"
	CodeMissingServiceBlock  = "missing-service-block"
	CodeNotificationOutParam = "notification-out-param"
)

// Error is the one error type produced by the compile pipeline. Compilation
// is fail-fast: the first violation is returned and nothing after it is
// examined, so an Error always describes exactly one defect.
type Error struct {
	Kind    ErrorKind
	Code    string
	Line    int
	Message string
}

// Error renders the diagnostic with its source line, the form the CLI prints.
func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// Errorf builds an *Error with a formatted message.
func Errorf(kind ErrorKind, code string, line int, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Code:    code,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	}
}
