// Package parser builds an IDL syntax tree from a token stream.
//
// Parsing is single-pass recursive descent with no error recovery: the
// first grammar or semantic violation aborts with an *idl.Error and no
// partial tree is returned. Type references resolve against the set of
// names declared earlier in the same file, so declaration order matters
// and forward references are rejected.
package parser

import (
	"log/slog"
	"strconv"

	"github.com/msos-dev/ipcgen/idl"
	"github.com/msos-dev/ipcgen/internal/lexer"
	"github.com/msos-dev/ipcgen/internal/types"
)

// Parser consumes a token stream by recursive descent and builds an idl.File.
type Parser struct {
	tokens   []lexer.Token
	pos      int
	declared map[string]bool // user-defined type names seen so far
	types.Logger
}

// New returns a Parser over a token stream produced by lexer.Tokenize.
// The stream must end with a TokEOF token.
func New(tokens []lexer.Token, logger *slog.Logger) *Parser {
	p := &Parser{
		tokens:   tokens,
		declared: make(map[string]bool),
		Logger:   types.Logger{L: logger},
	}
	p.Debug("parser initialized", slog.Int("tokens", len(tokens)))
	return p
}

// Parse consumes the whole stream and returns the file's syntax tree.
// Top-level blocks may appear in any order and service/notifications
// blocks may repeat, but every block must agree on one service name and
// at least one of them must be present.
func (p *Parser) Parse() (*idl.File, error) {
	file := &idl.File{}

	for !p.atEOF() {
		tok := p.peek()
		if tok.Kind != lexer.TokKeyword {
			return nil, p.unexpectedTopLevel(tok)
		}
		var err error
		switch tok.Text {
		case "enum":
			var enum *idl.Enum
			if enum, err = p.parseEnum(); err == nil {
				file.Enums = append(file.Enums, enum)
			}
		case "struct":
			var st *idl.Struct
			if st, err = p.parseStruct(); err == nil {
				file.Structs = append(file.Structs, st)
			}
		case "service":
			err = p.parseService(file)
		case "notifications":
			err = p.parseNotifications(file)
		default:
			err = p.unexpectedTopLevel(tok)
		}
		if err != nil {
			return nil, err
		}
	}

	if file.Service == "" {
		return nil, idl.Errorf(idl.KindSemantic, idl.CodeMissingServiceBlock,
			p.peek().Line, "no service block found")
	}

	p.Debug("parse complete",
		slog.String("service", file.Service),
		slog.Int("enums", len(file.Enums)),
		slog.Int("structs", len(file.Structs)),
		slog.Int("methods", len(file.Methods)),
		slog.Int("notifications", len(file.Notifications)))
	return file, nil
}

func (p *Parser) unexpectedTopLevel(tok lexer.Token) error {
	return idl.Errorf(idl.KindParse, idl.CodeUnexpectedToken, tok.Line,
		"expected 'enum', 'struct', 'service', or 'notifications', got '%s'", tok.Text)
}

// parseService parses 'service' IDENT '{' { method } '}' ';' and appends
// the methods to file.
func (p *Parser) parseService(file *idl.File) error {
	if _, err := p.expectText(lexer.TokKeyword, "service"); err != nil {
		return err
	}
	nameTok, err := p.expect(lexer.TokIdentifier)
	if err != nil {
		return err
	}
	if file.Service != "" && file.Service != nameTok.Text {
		return idl.Errorf(idl.KindSemantic, idl.CodeServiceNameMismatch, nameTok.Line,
			"service name mismatch: '%s' vs '%s'", nameTok.Text, file.Service)
	}
	file.Service = nameTok.Text

	if _, err := p.expectText(lexer.TokSymbol, "{"); err != nil {
		return err
	}
	for p.peek().Text != "}" {
		method, err := p.parseMethod()
		if err != nil {
			return err
		}
		file.Methods = append(file.Methods, method)
	}
	if _, err := p.expectText(lexer.TokSymbol, "}"); err != nil {
		return err
	}
	if _, err := p.expectText(lexer.TokSymbol, ";"); err != nil {
		return err
	}

	p.Debug("parsed service block",
		slog.String("service", file.Service),
		slog.Int("methods", len(file.Methods)))
	return nil
}

// parseNotifications parses 'notifications' IDENT '{' { notify } '}' ';'.
// The block shares the service name with any service block in the file.
func (p *Parser) parseNotifications(file *idl.File) error {
	if _, err := p.expectText(lexer.TokKeyword, "notifications"); err != nil {
		return err
	}
	nameTok, err := p.expect(lexer.TokIdentifier)
	if err != nil {
		return err
	}
	if file.Service != "" && file.Service != nameTok.Text {
		return idl.Errorf(idl.KindSemantic, idl.CodeServiceNameMismatch, nameTok.Line,
			"notifications name mismatch: '%s' vs '%s'", nameTok.Text, file.Service)
	}
	file.Service = nameTok.Text

	if _, err := p.expectText(lexer.TokSymbol, "{"); err != nil {
		return err
	}
	for p.peek().Text != "}" {
		notification, err := p.parseNotification()
		if err != nil {
			return err
		}
		file.Notifications = append(file.Notifications, notification)
	}
	if _, err := p.expectText(lexer.TokSymbol, "}"); err != nil {
		return err
	}
	if _, err := p.expectText(lexer.TokSymbol, ";"); err != nil {
		return err
	}

	p.Debug("parsed notifications block",
		slog.String("service", file.Service),
		slog.Int("notifications", len(file.Notifications)))
	return nil
}

// parseEnum parses 'enum' IDENT '{' { IDENT '=' NUMBER [','] } '}' ';'.
// Every member carries an explicit value; values may repeat but the enum
// name must not collide with any earlier type.
func (p *Parser) parseEnum() (*idl.Enum, error) {
	if _, err := p.expectText(lexer.TokKeyword, "enum"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.TokIdentifier)
	if err != nil {
		return nil, err
	}
	if err := p.checkFreshType(nameTok); err != nil {
		return nil, err
	}

	if _, err := p.expectText(lexer.TokSymbol, "{"); err != nil {
		return nil, err
	}
	var members []idl.EnumMember
	for p.peek().Text != "}" {
		memberTok, err := p.expect(lexer.TokIdentifier)
		if err != nil {
			return nil, err
		}
		if _, err := p.expectText(lexer.TokSymbol, "="); err != nil {
			return nil, err
		}
		numTok, err := p.expect(lexer.TokNumber)
		if err != nil {
			return nil, err
		}
		value, err := strconv.Atoi(numTok.Text)
		if err != nil {
			return nil, idl.Errorf(idl.KindParse, idl.CodeNumberRange, numTok.Line,
				"enum value out of range: %s", numTok.Text)
		}
		members = append(members, idl.EnumMember{Name: memberTok.Text, Value: value})
		if p.peek().Text == "," {
			p.advance()
		}
	}
	if _, err := p.expectText(lexer.TokSymbol, "}"); err != nil {
		return nil, err
	}
	if _, err := p.expectText(lexer.TokSymbol, ";"); err != nil {
		return nil, err
	}

	p.declared[nameTok.Text] = true
	p.Debug("parsed enum",
		slog.String("name", nameTok.Text),
		slog.Int("members", len(members)))
	return &idl.Enum{Name: nameTok.Text, Members: members}, nil
}

// parseStruct parses 'struct' IDENT '{' { field } '}' ';'. A struct needs
// at least one field so its wire size is never zero.
func (p *Parser) parseStruct() (*idl.Struct, error) {
	if _, err := p.expectText(lexer.TokKeyword, "struct"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.TokIdentifier)
	if err != nil {
		return nil, err
	}
	if err := p.checkFreshType(nameTok); err != nil {
		return nil, err
	}

	if _, err := p.expectText(lexer.TokSymbol, "{"); err != nil {
		return nil, err
	}
	var fields []idl.Field
	for p.peek().Text != "}" {
		typeTok := p.advance()
		if !p.knownType(typeTok.Text) {
			return nil, idl.Errorf(idl.KindSemantic, idl.CodeUnknownType, typeTok.Line,
				"unknown type '%s'", typeTok.Text)
		}
		arraySize, err := p.parseArraySize(typeTok)
		if err != nil {
			return nil, err
		}
		fieldTok, err := p.expect(lexer.TokIdentifier)
		if err != nil {
			return nil, err
		}
		if _, err := p.expectText(lexer.TokSymbol, ";"); err != nil {
			return nil, err
		}
		fields = append(fields, idl.Field{
			Type:      typeTok.Text,
			Name:      fieldTok.Text,
			ArraySize: arraySize,
		})
	}
	if _, err := p.expectText(lexer.TokSymbol, "}"); err != nil {
		return nil, err
	}
	if _, err := p.expectText(lexer.TokSymbol, ";"); err != nil {
		return nil, err
	}

	if len(fields) == 0 {
		return nil, idl.Errorf(idl.KindSemantic, idl.CodeEmptyStruct, nameTok.Line,
			"struct '%s' has no fields", nameTok.Text)
	}

	p.declared[nameTok.Text] = true
	p.Debug("parsed struct",
		slog.String("name", nameTok.Text),
		slog.Int("fields", len(fields)))
	return &idl.Struct{Name: nameTok.Text, Fields: fields}, nil
}

// parseMethod parses '[method=N]' 'int' IDENT '(' params ')' ';'.
func (p *Parser) parseMethod() (*idl.Method, error) {
	attrTok, err := p.expect(lexer.TokAttribute)
	if err != nil {
		return nil, err
	}
	ann := classify(attrTok.Text)
	if ann.kind != annMethodID {
		return nil, idl.Errorf(idl.KindParse, idl.CodeBadAnnotation, attrTok.Line,
			"expected [method=N], got [%s]", attrTok.Text)
	}

	if _, err := p.expectText(lexer.TokKeyword, "int"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.TokIdentifier)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText(lexer.TokSymbol, ";"); err != nil {
		return nil, err
	}

	return &idl.Method{Name: nameTok.Text, ID: ann.n, Params: params}, nil
}

// parseNotification parses '[notify=N]' 'void' IDENT '(' params ')' ';'.
// Notifications are one-way, so every parameter must be [in].
func (p *Parser) parseNotification() (*idl.Notification, error) {
	attrTok, err := p.expect(lexer.TokAttribute)
	if err != nil {
		return nil, err
	}
	ann := classify(attrTok.Text)
	if ann.kind != annNotifyID {
		return nil, idl.Errorf(idl.KindParse, idl.CodeBadAnnotation, attrTok.Line,
			"expected [notify=N], got [%s]", attrTok.Text)
	}

	if _, err := p.expectText(lexer.TokKeyword, "void"); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(lexer.TokIdentifier)
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectText(lexer.TokSymbol, ";"); err != nil {
		return nil, err
	}

	for _, param := range params {
		if param.Direction != idl.In {
			return nil, idl.Errorf(idl.KindSemantic, idl.CodeNotificationOutParam,
				attrTok.Line, "notification params must be [in]")
		}
	}

	return &idl.Notification{Name: nameTok.Text, ID: ann.n, Params: params}, nil
}

// parseParams parses '(' [param {',' param}] ')'.
func (p *Parser) parseParams() ([]idl.Param, error) {
	if _, err := p.expectText(lexer.TokSymbol, "("); err != nil {
		return nil, err
	}
	var params []idl.Param
	if p.peek().Text != ")" {
		param, err := p.parseParam()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
		for p.peek().Text == "," {
			p.advance()
			if param, err = p.parseParam(); err != nil {
				return nil, err
			}
			params = append(params, param)
		}
	}
	if _, err := p.expectText(lexer.TokSymbol, ")"); err != nil {
		return nil, err
	}
	return params, nil
}

// parseParam parses ('[in]'|'[out]') TYPE [ARRAY_ATTR] IDENT.
func (p *Parser) parseParam() (idl.Param, error) {
	attrTok, err := p.expect(lexer.TokAttribute)
	if err != nil {
		return idl.Param{}, err
	}
	ann := classify(attrTok.Text)
	if ann.kind != annDirection {
		return idl.Param{}, idl.Errorf(idl.KindParse, idl.CodeBadAnnotation, attrTok.Line,
			"expected [in] or [out], got [%s]", attrTok.Text)
	}

	typeTok := p.advance()
	if !p.knownType(typeTok.Text) {
		return idl.Param{}, idl.Errorf(idl.KindSemantic, idl.CodeUnknownType, typeTok.Line,
			"unknown type '%s'", typeTok.Text)
	}

	arraySize, err := p.parseArraySize(typeTok)
	if err != nil {
		return idl.Param{}, err
	}

	nameTok, err := p.expect(lexer.TokIdentifier)
	if err != nil {
		return idl.Param{}, err
	}

	return idl.Param{
		Direction: ann.dir,
		Type:      typeTok.Text,
		Name:      nameTok.Text,
		ArraySize: arraySize,
	}, nil
}

// parseArraySize consumes an optional numeric array-size attribute following
// a type name. Sizes must be >= 1, and the string type must carry one since
// unbounded strings have no wire size. Violations are reported at the type
// token's line.
func (p *Parser) parseArraySize(typeTok lexer.Token) (int, error) {
	size := 0
	if p.peek().Kind == lexer.TokAttribute {
		if ann := classify(p.peek().Text); ann.kind == annArraySize {
			p.advance()
			if ann.n < 1 {
				return 0, idl.Errorf(idl.KindSemantic, idl.CodeInvalidArraySize,
					typeTok.Line, "array size must be >= 1")
			}
			size = ann.n
		}
	}
	if typeTok.Text == "string" && size == 0 {
		return 0, idl.Errorf(idl.KindSemantic, idl.CodeStringMissingSize,
			typeTok.Line, "'string' requires a size, e.g. string[64]")
	}
	return size, nil
}

// checkFreshType fails if name collides with a primitive or an already
// declared user type.
func (p *Parser) checkFreshType(tok lexer.Token) error {
	if p.declared[tok.Text] || idl.IsPrimitive(tok.Text) {
		return idl.Errorf(idl.KindSemantic, idl.CodeDuplicateType, tok.Line,
			"type '%s' already defined", tok.Text)
	}
	return nil
}

// knownType reports whether name is a primitive or a previously declared
// user type.
func (p *Parser) knownType(name string) bool {
	return idl.IsPrimitive(name) || p.declared[name]
}

func (p *Parser) atEOF() bool {
	return p.peek().Kind == lexer.TokEOF
}

func (p *Parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

// advance returns the current token and moves forward, sticking at the
// final TokEOF token so a truncated grammar production reads end of input
// instead of running off the slice.
func (p *Parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

// expect consumes the next token, failing unless it has the wanted kind.
func (p *Parser) expect(kind lexer.TokenKind) (lexer.Token, error) {
	tok := p.advance()
	if tok.Kind != kind {
		return lexer.Token{}, idl.Errorf(idl.KindParse, idl.CodeUnexpectedToken, tok.Line,
			"expected %s, got %s '%s'", kind, tok.Kind, tok.Text)
	}
	return tok, nil
}

// expectText consumes the next token, failing unless it matches both the
// wanted kind and the exact text.
func (p *Parser) expectText(kind lexer.TokenKind, text string) (lexer.Token, error) {
	tok := p.advance()
	if tok.Kind != kind {
		return lexer.Token{}, idl.Errorf(idl.KindParse, idl.CodeUnexpectedToken, tok.Line,
			"expected %s '%s', got %s '%s'", kind, text, tok.Kind, tok.Text)
	}
	if tok.Text != text {
		return lexer.Token{}, idl.Errorf(idl.KindParse, idl.CodeUnexpectedToken, tok.Line,
			"expected '%s', got '%s'", text, tok.Text)
	}
	return tok, nil
}
