package ipcgen

import (
	"log/slog"
	"os"

	"github.com/msos-dev/ipcgen/idl"
	"github.com/msos-dev/ipcgen/internal/lexer"
	"github.com/msos-dev/ipcgen/internal/parser"
)

// Compile parses one interface definition into its AST. The pipeline is
// fail-fast: the first lexical, grammatical, or semantic violation is
// returned as an *idl.Error and nothing after it is examined.
//
// Example:
//
//	file, err := ipcgen.Compile(src, ipcgen.WithLogger(slog.Default()))
//	if err != nil {
//	    var cerr *ipcgen.Error
//	    if errors.As(err, &cerr) {
//	        log.Fatalf("%s:%v", path, cerr) // "path:line N: message"
//	    }
//	    log.Fatal(err)
//	}
func Compile(src []byte, opts ...Option) (*idl.File, error) {
	cfg := newConfig(opts)
	logger := cfg.logger

	tokens, err := lexer.New(src, componentLogger(logger, "lexer")).Tokenize()
	if err != nil {
		return nil, err
	}

	file, err := parser.New(tokens, componentLogger(logger, "parser")).Parse()
	if err != nil {
		return nil, err
	}

	if logEnabled(logger, slog.LevelDebug) {
		logger.Debug("compile complete",
			slog.String("service", file.Service),
			slog.Int("methods", len(file.Methods)),
			slog.Int("notifications", len(file.Notifications)))
	}
	return file, nil
}

// CompileFile reads and compiles the definition at path.
func CompileFile(path string, opts ...Option) (*idl.File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Compile(src, opts...)
}
