package ipcgen

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/msos-dev/ipcgen/idl"
	"github.com/msos-dev/ipcgen/internal/cppgen"
)

// ErrNilFile is returned when Generate is called without a parsed file.
var ErrNilFile = errors.New("nil IDL file")

// Result describes a completed Generate call.
type Result struct {
	// Service is the service name the artifacts were generated for.
	Service string
	// ServiceID is the FNV-1a hash embedded in the generated headers.
	ServiceID uint32
	// Files lists the written artifact paths in write order. The shared
	// types header is present only when the definition declares user types.
	Files []string
}

// Generate renders the C++ artifacts for a compiled file and writes them
// under outdir, creating the directory if needed. Writing is all-or-nothing:
// every artifact is rendered in memory and staged to a temporary file first,
// and the temporaries are renamed into place only once all of them are on
// disk. On failure the staged temporaries are removed and no artifact path
// is returned.
func Generate(file *idl.File, outdir string, opts ...Option) (*Result, error) {
	if file == nil {
		return nil, ErrNilFile
	}
	cfg := newConfig(opts)
	logger := cfg.logger

	artifacts, err := cppgen.New(file, cfg.source, componentLogger(logger, "cppgen")).Artifacts()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return nil, err
	}

	staged := make([]string, 0, len(artifacts))
	discard := func() {
		for _, tmp := range staged {
			os.Remove(tmp)
		}
	}
	for _, a := range artifacts {
		tmp := filepath.Join(outdir, a.Name+".tmp")
		if err := os.WriteFile(tmp, []byte(a.Content), 0o644); err != nil {
			discard()
			return nil, err
		}
		staged = append(staged, tmp)
	}

	files := make([]string, 0, len(artifacts))
	for i, a := range artifacts {
		path := filepath.Join(outdir, a.Name)
		if err := os.Rename(staged[i], path); err != nil {
			staged = staged[i:]
			discard()
			return nil, err
		}
		files = append(files, path)
	}

	if logEnabled(logger, slog.LevelDebug) {
		logger.Debug("artifacts written",
			slog.String("service", file.Service),
			slog.String("outdir", outdir),
			slog.Int("files", len(files)))
	}
	return &Result{
		Service:   file.Service,
		ServiceID: idl.ServiceID(file.Service),
		Files:     files,
	}, nil
}
