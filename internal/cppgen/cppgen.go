// Package cppgen renders the C++ artifacts for a parsed IDL file: a shared
// types header, a server interface and dispatch loop, and a client proxy.
//
// Rendering is deterministic. Artifact content is a pure function of the
// parsed file and the source path recorded in the banner, so repeated runs
// over the same input produce byte-identical output.
package cppgen

import (
	"bytes"
	"embed"
	"fmt"
	"log/slog"
	"text/template"

	"github.com/msos-dev/ipcgen/idl"
	"github.com/msos-dev/ipcgen/internal/types"
)

//go:embed templates/*.txt
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.txt"))

// Template names, matching the files under templates/.
const (
	typesHeaderTemplate  = "types_h.txt"
	serverHeaderTemplate = "server_h.txt"
	serverImplTemplate   = "server_cpp.txt"
	clientHeaderTemplate = "client_h.txt"
	clientImplTemplate   = "client_cpp.txt"
)

// Artifact is one generated output file.
type Artifact struct {
	// Name is the bare file name, e.g. "EchoServer.h".
	Name string
	// Content is the complete file content.
	Content string
}

// Emitter renders the generated C++ for one parsed IDL file.
type Emitter struct {
	file   *idl.File
	source string
	types.Logger
}

// New returns an emitter for the given file. The source path, when not
// empty, is recorded in the banner comment of every artifact.
func New(file *idl.File, source string, logger *slog.Logger) *Emitter {
	e := &Emitter{
		file:   file,
		source: source,
		Logger: types.Logger{L: logger},
	}
	e.Debug("emitter initialized",
		slog.String("service", file.Service),
		slog.String("source", source))
	return e
}

// TypesHeader renders the shared types header. The result is a valid header
// even when the file declares no enums or structs; callers normally skip
// writing it in that case.
func (e *Emitter) TypesHeader() (string, error) {
	return e.render(typesHeaderTemplate, newTypesHeaderView(e.file, e.source))
}

// ServerHeader renders the abstract server class with the method and
// notification id enums, the handler interface, and the notify senders.
func (e *Emitter) ServerHeader() (string, error) {
	return e.render(serverHeaderTemplate, newServerHeaderView(e.file, e.source))
}

// ServerImpl renders the server dispatch loop and notify sender bodies.
func (e *Emitter) ServerImpl() (string, error) {
	return e.render(serverImplTemplate, newServerImplView(e.file, e.source))
}

// ClientHeader renders the client proxy class.
func (e *Emitter) ClientHeader() (string, error) {
	return e.render(clientHeaderTemplate, newClientHeaderView(e.file, e.source))
}

// ClientImpl renders the client stub bodies.
func (e *Emitter) ClientImpl() (string, error) {
	return e.render(clientImplTemplate, newClientImplView(e.file, e.source))
}

// Artifacts renders every output file for the service, in the order they
// are written to disk. The types header is included only when the file
// declares user types.
func (e *Emitter) Artifacts() ([]Artifact, error) {
	var artifacts []Artifact
	add := func(name string, render func() (string, error)) error {
		content, err := render()
		if err != nil {
			return err
		}
		artifacts = append(artifacts, Artifact{Name: name, Content: content})
		return nil
	}

	service := e.file.Service
	if e.file.HasUserTypes() {
		if err := add(service+"Types.h", e.TypesHeader); err != nil {
			return nil, err
		}
	}
	if err := add(service+"Server.h", e.ServerHeader); err != nil {
		return nil, err
	}
	if err := add(service+"Server.cpp", e.ServerImpl); err != nil {
		return nil, err
	}
	if err := add(service+"Client.h", e.ClientHeader); err != nil {
		return nil, err
	}
	if err := add(service+"Client.cpp", e.ClientImpl); err != nil {
		return nil, err
	}
	e.Debug("artifacts rendered", slog.Int("count", len(artifacts)))
	return artifacts, nil
}

func (e *Emitter) render(name string, view any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, view); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	if e.TraceEnabled() {
		e.Trace("rendered artifact",
			slog.String("template", name),
			slog.Int("bytes", buf.Len()))
	}
	return buf.String(), nil
}
