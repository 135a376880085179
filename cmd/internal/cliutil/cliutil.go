// Package cliutil contains small helpers shared by the ms-os command-line
// tools.
package cliutil

import (
	"fmt"
	"os"
	"runtime/debug"
)

// PrintError writes an error message to stderr with a standard prefix.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}

// GetOutput returns a writer for the given output path. An empty path
// selects stdout. The returned cleanup function closes the file when one
// was opened.
func GetOutput(outputFile string) (*os.File, func(), error) {
	if outputFile == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// Version reports the module version recorded in the build info, or
// "(devel)" for builds outside a module context.
func Version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}
