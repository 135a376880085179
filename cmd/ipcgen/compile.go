package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/msos-dev/ipcgen"
)

const compileUsage = `ipcgen compile - Compile an interface definition into C++ sources

Usage:
  ipcgen compile --outdir DIR FILE.idl

Options:
  --outdir DIR  Output directory for generated sources (required)
  -h, --help    Show help

Generated files:
  <Service>Types.h    Shared enums, structs, and method IDs (user types only)
  <Service>Client.h   Caller-side proxy over the kernel IPC syscalls
  <Service>Client.cpp
  <Service>Server.h   Handler interface and dispatch loop
  <Service>Server.cpp

Examples:
  ipcgen compile --outdir gen/echo idl/echo.idl
  ipcgen compile -v --outdir gen/devmgr idl/device_manager.idl
`

func (c *cli) cmdCompile(args []string) int {
	fs := flag.NewFlagSet("compile", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, compileUsage) }

	outdir := fs.String("outdir", "", "output directory")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, compileUsage)
		return exitOK
	}

	if fs.NArg() != 1 {
		printError("expected exactly one .idl file")
		fmt.Fprint(os.Stderr, compileUsage)
		return exitUsage
	}
	if *outdir == "" {
		printError("--outdir is required")
		fmt.Fprint(os.Stderr, compileUsage)
		return exitUsage
	}

	path := fs.Arg(0)
	opts := c.compileOptions(path)

	file, err := ipcgen.CompileFile(path, opts...)
	if err != nil {
		printCompileError(path, err)
		return exitError
	}

	result, err := ipcgen.Generate(file, *outdir, opts...)
	if err != nil {
		printCompileError(path, err)
		return exitError
	}

	for _, f := range result.Files {
		fmt.Printf("  wrote %s\n", f)
	}
	fmt.Printf("\nGenerated %d files for service '%s' (serviceId=0x%08x)\n",
		len(result.Files), result.Service, result.ServiceID)
	return exitOK
}

// printCompileError prefixes definition errors with the source path. I/O
// errors already name the file and pass through unchanged.
func printCompileError(path string, err error) {
	var ierr *ipcgen.Error
	if errors.As(err, &ierr) {
		printError("%s: %v", path, ierr)
		return
	}
	printError("%v", err)
}
