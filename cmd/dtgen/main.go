// Command dtgen renders board support artifacts from a YAML board
// description: the BoardConfig.h constants header, the flattened device
// tree blob, and the C++ translation unit embedding that blob.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/msos-dev/ipcgen/cmd/internal/cliutil"
	"github.com/msos-dev/ipcgen/internal/board"
)

// Exit codes.
const (
	exitOK    = 0 // success
	exitError = 1 // parse or I/O failure
	exitUsage = 2 // bad command line
)

const usage = `dtgen - board support generator for ms-os

Usage:
  dtgen [options] BOARD.yaml

Options:
  --outdir DIR  Output directory for generated artifacts (required)
  --no-dtb      Generate only BoardConfig.h, skip the device tree blob
  -h, --help    Show help

Generated files:
  BoardConfig.h  constexpr board constants for the kernel and HAL
  <board>.dtb    Flattened device tree blob
  BoardDtb.cpp   The blob embedded as a C++ byte array

Examples:
  dtgen --outdir gen/stm32f407zgt6 boards/stm32f407zgt6.yaml
  dtgen --no-dtb --outdir gen/test boards/test.yaml
`

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("dtgen", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	outdir := fs.String("outdir", "", "output directory")
	noDTB := fs.Bool("no-dtb", false, "skip the device tree blob")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return exitUsage
	}

	if *help {
		_, _ = fmt.Fprint(os.Stdout, usage)
		return exitOK
	}

	if fs.NArg() != 1 {
		cliutil.PrintError("expected exactly one board YAML file")
		fmt.Fprint(os.Stderr, usage)
		return exitUsage
	}
	if *outdir == "" {
		cliutil.PrintError("--outdir is required")
		fmt.Fprint(os.Stderr, usage)
		return exitUsage
	}

	yamlPath := fs.Arg(0)
	src, err := os.ReadFile(yamlPath)
	if err != nil {
		cliutil.PrintError("%v", err)
		return exitError
	}

	desc, err := board.Parse(src)
	if err != nil {
		cliutil.PrintError("%s: %v", yamlPath, err)
		return exitError
	}

	// The YAML path lands verbatim in the header banner so readers can
	// trace a generated file back to its description.
	header, err := desc.ConfigHeader(yamlPath)
	if err != nil {
		cliutil.PrintError("%v", err)
		return exitError
	}

	if err := os.MkdirAll(*outdir, 0o755); err != nil {
		cliutil.PrintError("%v", err)
		return exitError
	}

	var files []string
	write := func(name string, data []byte) error {
		path := filepath.Join(*outdir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		files = append(files, path)
		return nil
	}

	if err := write("BoardConfig.h", []byte(header)); err != nil {
		cliutil.PrintError("%v", err)
		return exitError
	}

	if !*noDTB {
		dtb := desc.DTB()
		dtbName := desc.ID() + ".dtb"
		if err := write(dtbName, dtb); err != nil {
			cliutil.PrintError("%v", err)
			return exitError
		}
		cpp, err := board.DtbSource(dtb, dtbName)
		if err != nil {
			cliutil.PrintError("%v", err)
			return exitError
		}
		if err := write("BoardDtb.cpp", []byte(cpp)); err != nil {
			cliutil.PrintError("%v", err)
			return exitError
		}
	}

	for _, f := range files {
		fmt.Printf("  wrote %s\n", f)
	}
	fmt.Printf("\nGenerated %d files for board '%s'\n", len(files), desc.Name)
	return exitOK
}
