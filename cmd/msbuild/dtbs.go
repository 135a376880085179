package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/msos-dev/ipcgen/internal/board"
)

const dtbsUsage = `msbuild dtbs - Regenerate device tree blobs from board descriptions

Usage:
  msbuild dtbs [options]

Options:
  --target BOARD  Regenerate a single board (default: all)
  -h, --help      Show help

For every board the YAML description is compiled into boards/<name>/board.dtb
and a BoardDtb.cpp embedding the blob for linking into the kernel image.

Examples:
  msbuild dtbs
  msbuild dtbs --target stm32f407zgt6
`

func (c *cli) cmdDtbs(args []string) int {
	fs := flag.NewFlagSet("dtbs", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, dtbsUsage) }

	target := fs.String("target", "", "regenerate a single board")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, dtbsUsage)
		return 0
	}

	cfg, err := c.loadConfig()
	if err != nil {
		printError("%v", err)
		return 1
	}

	var names []string
	if *target != "" {
		if _, ok := cfg.Boards[*target]; !ok {
			printError("unknown board '%s'", *target)
			return 1
		}
		names = []string{*target}
	} else {
		for name := range cfg.Boards {
			names = append(names, name)
		}
		slices.Sort(names)
	}

	for _, name := range names {
		if code := buildDTB(name, cfg.Boards[name]); code != 0 {
			return code
		}
	}

	fmt.Printf("Built %d DTB(s)\n", len(names))
	return 0
}

func buildDTB(name string, b Board) int {
	src, err := os.ReadFile(b.YAML)
	if err != nil {
		printError("%v", err)
		return 1
	}
	desc, err := board.Parse(src)
	if err != nil {
		printError("%s: %v", b.YAML, err)
		return 1
	}

	outDir := filepath.Join("boards", name)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		printError("%v", err)
		return 1
	}

	dtb := desc.DTB()
	dtbPath := filepath.Join(outDir, "board.dtb")
	if err := os.WriteFile(dtbPath, dtb, 0o644); err != nil {
		printError("%v", err)
		return 1
	}

	// The banner names the blob by its in-tree path, not the OS-specific one.
	cpp, err := board.DtbSource(dtb, "boards/"+name+"/board.dtb")
	if err != nil {
		printError("%v", err)
		return 1
	}
	cppPath := filepath.Join(outDir, "BoardDtb.cpp")
	if err := os.WriteFile(cppPath, []byte(cpp), 0o644); err != nil {
		printError("%v", err)
		return 1
	}

	fmt.Printf("  %s: %d bytes -> %s\n", name, len(dtb), dtbPath)
	fmt.Printf("  %s: %s\n", name, cppPath)
	return 0
}
