package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/msos-dev/ipcgen"
)

const checkUsage = `ipcgen check - Parse and validate interface definitions

Usage:
  ipcgen check [options] FILE.idl...

Options:
  -h, --help    Show help

Checks every file and reports the first error in each. Exit status is 0
when all files parse cleanly, 1 otherwise. Nothing is written to disk.

Examples:
  ipcgen check idl/echo.idl
  ipcgen check idl/*.idl
`

func (c *cli) cmdCheck(args []string) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, checkUsage) }

	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, checkUsage)
		return exitOK
	}

	if fs.NArg() == 0 {
		printError("no input files")
		fmt.Fprint(os.Stderr, checkUsage)
		return exitUsage
	}

	failed := false
	for _, path := range fs.Args() {
		file, err := ipcgen.CompileFile(path, c.compileOptions(path)...)
		if err != nil {
			printCompileError(path, err)
			failed = true
			continue
		}
		fmt.Printf("%s: OK (service '%s', %d methods, %d notifications)\n",
			path, file.Service, len(file.Methods), len(file.Notifications))
	}
	if failed {
		return exitError
	}
	return exitOK
}
