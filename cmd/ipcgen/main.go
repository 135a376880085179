// Command ipcgen compiles IPC interface definitions into the C++ client and
// server bindings used by the ms-os kernel.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/msos-dev/ipcgen"
	"github.com/msos-dev/ipcgen/cmd/internal/cliutil"
)

// Exit codes.
const (
	exitOK    = 0 // success
	exitError = 1 // compile or I/O failure
	exitUsage = 2 // bad command line
)

const usage = `ipcgen - IPC interface compiler for ms-os

Usage:
  ipcgen <command> [options] [arguments]

Commands:
  compile  Compile an interface definition into C++ sources
  check    Parse and validate interface definitions
  dump     Output a parsed interface definition as JSON
  version  Show version

Common options:
  -v, --verbose     Enable debug logging
  -vv               Enable trace logging (implies -v)
  -h, --help        Show help

Examples:
  ipcgen compile --outdir gen/echo idl/echo.idl
  ipcgen check idl/echo.idl idl/device_manager.idl
  ipcgen dump idl/echo.idl
  ipcgen dump -o echo.json idl/echo.idl
`

type cli struct {
	verbose  int
	helpFlag bool
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	var c cli
	args := os.Args[1:]
	var cmdArgs []string
	var cmd string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			c.helpFlag = true
		case arg == "-v" || arg == "--verbose":
			if c.verbose < 1 {
				c.verbose = 1
			}
		case arg == "-vv":
			c.verbose = 2
		case len(arg) > 0 && arg[0] == '-':
			cmdArgs = append(cmdArgs, arg)
		default:
			if cmd == "" {
				cmd = arg
			} else {
				cmdArgs = append(cmdArgs, arg)
			}
		}
	}

	if c.helpFlag && cmd == "" {
		_, _ = fmt.Fprint(os.Stdout, usage)
		return exitOK
	}

	if cmd == "" {
		_, _ = fmt.Fprint(os.Stderr, usage)
		return exitUsage
	}

	switch cmd {
	case "compile":
		return c.cmdCompile(cmdArgs)
	case "check":
		return c.cmdCheck(cmdArgs)
	case "dump":
		return c.cmdDump(cmdArgs)
	case "version":
		fmt.Printf("ipcgen %s\n", cliutil.Version())
		return exitOK
	case "help":
		_, _ = fmt.Fprint(os.Stdout, usage)
		return exitOK
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		_, _ = fmt.Fprint(os.Stderr, usage)
		return exitUsage
	}
}

func (c *cli) setupLogger() *slog.Logger {
	if c.verbose == 0 {
		return nil
	}
	level := slog.LevelDebug
	if c.verbose >= 2 {
		level = ipcgen.LevelTrace
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// compileOptions assembles the option list for one input file: the source
// path for banner comments, plus a logger when -v was given.
func (c *cli) compileOptions(path string) []ipcgen.Option {
	opts := []ipcgen.Option{ipcgen.WithSourcePath(path)}
	if logger := c.setupLogger(); logger != nil {
		opts = append(opts, ipcgen.WithLogger(logger))
	}
	return opts
}

func printError(format string, args ...any) {
	cliutil.PrintError(format, args...)
}
