// Command msbuild drives the ms-os firmware build: CMake/Ninja
// configuration, host tests, device tree regeneration, and flashing over
// J-Link or OpenOCD. Board and toolchain settings come from msbuild.toml,
// with built-in defaults for the stock boards.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/msos-dev/ipcgen/cmd/internal/cliutil"
)

const usage = `msbuild - build driver for ms-os

Usage:
  msbuild [options] <command> [arguments]

Commands:
  build    Configure and cross-compile the firmware image
  test     Build and run the host test suite
  clean    Remove the build directories
  dtbs     Regenerate device tree blobs from board descriptions
  flash    Build and flash an app to a board
  version  Show version

Common options:
  --config FILE  Build configuration (default: msbuild.toml)
  -h, --help     Show help

Examples:
  msbuild build
  msbuild build --target stm32f407zgt6
  msbuild test
  msbuild dtbs
  msbuild flash --probe cmsis-dap
  msbuild flash --target pynq-z2 --app hello
`

type cli struct {
	config    string
	configSet bool
	helpFlag  bool
}

func main() {
	os.Exit(run())
}

func run() int {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	c := cli{config: "msbuild.toml"}
	args := os.Args[1:]
	var cmdArgs []string
	var cmd string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			c.helpFlag = true
		case arg == "--config":
			if i+1 < len(args) {
				i++
				c.config = args[i]
				c.configSet = true
			}
		case strings.HasPrefix(arg, "--config="):
			c.config = arg[len("--config="):]
			c.configSet = true
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
		return 0
	}

	if cmd == "" {
		_, _ = fmt.Fprint(os.Stderr, usage)
		return 2
	}

	switch cmd {
	case "build":
		return c.cmdBuild(cmdArgs)
	case "test":
		return c.cmdTest(cmdArgs)
	case "clean":
		return c.cmdClean(cmdArgs)
	case "dtbs":
		return c.cmdDtbs(cmdArgs)
	case "flash":
		return c.cmdFlash(cmdArgs)
	case "version":
		fmt.Printf("msbuild %s\n", cliutil.Version())
		return 0
	case "help":
		_, _ = fmt.Fprint(os.Stdout, usage)
		return 0
	default:
		_, _ = fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		_, _ = fmt.Fprint(os.Stderr, usage)
		return 2
	}
}

func printError(format string, args ...any) {
	cliutil.PrintError(format, args...)
}
