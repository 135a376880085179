package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const buildUsage = `msbuild build - Configure and cross-compile the firmware image

Usage:
  msbuild build [options]

Options:
  --target BOARD  Target board (default from msbuild.toml)
  -h, --help      Show help

The build directory is configured once and reused. When the target changes,
the stale CMake cache is removed first.

Examples:
  msbuild build
  msbuild build --target stm32f407zgt6
`

const testUsage = `msbuild test - Build and run the host test suite

Usage:
  msbuild test

The host tests configure their own build tree without the cross toolchain
and run under ctest.

Examples:
  msbuild test
`

func (c *cli) cmdBuild(args []string) int {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, buildUsage) }

	target := fs.String("target", "", "target board")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, buildUsage)
		return 0
	}

	cfg, err := c.loadConfig()
	if err != nil {
		printError("%v", err)
		return 1
	}
	name, _, err := resolveBoard(cfg, *target)
	if err != nil {
		printError("%v", err)
		return 1
	}

	return buildFirmware(cfg, name)
}

// buildFirmware configures and builds the cross target under the build dir.
func buildFirmware(cfg Config, target string) int {
	if err := checkToolchain(cfg.Toolchain); err != nil {
		printError("%v", err)
		return 1
	}

	cleanOnTargetChange(cfg.Project.BuildDir, target)

	if err := os.MkdirAll(cfg.Project.BuildDir, 0o755); err != nil {
		printError("%v", err)
		return 1
	}

	root, err := os.Getwd()
	if err != nil {
		printError("%v", err)
		return 1
	}
	toolchainFile := cfg.Project.ToolchainFile
	if !filepath.IsAbs(toolchainFile) {
		toolchainFile = filepath.Join(root, toolchainFile)
	}

	r := runner{dir: cfg.Project.BuildDir}
	if err := r.run(cfg.Tools.CMake,
		"-G", "Ninja",
		"-DCMAKE_TOOLCHAIN_FILE="+toolchainFile,
		"-DMSOS_TARGET="+target,
		"-DCMAKE_BUILD_TYPE=Debug",
		root,
	); err != nil {
		return commandExit(err)
	}
	if err := r.run(cfg.Tools.Ninja); err != nil {
		return commandExit(err)
	}
	return 0
}

func (c *cli) cmdTest(args []string) int {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, testUsage) }

	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, testUsage)
		return 0
	}

	cfg, err := c.loadConfig()
	if err != nil {
		printError("%v", err)
		return 1
	}

	if err := os.MkdirAll(cfg.Project.TestBuildDir, 0o755); err != nil {
		printError("%v", err)
		return 1
	}

	root, err := os.Getwd()
	if err != nil {
		printError("%v", err)
		return 1
	}

	r := runner{dir: cfg.Project.TestBuildDir}
	if err := r.run(cfg.Tools.CMake,
		"-G", "Ninja",
		"-DCMAKE_BUILD_TYPE=Debug",
		root,
	); err != nil {
		return commandExit(err)
	}
	if err := r.run(cfg.Tools.Ninja); err != nil {
		return commandExit(err)
	}
	if err := (runner{}).run(cfg.Tools.CTest,
		"--test-dir", cfg.Project.TestBuildDir,
		"--output-on-failure",
	); err != nil {
		return commandExit(err)
	}
	return 0
}

// cleanOnTargetChange removes the build directory when its CMake cache
// records a different MSOS_TARGET than the one requested.
func cleanOnTargetChange(buildDir, target string) {
	data, err := os.ReadFile(filepath.Join(buildDir, "CMakeCache.txt"))
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "MSOS_TARGET:") {
			continue
		}
		if _, value, ok := strings.Cut(line, "="); ok {
			cached := strings.TrimSpace(value)
			if cached != target {
				fmt.Printf("Target changed from %s to %s, cleaning build dir\n", cached, target)
				os.RemoveAll(buildDir)
			}
		}
		return
	}
}
