package main

import (
	"flag"
	"fmt"
	"os"
)

const cleanUsage = `msbuild clean - Remove the build directories

Usage:
  msbuild clean

Removes both the firmware and host test build trees.

Examples:
  msbuild clean
`

func (c *cli) cmdClean(args []string) int {
	fs := flag.NewFlagSet("clean", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, cleanUsage) }

	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, cleanUsage)
		return 0
	}

	cfg, err := c.loadConfig()
	if err != nil {
		printError("%v", err)
		return 1
	}

	for _, dir := range []string{cfg.Project.BuildDir, cfg.Project.TestBuildDir} {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		fmt.Printf("Removing %s\n", dir)
		if err := os.RemoveAll(dir); err != nil {
			printError("%v", err)
			return 1
		}
	}
	return 0
}
