package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// runner executes external commands with output streaming to the terminal.
type runner struct {
	dir string // working directory, empty for the current one
}

// run echoes the command line and executes it.
func (r runner) run(name string, args ...string) error {
	fmt.Printf(">>> %s\n", strings.Join(append([]string{name}, args...), " "))
	cmd := exec.Command(name, args...)
	cmd.Dir = r.dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// commandExit maps a failed external command to a process exit code. A
// command that ran and failed already printed its own diagnostics, so only
// its status is propagated; a command that never started is reported.
func commandExit(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	printError("%v", err)
	return 1
}
