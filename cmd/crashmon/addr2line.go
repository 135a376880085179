package main

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// addr2line decodes fault addresses by shelling out to the toolchain's
// addr2line binary.
type addr2line struct {
	elf    string
	prefix string
	out    io.Writer
}

func (a *addr2line) decode(addrs []string) map[string]string {
	if len(addrs) == 0 || a.elf == "" {
		return nil
	}

	tool := a.prefix + "addr2line"
	args := []string{"-fiaC", "-e", a.elf}
	for _, addr := range addrs {
		args = append(args, "0x"+addr)
	}

	output, err := exec.Command(tool, args...).CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			fmt.Fprintf(a.out, "%sWarning: %s not found. Install ARM GCC toolchain for address decoding.%s\n",
				colorYellow, tool, colorReset)
			return nil
		}
		fmt.Fprintf(a.out, "%sWarning: addr2line failed: %s%s\n", colorYellow, output, colorReset)
		return nil
	}

	return parseAddr2line(string(output), addrs)
}

// parseAddr2line pairs addr2line output sections with the requested
// addresses. With -a each section opens with the echoed address followed by
// function/location pairs; -i adds a pair per inlined frame, of which the
// innermost (first) is kept.
func parseAddr2line(output string, addrs []string) map[string]string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	result := make(map[string]string, len(addrs))

	section := -1
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if strings.HasPrefix(line, "0x") {
			section++
			continue
		}
		if section < 0 || section >= len(addrs) {
			continue
		}
		addr := addrs[section]
		if _, done := result[addr]; done {
			continue
		}

		function := line
		location := "??:?"
		if i+1 < len(lines) {
			i++
			location = strings.TrimSpace(lines[i])
		}
		if strings.HasPrefix(location, "??") {
			result[addr] = function + " at <unknown>"
		} else {
			result[addr] = function + " at " + location
		}
	}

	return result
}
