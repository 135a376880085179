package main

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// ANSI color codes.
const (
	colorRed    = "\033[91m"
	colorGreen  = "\033[92m"
	colorYellow = "\033[93m"
	colorCyan   = "\033[96m"
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
)

// Crash dump markers emitted by the kernel fault handler.
const (
	crashBegin = "=== CRASH DUMP BEGIN ==="
	crashEnd   = "=== CRASH DUMP END ==="
)

// reRegister matches register lines in the dump, e.g. "  PC  : 08000ABC".
var reRegister = regexp.MustCompile(`^\s+(PC|LR)\s*:\s*([0-9A-Fa-f]{8})\s*$`)

type symbolizer interface {
	decode(addrs []string) map[string]string
}

// monitor echoes serial output with timestamps and decodes each crash dump
// as its end marker passes by.
type monitor struct {
	out io.Writer
	sym symbolizer
	now func() time.Time

	inCrash    bool
	crashLines []string
}

func (m *monitor) timestamp() string {
	return m.now().Format("15:04:05.000")
}

// run echoes lines from r until EOF or a read error.
func (m *monitor) run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		m.line(strings.TrimRight(sc.Text(), "\r"))
	}
	return sc.Err()
}

func (m *monitor) line(line string) {
	switch {
	case strings.Contains(line, crashBegin):
		m.inCrash = true
		m.crashLines = nil
		fmt.Fprintf(m.out, "%s%s[%s] %s%s\n", colorRed, colorBold, m.timestamp(), line, colorReset)
	case strings.Contains(line, crashEnd):
		fmt.Fprintf(m.out, "%s%s[%s] %s%s\n", colorRed, colorBold, m.timestamp(), line, colorReset)
		m.inCrash = false
		m.processDump()
		m.crashLines = nil
	case m.inCrash:
		m.crashLines = append(m.crashLines, line)
		fmt.Fprintf(m.out, "%s[%s] %s%s\n", colorRed, m.timestamp(), line, colorReset)
	default:
		fmt.Fprintf(m.out, "[%s] %s\n", m.timestamp(), line)
	}
}

// processDump extracts the PC and LR values from the collected dump lines
// and prints their decoded source locations. A register repeated in the dump
// keeps its first position but takes the last value.
func (m *monitor) processDump() {
	var labels []string
	addrs := make(map[string]string)
	for _, line := range m.crashLines {
		match := reRegister.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		label, addr := match[1], match[2]
		if _, seen := addrs[label]; !seen {
			labels = append(labels, label)
		}
		addrs[label] = addr
	}

	if len(labels) == 0 {
		fmt.Fprintf(m.out, "%sNo addresses found in crash dump.%s\n", colorYellow, colorReset)
		return
	}

	list := make([]string, len(labels))
	for i, label := range labels {
		list[i] = addrs[label]
	}
	decoded := m.sym.decode(list)

	fmt.Fprintln(m.out)
	fmt.Fprintf(m.out, "%s%s=== Decoded Crash Location ===%s\n", colorGreen, colorBold, colorReset)
	for _, label := range labels {
		addr := addrs[label]
		location, ok := decoded[addr]
		if !ok {
			location = "<decode failed>"
		}
		fmt.Fprintf(m.out, "%s  %s: 0x%s -> %s%s\n", colorGreen, label, addr, location, colorReset)
	}
	fmt.Fprintf(m.out, "%s%s==============================%s\n", colorGreen, colorBold, colorReset)
	fmt.Fprintln(m.out)
}
