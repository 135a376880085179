package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/msos-dev/ipcgen/internal/testutil"
)

type fakeSymbolizer struct {
	decoded map[string]string
	got     []string
}

func (f *fakeSymbolizer) decode(addrs []string) map[string]string {
	f.got = append([]string(nil), addrs...)
	return f.decoded
}

func newTestMonitor(sym symbolizer) (*monitor, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	at := time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	return &monitor{
		out: buf,
		sym: sym,
		now: func() time.Time { return at },
	}, buf
}

func TestEchoPlainLines(t *testing.T) {
	m, buf := newTestMonitor(&fakeSymbolizer{})

	err := m.run(strings.NewReader("boot ok\r\nscheduler up\n"))
	testutil.NoError(t, err)

	want := "[09:26:53.589] boot ok\n[09:26:53.589] scheduler up\n"
	testutil.Equal(t, want, buf.String())
}

func TestCrashDumpDecoding(t *testing.T) {
	sym := &fakeSymbolizer{decoded: map[string]string{
		"08000ABC": "handler() at main.cpp:42",
		"08000A34": "caller() at main.cpp:17",
	}}
	m, buf := newTestMonitor(sym)

	dump := strings.Join([]string{
		"boot ok",
		"=== CRASH DUMP BEGIN ===",
		"Hard fault!",
		"  PC  : 08000ABC",
		"  LR  : 08000A34",
		"=== CRASH DUMP END ===",
		"",
	}, "\n")
	testutil.NoError(t, m.run(strings.NewReader(dump)))

	testutil.SliceEqual(t, []string{"08000ABC", "08000A34"}, sym.got)

	out := buf.String()
	testutil.Contains(t, out, "=== Decoded Crash Location ===")
	testutil.Contains(t, out, "  PC: 0x08000ABC -> handler() at main.cpp:42")
	testutil.Contains(t, out, "  LR: 0x08000A34 -> caller() at main.cpp:17")

	pc := strings.Index(out, "  PC: 0x")
	lr := strings.Index(out, "  LR: 0x")
	testutil.Greater(t, lr, pc, "PC line should come before LR")
}

func TestCrashLinesColored(t *testing.T) {
	m, buf := newTestMonitor(&fakeSymbolizer{})

	dump := "=== CRASH DUMP BEGIN ===\n  PC  : 08000ABC\n=== CRASH DUMP END ===\n"
	testutil.NoError(t, m.run(strings.NewReader(dump)))

	out := buf.String()
	testutil.Contains(t, out, colorRed+colorBold+"[09:26:53.589] === CRASH DUMP BEGIN ==="+colorReset)
	testutil.Contains(t, out, colorRed+"[09:26:53.589]   PC  : 08000ABC"+colorReset)
	testutil.Contains(t, out, colorRed+colorBold+"[09:26:53.589] === CRASH DUMP END ==="+colorReset)
}

func TestCrashDumpRepeatedRegister(t *testing.T) {
	sym := &fakeSymbolizer{decoded: map[string]string{}}
	m, _ := newTestMonitor(sym)

	dump := strings.Join([]string{
		"=== CRASH DUMP BEGIN ===",
		"  PC  : 08000AAA",
		"  PC  : 08000BBB",
		"=== CRASH DUMP END ===",
		"",
	}, "\n")
	testutil.NoError(t, m.run(strings.NewReader(dump)))

	testutil.SliceEqual(t, []string{"08000BBB"}, sym.got)
}

func TestCrashDumpWithoutAddresses(t *testing.T) {
	m, buf := newTestMonitor(&fakeSymbolizer{})

	dump := "=== CRASH DUMP BEGIN ===\nnothing useful\n=== CRASH DUMP END ===\n"
	testutil.NoError(t, m.run(strings.NewReader(dump)))

	testutil.Contains(t, buf.String(), "No addresses found in crash dump.")
	testutil.NotContains(t, buf.String(), "Decoded Crash Location")
}

func TestCrashDumpDecodeFailed(t *testing.T) {
	m, buf := newTestMonitor(&fakeSymbolizer{})

	dump := "=== CRASH DUMP BEGIN ===\n  LR  : 08000A34\n=== CRASH DUMP END ===\n"
	testutil.NoError(t, m.run(strings.NewReader(dump)))

	testutil.Contains(t, buf.String(), "  LR: 0x08000A34 -> <decode failed>")
}

func TestRegisterPattern(t *testing.T) {
	tests := []struct {
		line  string
		label string
		addr  string
	}{
		{"  PC  : 08000ABC", "PC", "08000ABC"},
		{"  LR  : 08000a34", "LR", "08000a34"},
		{"\tPC : DEADBEEF", "PC", "DEADBEEF"},
		{"  LR  : 08000A34  ", "LR", "08000A34"},
		{"PC  : 08000ABC", "", ""},
		{"  SP  : 20001000", "", ""},
		{"  PC  : 0800", "", ""},
		{"  PC  : 08000ABCD", "", ""},
	}

	for _, tt := range tests {
		match := reRegister.FindStringSubmatch(tt.line)
		if tt.label == "" {
			testutil.True(t, match == nil, "expected no match for %q", tt.line)
			continue
		}
		testutil.NotNil(t, match, "expected match for %q", tt.line)
		testutil.Equal(t, tt.label, match[1])
		testutil.Equal(t, tt.addr, match[2])
	}
}

func TestParseAddr2line(t *testing.T) {
	output := strings.Join([]string{
		"0x08000abc",
		"ipc::dispatch(unsigned long*)",
		"/src/kernel/ipc/Dispatch.cpp:88",
		"0x08000a34",
		"??",
		"??:0",
	}, "\n")

	got := parseAddr2line(output, []string{"08000abc", "08000a34"})

	testutil.Equal(t, "ipc::dispatch(unsigned long*) at /src/kernel/ipc/Dispatch.cpp:88", got["08000abc"])
	testutil.Equal(t, "?? at <unknown>", got["08000a34"])
}

func TestParseAddr2lineInlinedFrames(t *testing.T) {
	output := strings.Join([]string{
		"0x08000abc",
		"memcpy_inline",
		"/src/lib/string.h:20",
		"handleEcho(Message&)",
		"/src/app/echo/main.cpp:31",
		"0x08000a34",
		"main",
		"/src/app/echo/main.cpp:55",
	}, "\n")

	got := parseAddr2line(output, []string{"08000abc", "08000a34"})

	testutil.Equal(t, "memcpy_inline at /src/lib/string.h:20", got["08000abc"])
	testutil.Equal(t, "main at /src/app/echo/main.cpp:55", got["08000a34"])
}
