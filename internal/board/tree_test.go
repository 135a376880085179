package board

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"rsc.io/diff"

	"github.com/msos-dev/ipcgen/internal/testutil"
)

func childNames(t testing.TB, src string) []string {
	t.Helper()
	root := parseFixture(t, src).Tree()
	names := make([]string, 0, len(root.Children))
	for _, c := range root.Children {
		names = append(names, c.Name)
	}
	return names
}

func TestTreeLayout(t *testing.T) {
	root := parseFixture(t, testutil.BoardYAML).Tree()

	testutil.Equal(t, "", root.Name)
	testutil.Len(t, root.Properties, 2)
	testutil.Equal(t, "compatible", root.Properties[0].Name)
	testutil.Equal(t, "msos,stm32f407zgt6\x00", string(root.Properties[0].Value))
	testutil.Equal(t, "model", root.Properties[1].Name)
	testutil.Equal(t, "STM32F407ZGT6\x00", string(root.Properties[1].Value))

	testutil.SliceEqual(t, []string{"board", "clocks", "memory", "console", "led", "features"},
		childNames(t, testutil.BoardYAML))
}

func TestTreeClocks(t *testing.T) {
	root := parseFixture(t, testutil.BoardYAML).Tree()
	clocks := root.Children[1]
	testutil.Equal(t, "clocks", clocks.Name)
	testutil.Len(t, clocks.Properties, 4)
	testutil.Equal(t, "hse-clock", clocks.Properties[3].Name)

	// No HSE oscillator, no property.
	root = parseFixture(t, testutil.PynqBoardYAML).Tree()
	testutil.Len(t, root.Children[1].Properties, 3)
}

func TestTreeMemoryRegions(t *testing.T) {
	root := parseFixture(t, testutil.BoardYAML).Tree()
	memory := root.Children[2]
	testutil.Equal(t, "memory", memory.Name)
	testutil.Len(t, memory.Children, 3)
	testutil.Equal(t, "flash", memory.Children[0].Name)
	testutil.Equal(t, "reg", memory.Children[0].Properties[0].Name)
	testutil.SliceEqual(t, []byte{0x08, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00},
		memory.Children[0].Properties[0].Value)
}

func TestTreeConsolePins(t *testing.T) {
	root := parseFixture(t, testutil.BoardYAML).Tree()
	console := root.Children[3]
	testutil.Equal(t, "console", console.Name)
	testutil.Len(t, console.Children, 2)
	testutil.Equal(t, "tx", console.Children[0].Name)
	testutil.Equal(t, "rx", console.Children[1].Name)

	root = parseFixture(t, testutil.PynqBoardYAML).Tree()
	testutil.Len(t, root.Children[3].Children, 0)
}

func TestTreeOptionalNodes(t *testing.T) {
	// No LED node on the PYNQ, but features is always present.
	testutil.SliceEqual(t, []string{"board", "clocks", "memory", "console", "features"},
		childNames(t, testutil.PynqBoardYAML))

	root := parseFixture(t, testutil.PynqBoardYAML).Tree()
	features := root.Children[4]
	testutil.Len(t, features.Properties, 1)
	testutil.Equal(t, "fpu", features.Properties[0].Name)
	testutil.Len(t, features.Properties[0].Value, 0)

	root = parseFixture(t, testutil.MinimalBoardYAML).Tree()
	testutil.Len(t, root.Children[4].Properties, 0)
}

// The reference blobs in testdata were produced by an independent FDT
// writer from the same board descriptions.
func TestDTBMatchesReference(t *testing.T) {
	tests := []struct {
		fixture string
		golden  string
	}{
		{testutil.BoardYAML, "testdata/stm32f407zgt6.dtb"},
		{testutil.PynqBoardYAML, "testdata/pynq-z2.dtb"},
	}
	for _, tt := range tests {
		want, err := os.ReadFile(tt.golden)
		testutil.NoError(t, err)
		got := parseFixture(t, tt.fixture).DTB()
		if !bytes.Equal(got, want) {
			t.Errorf("%s: DTB differs from reference (%d vs %d bytes)", tt.golden, len(got), len(want))
		}
	}
}

func TestDtbSourceGolden(t *testing.T) {
	dtb := parseFixture(t, testutil.BoardYAML).DTB()
	got, err := DtbSource(dtb, "stm32f407zgt6.dtb")
	testutil.NoError(t, err)

	want := testutil.LoadFile(t, "testdata/BoardDtb.cpp")
	if got != want {
		t.Errorf("BoardDtb.cpp drifted from golden:\n%s", diff.Format(got, want))
	}
}

func TestDtbSourceLayout(t *testing.T) {
	dtb := parseFixture(t, testutil.PynqBoardYAML).DTB()
	src, err := DtbSource(dtb, "")
	testutil.NoError(t, err)

	lines := strings.Split(src, "\n")
	testutil.Equal(t, "// Auto-generated DTB blob -- DO NOT EDIT", lines[0])
	testutil.Contains(t, src, "#include <cstdint>")
	testutil.Contains(t, src, `extern "C" const std::uint8_t g_boardDtb[] = {`)
	testutil.Contains(t, src, "    0xd0, 0x0d, 0xfe, 0xed,")
	testutil.Contains(t, src, `extern "C" const std::uint32_t g_boardDtbSize = sizeof(g_boardDtb);`)

	for _, line := range lines {
		if strings.HasPrefix(line, "    0x") {
			testutil.True(t, strings.Count(line, "0x") <= 12, "line too wide: %q", line)
		}
	}
}

func TestDtbSourceRejectsBadInput(t *testing.T) {
	_, err := DtbSource([]byte{0xd0}, "")
	testutil.Error(t, err)
	testutil.Contains(t, err.Error(), "too small")

	_, err = DtbSource([]byte{1, 2, 3, 4}, "")
	testutil.Error(t, err)
	testutil.Contains(t, err.Error(), "bad DTB magic: 0x01020304")
}
