package board

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/msos-dev/ipcgen/internal/fdt"
)

const dtbMagic = 0xd00dfeed

// Tree builds the device tree equivalent of the description: one node
// per YAML section, with the property names the kernel's board layer
// reads ("system-clock", "reg", ...). Optional sections that are absent
// from the description produce no nodes; the features node is always
// present so feature flags stay additive.
func (d *Description) Tree() *fdt.Node {
	root := fdt.NewNode("").
		AddProperty(fdt.StringProperty("compatible", "msos,"+d.ID())).
		AddProperty(fdt.StringProperty("model", d.Name))

	root.AddChild(fdt.NewNode("board").
		AddProperty(fdt.StringProperty("name", d.Name)).
		AddProperty(fdt.StringProperty("mcu", d.MCU)).
		AddProperty(fdt.StringProperty("arch", d.Arch)))

	clocks := fdt.NewNode("clocks").
		AddProperty(fdt.U32Property("system-clock", d.SystemClock)).
		AddProperty(fdt.U32Property("apb1-clock", d.APB1Clock)).
		AddProperty(fdt.U32Property("apb2-clock", d.APB2Clock))
	if d.HSEClock != 0 {
		clocks.AddProperty(fdt.U32Property("hse-clock", d.HSEClock))
	}
	root.AddChild(clocks)

	memory := fdt.NewNode("memory")
	for _, r := range d.Regions {
		memory.AddChild(fdt.NewNode(r.Name).
			AddProperty(fdt.U32PairProperty("reg", r.Base, r.Size)))
	}
	root.AddChild(memory)

	console := fdt.NewNode("console").
		AddProperty(fdt.StringProperty("uart", d.ConsoleUART)).
		AddProperty(fdt.U32Property("baud", d.ConsoleBaud))
	if d.ConsoleTX != nil {
		console.AddChild(pinNode("tx", d.ConsoleTX))
	}
	if d.ConsoleRX != nil {
		console.AddChild(pinNode("rx", d.ConsoleRX))
	}
	root.AddChild(console)

	if d.LED != nil {
		root.AddChild(fdt.NewNode("led").
			AddProperty(fdt.StringProperty("port", d.LED.Port)).
			AddProperty(fdt.U32Property("pin", uint32(d.LED.Pin))))
	}

	features := fdt.NewNode("features")
	if d.FPU {
		features.AddProperty(fdt.BoolProperty("fpu"))
	}
	root.AddChild(features)

	return root
}

func pinNode(name string, p *Pin) *fdt.Node {
	return fdt.NewNode(name).
		AddProperty(fdt.StringProperty("port", p.Port)).
		AddProperty(fdt.U32Property("pin", uint32(p.Pin))).
		AddProperty(fdt.U32Property("af", uint32(p.AF)))
}

// DTB serializes the board's device tree to a flattened blob.
func (d *Description) DTB() []byte {
	return fdt.Build(d.Tree())
}

// DtbSource renders a DTB image as a C++ translation unit that exposes
// the blob as g_boardDtb alongside its size, so the tree links into
// the kernel image without filesystem support. sourcePath, when
// non-empty, is named in the banner.
func DtbSource(dtb []byte, sourcePath string) (string, error) {
	if len(dtb) < 4 {
		return "", errors.New("DTB too small (less than 4 bytes)")
	}
	if m := binary.BigEndian.Uint32(dtb); m != dtbMagic {
		return "", fmt.Errorf("bad DTB magic: 0x%08X (expected 0xD00DFEED)", m)
	}

	var b strings.Builder
	if sourcePath != "" {
		fmt.Fprintf(&b, "// Auto-generated from %s -- DO NOT EDIT\n", sourcePath)
	} else {
		b.WriteString("// Auto-generated DTB blob -- DO NOT EDIT\n")
	}
	b.WriteString("\n#include <cstdint>\n\n")
	b.WriteString("extern \"C\" const std::uint8_t g_boardDtb[] = {\n")
	for i := 0; i < len(dtb); i += 12 {
		b.WriteString("    ")
		for j, v := range dtb[i:min(i+12, len(dtb))] {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "0x%02x", v)
		}
		if i+12 < len(dtb) {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("};\n\nextern \"C\" const std::uint32_t g_boardDtbSize = sizeof(g_boardDtb);\n")
	return b.String(), nil
}
