// Package fdt builds flattened device tree blobs (DTB) from an in-memory
// node tree. Output matches `dtc -I dts -O dtb` for the same tree.
//
// DTB layout (all fields big-endian):
//   - 40-byte header
//   - memory reservation block (empty, 16 zero bytes)
//   - structure block (tokens + property data, 4-byte aligned)
//   - strings block (null-terminated property names, deduplicated)
package fdt

import "encoding/binary"

// Structure block tokens.
const (
	tokenBeginNode = 1
	tokenEndNode   = 2
	tokenProp      = 3
	tokenEnd       = 9
)

const (
	magic           = 0xd00dfeed
	version         = 17
	lastCompVersion = 16
	headerSize      = 40
	memRsvSize      = 16
)

// Property is a device tree property with a name and an encoded value.
type Property struct {
	Name  string
	Value []byte
}

// StringProperty returns a null-terminated string property.
func StringProperty(name, text string) Property {
	value := make([]byte, 0, len(text)+1)
	value = append(value, text...)
	value = append(value, 0)
	return Property{Name: name, Value: value}
}

// U32Property returns a single big-endian uint32 property.
func U32Property(name string, v uint32) Property {
	return Property{Name: name, Value: binary.BigEndian.AppendUint32(nil, v)}
}

// U32PairProperty returns a two-element big-endian uint32 property, the
// encoding used for <base size> register ranges.
func U32PairProperty(name string, a, b uint32) Property {
	value := binary.BigEndian.AppendUint32(nil, a)
	return Property{Name: name, Value: binary.BigEndian.AppendUint32(value, b)}
}

// BoolProperty returns an empty property whose presence is the value.
func BoolProperty(name string) Property {
	return Property{Name: name, Value: []byte{}}
}

// Node is a device tree node with properties and children, emitted in
// insertion order.
type Node struct {
	Name       string
	Properties []Property
	Children   []*Node
}

// NewNode returns a node with the given name. The root node of a tree is
// conventionally named "".
func NewNode(name string) *Node {
	return &Node{Name: name}
}

// AddProperty appends a property and returns the node for chaining.
func (n *Node) AddProperty(p Property) *Node {
	n.Properties = append(n.Properties, p)
	return n
}

// AddChild appends a child node and returns the parent for chaining.
func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return n
}

// stringTable assigns strings-block offsets to property names in first-use
// order, deduplicating repeats.
type stringTable struct {
	offsets map[string]uint32
	data    []byte
}

func (t *stringTable) offset(name string) uint32 {
	off, ok := t.offsets[name]
	if !ok {
		off = uint32(len(t.data))
		t.offsets[name] = off
		t.data = append(t.data, name...)
		t.data = append(t.data, 0)
	}
	return off
}

// Build serializes the tree rooted at root into a complete DTB image.
func Build(root *Node) []byte {
	strings := &stringTable{offsets: make(map[string]uint32)}

	structBlock := appendNode(nil, root, strings)
	structBlock = binary.BigEndian.AppendUint32(structBlock, tokenEnd)

	offMemRsv := uint32(headerSize)
	offStruct := offMemRsv + memRsvSize
	offStrings := offStruct + uint32(len(structBlock))
	totalSize := offStrings + uint32(len(strings.data))

	out := make([]byte, 0, totalSize)
	out = binary.BigEndian.AppendUint32(out, magic)
	out = binary.BigEndian.AppendUint32(out, totalSize)
	out = binary.BigEndian.AppendUint32(out, offStruct)
	out = binary.BigEndian.AppendUint32(out, offStrings)
	out = binary.BigEndian.AppendUint32(out, offMemRsv)
	out = binary.BigEndian.AppendUint32(out, version)
	out = binary.BigEndian.AppendUint32(out, lastCompVersion)
	out = binary.BigEndian.AppendUint32(out, 0) // boot_cpuid_phys
	out = binary.BigEndian.AppendUint32(out, uint32(len(strings.data)))
	out = binary.BigEndian.AppendUint32(out, uint32(len(structBlock)))
	out = append(out, make([]byte, memRsvSize)...)
	out = append(out, structBlock...)
	out = append(out, strings.data...)
	return out
}

func appendNode(buf []byte, n *Node, strings *stringTable) []byte {
	buf = binary.BigEndian.AppendUint32(buf, tokenBeginNode)
	buf = append(buf, n.Name...)
	buf = append(buf, 0)
	buf = pad4(buf)

	for _, p := range n.Properties {
		buf = binary.BigEndian.AppendUint32(buf, tokenProp)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(p.Value)))
		buf = binary.BigEndian.AppendUint32(buf, strings.offset(p.Name))
		buf = append(buf, p.Value...)
		buf = pad4(buf)
	}
	for _, child := range n.Children {
		buf = appendNode(buf, child, strings)
	}
	return binary.BigEndian.AppendUint32(buf, tokenEndNode)
}

func pad4(buf []byte) []byte {
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	return buf
}
