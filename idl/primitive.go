package idl

import "sort"

// Primitive is one built-in IDL type and its C rendering in generated code.
type Primitive struct {
	// Name is the IDL spelling, e.g. "uint32".
	Name string
	// CType is the C type emitted for the primitive, e.g. "uint32_t".
	CType string
	// NeedsSize is set for primitives that only exist as fixed-size
	// buffers; a field or parameter of such a type must carry an explicit
	// array-size attribute.
	NeedsSize bool
}

// primitives is the fixed built-in type table, sorted by IDL name for binary
// search. The mapping is part of the generated-code contract and never grows
// at runtime.
var primitives = []Primitive{
	{Name: "bool", CType: "bool"},
	{Name: "float32", CType: "float"},
	{Name: "float64", CType: "double"},
	{Name: "int16", CType: "int16_t"},
	{Name: "int32", CType: "int32_t"},
	{Name: "int64", CType: "int64_t"},
	{Name: "int8", CType: "int8_t"},
	{Name: "string", CType: "char", NeedsSize: true},
	{Name: "uint16", CType: "uint16_t"},
	{Name: "uint32", CType: "uint32_t"},
	{Name: "uint64", CType: "uint64_t"},
	{Name: "uint8", CType: "uint8_t"},
}

// LookupPrimitive returns the built-in primitive for an IDL type name.
func LookupPrimitive(name string) (Primitive, bool) {
	idx := sort.Search(len(primitives), func(i int) bool {
		return primitives[i].Name >= name
	})
	if idx < len(primitives) && primitives[idx].Name == name {
		return primitives[idx], true
	}
	return Primitive{}, false
}

// IsPrimitive reports whether name is a built-in primitive type name.
func IsPrimitive(name string) bool {
	_, ok := LookupPrimitive(name)
	return ok
}
