// Package idl defines the object model for ms-ipc interface definitions:
// the AST produced by the compiler front end, the primitive type table, the
// service identifier hash, and the error type shared by all compile phases.
//
// A File is constructed once per compilation and never mutated afterwards;
// the code generator and any downstream tooling consume it read-only.
package idl

// Direction says which way a parameter travels: into the service with the
// request, or back to the caller with the reply.
type Direction int

const (
	// In parameters are serialized into the request payload and passed to
	// the handler by value (or by array, for fixed-size buffers).
	In Direction = iota
	// Out parameters are filled by the handler, serialized into the reply
	// payload, and passed by pointer in generated signatures.
	Out
)

// String returns the attribute spelling of the direction.
func (d Direction) String() string {
	if d == Out {
		return "out"
	}
	return "in"
}

// File is the root of a parsed interface definition. The slices preserve
// declaration order, which generated output depends on.
type File struct {
	// Service is the logical service name. When both a service and a
	// notifications block appear they declare the same name, recorded once.
	Service string

	Enums         []*Enum
	Structs       []*Struct
	Methods       []*Method
	Notifications []*Notification
}

// HasUserTypes reports whether the file declares any enums or structs, in
// which case a shared types header is emitted.
func (f *File) HasUserTypes() bool {
	return len(f.Enums) > 0 || len(f.Structs) > 0
}

// Enum is a user-declared enumeration. Member values are author-assigned and
// may repeat (value aliasing is allowed); member names are not checked for
// uniqueness, only the type name is.
type Enum struct {
	Name    string
	Members []EnumMember
}

// EnumMember is one name/value pair of an enum.
type EnumMember struct {
	Name  string
	Value int
}

// Struct is a user-declared record type.
type Struct struct {
	Name   string
	Fields []Field
}

// Field is one struct member. ArraySize is zero for scalar fields and the
// declared element count for fixed-size array fields.
type Field struct {
	Type      string
	Name      string
	ArraySize int
}

// IsArray reports whether the field is a fixed-size array.
func (f Field) IsArray() bool { return f.ArraySize > 0 }

// Param is one method or notification parameter. Out parameters become
// pointers in generated signatures; fixed-size arrays keep their array shape
// in both directions.
type Param struct {
	Direction Direction
	Type      string
	Name      string
	ArraySize int
}

// IsArray reports whether the parameter is a fixed-size array.
func (p Param) IsArray() bool { return p.ArraySize > 0 }

// IsPointer reports whether the parameter is passed through a pointer in
// generated signatures, which holds exactly for out parameters.
func (p Param) IsPointer() bool { return p.Direction == Out }

// Method is one request/response operation of the service. ID is the
// author-assigned wire identifier from the [method=N] attribute.
type Method struct {
	Name   string
	ID     int
	Params []Param
}

// In returns the method's in-direction parameters in declaration order.
func (m *Method) In() []Param { return filterParams(m.Params, In) }

// Out returns the method's out-direction parameters in declaration order.
func (m *Method) Out() []Param { return filterParams(m.Params, Out) }

// Notification is one fire-and-forget event of the service. ID is the
// author-assigned wire identifier from the [notify=N] attribute. All
// parameters have direction in.
type Notification struct {
	Name   string
	ID     int
	Params []Param
}

func filterParams(params []Param, dir Direction) []Param {
	var out []Param
	for _, p := range params {
		if p.Direction == dir {
			out = append(out, p)
		}
	}
	return out
}
