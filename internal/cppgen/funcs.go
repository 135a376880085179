package cppgen

import (
	"fmt"
	"strings"

	"github.com/msos-dev/ipcgen/idl"
)

// cppType maps an IDL type name to the C type spelling used in generated
// fields and parameters. User-defined enums and structs keep their name.
func cppType(name string) string {
	if prim, ok := idl.LookupPrimitive(name); ok {
		return prim.CType
	}
	return name
}

// paramDecl renders one parameter of a handler, stub, or notify signature.
// Out parameters become pointers, fixed-size arrays keep array form, and
// in arrays are const since the callee must not write through them.
func paramDecl(p idl.Param) string {
	t := cppType(p.Type)
	switch {
	case p.IsArray() && p.Direction == idl.In:
		return fmt.Sprintf("const %s %s[%d]", t, p.Name, p.ArraySize)
	case p.IsArray():
		return fmt.Sprintf("%s %s[%d]", t, p.Name, p.ArraySize)
	case p.IsPointer():
		return fmt.Sprintf("%s *%s", t, p.Name)
	default:
		return fmt.Sprintf("%s %s", t, p.Name)
	}
}

func paramList(params []idl.Param) string {
	decls := make([]string, len(params))
	for i, p := range params {
		decls[i] = paramDecl(p)
	}
	return strings.Join(decls, ", ")
}

// fieldDecl renders one struct member of the shared types header.
func fieldDecl(f idl.Field) string {
	t := cppType(f.Type)
	if f.IsArray() {
		return fmt.Sprintf("%s %s[%d];", t, f.Name, f.ArraySize)
	}
	return fmt.Sprintf("%s %s;", t, f.Name)
}

// wireField renders one member of a request/reply wire struct. Direction
// is irrelevant here: the struct is plain storage for the payload bytes.
func wireField(p idl.Param) string {
	t := cppType(p.Type)
	if p.IsArray() {
		return fmt.Sprintf("%s %s[%d];", t, p.Name, p.ArraySize)
	}
	return fmt.Sprintf("%s %s;", t, p.Name)
}

// handlerArgs renders the argument list forwarding a decoded request into
// the user's handler, in declared parameter order. In values come from the
// request struct, out values point into the reply struct.
func handlerArgs(m *idl.Method) string {
	args := make([]string, len(m.Params))
	for i, p := range m.Params {
		switch {
		case p.Direction == idl.In:
			args[i] = "args." + p.Name
		case p.IsArray():
			args[i] = "out." + p.Name
		default:
			args[i] = "&out." + p.Name
		}
	}
	return strings.Join(args, ", ")
}

// constName renders the generated id constant for a method or notification.
func constName(name string) string {
	return "k" + upperFirst(name)
}

func requestStruct(name string) string { return name + "Request" }
func replyStruct(name string) string   { return name + "Reply" }
func notifyStruct(name string) string  { return name + "Notify" }

// serviceIDLiteral renders the FNV-1a hash of the service name as the
// unsigned hex literal embedded in generated headers.
func serviceIDLiteral(service string) string {
	return fmt.Sprintf("0x%08xu", idl.ServiceID(service))
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}

// banner renders the fixed do-not-edit comment that opens every artifact.
// The source path is included when known so readers can find the origin.
func banner(artifact string, f *idl.File, source string) string {
	var b strings.Builder
	b.WriteString("// Auto-generated by ipcgen (embedded) -- do not edit.\n")
	fmt.Fprintf(&b, "// %s for service '%s'.\n", artifact, f.Service)
	if source != "" {
		fmt.Fprintf(&b, "// Source: %s\n", source)
	}
	return b.String()
}
