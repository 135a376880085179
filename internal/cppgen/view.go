package cppgen

import (
	"fmt"

	"github.com/msos-dev/ipcgen/idl"
)

// The view types below carry fully rendered fragments, so the templates
// only lay out file and class skeletons. Bodies are prerendered line by
// line with their final indentation, which keeps every formatting decision
// in one reviewable place and the output deterministic.

type enumView struct {
	Name    string
	Members []string
}

type structView struct {
	Name   string
	Fields []string
}

type typesHeaderView struct {
	Banner  string
	Enums   []enumView
	Structs []structView
}

type serverHeaderView struct {
	Banner       string
	TypesInclude string
	ClassName    string
	ServiceID    string
	MethodIDs    []string
	NotifyIDs    []string
	Notifiers    []string
	Handlers     []string
}

type clientHeaderView struct {
	Banner       string
	TypesInclude string
	ClassName    string
	ServiceID    string
	MethodIDs    []string
	NotifyIDs    []string
	Stubs        []string
}

type wireStructView struct {
	Name   string
	Fields []string
}

type caseView struct {
	Label string
	Body  []string
}

type funcView struct {
	Signature string
	Body      []string
}

type serverImplView struct {
	Banner      string
	HeaderName  string
	ClassName   string
	WireStructs []wireStructView
	Cases       []caseView
	Notifiers   []funcView
}

type clientImplView struct {
	Banner      string
	HeaderName  string
	WireStructs []wireStructView
	Stubs       []funcView
}

const (
	bodyIndent = "    "
	caseIndent = "        "
)

func newTypesHeaderView(f *idl.File, source string) typesHeaderView {
	v := typesHeaderView{Banner: banner("Shared types", f, source)}
	for _, e := range f.Enums {
		ev := enumView{Name: e.Name}
		for _, m := range e.Members {
			ev.Members = append(ev.Members, fmt.Sprintf("%s = %d,", m.Name, m.Value))
		}
		v.Enums = append(v.Enums, ev)
	}
	for _, s := range f.Structs {
		sv := structView{Name: s.Name}
		for _, fld := range s.Fields {
			sv.Fields = append(sv.Fields, fieldDecl(fld))
		}
		v.Structs = append(v.Structs, sv)
	}
	return v
}

func newServerHeaderView(f *idl.File, source string) serverHeaderView {
	v := serverHeaderView{
		Banner:       banner("Server interface", f, source),
		TypesInclude: typesInclude(f),
		ClassName:    f.Service + "Server",
		ServiceID:    serviceIDLiteral(f.Service),
		MethodIDs:    methodIDMembers(f),
		NotifyIDs:    notifyIDMembers(f),
	}
	for _, n := range f.Notifications {
		v.Notifiers = append(v.Notifiers,
			fmt.Sprintf("std::int32_t notify%s(%s);", upperFirst(n.Name), notifyParams(n)))
	}
	for _, m := range f.Methods {
		v.Handlers = append(v.Handlers,
			fmt.Sprintf("virtual std::int32_t handle%s(%s) = 0;", upperFirst(m.Name), paramList(m.Params)))
	}
	return v
}

func newClientHeaderView(f *idl.File, source string) clientHeaderView {
	v := clientHeaderView{
		Banner:       banner("Client proxy", f, source),
		TypesInclude: typesInclude(f),
		ClassName:    f.Service + "Client",
		ServiceID:    serviceIDLiteral(f.Service),
		MethodIDs:    methodIDMembers(f),
		NotifyIDs:    notifyIDMembers(f),
	}
	for _, m := range f.Methods {
		v.Stubs = append(v.Stubs,
			fmt.Sprintf("std::int32_t %s(%s);", upperFirst(m.Name), paramList(m.Params)))
	}
	return v
}

func newServerImplView(f *idl.File, source string) serverImplView {
	className := f.Service + "Server"
	v := serverImplView{
		Banner:      banner("Server dispatch", f, source),
		HeaderName:  className + ".h",
		ClassName:   className,
		WireStructs: methodWireStructs(f),
	}
	for _, n := range f.Notifications {
		if len(n.Params) > 0 {
			v.WireStructs = append(v.WireStructs, wireStruct(notifyStruct(upperFirst(n.Name)), n.Params))
		}
	}
	for _, m := range f.Methods {
		v.Cases = append(v.Cases, dispatchCase(m))
	}
	for _, n := range f.Notifications {
		v.Notifiers = append(v.Notifiers, notifySender(className, n))
	}
	return v
}

func newClientImplView(f *idl.File, source string) clientImplView {
	className := f.Service + "Client"
	v := clientImplView{
		Banner:      banner("Client stubs", f, source),
		HeaderName:  className + ".h",
		WireStructs: methodWireStructs(f),
	}
	for _, m := range f.Methods {
		v.Stubs = append(v.Stubs, clientStub(className, m))
	}
	return v
}

func typesInclude(f *idl.File) string {
	if !f.HasUserTypes() {
		return ""
	}
	return fmt.Sprintf("#include %q", f.Service+"Types.h")
}

func methodIDMembers(f *idl.File) []string {
	var members []string
	for _, m := range f.Methods {
		members = append(members, fmt.Sprintf("%s = %d,", constName(m.Name), m.ID))
	}
	return members
}

func notifyIDMembers(f *idl.File) []string {
	var members []string
	for _, n := range f.Notifications {
		members = append(members, fmt.Sprintf("%s = %d,", constName(n.Name), n.ID))
	}
	return members
}

func notifyParams(n *idl.Notification) string {
	decl := "kernel::ThreadId observer"
	if len(n.Params) > 0 {
		decl += ", " + paramList(n.Params)
	}
	return decl
}

// methodWireStructs collects the request/reply structs shared by the server
// dispatch and the client stubs, in declared method order. A method gets a
// request struct only if it has in parameters and a reply struct only if it
// has out parameters.
func methodWireStructs(f *idl.File) []wireStructView {
	var structs []wireStructView
	for _, m := range f.Methods {
		name := upperFirst(m.Name)
		if in := m.In(); len(in) > 0 {
			structs = append(structs, wireStruct(requestStruct(name), in))
		}
		if out := m.Out(); len(out) > 0 {
			structs = append(structs, wireStruct(replyStruct(name), out))
		}
	}
	return structs
}

func wireStruct(name string, params []idl.Param) wireStructView {
	v := wireStructView{Name: name}
	for _, p := range params {
		v.Fields = append(v.Fields, wireField(p))
	}
	return v
}

// dispatchCase renders one case of the server's request switch: decode the
// argument struct, call the handler, and encode the reply payload.
func dispatchCase(m *idl.Method) caseView {
	name := upperFirst(m.Name)
	in, out := m.In(), m.Out()
	var body []string
	if len(in) > 0 {
		body = append(body,
			caseIndent+requestStruct(name)+" args{};",
			caseIndent+"std::memcpy(&args, request.payload, sizeof(args));")
	}
	if len(out) > 0 {
		body = append(body, caseIndent+replyStruct(name)+" out{};")
	}
	body = append(body, fmt.Sprintf("%sreply.status = handle%s(%s);", caseIndent, name, handlerArgs(m)))
	if len(out) > 0 {
		body = append(body,
			caseIndent+"std::memcpy(reply.payload, &out, sizeof(out));",
			caseIndent+"reply.payloadSize = sizeof(out);")
	}
	body = append(body, caseIndent+"break;")
	return caseView{Label: constName(m.Name), Body: body}
}

// clientStub renders one proxy method: marshal in parameters, send, check
// the transport code, unmarshal out parameters, and surface the handler
// status as the return value.
func clientStub(className string, m *idl.Method) funcView {
	name := upperFirst(m.Name)
	in, out := m.In(), m.Out()
	sig := fmt.Sprintf("std::int32_t %s::%s(%s)", className, name, paramList(m.Params))
	var body []string
	if len(in) > 0 {
		body = append(body, bodyIndent+requestStruct(name)+" args{};")
		for _, p := range in {
			if p.IsArray() {
				body = append(body,
					fmt.Sprintf("%sstd::memcpy(args.%s, %s, sizeof(args.%s));", bodyIndent, p.Name, p.Name, p.Name))
			} else {
				body = append(body, fmt.Sprintf("%sargs.%s = %s;", bodyIndent, p.Name, p.Name))
			}
		}
		body = append(body, "")
	}
	body = append(body,
		bodyIndent+"kernel::Message request{};",
		bodyIndent+"request.type = static_cast<std::uint8_t>(kernel::MessageType::Request);",
		bodyIndent+"request.methodId = "+constName(m.Name)+";",
		bodyIndent+"request.serviceId = kServiceId;")
	if len(in) > 0 {
		body = append(body,
			bodyIndent+"request.payloadSize = sizeof(args);",
			bodyIndent+"std::memcpy(request.payload, &args, sizeof(args));")
	}
	body = append(body, "",
		bodyIndent+"kernel::Message reply{};",
		bodyIndent+"std::int32_t rc = kernel::messageSend(m_serverTid, request, &reply);",
		bodyIndent+"if (rc != kernel::kIpcOk)",
		bodyIndent+"{",
		bodyIndent+"    return rc;",
		bodyIndent+"}")
	if len(out) > 0 {
		body = append(body, "",
			bodyIndent+replyStruct(name)+" out{};",
			bodyIndent+"std::memcpy(&out, reply.payload, sizeof(out));")
		for _, p := range out {
			if p.IsArray() {
				body = append(body,
					fmt.Sprintf("%sstd::memcpy(%s, out.%s, sizeof(out.%s));", bodyIndent, p.Name, p.Name, p.Name))
			} else {
				body = append(body, fmt.Sprintf("%s*%s = out.%s;", bodyIndent, p.Name, p.Name))
			}
		}
	}
	body = append(body, "", bodyIndent+"return reply.status;")
	return funcView{Signature: sig, Body: body}
}

// notifySender renders one fire-and-forget sender. Delivery uses the
// non-blocking send so a slow observer cannot stall the server loop.
func notifySender(className string, n *idl.Notification) funcView {
	name := upperFirst(n.Name)
	sig := fmt.Sprintf("std::int32_t %s::notify%s(%s)", className, name, notifyParams(n))
	var body []string
	if len(n.Params) > 0 {
		body = append(body, bodyIndent+notifyStruct(name)+" args{};")
		for _, p := range n.Params {
			if p.IsArray() {
				body = append(body,
					fmt.Sprintf("%sstd::memcpy(args.%s, %s, sizeof(args.%s));", bodyIndent, p.Name, p.Name, p.Name))
			} else {
				body = append(body, fmt.Sprintf("%sargs.%s = %s;", bodyIndent, p.Name, p.Name))
			}
		}
		body = append(body, "")
	}
	body = append(body,
		bodyIndent+"kernel::Message msg{};",
		bodyIndent+"msg.type = static_cast<std::uint8_t>(kernel::MessageType::Notify);",
		bodyIndent+"msg.methodId = "+constName(n.Name)+";",
		bodyIndent+"msg.serviceId = kServiceId;")
	if len(n.Params) > 0 {
		body = append(body,
			bodyIndent+"msg.payloadSize = sizeof(args);",
			bodyIndent+"std::memcpy(msg.payload, &args, sizeof(args));")
	}
	body = append(body, "", bodyIndent+"return kernel::messageTrySend(observer, msg);")
	return funcView{Signature: sig, Body: body}
}
