package parser

import (
	"errors"
	"testing"

	"github.com/msos-dev/ipcgen/idl"
	"github.com/msos-dev/ipcgen/internal/lexer"
	"github.com/msos-dev/ipcgen/internal/testutil"
)

func parse(t *testing.T, source string) *idl.File {
	t.Helper()
	tokens, err := lexer.New([]byte(source), nil).Tokenize()
	testutil.NoError(t, err, "tokenize")
	file, err := New(tokens, nil).Parse()
	testutil.NoError(t, err, "parse")
	return file
}

func parseErr(t *testing.T, source string) *idl.Error {
	t.Helper()
	tokens, err := lexer.New([]byte(source), nil).Tokenize()
	testutil.NoError(t, err, "tokenize")
	file, err := New(tokens, nil).Parse()
	testutil.Error(t, err, "expected parse failure")
	testutil.Nil(t, file, "file on failure")
	var perr *idl.Error
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *idl.Error", err)
	}
	return perr
}

func TestEchoService(t *testing.T) {
	file := parse(t, testutil.EchoIDL)

	testutil.Equal(t, "Echo", file.Service, "service name")
	testutil.Len(t, file.Enums, 0, "enums")
	testutil.Len(t, file.Structs, 0, "structs")
	testutil.False(t, file.HasUserTypes(), "user types")
	testutil.Len(t, file.Methods, 3, "methods")
	testutil.Len(t, file.Notifications, 2, "notifications")

	ping := file.Methods[0]
	testutil.Equal(t, "Ping", ping.Name, "method name")
	testutil.Equal(t, 1, ping.ID, "method id")
	testutil.Len(t, ping.Params, 2, "ping params")
	testutil.Equal(t, idl.In, ping.Params[0].Direction, "value direction")
	testutil.Equal(t, "uint32", ping.Params[0].Type, "value type")
	testutil.Equal(t, "value", ping.Params[0].Name, "value name")
	testutil.False(t, ping.Params[0].IsPointer(), "in param is not a pointer")
	testutil.Equal(t, idl.Out, ping.Params[1].Direction, "result direction")
	testutil.True(t, ping.Params[1].IsPointer(), "out param is a pointer")
	testutil.Len(t, ping.In(), 1, "ping in params")
	testutil.Len(t, ping.Out(), 1, "ping out params")

	getName := file.Methods[1]
	testutil.Equal(t, "GetName", getName.Name, "method name")
	testutil.Equal(t, 2, getName.ID, "method id")
	testutil.Len(t, getName.Params, 1, "getname params")
	testutil.Equal(t, "string", getName.Params[0].Type, "name type")
	testutil.Equal(t, 32, getName.Params[0].ArraySize, "name size")
	testutil.True(t, getName.Params[0].IsArray(), "name is array")

	add := file.Methods[2]
	testutil.Equal(t, "Add", add.Name, "method name")
	testutil.Equal(t, 3, add.ID, "method id")
	testutil.Len(t, add.In(), 2, "add in params")
	testutil.Len(t, add.Out(), 1, "add out params")

	testutil.Equal(t, "ValueChanged", file.Notifications[0].Name, "notification name")
	testutil.Equal(t, 1, file.Notifications[0].ID, "notification id")
	testutil.Len(t, file.Notifications[0].Params, 1, "valuechanged params")
	testutil.Equal(t, "Heartbeat", file.Notifications[1].Name, "notification name")
	testutil.Equal(t, 2, file.Notifications[1].ID, "notification id")
	testutil.Len(t, file.Notifications[1].Params, 0, "heartbeat params")
}

func TestDeviceManagerTypes(t *testing.T) {
	file := parse(t, testutil.DeviceManagerIDL)

	testutil.Equal(t, "DeviceManager", file.Service, "service name")
	testutil.True(t, file.HasUserTypes(), "user types")

	testutil.Len(t, file.Enums, 1, "enums")
	enum := file.Enums[0]
	testutil.Equal(t, "DeviceType", enum.Name, "enum name")
	testutil.Len(t, enum.Members, 3, "enum members")
	testutil.Equal(t, "Sensor", enum.Members[0].Name, "member name")
	testutil.Equal(t, 0, enum.Members[0].Value, "member value")
	testutil.Equal(t, "Controller", enum.Members[2].Name, "member name")
	testutil.Equal(t, 2, enum.Members[2].Value, "member value")

	testutil.Len(t, file.Structs, 1, "structs")
	st := file.Structs[0]
	testutil.Equal(t, "DeviceInfo", st.Name, "struct name")
	testutil.Len(t, st.Fields, 3, "struct fields")
	testutil.Equal(t, "uint32", st.Fields[0].Type, "id type")
	testutil.False(t, st.Fields[0].IsArray(), "id is scalar")
	testutil.Equal(t, "DeviceType", st.Fields[1].Type, "type field type")
	testutil.Equal(t, "uint8", st.Fields[2].Type, "serial type")
	testutil.Equal(t, 6, st.Fields[2].ArraySize, "serial size")

	testutil.Len(t, file.Methods, 2, "methods")
	testutil.Equal(t, "GetDeviceInfo", file.Methods[1].Name, "method name")
	testutil.Equal(t, "DeviceInfo", file.Methods[1].Params[1].Type, "struct param type")
}

func TestEmptyParamList(t *testing.T) {
	file := parse(t, "service S { [method=1] int Reset(); };")

	testutil.Len(t, file.Methods, 1, "methods")
	testutil.Len(t, file.Methods[0].Params, 0, "params")
}

func TestEnumTrailingComma(t *testing.T) {
	withComma := parse(t, "enum E { A = 1, B = 2, }; service S { };")
	withoutComma := parse(t, "enum E { A = 1, B = 2 }; service S { };")

	testutil.Len(t, withComma.Enums[0].Members, 2, "members with trailing comma")
	testutil.Len(t, withoutComma.Enums[0].Members, 2, "members without trailing comma")
}

func TestEnumCommasBetweenValuesOptional(t *testing.T) {
	file := parse(t, "enum E { A = 1 B = 2 }; service S { };")
	testutil.Len(t, file.Enums[0].Members, 2, "members")
}

func TestEnumValuesMayRepeat(t *testing.T) {
	file := parse(t, "enum E { First = 1, Alias = 1 }; service S { };")

	testutil.Len(t, file.Enums[0].Members, 2, "members")
	testutil.Equal(t, 1, file.Enums[0].Members[0].Value, "first value")
	testutil.Equal(t, 1, file.Enums[0].Members[1].Value, "alias value")
}

func TestEmptyEnumAllowed(t *testing.T) {
	file := parse(t, "enum E { }; service S { };")
	testutil.Len(t, file.Enums[0].Members, 0, "members")
}

func TestEnumValueAssignmentRequired(t *testing.T) {
	perr := parseErr(t, "enum E { A }; service S { };")

	testutil.Equal(t, idl.KindParse, perr.Kind, "error kind")
	testutil.Equal(t, idl.CodeUnexpectedToken, perr.Code, "error code")
	testutil.Equal(t, "line 1: expected '=', got '}'", perr.Error(), "message")
}

func TestDuplicateTypeName(t *testing.T) {
	tests := []struct {
		name   string
		source string
		typ    string
	}{
		{"enum twice", "enum X { A = 1 }; enum X { B = 2 }; service S { };", "X"},
		{"struct after enum", "enum X { A = 1 }; struct X { uint32 f; }; service S { };", "X"},
		{"enum shadows primitive", "enum uint32 { A = 1 }; service S { };", "uint32"},
		{"struct shadows string", "struct string { uint32 f; }; service S { };", "string"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			perr := parseErr(t, tc.source)
			testutil.Equal(t, idl.KindSemantic, perr.Kind, "error kind")
			testutil.Equal(t, idl.CodeDuplicateType, perr.Code, "error code")
			testutil.Contains(t, perr.Message, "type '"+tc.typ+"' already defined", "message")
		})
	}
}

func TestUnknownFieldType(t *testing.T) {
	perr := parseErr(t, "struct S { Widget w; }; service X { };")

	testutil.Equal(t, idl.KindSemantic, perr.Kind, "error kind")
	testutil.Equal(t, idl.CodeUnknownType, perr.Code, "error code")
	testutil.Equal(t, "line 1: unknown type 'Widget'", perr.Error(), "message")
}

func TestUnknownParamType(t *testing.T) {
	perr := parseErr(t, "service S { [method=1] int M([in] Widget w); };")

	testutil.Equal(t, idl.CodeUnknownType, perr.Code, "error code")
	testutil.Contains(t, perr.Message, "'Widget'", "message names the type")
}

func TestForwardReferenceRejected(t *testing.T) {
	source := `struct A
{
    B inner;
};

struct B
{
    uint32 x;
};

service S { };`
	perr := parseErr(t, source)

	testutil.Equal(t, idl.CodeUnknownType, perr.Code, "error code")
	testutil.Equal(t, 3, perr.Line, "error line")
	testutil.Contains(t, perr.Message, "'B'", "message names the type")
}

func TestDeclarationBeforeUseAccepted(t *testing.T) {
	source := `struct A { uint32 x; };
struct B { A a; };
service S { [method=1] int Get([out] B b); };`
	file := parse(t, source)

	testutil.Len(t, file.Structs, 2, "structs")
	testutil.Equal(t, "A", file.Structs[1].Fields[0].Type, "nested struct type")
	testutil.Equal(t, "B", file.Methods[0].Params[0].Type, "param struct type")
}

func TestEmptyStructFails(t *testing.T) {
	perr := parseErr(t, "struct Empty { }; service S { };")

	testutil.Equal(t, idl.KindSemantic, perr.Kind, "error kind")
	testutil.Equal(t, idl.CodeEmptyStruct, perr.Code, "error code")
	testutil.Equal(t, "line 1: struct 'Empty' has no fields", perr.Error(), "message")
}

func TestStringRequiresSize(t *testing.T) {
	fieldErr := parseErr(t, "struct S { string name; }; service X { };")
	testutil.Equal(t, idl.CodeStringMissingSize, fieldErr.Code, "field error code")
	testutil.Contains(t, fieldErr.Message, "string[64]", "field message shows example")

	paramErr := parseErr(t, "service X { [method=1] int M([in] string name); };")
	testutil.Equal(t, idl.CodeStringMissingSize, paramErr.Code, "param error code")

	file := parse(t, "service X { [method=1] int M([in] string[16] name); };")
	testutil.Equal(t, 16, file.Methods[0].Params[0].ArraySize, "sized string accepted")
}

func TestArraySizeMustBePositive(t *testing.T) {
	perr := parseErr(t, "struct S { uint8[0] buf; }; service X { };")

	testutil.Equal(t, idl.KindSemantic, perr.Kind, "error kind")
	testutil.Equal(t, idl.CodeInvalidArraySize, perr.Code, "error code")
	testutil.Contains(t, perr.Message, "array size must be >= 1", "message")
}

func TestNotificationOutParamRejected(t *testing.T) {
	source := `service S { };
notifications S
{
    [notify=1]
    void Changed([out] uint32 v);
};`
	perr := parseErr(t, source)

	testutil.Equal(t, idl.KindSemantic, perr.Kind, "error kind")
	testutil.Equal(t, idl.CodeNotificationOutParam, perr.Code, "error code")
	testutil.Equal(t, 4, perr.Line, "error at the notify annotation line")
	testutil.Contains(t, perr.Message, "must be [in]", "message")
}

func TestServiceNameMismatch(t *testing.T) {
	perr := parseErr(t, "service A { };\nnotifications B { };")
	testutil.Equal(t, idl.KindSemantic, perr.Kind, "error kind")
	testutil.Equal(t, idl.CodeServiceNameMismatch, perr.Code, "error code")
	testutil.Equal(t, "line 2: notifications name mismatch: 'B' vs 'A'", perr.Error(), "message")

	perr = parseErr(t, "notifications B { };\nservice A { };")
	testutil.Equal(t, idl.CodeServiceNameMismatch, perr.Code, "error code")
	testutil.Equal(t, "line 2: service name mismatch: 'A' vs 'B'", perr.Error(), "message")
}

func TestMissingServiceBlock(t *testing.T) {
	perr := parseErr(t, "enum E\n{\n    A = 1\n};\n")

	testutil.Equal(t, idl.KindSemantic, perr.Kind, "error kind")
	testutil.Equal(t, idl.CodeMissingServiceBlock, perr.Code, "error code")
	testutil.Equal(t, 5, perr.Line, "reported at end of input")
	testutil.Contains(t, perr.Message, "no service block found", "message")
}

func TestNotificationsAloneSatisfyServiceName(t *testing.T) {
	file := parse(t, "notifications Sensor { [notify=1] void Tick(); };")

	testutil.Equal(t, "Sensor", file.Service, "service name from notifications")
	testutil.Len(t, file.Methods, 0, "methods")
	testutil.Len(t, file.Notifications, 1, "notifications")
}

func TestBadMethodAnnotation(t *testing.T) {
	perr := parseErr(t, "service S { [method=x] int M(); };")
	testutil.Equal(t, idl.KindParse, perr.Kind, "error kind")
	testutil.Equal(t, idl.CodeBadAnnotation, perr.Code, "error code")
	testutil.Equal(t, "line 1: expected [method=N], got [method=x]", perr.Error(), "message")

	perr = parseErr(t, "service S { [in] int M(); };")
	testutil.Equal(t, idl.CodeBadAnnotation, perr.Code, "error code")
	testutil.Contains(t, perr.Message, "got [in]", "message")
}

func TestBadNotifyAnnotation(t *testing.T) {
	perr := parseErr(t, "notifications S { [method=1] void M(); };")

	testutil.Equal(t, idl.CodeBadAnnotation, perr.Code, "error code")
	testutil.Equal(t, "line 1: expected [notify=N], got [method=1]", perr.Error(), "message")
}

func TestBadDirectionAnnotation(t *testing.T) {
	perr := parseErr(t, "service S { [method=1] int M([inout] uint32 v); };")

	testutil.Equal(t, idl.CodeBadAnnotation, perr.Code, "error code")
	testutil.Equal(t, "line 1: expected [in] or [out], got [inout]", perr.Error(), "message")
}

func TestTopLevelGarbage(t *testing.T) {
	perr := parseErr(t, "widget W { };")
	testutil.Equal(t, idl.KindParse, perr.Kind, "error kind")
	testutil.Equal(t, idl.CodeUnexpectedToken, perr.Code, "error code")
	testutil.Equal(t,
		"line 1: expected 'enum', 'struct', 'service', or 'notifications', got 'widget'",
		perr.Error(), "message")

	perr = parseErr(t, "int x;")
	testutil.Contains(t, perr.Message, "got 'int'", "keyword outside a block")
}

func TestAnnotationSpacingTolerated(t *testing.T) {
	file := parse(t, "service S { [method = 7] int M(); };")
	testutil.Equal(t, 7, file.Methods[0].ID, "method id with spaces")
}

func TestRepeatedServiceBlocksMerge(t *testing.T) {
	source := `service Echo { [method=1] int A(); };
service Echo { [method=2] int B(); };`
	file := parse(t, source)

	testutil.Equal(t, "Echo", file.Service, "service name")
	testutil.Len(t, file.Methods, 2, "methods merged in order")
	testutil.Equal(t, "A", file.Methods[0].Name, "first method")
	testutil.Equal(t, "B", file.Methods[1].Name, "second method")
}

func TestTruncatedServiceBody(t *testing.T) {
	perr := parseErr(t, "service Echo {")

	testutil.Equal(t, idl.CodeUnexpectedToken, perr.Code, "error code")
	testutil.Contains(t, perr.Message, "end of input", "message")
}

func TestMethodMissingSemicolon(t *testing.T) {
	perr := parseErr(t, "service S { [method=1] int M() };")

	testutil.Equal(t, idl.CodeUnexpectedToken, perr.Code, "error code")
	testutil.Equal(t, "line 1: expected ';', got '}'", perr.Error(), "message")
}

func TestErrorLineNumbers(t *testing.T) {
	source := `service Echo
{
    [method=1]
    int Ping([in] Widget w);
};`
	perr := parseErr(t, source)

	testutil.Equal(t, 4, perr.Line, "error line")
}

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		kind annotationKind
		n    int
	}{
		{"in", annDirection, 0},
		{"out", annDirection, 0},
		{"6", annArraySize, 6},
		{"32", annArraySize, 32},
		{"method=1", annMethodID, 1},
		{"method = 12", annMethodID, 12},
		{"method=1 junk", annMethodID, 1},
		{"notify=2", annNotifyID, 2},
		{"notify = 9", annNotifyID, 9},
		{"method=x", annUnknown, 0},
		{"notify=", annUnknown, 0},
		{"inout", annUnknown, 0},
		{"12ab", annUnknown, 0},
		{"", annUnknown, 0},
	}

	for _, tc := range tests {
		ann := classify(tc.text)
		testutil.Equal(t, tc.kind, ann.kind, "classify(%q) kind", tc.text)
		if tc.kind == annArraySize || tc.kind == annMethodID || tc.kind == annNotifyID {
			testutil.Equal(t, tc.n, ann.n, "classify(%q) value", tc.text)
		}
	}
}

func TestClassifyDirections(t *testing.T) {
	testutil.Equal(t, idl.In, classify("in").dir, "in direction")
	testutil.Equal(t, idl.Out, classify("out").dir, "out direction")
}
