package cppgen

import (
	"testing"

	"rsc.io/diff"

	"github.com/msos-dev/ipcgen/idl"
	"github.com/msos-dev/ipcgen/internal/lexer"
	"github.com/msos-dev/ipcgen/internal/parser"
	"github.com/msos-dev/ipcgen/internal/testutil"
)

func parse(t testing.TB, source string) *idl.File {
	t.Helper()
	tokens, err := lexer.New([]byte(source), nil).Tokenize()
	testutil.NoError(t, err)
	f, err := parser.New(tokens, nil).Parse()
	testutil.NoError(t, err)
	return f
}

func echoEmitter(t testing.TB) *Emitter {
	t.Helper()
	return New(parse(t, testutil.EchoIDL), "", nil)
}

func deviceManagerEmitter(t testing.TB) *Emitter {
	t.Helper()
	return New(parse(t, testutil.DeviceManagerIDL), "", nil)
}

func render(t testing.TB, f func() (string, error)) string {
	t.Helper()
	out, err := f()
	testutil.NoError(t, err)
	return out
}

func TestTypesHeaderEnums(t *testing.T) {
	out := render(t, deviceManagerEmitter(t).TypesHeader)

	testutil.Contains(t, out, "Auto-generated by ipcgen (embedded)")
	testutil.Contains(t, out, "#pragma once")
	testutil.Contains(t, out, "#include <cstdint>")
	testutil.Contains(t, out, "namespace kernel")
	testutil.Contains(t, out, "namespace ipc")
	testutil.Contains(t, out, "enum class DeviceType : uint32_t")
	testutil.Contains(t, out, "Sensor = 0,")
	testutil.Contains(t, out, "Actuator = 1,")
	testutil.Contains(t, out, "Controller = 2,")
	testutil.NotContains(t, out, "<vector>")
}

func TestTypesHeaderStructs(t *testing.T) {
	out := render(t, deviceManagerEmitter(t).TypesHeader)

	testutil.Contains(t, out, "struct DeviceInfo")
	testutil.Contains(t, out, "uint32_t id;")
	testutil.Contains(t, out, "DeviceType type;")
	testutil.Contains(t, out, "uint8_t serial[6];")
	testutil.NotContains(t, out, "std::array")
}

// A service without user types still renders a valid, empty header; the
// artifact list just leaves it out.
func TestTypesHeaderWithoutUserTypes(t *testing.T) {
	e := echoEmitter(t)
	out := render(t, e.TypesHeader)

	testutil.Contains(t, out, "#pragma once")
	testutil.Contains(t, out, "namespace ipc")

	artifacts, err := e.Artifacts()
	testutil.NoError(t, err)
	for _, a := range artifacts {
		if a.Name == "EchoTypes.h" {
			testutil.Fail(t, "artifact list includes types header for a service without user types")
		}
	}
}

func TestServerHeader(t *testing.T) {
	out := render(t, echoEmitter(t).ServerHeader)

	testutil.Contains(t, out, "class EchoServer")
	testutil.Contains(t, out, "kServiceId = 0x3b7d6ba4u")
	testutil.Contains(t, out, `#include "kernel/Ipc.h"`)
	testutil.Contains(t, out, "kPing = 1,")
	testutil.Contains(t, out, "kGetName = 2,")
	testutil.Contains(t, out, "kAdd = 3,")
	testutil.Contains(t, out, "kValueChanged = 1,")
	testutil.Contains(t, out, "kHeartbeat = 2,")
	testutil.Contains(t, out, "void run();")
	testutil.Contains(t, out, "virtual std::int32_t handlePing(")
	testutil.Contains(t, out, "= 0;")
	testutil.Contains(t, out, "uint32_t value")
	testutil.Contains(t, out, "uint32_t *result")
	testutil.Contains(t, out, "notifyValueChanged")
	testutil.Contains(t, out, "notifyHeartbeat")
	testutil.NotContains(t, out, "<vector>")
}

func TestServerImplDispatch(t *testing.T) {
	out := render(t, echoEmitter(t).ServerImpl)

	testutil.Contains(t, out, "kernel::messageReceive(&msg)")
	testutil.Contains(t, out, "switch (request.methodId)")
	testutil.Contains(t, out, "case kPing:")
	testutil.Contains(t, out, "case kGetName:")
	testutil.Contains(t, out, "case kAdd:")
	testutil.Contains(t, out, "handlePing(")
	testutil.Contains(t, out, "handleGetName(")
	testutil.Contains(t, out, "handleAdd(")
	testutil.Contains(t, out, "std::memcpy")
	testutil.Contains(t, out, "kernel::kIpcErrMethod")
	testutil.Contains(t, out, "kernel::messageReply(request.sender, reply)")
}

func TestServerImplPayloadGuards(t *testing.T) {
	out := render(t, echoEmitter(t).ServerImpl)

	testutil.Contains(t, out, "static_assert")
	testutil.Contains(t, out, "kernel::kMaxPayloadSize")
	testutil.Contains(t, out, `"PingRequest exceeds kernel::kMaxPayloadSize"`)
}

func TestServerImplNotifySenders(t *testing.T) {
	out := render(t, echoEmitter(t).ServerImpl)

	testutil.Contains(t, out, "std::int32_t EchoServer::notifyValueChanged(kernel::ThreadId observer, uint32_t newValue)")
	testutil.Contains(t, out, "std::int32_t EchoServer::notifyHeartbeat(kernel::ThreadId observer)")
	testutil.Contains(t, out, "kernel::MessageType::Notify")
	testutil.Contains(t, out, "kernel::messageTrySend(observer, msg)")
}

func TestClientHeader(t *testing.T) {
	out := render(t, echoEmitter(t).ClientHeader)

	testutil.Contains(t, out, "class EchoClient")
	testutil.Contains(t, out, "explicit EchoClient(kernel::ThreadId serverTid)")
	testutil.Contains(t, out, "m_serverTid(serverTid)")
	testutil.Contains(t, out, "std::int32_t Ping(")
	testutil.Contains(t, out, "std::int32_t GetName(char name[32]);")
	testutil.Contains(t, out, "kernel::ThreadId m_serverTid;")
	testutil.NotContains(t, out, "<vector>")
}

func TestClientImpl(t *testing.T) {
	out := render(t, echoEmitter(t).ClientImpl)

	testutil.Contains(t, out, "kernel::MessageType::Request")
	testutil.Contains(t, out, "kernel::messageSend(m_serverTid, request, &reply)")
	testutil.Contains(t, out, "if (rc != kernel::kIpcOk)")
	testutil.Contains(t, out, "return rc;")
	testutil.Contains(t, out, "return reply.status;")
	testutil.Contains(t, out, "static_assert")
	testutil.Contains(t, out, "std::memcpy")
}

// Out arrays are copied back through memcpy rather than element assignment.
func TestClientImplOutArrayCopy(t *testing.T) {
	out := render(t, echoEmitter(t).ClientImpl)

	testutil.Contains(t, out, "std::memcpy(name, out.name, sizeof(out.name));")
	testutil.Contains(t, out, "*result = out.result;")
	testutil.Contains(t, out, "*sum = out.sum;")
}

// Services with user types pull in the shared types header from both sides.
func TestTypedServiceIncludesTypesHeader(t *testing.T) {
	e := deviceManagerEmitter(t)

	server := render(t, e.ServerHeader)
	testutil.Contains(t, server, `#include "DeviceManagerTypes.h"`)
	testutil.Contains(t, server, "DeviceInfo *info")

	client := render(t, e.ClientHeader)
	testutil.Contains(t, client, `#include "DeviceManagerTypes.h"`)
	testutil.Contains(t, client, "DeviceInfo *info")
}

func TestArtifactNamesAndOrder(t *testing.T) {
	artifacts, err := deviceManagerEmitter(t).Artifacts()
	testutil.NoError(t, err)

	var names []string
	for _, a := range artifacts {
		names = append(names, a.Name)
	}
	testutil.SliceEqual(t, []string{
		"DeviceManagerTypes.h",
		"DeviceManagerServer.h",
		"DeviceManagerServer.cpp",
		"DeviceManagerClient.h",
		"DeviceManagerClient.cpp",
	}, names)

	artifacts, err = echoEmitter(t).Artifacts()
	testutil.NoError(t, err)
	names = names[:0]
	for _, a := range artifacts {
		names = append(names, a.Name)
	}
	testutil.SliceEqual(t, []string{
		"EchoServer.h",
		"EchoServer.cpp",
		"EchoClient.h",
		"EchoClient.cpp",
	}, names)
}

func TestArtifactsNotTrivial(t *testing.T) {
	artifacts, err := echoEmitter(t).Artifacts()
	testutil.NoError(t, err)

	for _, a := range artifacts {
		testutil.Greater(t, len(a.Content), 100, "artifact %s is suspiciously small", a.Name)
	}
}

func TestSourcePathInBanner(t *testing.T) {
	e := New(parse(t, testutil.EchoIDL), "services/echo.idl", nil)

	for _, r := range []func() (string, error){
		e.TypesHeader, e.ServerHeader, e.ServerImpl, e.ClientHeader, e.ClientImpl,
	} {
		testutil.Contains(t, render(t, r), "// Source: services/echo.idl")
	}

	out := render(t, echoEmitter(t).ServerHeader)
	testutil.NotContains(t, out, "// Source:")
}

// Two independent parses of the same source must render byte-identical
// artifacts.
func TestRenderingIsDeterministic(t *testing.T) {
	first, err := deviceManagerEmitter(t).Artifacts()
	testutil.NoError(t, err)
	second, err := deviceManagerEmitter(t).Artifacts()
	testutil.NoError(t, err)

	testutil.SliceEqual(t, first, second)
}

func TestGolden(t *testing.T) {
	echo := echoEmitter(t)
	dm := deviceManagerEmitter(t)

	tests := []struct {
		golden string
		render func() (string, error)
	}{
		{"EchoClient.h", echo.ClientHeader},
		{"EchoServer.cpp", echo.ServerImpl},
		{"DeviceManagerTypes.h", dm.TypesHeader},
	}
	for _, tt := range tests {
		t.Run(tt.golden, func(t *testing.T) {
			got := render(t, tt.render)
			want := testutil.LoadFile(t, "testdata/"+tt.golden)
			if got != want {
				t.Errorf("golden mismatch for %s:\n%s", tt.golden, diff.Format(got, want))
			}
		})
	}
}
