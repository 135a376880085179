// Package ipcgen compiles message-passing interface definitions into the C++
// client/server stubs used by the kernel's synchronous IPC layer.
package ipcgen

import "github.com/msos-dev/ipcgen/idl"

// Type aliases for the public API - all types come from the idl subpackage.

// File is the parsed form of one interface definition.
type File = idl.File

// Enum is a user-declared enumeration type.
type Enum = idl.Enum

// EnumMember is one name/value pair of an enum.
type EnumMember = idl.EnumMember

// Struct is a user-declared record type.
type Struct = idl.Struct

// Field is one member of a struct.
type Field = idl.Field

// Method is one request/reply operation of the service.
type Method = idl.Method

// Notification is one fire-and-forget message of the service.
type Notification = idl.Notification

// Param is one parameter of a method or notification.
type Param = idl.Param

// Direction says whether a parameter travels with the request or the reply.
type Direction = idl.Direction

// Direction constants.
const (
	In  = idl.In
	Out = idl.Out
)

// Error is the diagnostic type produced by the compile pipeline.
type Error = idl.Error

// ErrorKind classifies an Error by the phase that detected it.
type ErrorKind = idl.ErrorKind

// ErrorKind constants.
const (
	KindLex      = idl.KindLex
	KindParse    = idl.KindParse
	KindSemantic = idl.KindSemantic
)

// ServiceID returns the FNV-1a/32 hash of a service name, the wire id
// embedded in generated code.
var ServiceID = idl.ServiceID
