package main

import (
	"encoding/json"
)

// FileJSON is the top-level JSON output for the dump command.
type FileJSON struct {
	Service       string       `json:"service"`
	ServiceID     string       `json:"serviceId"`
	Enums         []EnumJSON   `json:"enums,omitempty"`
	Structs       []StructJSON `json:"structs,omitempty"`
	Methods       []MethodJSON `json:"methods,omitempty"`
	Notifications []MethodJSON `json:"notifications,omitempty"`
}

// EnumJSON holds the JSON-serializable form of an enum declaration.
type EnumJSON struct {
	Name    string           `json:"name"`
	Members []EnumMemberJSON `json:"members"`
}

// EnumMemberJSON holds one name/value pair of an enum.
type EnumMemberJSON struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// StructJSON holds the JSON-serializable form of a struct declaration.
type StructJSON struct {
	Name   string      `json:"name"`
	Fields []FieldJSON `json:"fields"`
}

// FieldJSON holds one struct field.
type FieldJSON struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	ArraySize int    `json:"arraySize,omitempty"`
}

// MethodJSON holds the JSON-serializable form of a method or notification.
type MethodJSON struct {
	Name   string      `json:"name"`
	ID     int         `json:"id"`
	Params []ParamJSON `json:"params,omitempty"`
}

// ParamJSON holds one method parameter.
type ParamJSON struct {
	Direction string `json:"direction"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	ArraySize int    `json:"arraySize,omitempty"`
}

func marshalJSON(v any, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
