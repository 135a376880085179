package parser

import (
	"regexp"
	"strconv"

	"github.com/msos-dev/ipcgen/idl"
)

// annotationKind discriminates the meanings a bracketed attribute can carry.
// The lexer produces a single Attribute token kind; position and content
// decide which variant applies.
type annotationKind int

const (
	annUnknown annotationKind = iota
	annDirection
	annArraySize
	annMethodID
	annNotifyID
)

// annotation is one attribute token resolved into its semantic variant.
type annotation struct {
	kind annotationKind
	dir  idl.Direction // set when kind == annDirection
	n    int           // set for annArraySize, annMethodID, annNotifyID
}

// The id patterns match a prefix only: trailing text after the number is
// tolerated, matching how ids have always been accepted.
var (
	methodPattern = regexp.MustCompile(`^method\s*=\s*(\d+)`)
	notifyPattern = regexp.MustCompile(`^notify\s*=\s*(\d+)`)
)

// classify resolves the raw text of an attribute token. Text matching no
// variant yields annUnknown; the caller decides whether that is an error at
// its position.
func classify(text string) annotation {
	switch text {
	case "in":
		return annotation{kind: annDirection, dir: idl.In}
	case "out":
		return annotation{kind: annDirection, dir: idl.Out}
	}
	if isDigits(text) {
		n, err := strconv.Atoi(text)
		if err != nil {
			return annotation{kind: annUnknown}
		}
		return annotation{kind: annArraySize, n: n}
	}
	if m := methodPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return annotation{kind: annMethodID, n: n}
		}
		return annotation{kind: annUnknown}
	}
	if m := notifyPattern.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return annotation{kind: annNotifyID, n: n}
		}
		return annotation{kind: annUnknown}
	}
	return annotation{kind: annUnknown}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
