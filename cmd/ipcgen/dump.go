package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/msos-dev/ipcgen"
	"github.com/msos-dev/ipcgen/cmd/internal/cliutil"
	"github.com/msos-dev/ipcgen/idl"
)

const dumpUsage = `ipcgen dump - Output a parsed interface definition as JSON

Usage:
  ipcgen dump [options] FILE.idl

Options:
  -o, --output FILE  Write JSON to FILE instead of stdout
  --compact          Minified JSON (no indentation)
  -h, --help         Show help

Examples:
  ipcgen dump idl/echo.idl
  ipcgen dump --compact idl/echo.idl
  ipcgen dump idl/echo.idl | jq '.methods[].name'
`

func (c *cli) cmdDump(args []string) int {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, dumpUsage) }

	output := fs.String("o", "", "write JSON to file")
	fs.StringVar(output, "output", "", "write JSON to file")
	compact := fs.Bool("compact", false, "minified JSON")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, dumpUsage)
		return exitOK
	}

	if fs.NArg() != 1 {
		printError("expected exactly one .idl file")
		fmt.Fprint(os.Stderr, dumpUsage)
		return exitUsage
	}

	path := fs.Arg(0)
	file, err := ipcgen.CompileFile(path, c.compileOptions(path)...)
	if err != nil {
		printCompileError(path, err)
		return exitError
	}

	data, err := marshalJSON(buildFileJSON(file), !*compact)
	if err != nil {
		printError("failed to marshal JSON: %v", err)
		return exitError
	}

	out, cleanup, err := cliutil.GetOutput(*output)
	if err != nil {
		printError("%v", err)
		return exitError
	}
	defer cleanup()

	fmt.Fprintln(out, string(data))
	return exitOK
}

func buildFileJSON(file *idl.File) *FileJSON {
	f := &FileJSON{
		Service:   file.Service,
		ServiceID: fmt.Sprintf("0x%08x", idl.ServiceID(file.Service)),
	}

	for _, e := range file.Enums {
		f.Enums = append(f.Enums, buildEnumJSON(e))
	}
	for _, s := range file.Structs {
		f.Structs = append(f.Structs, buildStructJSON(s))
	}
	for _, m := range file.Methods {
		f.Methods = append(f.Methods, buildMethodJSON(m.Name, m.ID, m.Params))
	}
	for _, n := range file.Notifications {
		f.Notifications = append(f.Notifications, buildMethodJSON(n.Name, n.ID, n.Params))
	}

	return f
}

func buildEnumJSON(e *idl.Enum) EnumJSON {
	ej := EnumJSON{Name: e.Name}
	for _, m := range e.Members {
		ej.Members = append(ej.Members, EnumMemberJSON{Name: m.Name, Value: m.Value})
	}
	return ej
}

func buildStructJSON(s *idl.Struct) StructJSON {
	sj := StructJSON{Name: s.Name}
	for _, fld := range s.Fields {
		sj.Fields = append(sj.Fields, FieldJSON{
			Name:      fld.Name,
			Type:      fld.Type,
			ArraySize: fld.ArraySize,
		})
	}
	return sj
}

func buildMethodJSON(name string, id int, params []idl.Param) MethodJSON {
	mj := MethodJSON{Name: name, ID: id}
	for _, p := range params {
		mj.Params = append(mj.Params, ParamJSON{
			Direction: p.Direction.String(),
			Name:      p.Name,
			Type:      p.Type,
			ArraySize: p.ArraySize,
		})
	}
	return mj
}
