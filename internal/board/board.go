// Package board parses YAML board descriptions and renders the
// artifacts the kernel's board layer consumes: a BoardConfig.h
// constants header, a flattened device tree blob, and the C++ wrapper
// that embeds the blob in the kernel image.
package board

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Pin names a GPIO pin together with its alternate function number.
type Pin struct {
	Port string
	Pin  int
	AF   int
}

// LED names the user LED pin. LEDs are plain outputs, so there is no
// alternate function.
type LED struct {
	Port string
	Pin  int
}

// Region is one contiguous memory region with its load address and size.
type Region struct {
	Name string
	Base uint32
	Size uint32
}

// Description is a parsed board description. Regions preserves the
// document order of the memory section so generated artifacts are
// stable across runs.
type Description struct {
	Name string
	MCU  string
	Arch string

	SystemClock uint32
	APB1Clock   uint32
	APB2Clock   uint32
	HSEClock    uint32 // 0 when the board has no external oscillator

	Regions []Region

	ConsoleUART string
	ConsoleBaud uint32
	ConsoleTX   *Pin
	ConsoleRX   *Pin

	LED *LED

	FPU bool
}

// ID is the lowercased board name, used for artifact filenames and the
// device tree compatible string.
func (d *Description) ID() string {
	return strings.ToLower(d.Name)
}

// ValidationError reports a board description that fails schema
// validation. The message names the offending field and its section.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalidf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func missingField(field, section string) error {
	return invalidf("missing required field '%s' in %s section", field, section)
}

// Raw decode targets. Pointer fields distinguish absent keys from zero
// values; a key set to null decodes to nil and counts as absent.
type rawDescription struct {
	Board    *rawBoard    `yaml:"board"`
	Clocks   *rawClocks   `yaml:"clocks"`
	Memory   yaml.Node    `yaml:"memory"`
	Console  *rawConsole  `yaml:"console"`
	LED      *rawLED      `yaml:"led"`
	Features *rawFeatures `yaml:"features"`
}

type rawBoard struct {
	Name *string `yaml:"name"`
	MCU  *string `yaml:"mcu"`
	Arch *string `yaml:"arch"`
}

type rawClocks struct {
	System *uint32 `yaml:"system"`
	APB1   *uint32 `yaml:"apb1"`
	APB2   *uint32 `yaml:"apb2"`
	HSE    *uint32 `yaml:"hse"`
}

type rawConsole struct {
	UART *string `yaml:"uart"`
	Baud *uint32 `yaml:"baud"`
	TX   *rawPin `yaml:"tx"`
	RX   *rawPin `yaml:"rx"`
}

type rawPin struct {
	Port *string `yaml:"port"`
	Pin  *int    `yaml:"pin"`
	AF   *int    `yaml:"af"`
}

type rawLED struct {
	Port *string `yaml:"port"`
	Pin  *int    `yaml:"pin"`
}

type rawFeatures struct {
	FPU bool `yaml:"fpu"`
}

type rawRegion struct {
	Base *uint32 `yaml:"base"`
	Size *uint32 `yaml:"size"`
}

// Parse validates a YAML board description and returns the parsed
// Description. Schema violations are reported as a *ValidationError
// naming the missing or malformed field.
func Parse(src []byte) (*Description, error) {
	if len(bytes.TrimSpace(src)) == 0 {
		return nil, invalidf("empty YAML input")
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, invalidf("invalid YAML: %v", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, invalidf("YAML root must be a mapping")
	}

	var raw rawDescription
	if err := doc.Content[0].Decode(&raw); err != nil {
		return nil, invalidf("invalid YAML: %v", err)
	}

	d := &Description{}
	if err := parseBoard(raw.Board, d); err != nil {
		return nil, err
	}
	if err := parseClocks(raw.Clocks, d); err != nil {
		return nil, err
	}
	regions, err := parseRegions(raw.Memory)
	if err != nil {
		return nil, err
	}
	d.Regions = regions
	if err := parseConsole(raw.Console, d); err != nil {
		return nil, err
	}
	if raw.LED != nil {
		led, err := parseLED(raw.LED)
		if err != nil {
			return nil, err
		}
		d.LED = led
	}
	if raw.Features != nil {
		d.FPU = raw.Features.FPU
	}
	return d, nil
}

// require unwraps an optional decoded field, reporting which field and
// section is missing when it was absent.
func require[T any](v *T, field, section string) (T, error) {
	if v == nil {
		var zero T
		return zero, missingField(field, section)
	}
	return *v, nil
}

func parseBoard(raw *rawBoard, d *Description) error {
	if raw == nil {
		return missingField("board", "root")
	}
	var err error
	if d.Name, err = require(raw.Name, "name", "board"); err != nil {
		return err
	}
	if d.MCU, err = require(raw.MCU, "mcu", "board"); err != nil {
		return err
	}
	if d.Arch, err = require(raw.Arch, "arch", "board"); err != nil {
		return err
	}
	return nil
}

func parseClocks(raw *rawClocks, d *Description) error {
	if raw == nil {
		return missingField("clocks", "root")
	}
	var err error
	if d.SystemClock, err = require(raw.System, "system", "clocks"); err != nil {
		return err
	}
	if d.APB1Clock, err = require(raw.APB1, "apb1", "clocks"); err != nil {
		return err
	}
	if d.APB2Clock, err = require(raw.APB2, "apb2", "clocks"); err != nil {
		return err
	}
	if raw.HSE != nil {
		d.HSEClock = *raw.HSE
	}
	return nil
}

// parseRegions walks the memory mapping as a yaml.Node so that regions
// keep their document order.
func parseRegions(node yaml.Node) ([]Region, error) {
	if node.IsZero() || node.Tag == "!!null" {
		return nil, missingField("memory", "root")
	}
	if node.Kind != yaml.MappingNode {
		return nil, invalidf("memory section must be a mapping of regions")
	}

	regions := make([]Region, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		value := node.Content[i+1]
		if value.Kind != yaml.MappingNode {
			return nil, invalidf("memory region '%s' must be a mapping with base and size", name)
		}
		var raw rawRegion
		if err := value.Decode(&raw); err != nil {
			return nil, invalidf("invalid YAML: %v", err)
		}
		base, err := require(raw.Base, "base", "memory."+name)
		if err != nil {
			return nil, err
		}
		size, err := require(raw.Size, "size", "memory."+name)
		if err != nil {
			return nil, err
		}
		regions = append(regions, Region{Name: name, Base: base, Size: size})
	}
	return regions, nil
}

func parseConsole(raw *rawConsole, d *Description) error {
	if raw == nil {
		return missingField("console", "root")
	}
	var err error
	if d.ConsoleUART, err = require(raw.UART, "uart", "console"); err != nil {
		return err
	}
	if d.ConsoleBaud, err = require(raw.Baud, "baud", "console"); err != nil {
		return err
	}
	if raw.TX != nil {
		if d.ConsoleTX, err = parsePin(raw.TX, "console.tx"); err != nil {
			return err
		}
	}
	if raw.RX != nil {
		if d.ConsoleRX, err = parsePin(raw.RX, "console.rx"); err != nil {
			return err
		}
	}
	return nil
}

func parsePin(raw *rawPin, section string) (*Pin, error) {
	port, err := require(raw.Port, "port", section)
	if err != nil {
		return nil, err
	}
	pin, err := require(raw.Pin, "pin", section)
	if err != nil {
		return nil, err
	}
	af, err := require(raw.AF, "af", section)
	if err != nil {
		return nil, err
	}
	return &Pin{Port: port, Pin: pin, AF: af}, nil
}

func parseLED(raw *rawLED) (*LED, error) {
	port, err := require(raw.Port, "port", "led")
	if err != nil {
		return nil, err
	}
	pin, err := require(raw.Pin, "pin", "led")
	if err != nil {
		return nil, err
	}
	return &LED{Port: port, Pin: pin}, nil
}
