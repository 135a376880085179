package board

import (
	"bytes"
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed templates/config_h.txt
var templateFS embed.FS

var templates = template.Must(template.New("").ParseFS(templateFS, "templates/*.txt"))

const configHeaderTemplate = "config_h.txt"

// configView is the fully prerendered input to the header template.
// Body holds one constant declaration per entry, with empty strings
// marking blank lines between groups.
type configView struct {
	Banner   string
	Includes []string
	Body     []string
}

// ConfigHeader renders the BoardConfig.h constants header. sourcePath,
// when non-empty, is named in the banner so readers can find the YAML
// the header was generated from.
func (d *Description) ConfigHeader(sourcePath string) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, configHeaderTemplate, newConfigView(d, sourcePath)); err != nil {
		return "", fmt.Errorf("render %s: %w", configHeaderTemplate, err)
	}
	return buf.String(), nil
}

func newConfigView(d *Description, sourcePath string) configView {
	groups := [][]string{
		{
			stringConst("kBoardName", d.Name),
			stringConst("kMcu", d.MCU),
			stringConst("kArch", d.Arch),
		},
		clockLines(d),
	}
	if len(d.Regions) > 0 {
		groups = append(groups, regionLines(d.Regions))
	}
	groups = append(groups,
		[]string{
			fmt.Sprintf("constexpr hal::UartId kConsoleUart = hal::UartId::%s;", capitalize(d.ConsoleUART)),
			u32Const("kConsoleBaud", d.ConsoleBaud),
		},
		pinLines("ConsoleTx", d.ConsoleTX),
		pinLines("ConsoleRx", d.ConsoleRX),
		ledLines(d.LED),
		[]string{boolConst("kHasFpu", d.FPU)},
	)

	view := configView{
		Banner:   configBanner(sourcePath),
		Includes: halIncludes(d),
	}
	for i, group := range groups {
		if i > 0 {
			view.Body = append(view.Body, "")
		}
		view.Body = append(view.Body, group...)
	}
	return view
}

func configBanner(sourcePath string) string {
	if sourcePath != "" {
		return fmt.Sprintf("// Auto-generated from %s -- DO NOT EDIT\n", sourcePath)
	}
	return "// Auto-generated board configuration -- DO NOT EDIT\n"
}

// halIncludes lists the HAL headers the constants reference. Uart.h is
// always needed for hal::UartId; Gpio.h only when a pin constant uses
// hal::Port.
func halIncludes(d *Description) []string {
	includes := []string{`#include "hal/Uart.h"`}
	if d.ConsoleTX != nil || d.ConsoleRX != nil || d.LED != nil {
		includes = append([]string{`#include "hal/Gpio.h"`}, includes...)
	}
	return includes
}

func clockLines(d *Description) []string {
	lines := []string{
		u32Const("kSystemClock", d.SystemClock),
		u32Const("kApb1Clock", d.APB1Clock),
		u32Const("kApb2Clock", d.APB2Clock),
	}
	if d.HSEClock != 0 {
		lines = append(lines, u32Const("kHseClock", d.HSEClock))
	}
	return lines
}

func regionLines(regions []Region) []string {
	lines := make([]string, 0, 2*len(regions))
	for _, r := range regions {
		name := capitalize(r.Name)
		lines = append(lines,
			hexConst("k"+name+"Base", r.Base),
			hexConst("k"+name+"Size", r.Size))
	}
	return lines
}

// pinLines renders a kHas<Name> flag plus the port/pin/af constants
// when the pin is wired.
func pinLines(name string, p *Pin) []string {
	if p == nil {
		return []string{boolConst("kHas"+name, false)}
	}
	return []string{
		boolConst("kHas"+name, true),
		portConst("k"+name+"Port", p.Port),
		pinConst("k"+name+"Pin", p.Pin),
		pinConst("k"+name+"Af", p.AF),
	}
}

func ledLines(led *LED) []string {
	if led == nil {
		return []string{boolConst("kHasLed", false)}
	}
	return []string{
		boolConst("kHasLed", true),
		portConst("kLedPort", led.Port),
		pinConst("kLedPin", led.Pin),
	}
}

func stringConst(name, v string) string {
	return fmt.Sprintf("constexpr const char *%s = %q;", name, v)
}

func u32Const(name string, v uint32) string {
	return fmt.Sprintf("constexpr std::uint32_t %s = %d;", name, v)
}

func hexConst(name string, v uint32) string {
	return fmt.Sprintf("constexpr std::uint32_t %s = 0x%08x;", name, v)
}

func boolConst(name string, v bool) string {
	return fmt.Sprintf("constexpr bool %s = %t;", name, v)
}

func portConst(name, port string) string {
	return fmt.Sprintf("constexpr hal::Port %s = hal::Port::%s;", name, port)
}

func pinConst(name string, v int) string {
	return fmt.Sprintf("constexpr std::uint8_t %s = %d;", name, v)
}

// capitalize uppercases the first rune and lowercases the rest, turning
// YAML identifiers like "usart1" or "DDR" into Usart1 and Ddr.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
