package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
)

const flashUsage = `msbuild flash - Build and flash an app to a board

Usage:
  msbuild flash [options]

Options:
  --target BOARD  Target board (default from msbuild.toml)
  --app NAME      App image to flash (default from the board config)
  --probe PROBE   Debug probe: jlink or cmsis-dap (default: jlink)
  -h, --help      Show help

The target is built first. Boards with an openocd_config are loaded into
RAM over JTAG and started at their load_address; other boards have the app
binary programmed into flash via the selected probe.

Examples:
  msbuild flash
  msbuild flash --probe cmsis-dap
  msbuild flash --target pynq-z2 --app hello
`

func (c *cli) cmdFlash(args []string) int {
	fs := flag.NewFlagSet("flash", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, flashUsage) }

	target := fs.String("target", "", "target board")
	app := fs.String("app", "", "app image to flash")
	probe := fs.String("probe", "jlink", "debug probe")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *help || c.helpFlag {
		_, _ = fmt.Fprint(os.Stdout, flashUsage)
		return 0
	}

	switch *probe {
	case "jlink", "cmsis-dap":
		// ok
	default:
		printError("unknown probe: %s", *probe)
		return 2
	}

	cfg, err := c.loadConfig()
	if err != nil {
		printError("%v", err)
		return 1
	}
	name, board, err := resolveBoard(cfg, *target)
	if err != nil {
		printError("%v", err)
		return 1
	}

	if *app == "" {
		*app = board.DefaultApp
	}
	if *app == "" {
		*app = "threads"
	}

	if code := buildFirmware(cfg, name); code != 0 {
		return code
	}

	switch {
	case board.OpenOCDConfig != "":
		return flashJTAG(cfg, board, *app)
	case *probe == "cmsis-dap":
		return flashOpenOCD(cfg, board, *app)
	default:
		return flashJLink(cfg, board, *app)
	}
}

// appBin is the raw binary image path for flash programming.
func appBin(cfg Config, app string) string {
	return filepath.Join(cfg.Project.BuildDir, "app", app, app+".bin")
}

// appELF is the linked image path for RAM loading.
func appELF(cfg Config, app string) string {
	return filepath.Join(cfg.Project.BuildDir, "app", app, app)
}

func requireImage(path string) bool {
	if _, err := os.Stat(path); err != nil {
		printError("%s not found. Run build first.", path)
		return false
	}
	return true
}

func flashBase(b Board) string {
	if b.FlashBase != "" {
		return b.FlashBase
	}
	return "0x08000000"
}

// flashJLink programs the app binary into flash through a J-Link probe,
// driving JLinkExe with a generated command file.
func flashJLink(cfg Config, b Board, app string) int {
	bin := appBin(cfg, app)
	if !requireImage(bin) {
		return 1
	}

	device := b.JLinkDevice
	if device == "" {
		device = "STM32F207ZG"
	}

	script := filepath.Join(cfg.Project.BuildDir, "flash.jlink")
	if err := os.WriteFile(script, []byte(jlinkScript(bin, flashBase(b))), 0o644); err != nil {
		printError("%v", err)
		return 1
	}

	if err := (runner{}).run(cfg.Tools.JLink,
		"-device", device,
		"-if", "SWD",
		"-speed", "4000",
		"-autoconnect", "1",
		"-CommandFile", script,
	); err != nil {
		return commandExit(err)
	}
	return 0
}

func jlinkScript(bin, base string) string {
	return fmt.Sprintf("loadbin %s, %s\nr\ng\nq\n", bin, base)
}

// flashOpenOCD programs the app binary into flash through a CMSIS-DAP probe.
func flashOpenOCD(cfg Config, b Board, app string) int {
	bin := appBin(cfg, app)
	if !requireImage(bin) {
		return 1
	}

	if err := (runner{}).run(cfg.Tools.OpenOCD,
		"-f", "interface/cmsis-dap.cfg",
		"-c", "cmsis_dap_vid_pid 0xc251 0xf001",
		"-f", "target/stm32f4x.cfg",
		"-c", fmt.Sprintf("program %s %s verify reset exit", bin, flashBase(b)),
	); err != nil {
		return commandExit(err)
	}
	return 0
}

// flashJTAG loads the linked image into RAM over JTAG and resumes at the
// board's load address.
func flashJTAG(cfg Config, b Board, app string) int {
	elf := appELF(cfg, app)
	if !requireImage(elf) {
		return 1
	}
	if _, err := os.Stat(b.OpenOCDConfig); err != nil {
		printError("%s not found.", b.OpenOCDConfig)
		return 1
	}

	if err := (runner{}).run(cfg.Tools.OpenOCD,
		"-f", b.OpenOCDConfig,
		"-c", "init",
		"-c", "halt",
		"-c", "load_image "+elf,
		"-c", "resume "+b.LoadAddress,
		"-c", "shutdown",
	); err != nil {
		return commandExit(err)
	}
	return 0
}
