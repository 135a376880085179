package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/mod/semver"
)

// Config is the msbuild.toml schema. Every field has a built-in default, so
// a missing or partial config file is fine; boards declared in the file
// replace same-named defaults wholesale.
type Config struct {
	Project   Project          `toml:"project"`
	Tools     Tools            `toml:"tools"`
	Toolchain Toolchain        `toml:"toolchain"`
	Boards    map[string]Board `toml:"boards"`
}

// Project holds directory layout and target selection.
type Project struct {
	BuildDir      string `toml:"build_dir"`
	TestBuildDir  string `toml:"test_build_dir"`
	ToolchainFile string `toml:"toolchain_file"`
	DefaultTarget string `toml:"default_target"`
}

// Tools names the external executables msbuild shells out to.
type Tools struct {
	CMake   string `toml:"cmake"`
	Ninja   string `toml:"ninja"`
	CTest   string `toml:"ctest"`
	JLink   string `toml:"jlink"`
	OpenOCD string `toml:"openocd"`
}

// Toolchain describes the cross compiler. MinGCC, when set, gates builds on
// the version reported by <prefix>gcc -dumpfullversion.
type Toolchain struct {
	Prefix string `toml:"prefix"`
	MinGCC string `toml:"min_gcc"`
}

// Board holds per-target flashing and device tree settings. A board with an
// OpenOCDConfig is loaded into RAM over JTAG; others are programmed into
// flash via J-Link or CMSIS-DAP.
type Board struct {
	YAML          string `toml:"yaml"`
	JLinkDevice   string `toml:"jlink_device"`
	OpenOCDConfig string `toml:"openocd_config"`
	FlashBase     string `toml:"flash_base"`
	LoadAddress   string `toml:"load_address"`
	DefaultApp    string `toml:"default_app"`
}

func defaultConfig() Config {
	return Config{
		Project: Project{
			BuildDir:      "build",
			TestBuildDir:  "build-test",
			ToolchainFile: "cmake/arm-none-eabi-gcc.cmake",
			DefaultTarget: "stm32f207zgt6",
		},
		Tools: Tools{
			CMake:   "cmake",
			Ninja:   "ninja",
			CTest:   "ctest",
			JLink:   "JLinkExe",
			OpenOCD: "openocd",
		},
		Toolchain: Toolchain{
			Prefix: "arm-none-eabi-",
		},
		Boards: map[string]Board{
			"stm32f207zgt6": {
				YAML:        "boards/stm32f207zgt6.yaml",
				JLinkDevice: "STM32F207ZG",
				FlashBase:   "0x08000000",
				DefaultApp:  "threads",
			},
			"stm32f407zgt6": {
				YAML:        "boards/stm32f407zgt6.yaml",
				JLinkDevice: "STM32F407ZG",
				FlashBase:   "0x08000000",
				DefaultApp:  "threads",
			},
			"pynq-z2": {
				YAML:          "boards/pynq-z2.yaml",
				OpenOCDConfig: "openocd/pynq-z2.cfg",
				LoadAddress:   "0x00100000",
				DefaultApp:    "hello",
			},
		},
	}
}

// loadConfig reads the TOML config at path over the defaults. A missing
// file is an error only when the path was given explicitly; unknown keys
// are always an error.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("unknown config key %q in %s", undecoded[0].String(), path)
	}
	return cfg, nil
}

func (c *cli) loadConfig() (Config, error) {
	return loadConfig(c.config, c.configSet)
}

// resolveBoard picks the requested target, or the configured default when
// target is empty.
func resolveBoard(cfg Config, target string) (string, Board, error) {
	if target == "" {
		target = cfg.Project.DefaultTarget
	}
	board, ok := cfg.Boards[target]
	if !ok {
		return "", Board{}, fmt.Errorf("unknown board '%s'", target)
	}
	return target, board, nil
}

// checkToolchain verifies the cross compiler meets the configured minimum
// version. An empty min_gcc disables the check.
func checkToolchain(tc Toolchain) error {
	if tc.MinGCC == "" {
		return nil
	}
	gcc := tc.Prefix + "gcc"
	out, err := exec.Command(gcc, "-dumpfullversion").Output()
	if err != nil {
		return fmt.Errorf("cannot run %s: %v", gcc, err)
	}
	version := strings.TrimSpace(string(out))
	if !gccAtLeast(version, tc.MinGCC) {
		return fmt.Errorf("%s is version %s, need at least %s", gcc, version, tc.MinGCC)
	}
	return nil
}

// gccAtLeast reports whether a GCC version string ("13.2.1") satisfies the
// minimum. Comparison follows semver ordering.
func gccAtLeast(version, min string) bool {
	v, m := "v"+version, "v"+min
	if !semver.IsValid(v) || !semver.IsValid(m) {
		return false
	}
	return semver.Compare(v, m) >= 0
}
