package testutil

import (
	"os"
	"testing"
)

// EchoIDL is the canonical primitive-only interface used across package
// tests: three request methods and two notifications.
const EchoIDL = `service Echo
{
    [method=1]
    int Ping([in] uint32 value, [out] uint32 result);

    [method=2]
    int GetName([out] string[32] name);

    [method=3]
    int Add([in] uint32 a, [in] uint32 b, [out] uint32 sum);
};

notifications Echo
{
    [notify=1]
    void ValueChanged([in] uint32 newValue);

    [notify=2]
    void Heartbeat();
};
`

// DeviceManagerIDL exercises user-defined enums and structs flowing
// through method signatures.
const DeviceManagerIDL = `enum DeviceType
{
    Sensor = 0,
    Actuator = 1,
    Controller = 2
};

struct DeviceInfo
{
    uint32 id;
    DeviceType type;
    uint8[6] serial;
};

service DeviceManager
{
    [method=1]
    int GetDeviceCount([out] uint32 count);

    [method=2]
    int GetDeviceInfo([in] uint32 deviceId, [out] DeviceInfo info);
};
`

// BoardYAML describes a fully-populated STM32F407 board: HSE oscillator,
// three memory regions, console TX/RX pins, user LED, and FPU.
const BoardYAML = `board:
  name: STM32F407ZGT6
  mcu: STM32F407ZGT6
  arch: cortex-m4

clocks:
  system: 168000000
  apb1: 42000000
  apb2: 84000000
  hse: 8000000

memory:
  flash:
    base: 0x08000000
    size: 0x100000
  sram:
    base: 0x20000000
    size: 0x20000
  ccm:
    base: 0x10000000
    size: 0x10000

console:
  uart: usart1
  baud: 115200
  tx:
    port: A
    pin: 9
    af: 7
  rx:
    port: A
    pin: 10
    af: 7

led:
  port: C
  pin: 13

features:
  fpu: true
`

// PynqBoardYAML omits every optional section: no HSE, no console pins,
// no LED. The console UART is routed through the PS, so no GPIO setup
// is needed.
const PynqBoardYAML = `board:
  name: PYNQ-Z2
  mcu: Zynq-7020
  arch: cortex-a9

clocks:
  system: 650000000
  apb1: 100000000
  apb2: 100000000

memory:
  ddr:
    base: 0x00100000
    size: 0x1FF00000

console:
  uart: uart0
  baud: 115200

features:
  fpu: true
`

// MinimalBoardYAML carries only required fields, with the FPU flag off.
const MinimalBoardYAML = `board:
  name: TestBoard
  mcu: TestMCU
  arch: cortex-m0

clocks:
  system: 48000000
  apb1: 48000000
  apb2: 48000000

memory:
  flash:
    base: 0x08000000
    size: 0x10000
  sram:
    base: 0x20000000
    size: 0x4000

console:
  uart: usart1
  baud: 9600

features:
  fpu: false
`

// LoadFile reads a fixture file, typically from a package testdata directory.
func LoadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read fixture %s: %v", path, err)
	}
	return string(data)
}
