// Command crashmon watches a serial port for ms-os crash dumps and decodes
// the captured fault addresses against an ELF image.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go.bug.st/serial"

	"github.com/msos-dev/ipcgen/cmd/internal/cliutil"
)

const usage = `crashmon - serial monitor with crash dump decoding for ms-os

Usage:
  crashmon [options]

Options:
  -p, --port PORT        Serial port (default: /dev/ttyUSB0)
  -b, --baud N           Baud rate (default: 115200)
  -e, --elf FILE         ELF image for address decoding
  --toolchain-prefix P   Prefix for addr2line (default: arm-none-eabi-)
  -h, --help             Show help

Lines from the port are echoed with timestamps. When a crash dump passes by
(delimited by === CRASH DUMP BEGIN === / === CRASH DUMP END ===), the PC and
LR values are fed through addr2line and the source locations printed.

Examples:
  crashmon --port /dev/ttyUSB0 --elf build/app/threads/threads
  crashmon -p /dev/ttyACM0 -b 115200
`

func main() {
	os.Exit(run())
}

func run() int {
	fs := flag.NewFlagSet("crashmon", flag.ContinueOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	port := fs.String("p", "/dev/ttyUSB0", "serial port")
	fs.StringVar(port, "port", "/dev/ttyUSB0", "serial port")
	baud := fs.Int("b", 115200, "baud rate")
	fs.IntVar(baud, "baud", 115200, "baud rate")
	elf := fs.String("e", "", "ELF image for address decoding")
	fs.StringVar(elf, "elf", "", "ELF image for address decoding")
	prefix := fs.String("toolchain-prefix", "arm-none-eabi-", "prefix for addr2line")
	help := fs.Bool("h", false, "show help")
	fs.BoolVar(help, "help", false, "show help")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return 2
	}

	if *help {
		_, _ = fmt.Fprint(os.Stdout, usage)
		return 0
	}

	if fs.NArg() != 0 {
		cliutil.PrintError("unexpected argument: %s", fs.Arg(0))
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	fmt.Printf("%sms-os Crash Monitor%s\n", colorCyan, colorReset)
	fmt.Printf("  Port: %s\n", *port)
	fmt.Printf("  Baud: %d\n", *baud)
	if *elf != "" {
		fmt.Printf("  ELF:  %s\n", *elf)
	} else {
		fmt.Printf("  ELF:  %s(none -- address decoding disabled)%s\n", colorYellow, colorReset)
	}
	fmt.Println("  Press Ctrl+C to exit")
	fmt.Println()

	m := &monitor{
		out: os.Stdout,
		sym: &addr2line{elf: *elf, prefix: *prefix, out: os.Stdout},
		now: time.Now,
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		fmt.Printf("\n%sExiting.%s\n", colorCyan, colorReset)
		os.Exit(0)
	}()

	for {
		sp, err := serial.Open(*port, &serial.Mode{BaudRate: *baud})
		if err != nil {
			fmt.Printf("%s[%s] Cannot open %s: %v%s\n",
				colorYellow, m.timestamp(), *port, err, colorReset)
			fmt.Printf("%s  Retrying in 2 seconds...%s\n", colorYellow, colorReset)
			time.Sleep(2 * time.Second)
			continue
		}

		fmt.Printf("%s[%s] Connected to %s%s\n", colorCyan, m.timestamp(), *port, colorReset)

		_ = m.run(sp)
		sp.Close()
		fmt.Printf("%s[%s] Serial disconnected. Reconnecting...%s\n",
			colorYellow, m.timestamp(), colorReset)
		time.Sleep(time.Second)
	}
}
