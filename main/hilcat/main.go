package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/canbus"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/logging"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/service/canbusd"
)

var usageStr = `
Usage: hilcat [options]

Dumps decoded frames from the virtual CAN bus to stdout. Diagnostic
tool, binds the bus port itself so it cannot run alongside hilmon.

Options:
	--help, -h              Show this help message
	--listen <addr>         UDP address of the virtual CAN bus (default: 127.0.0.1:5000)
	--raw                   Also print the raw datagram in hex
`

func usage() {
	fmt.Printf("%s\n", strings.ReplaceAll(usageStr, "\t", "    "))
	os.Exit(0)
}

func main() {
	optListen := flag.String("listen", "127.0.0.1:5000", "UDP address of the virtual CAN bus")
	optRaw := flag.Bool("raw", false, "also print the raw datagram in hex")
	flag.Usage = usage
	flag.Parse()

	logging.Configure(&logging.PresetConfigDiscard)

	lsnr, err := canbusd.New(canbusd.WithListenAddress(*optListen))
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERR", err.Error())
		os.Exit(1)
	}
	if err := lsnr.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "ERR", err.Error())
		os.Exit(1)
	}
	defer lsnr.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Listening on udp %s...\n", lsnr.Addr().String())
	for {
		data, err := lsnr.Recv(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			fmt.Fprintln(os.Stderr, "ERR", err.Error())
			return
		}
		if *optRaw {
			fmt.Printf("RX % X\n", data)
		}
		sample, err := canbus.DecodeFrame(data)
		if err != nil {
			fmt.Printf("RX malformed datagram, %d bytes\n", len(data))
			continue
		}
		fmt.Printf("RX CAN ID: 0x%X | Voltage: %dmV | Temp: %dC | Status: 0x%02X\n",
			sample.ID, sample.Voltage, sample.Temp, sample.Status)
	}
}
