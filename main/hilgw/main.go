package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/canbus"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/logging"
)

var usageStr = `
Usage: hilgw [options]

ECU gateway: reads raw sensor packets over TCP, applies the safety
status logic, packs CAN frames and forwards them over UDP. The gateway
owns all safety decisions; downstream monitors only observe.

Options:
	--help, -h              Show this help message
	--sensor <addr>         TCP address of the sensor node (default: 127.0.0.1:4000)
	--bus <addr>            UDP address of the virtual CAN bus (default: 127.0.0.1:5000)
	--can-id <id>           CAN identifier for telemetry frames (default: 0x100)
	--log-filename <path>   Log file path (default: -)
	--log-level <level>     Log level (default: INFO), DEBUG, INFO, WARN, ERROR
`

func usage() {
	fmt.Printf("%s\n", strings.ReplaceAll(usageStr, "\t", "    "))
	os.Exit(0)
}

func main() {
	optSensor := flag.String("sensor", "127.0.0.1:4000", "TCP address of the sensor node")
	optBus := flag.String("bus", "127.0.0.1:5000", "UDP address of the virtual CAN bus")
	optCanID := flag.Uint("can-id", canbus.DefaultCANID, "CAN identifier for telemetry frames")
	optLogFilename := flag.String("log-filename", "-", "log file path")
	optLogLevel := flag.String("log-level", "INFO", "log level")
	flag.Usage = usage
	flag.Parse()

	logging.Configure(&logging.Config{
		Filename:           *optLogFilename,
		Append:             true,
		DefaultPrefixWidth: 12,
		DefaultLevel:       *optLogLevel,
	})
	log := logging.GetLog("hilgw")

	bus, err := net.Dial("udp", *optBus)
	if err != nil {
		log.Errorf("virtual CAN bus %s: %s", *optBus, err.Error())
		os.Exit(1)
	}
	defer bus.Close()
	log.Infof("virtual CAN bus ready on udp %s", *optBus)

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	// retry until the sensor becomes available
	var sensor net.Conn
	for sensor == nil {
		sensor, err = net.DialTimeout("tcp", *optSensor, 2*time.Second)
		if err != nil {
			log.Info("waiting for sensor node (is it running?)")
			select {
			case <-done:
				return
			case <-time.After(2 * time.Second):
			}
		}
	}
	defer sensor.Close()
	log.Infof("connected to sensor node %s, starting data bridge", *optSensor)

	go func() {
		<-done
		sensor.Close()
	}()

	var forwarded, rejected int64
	buf := make([]byte, canbus.SensorPacketSize)
	for {
		if _, err := io.ReadFull(sensor, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				log.Infof("sensor disconnected, forwarded %d frames, rejected %d packets",
					forwarded, rejected)
				return
			}
			log.Errorf("sensor read: %s", err.Error())
			return
		}

		reading, err := canbus.DecodeSensorPacket(buf)
		if err != nil {
			rejected++
			log.Warnf("bad sensor packet: %s", err.Error())
			continue
		}

		frame := canbus.EncodeFrame(canbus.TelemetrySample{
			ID:      uint32(*optCanID),
			Voltage: reading.Voltage,
			Temp:    reading.Temp,
			Status:  canbus.StatusOf(reading.Voltage, reading.Temp),
		})
		if _, err := bus.Write(frame); err != nil {
			log.Warnf("bus send: %s", err.Error())
			continue
		}
		forwarded++
		if forwarded%50 == 0 {
			log.Debugf("forwarded %d frames, last volt:%4dmV temp:%dC",
				forwarded, reading.Voltage, reading.Temp)
		}
	}
}
