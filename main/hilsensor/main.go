package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
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
Usage: hilsensor [options]

Simulates a battery sensor node. Accepts one TCP connection from the
gateway and streams 5-byte sensor packets at a fixed rate.

Options:
	--help, -h              Show this help message
	--listen <addr>         TCP listen address (default: 127.0.0.1:4000)
	--interval <duration>   Packet interval (default: 100ms)
	--fault-mode <mode>     Fault injection: periodic, random, none (default: periodic)
	--fault-after <n>       Packets of clean data before faults may start (default: 300)
	--degrade               Enable gradual noise growth and voltage sag
	--seed <n>              Random seed, 0 means time-based
	--log-filename <path>   Log file path (default: -)
	--log-level <level>     Log level (default: INFO), DEBUG, INFO, WARN, ERROR
`

func usage() {
	fmt.Printf("%s\n", strings.ReplaceAll(usageStr, "\t", "    "))
	os.Exit(0)
}

func main() {
	optListen := flag.String("listen", "127.0.0.1:4000", "TCP listen address")
	optInterval := flag.Duration("interval", 100*time.Millisecond, "packet interval")
	optFaultMode := flag.String("fault-mode", "periodic", "fault injection: periodic, random, none")
	optFaultAfter := flag.Int("fault-after", 300, "packets of clean data before faults may start")
	optDegrade := flag.Bool("degrade", false, "enable gradual noise growth and voltage sag")
	optSeed := flag.Int64("seed", 0, "random seed, 0 means time-based")
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
	log := logging.GetLog("hilsensor")

	seed := *optSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	lsnr, err := net.Listen("tcp", *optListen)
	if err != nil {
		log.Errorf("listen: %s", err.Error())
		os.Exit(1)
	}
	defer lsnr.Close()
	log.Infof("sensor node listening on tcp %s", lsnr.Addr().String())
	log.Info("waiting for gateway connection...")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		lsnr.Close()
	}()

	conn, err := lsnr.Accept()
	if err != nil {
		if ctx.Err() != nil {
			log.Info("stopped before gateway connected")
			return
		}
		log.Errorf("accept: %s", err.Error())
		return
	}
	defer conn.Close()
	// unblock a pending Write when a signal arrives mid-stream
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	log.Info("gateway connected, starting data stream")

	sim := &simulator{
		rng:        rng,
		voltage:    3300,
		temp:       45,
		noiseAmp:   2.0,
		faultMode:  *optFaultMode,
		faultAfter: *optFaultAfter,
		degrade:    *optDegrade,
	}
	runSensor(ctx, conn, sim, *optInterval, log)
}

// runSensor streams sensor packets until the context is canceled or the
// peer disconnects.
func runSensor(ctx context.Context, conn net.Conn, sim *simulator, interval time.Duration, log logging.Log) {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("sensor stopped")
			return
		case <-tick.C:
		}
		reading := sim.next()
		if sim.faulted {
			log.Warnf("TX seq:%d GENERATING FAULT volt:%dmV", sim.seq, reading.Voltage)
		}
		pkt := canbus.EncodeSensorPacket(reading)
		if _, err := conn.Write(pkt); err != nil {
			if ctx.Err() != nil {
				log.Info("sensor stopped")
			} else {
				log.Infof("gateway disconnected: %s", err.Error())
			}
			return
		}
		if sim.seq%50 == 0 {
			log.Debugf("TX seq:%d volt:%4dmV temp:%dC noise:%.1f",
				sim.seq, reading.Voltage, reading.Temp, sim.noiseAmp)
		}
	}
}

// simulator generates battery telemetry: a sawtooth voltage ramp with
// small noise, optional aging behavior and injected hard faults.
type simulator struct {
	rng        *rand.Rand
	seq        int64
	voltage    int
	temp       uint8
	noiseAmp   float64
	faultMode  string
	faultAfter int
	degrade    bool
	faulted    bool
}

func (s *simulator) next() canbus.SensorReading {
	s.seq++
	s.faulted = false

	// sawtooth ramp keeps the data non-static
	s.voltage += 10
	if s.voltage > 4000 {
		s.voltage = 3000
	}

	noiseAmp := s.noiseAmp
	if s.degrade {
		// aging model: noise slowly grows, voltage sags after long runs
		if s.seq%100 == 0 {
			s.noiseAmp += 0.5
		}
		if s.seq > 600 && s.voltage > 200 {
			s.voltage -= 1
		}
	}

	mv := s.voltage + s.rng.Intn(int(noiseAmp*2)+1) - int(noiseAmp)

	// faults only begin after the monitor had clean data to learn from
	if int(s.seq) > s.faultAfter {
		switch s.faultMode {
		case "periodic":
			if s.seq%50 == 0 {
				mv = 100
				s.faulted = true
			}
		case "random":
			if s.rng.Intn(100)+1 <= 2 {
				mv = 100
				s.faulted = true
			}
		}
	}
	if mv < 0 {
		mv = 0
	}
	return canbus.SensorReading{Voltage: uint16(mv), Temp: s.temp}
}
