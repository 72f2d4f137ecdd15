package main

import (
	"context"
	"io"
	"math/rand"
	"net"
	"testing"
	"time"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/canbus"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/logging"
	"github.com/stretchr/testify/require"
)

func newTestSimulator() *simulator {
	return &simulator{
		rng:       rand.New(rand.NewSource(1)),
		voltage:   3300,
		temp:      45,
		noiseAmp:  2.0,
		faultMode: "none",
	}
}

// Cancellation must end the stream even while the gateway stays
// connected and keeps reading.
func TestRunSensorStopsOnCancel(t *testing.T) {
	gateway, sensor := net.Pipe()
	defer gateway.Close()

	received := make(chan canbus.SensorReading, 64)
	go func() {
		buf := make([]byte, canbus.SensorPacketSize)
		for {
			if _, err := io.ReadFull(gateway, buf); err != nil {
				close(received)
				return
			}
			if r, err := canbus.DecodeSensorPacket(buf); err == nil {
				received <- r
			}
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		runSensor(ctx, sensor, newTestSimulator(), time.Millisecond, logging.NewLog("test", io.Discard))
		close(done)
	}()

	// the stream is up
	select {
	case r := <-received:
		require.NotZero(t, r.Voltage)
	case <-time.After(5 * time.Second):
		t.Fatal("no packet received")
	}

	// signal arrives: context canceled, connection closed by the handler
	cancel()
	sensor.Close()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sensor loop did not stop after cancellation")
	}
}

func TestSimulatorSawtoothAndFaults(t *testing.T) {
	sim := &simulator{
		rng:        rand.New(rand.NewSource(1)),
		voltage:    3300,
		temp:       45,
		noiseAmp:   2.0,
		faultMode:  "periodic",
		faultAfter: 300,
	}

	var faults int
	for i := 1; i <= 400; i++ {
		r := sim.next()
		if sim.faulted {
			faults++
			require.Equal(t, uint16(100), r.Voltage)
			require.Greater(t, i, 300)
			require.Zero(t, int64(i)%50)
		} else {
			// sawtooth stays within the ramp band plus noise
			require.GreaterOrEqual(t, int(r.Voltage), 3000-2)
			require.LessOrEqual(t, int(r.Voltage), 4000+2)
		}
		require.Equal(t, uint8(45), r.Temp)
	}
	// seq 350 and 400 inject faults
	require.Equal(t, 2, faults)
}
