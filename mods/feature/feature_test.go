package feature_test

import (
	"math"
	"testing"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/canbus"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/feature"
	"github.com/stretchr/testify/require"
)

func sample(mv uint16, temp uint8) canbus.TelemetrySample {
	return canbus.TelemetrySample{ID: canbus.DefaultCANID, Voltage: mv, Temp: temp}
}

func TestFirstSampleYieldsNoVector(t *testing.T) {
	x := feature.NewExtractor(20)
	_, ok := x.Extract(sample(3700, 25))
	require.False(t, ok)
	require.Equal(t, 0, x.WindowLen())

	v, ok := x.Extract(sample(3710, 25))
	require.True(t, ok)
	require.Equal(t, 3710.0, v.Voltage)
	require.Equal(t, 10.0, v.DeltaV)
	require.Equal(t, 25.0, v.Temp)
	require.Equal(t, 0.0, v.Noise) // single-entry window
}

func TestDeltaTracksPreviousSample(t *testing.T) {
	x := feature.NewExtractor(20)
	x.Extract(sample(3700, 25))

	v, _ := x.Extract(sample(3650, 25))
	require.Equal(t, -50.0, v.DeltaV)

	v, _ = x.Extract(sample(3655, 25))
	require.Equal(t, 5.0, v.DeltaV)
}

func TestWindowIsBounded(t *testing.T) {
	x := feature.NewExtractor(3)
	x.Extract(sample(1000, 25))
	for _, mv := range []uint16{1000, 1000, 1000, 2000, 2000, 2000} {
		x.Extract(sample(mv, 25))
	}
	require.Equal(t, 3, x.WindowLen())

	// the early 1000mV entries were evicted, so the window is flat again
	v, _ := x.Extract(sample(2000, 25))
	require.Equal(t, 0.0, v.Noise)
}

func TestNoiseIsPopulationStdDev(t *testing.T) {
	x := feature.NewExtractor(4)
	x.Extract(sample(3700, 25))
	x.Extract(sample(3702, 25))
	v, _ := x.Extract(sample(3698, 25))

	// window [3702 3698], population stddev = 2
	require.InDelta(t, 2.0, v.Noise, 1e-9)

	v, _ = x.Extract(sample(3700, 25))
	mean := (3702.0 + 3698.0 + 3700.0) / 3
	want := math.Sqrt(((3702-mean)*(3702-mean) + (3698-mean)*(3698-mean) + (3700-mean)*(3700-mean)) / 3)
	require.InDelta(t, want, v.Noise, 1e-9)
}

func TestResetClearsPhaseState(t *testing.T) {
	x := feature.NewExtractor(5)
	x.Extract(sample(3700, 25))
	x.Extract(sample(3710, 25))
	require.Equal(t, 1, x.WindowLen())

	x.Reset()
	require.Equal(t, 0, x.WindowLen())

	// first sample after reset seeds prev voltage again
	_, ok := x.Extract(sample(4000, 25))
	require.False(t, ok)
}
