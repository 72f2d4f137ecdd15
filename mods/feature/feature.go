// Package feature turns raw telemetry samples into the numeric vectors
// the baseline model is trained and scored on.
package feature

import (
	"gonum.org/v1/gonum/stat"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/canbus"
)

// Vector is the behavior of one sample: level, trend, noise and temperature.
// The field order is the feature ordering of the model, shared by the
// training and scoring paths.
type Vector struct {
	Voltage float64
	DeltaV  float64
	Noise   float64
	Temp    float64
}

func (v Vector) Values() []float64 {
	return []float64{v.Voltage, v.DeltaV, v.Noise, v.Temp}
}

func Columns() []string {
	return []string{"Voltage", "DeltaVoltage", "NoiseStd", "Temperature"}
}

// Extractor derives one Vector per sample after the first. The first
// sample only seeds the previous-voltage state.
type Extractor struct {
	windowSize  int
	window      []float64
	prevVoltage float64
	hasPrev     bool
}

func NewExtractor(windowSize int) *Extractor {
	return &Extractor{
		windowSize: windowSize,
		window:     make([]float64, 0, windowSize),
	}
}

// Extract returns the feature vector for the sample, or ok=false when no
// previous sample exists yet.
func (x *Extractor) Extract(sample canbus.TelemetrySample) (Vector, bool) {
	voltage := float64(sample.Voltage)
	if !x.hasPrev {
		x.prevVoltage = voltage
		x.hasPrev = true
		return Vector{}, false
	}

	delta := voltage - x.prevVoltage
	x.prevVoltage = voltage

	x.window = append(x.window, voltage)
	if len(x.window) > x.windowSize {
		x.window = x.window[1:]
	}

	return Vector{
		Voltage: voltage,
		DeltaV:  delta,
		Noise:   stat.PopStdDev(x.window, nil),
		Temp:    float64(sample.Temp),
	}, true
}

// Reset clears the window and the previous voltage. Called at the
// train-to-live phase boundary so live noise statistics reflect only
// live data.
func (x *Extractor) Reset() {
	x.window = x.window[:0]
	x.hasPrev = false
	x.prevVoltage = 0
}

// WindowLen reports how many voltages the noise window currently holds.
func (x *Extractor) WindowLen() int {
	return len(x.window)
}
