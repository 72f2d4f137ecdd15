package monitor_test

import (
	"strings"
	"testing"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/baseline"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/feature"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/monitor"
	"github.com/stretchr/testify/require"
)

func testEnvelope() *baseline.Envelope {
	return &baseline.Envelope{
		MeanDelta:  0,
		StdDelta:   5,
		MeanNoise:  1,
		StdNoise:   0.5,
		MinVoltage: 3698,
		MaxVoltage: 3702,
		MinTemp:    24,
		MaxTemp:    26,
	}
}

func TestExplainSuddenVoltageChange(t *testing.T) {
	v := feature.Vector{Voltage: 3700, DeltaV: 50, Noise: 1, Temp: 25}
	reason := monitor.Explain(v, testEnvelope())
	require.Contains(t, reason, monitor.ReasonSuddenVoltage) // 50 > 3*5
}

func TestExplainCatchAll(t *testing.T) {
	v := feature.Vector{Voltage: 3700, DeltaV: 1, Noise: 1, Temp: 25}
	require.Equal(t, monitor.ReasonOutlier, monitor.Explain(v, testEnvelope()))
}

func TestExplainConcatenatesAllMatches(t *testing.T) {
	v := feature.Vector{Voltage: 3000, DeltaV: -700, Noise: 100, Temp: 70}
	reason := monitor.Explain(v, testEnvelope())
	for _, want := range []string{
		monitor.ReasonSuddenVoltage,
		monitor.ReasonNoiseGrowth,
		monitor.ReasonVoltageBelow,
		monitor.ReasonTempOutRange,
	} {
		require.Contains(t, reason, want)
	}
	require.Equal(t, 3, strings.Count(reason, " + "))
	require.NotContains(t, reason, monitor.ReasonOutlier)
}

func TestExplainNegativeDelta(t *testing.T) {
	v := feature.Vector{Voltage: 3700, DeltaV: -50, Noise: 1, Temp: 25}
	require.Contains(t, monitor.Explain(v, testEnvelope()), monitor.ReasonSuddenVoltage)
}

func TestRecommendFirstMatchWins(t *testing.T) {
	tests := []struct {
		reason string
		action string
	}{
		{monitor.ReasonNoiseGrowth, monitor.ActionDerating},
		{monitor.ReasonVoltageBelow, monitor.ActionSafeMode},
		{monitor.ReasonTempOutRange, monitor.ActionCooling},
		{monitor.ReasonSuddenVoltage, monitor.ActionMonitor},
		{monitor.ReasonOutlier, monitor.ActionMonitor},
		// noise rule takes priority over the rest
		{monitor.ReasonNoiseGrowth + " + " + monitor.ReasonVoltageBelow, monitor.ActionDerating},
	}
	for _, tt := range tests {
		require.Equal(t, tt.action, monitor.Recommend(tt.reason), "reason %q", tt.reason)
	}
}
