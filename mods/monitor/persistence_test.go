package monitor_test

import (
	"testing"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/monitor"
	"github.com/stretchr/testify/require"
)

func TestTrackerConfirmsAtThreshold(t *testing.T) {
	tr := monitor.NewTracker(10, 3)

	require.False(t, tr.Push(true))
	require.False(t, tr.Push(true))
	require.True(t, tr.Push(true))
	require.Equal(t, 3, tr.Count())
}

func TestTrackerWindowEviction(t *testing.T) {
	tr := monitor.NewTracker(10, 3)

	// [T T T F F F F F F F] -> confirmed
	confirmed := false
	for _, v := range []bool{true, true, true, false, false, false, false, false, false, false} {
		confirmed = tr.Push(v)
	}
	require.True(t, confirmed)

	// one more normal sample evicts the oldest abnormal verdict
	require.False(t, tr.Push(false))
	require.Equal(t, 2, tr.Count())
}

func TestTrackerBelowThreshold(t *testing.T) {
	tr := monitor.NewTracker(10, 3)
	confirmed := false
	for _, v := range []bool{true, true, false, false, false, false, false, false, false, false} {
		confirmed = tr.Push(v)
	}
	require.False(t, confirmed)
}

func TestTrackerNotLatched(t *testing.T) {
	tr := monitor.NewTracker(3, 2)
	tr.Push(true)
	require.True(t, tr.Push(true))
	// confirmation decays as abnormal verdicts age out
	tr.Push(false)
	require.False(t, tr.Push(false))
}

func TestTrackerReset(t *testing.T) {
	tr := monitor.NewTracker(5, 1)
	tr.Push(true)
	tr.Reset()
	require.Equal(t, 0, tr.Count())
}
