package monitor

import (
	"math"
	"strings"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/baseline"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/feature"
)

const (
	ReasonSuddenVoltage = "Sudden voltage change"
	ReasonNoiseGrowth   = "Noise growth detected"
	ReasonVoltageBelow  = "Voltage below learned normal range"
	ReasonTempOutRange  = "Temperature out of normal range"
	ReasonOutlier       = "Behavioral outlier"

	ActionDerating = "Recommend derating"
	ActionSafeMode = "Recommend safe mode"
	ActionCooling  = "Check cooling / thermal system"
	ActionMonitor  = "Monitor only"
)

// Explain phrases why a confirmed anomaly looks abnormal, comparing the
// live features against the learned envelope. All matching reasons are
// joined; when none match the catch-all keeps the explanation non-empty.
func Explain(v feature.Vector, env *baseline.Envelope) string {
	var reasons []string

	if math.Abs(v.DeltaV) > 3*env.StdDelta {
		reasons = append(reasons, ReasonSuddenVoltage)
	}
	if v.Noise > env.MeanNoise+3*env.StdNoise {
		reasons = append(reasons, ReasonNoiseGrowth)
	}
	if v.Voltage < env.MinVoltage {
		reasons = append(reasons, ReasonVoltageBelow)
	}
	if v.Temp < env.MinTemp || v.Temp > env.MaxTemp {
		reasons = append(reasons, ReasonTempOutRange)
	}
	if len(reasons) == 0 {
		reasons = append(reasons, ReasonOutlier)
	}
	return strings.Join(reasons, " + ")
}

// Recommend maps a reason text to a non-enforced action. Advisory output
// only; this must never drive an actuator or safety interlock.
func Recommend(reason string) string {
	r := strings.ToLower(reason)
	switch {
	case strings.Contains(r, "noise"):
		return ActionDerating
	case strings.Contains(r, "voltage below"):
		return ActionSafeMode
	case strings.Contains(r, "temperature"):
		return ActionCooling
	}
	return ActionMonitor
}
