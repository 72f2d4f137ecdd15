package monitor

import (
	"time"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/baseline"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/canbus"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/codec/csv"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/feature"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/stream"
)

// Record is one row of the monitoring log, aggregating everything the
// session knew about a live sample.
type Record struct {
	Elapsed   time.Duration
	Sample    canbus.TelemetrySample
	Features  feature.Vector
	Verdict   baseline.Verdict
	Confirmed bool
	Reason    string
	Action    string
}

// WriteTrainingCSV exports the training feature vectors, one row each.
func WriteTrainingCSV(out stream.OutputStream, vectors []feature.Vector) error {
	enc := csv.NewEncoder()
	enc.SetOutputStream(out)
	enc.SetHeader(true)
	enc.SetColumns(feature.Columns()...)
	if err := enc.Open(); err != nil {
		return err
	}
	for _, v := range vectors {
		if err := enc.AddRow([]any{v.Voltage, v.DeltaV, v.Noise, v.Temp}); err != nil {
			return err
		}
	}
	return enc.Close()
}

// WriteMonitoringCSV exports the session's monitoring log.
func WriteMonitoringCSV(out stream.OutputStream, records []Record) error {
	enc := csv.NewEncoder()
	enc.SetOutputStream(out)
	enc.SetHeader(true)
	enc.SetColumns("Time", "Voltage", "DeltaVoltage", "NoiseStd", "Temperature",
		"Anomaly", "AnomalyScore", "PersistentAnomaly", "Reason", "Action")
	if err := enc.Open(); err != nil {
		return err
	}
	for _, rec := range records {
		row := []any{
			rec.Elapsed.Seconds(),
			rec.Features.Voltage,
			rec.Features.DeltaV,
			rec.Features.Noise,
			rec.Features.Temp,
			rec.Verdict.Abnormal,
			rec.Verdict.Score,
			rec.Confirmed,
			rec.Reason,
			rec.Action,
		}
		if err := enc.AddRow(row); err != nil {
			return err
		}
	}
	return enc.Close()
}
