// Package monitor drives the two-phase battery monitoring session:
// learn a baseline from a clean training window, then score live
// telemetry against it with persistence filtering and explanations.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/jedib0t/go-pretty/v6/table"
	gometrics "github.com/rcrowley/go-metrics"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/baseline"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/canbus"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/feature"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/logging"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/stream"
)

// FrameSource yields raw datagrams from the virtual CAN bus. Recv blocks
// until a datagram arrives, the context is canceled, or the transport
// fails. The session never reconnects; transport errors end the session.
type FrameSource interface {
	Recv(ctx context.Context) ([]byte, error)
}

var (
	metricFrames    = gometrics.GetOrRegisterCounter("monitor.frames", nil)
	metricMalformed = gometrics.GetOrRegisterCounter("monitor.frames.malformed", nil)
	metricAbnormal  = gometrics.GetOrRegisterCounter("monitor.verdicts.abnormal", nil)
	metricConfirmed = gometrics.GetOrRegisterCounter("monitor.anomalies.confirmed", nil)
)

type SessionOption func(*Session)

// WithConsole redirects the operator-facing status lines. Default stdout.
func WithConsole(w io.Writer) SessionOption {
	return func(s *Session) { s.console = w }
}

// WithAlertPublisher attaches an optional MQTT alert sink.
func WithAlertPublisher(p *AlertPublisher) SessionOption {
	return func(s *Session) { s.alert = p }
}

// Session owns all mutable monitoring state: the feature extractor, the
// fitted model, the persistence tracker and the accumulated records.
// It is driven by a single goroutine; none of it is shared.
type Session struct {
	conf    Config
	src     FrameSource
	log     logging.Log
	id      string
	console io.Writer
	alert   *AlertPublisher

	extractor *feature.Extractor
	learner   *baseline.Learner
	model     *baseline.Model
	envelope  *baseline.Envelope
	tracker   *Tracker

	training []feature.Vector
	records  []Record
}

func NewSession(conf Config, src FrameSource, opts ...SessionOption) (*Session, error) {
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		return nil, errors.New("frame source is required")
	}

	learner := baseline.NewLearner()
	learner.TrainingSamples = conf.TrainingSamples
	learner.Contamination = conf.Contamination

	s := &Session{
		conf:      conf,
		src:       src,
		log:       logging.GetLog("monitor"),
		id:        uuid.Must(uuid.NewV4()).String(),
		console:   os.Stdout,
		extractor: feature.NewExtractor(conf.WindowSize),
		learner:   learner,
		tracker:   NewTracker(conf.AnomalyWindow, conf.AnomalyThreshold),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Session) ID() string { return s.id }

// Records returns the monitoring log accumulated so far.
func (s *Session) Records() []Record { return s.records }

// Envelope returns the learned baseline envelope, nil before training.
func (s *Session) Envelope() *baseline.Envelope { return s.envelope }

// Run executes the session: train, then monitor until the context is
// canceled or the optional run duration elapses. The current sample is
// always processed to completion and the monitoring log flushed before
// returning.
func (s *Session) Run(ctx context.Context) error {
	s.log.Infof("session %s starting", s.id)
	if err := s.train(ctx); err != nil {
		return err
	}
	s.extractor.Reset()
	return s.monitor(ctx)
}

func (s *Session) train(ctx context.Context) error {
	s.log.Info("[PHASE 1] learning normal battery behavior")
	s.log.Infof("collecting %d samples for baseline", s.conf.TrainingSamples)

	s.training = s.training[:0]
	for len(s.training) < s.conf.TrainingSamples {
		sample, ok, err := s.nextSample(ctx)
		if err != nil {
			return fmt.Errorf("training phase: %w", err)
		}
		if !ok {
			continue
		}
		vec, ok := s.extractor.Extract(sample)
		if !ok {
			continue
		}
		s.training = append(s.training, vec)
		if len(s.training)%20 == 0 {
			s.log.Infof("collected %d/%d", len(s.training), s.conf.TrainingSamples)
		}
	}
	s.log.Info("[PHASE 1] complete, baseline behavior captured")

	s.log.Info("[PHASE 2] training model")
	model, env, err := s.learner.Fit(s.training)
	if err != nil {
		return fmt.Errorf("model fit failure: %w", err)
	}
	s.model = model
	s.envelope = env
	s.log.Info("model trained successfully")

	if s.conf.TrainingCSV != "" {
		if err := s.exportTraining(); err != nil {
			s.log.Warnf("training data export: %s", err.Error())
		} else {
			s.log.Infof("training data saved to %s", s.conf.TrainingCSV)
		}
	}

	fmt.Fprintln(s.console, s.baselineSummary())
	return nil
}

func (s *Session) monitor(ctx context.Context) error {
	runFor, _ := s.conf.RunDuration()
	start := time.Now()

	s.log.Info("[PHASE 3] live monitoring")
	defer s.flush()

	for {
		if err := ctx.Err(); err != nil {
			s.log.Info("monitoring stopped gracefully")
			return nil
		}
		if runFor > 0 && time.Since(start) >= runFor {
			s.log.Infof("run duration %s elapsed", runFor)
			return nil
		}

		sample, ok, err := s.nextSample(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.log.Info("monitoring stopped gracefully")
				return nil
			}
			return fmt.Errorf("monitoring phase: %w", err)
		}
		if !ok {
			continue
		}

		vec, ok := s.extractor.Extract(sample)
		if !ok {
			continue
		}

		verdict, err := s.model.Score(vec)
		if err != nil {
			return fmt.Errorf("scoring: %w", err)
		}
		if verdict.Abnormal {
			metricAbnormal.Inc(1)
		}

		confirmed := s.tracker.Push(verdict.Abnormal)
		rec := Record{
			Elapsed:   time.Since(start),
			Sample:    sample,
			Features:  vec,
			Verdict:   verdict,
			Confirmed: confirmed,
		}
		if confirmed {
			metricConfirmed.Inc(1)
			rec.Reason = Explain(vec, s.envelope)
			rec.Action = Recommend(rec.Reason)
			fmt.Fprintf(s.console, "[PERSISTENT ANOMALY] Volt=%.0fmV | Temp=%.0f°C | Reason: %s | Action: %s\n",
				vec.Voltage, vec.Temp, rec.Reason, rec.Action)
			if s.alert != nil {
				s.alert.Publish(s.id, rec)
			}
		} else {
			fmt.Fprintf(s.console, "[OK] Volt=%4.0fmV | dV=%4.0fmV | Noise=%6.2f\n",
				vec.Voltage, vec.DeltaV, vec.Noise)
		}
		s.records = append(s.records, rec)
	}
}

// nextSample receives one datagram and decodes it. Malformed datagrams
// are dropped (ok=false) and the loop continues.
func (s *Session) nextSample(ctx context.Context) (canbus.TelemetrySample, bool, error) {
	data, err := s.src.Recv(ctx)
	if err != nil {
		return canbus.TelemetrySample{}, false, err
	}
	sample, err := canbus.DecodeFrame(data)
	if err != nil {
		metricMalformed.Inc(1)
		if s.log.TraceEnabled() {
			s.log.Tracef("dropped datagram: %s", err.Error())
		}
		return canbus.TelemetrySample{}, false, nil
	}
	metricFrames.Inc(1)
	return sample, true, nil
}

func (s *Session) exportTraining() error {
	out, err := stream.NewOutputStream(s.conf.TrainingCSV)
	if err != nil {
		return err
	}
	return WriteTrainingCSV(out, s.training)
}

func (s *Session) flush() {
	if s.conf.MonitoringCSV == "" {
		return
	}
	out, err := stream.NewOutputStream(s.conf.MonitoringCSV)
	if err != nil {
		s.log.Warnf("monitoring log export: %s", err.Error())
		return
	}
	if err := WriteMonitoringCSV(out, s.records); err != nil {
		s.log.Warnf("monitoring log export: %s", err.Error())
		return
	}
	s.log.Infof("monitoring data saved to %s", s.conf.MonitoringCSV)
}

func (s *Session) baselineSummary() string {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.SetTitle("Learned normal behavior")
	w.AppendRows([]table.Row{
		{"Voltage range", fmt.Sprintf("%.0f -> %.0f mV", s.envelope.MinVoltage, s.envelope.MaxVoltage)},
		{"Avg delta", fmt.Sprintf("%.2f mV", s.envelope.MeanDelta)},
		{"Avg noise", fmt.Sprintf("%.2f", s.envelope.MeanNoise)},
		{"Temp range", fmt.Sprintf("%.0f -> %.0f °C", s.envelope.MinTemp, s.envelope.MaxTemp)},
	})
	return w.Render()
}
