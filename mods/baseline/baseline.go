// Package baseline learns what "normal" battery behavior looks like
// from an unlabeled training window and scores live samples against it.
package baseline

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/feature"
	"github.com/chiragpatel1229/Virtual-CAN-HIL-System-with-AI-Based-Monitoring/mods/nums/iforest"
)

var ErrInsufficientData = errors.New("insufficient training data")

// Learner fits the outlier model and the descriptive envelope from one
// batch of training feature vectors.
type Learner struct {
	TrainingSamples int
	Contamination   float64
	Trees           int
	Seed            int64
}

func NewLearner() *Learner {
	return &Learner{
		TrainingSamples: 200,
		Contamination:   0.02,
		Trees:           200,
		Seed:            iforest.DefaultSeed,
	}
}

// Fit consumes exactly TrainingSamples vectors. The model is immutable
// afterwards; the envelope is plain descriptive statistics used only for
// explanation, never for scoring.
func (l *Learner) Fit(vectors []feature.Vector) (*Model, *Envelope, error) {
	if len(vectors) < l.TrainingSamples {
		return nil, nil, fmt.Errorf("%w: %d of %d vectors", ErrInsufficientData, len(vectors), l.TrainingSamples)
	}

	matrix := make([][]float64, len(vectors))
	for i, v := range vectors {
		matrix[i] = v.Values()
	}

	forest := iforest.New(
		iforest.WithTrees(l.Trees),
		iforest.WithContamination(l.Contamination),
		iforest.WithSeed(l.Seed),
	)
	if err := forest.Fit(matrix); err != nil {
		return nil, nil, fmt.Errorf("model fit: %w", err)
	}

	return &Model{forest: forest}, newEnvelope(vectors), nil
}

// Verdict is the per-sample output of the model. Score is the decision
// value, lower (more negative) = more anomalous; its scale is
// model-defined and only used for relative comparison and logging.
type Verdict struct {
	Abnormal bool
	Score    float64
}

// Model wraps the fitted forest. Read-only, safe to share within the
// owning session.
type Model struct {
	forest *iforest.Forest
}

// Score applies the model to one live feature vector. The vector's
// column ordering is fixed by the feature package, identical to fit time.
func (m *Model) Score(v feature.Vector) (Verdict, error) {
	x := v.Values()
	abnormal, err := m.forest.Predict(x)
	if err != nil {
		return Verdict{}, err
	}
	score, err := m.forest.Decision(x)
	if err != nil {
		return Verdict{}, err
	}
	return Verdict{Abnormal: abnormal, Score: score}, nil
}

// Envelope is the descriptive summary of the training distribution,
// consumed by the advisor to phrase explanations.
type Envelope struct {
	MeanDelta  float64
	StdDelta   float64
	MeanNoise  float64
	StdNoise   float64
	MinVoltage float64
	MaxVoltage float64
	MinTemp    float64
	MaxTemp    float64
}

func newEnvelope(vectors []feature.Vector) *Envelope {
	n := len(vectors)
	voltages := make([]float64, n)
	deltas := make([]float64, n)
	noises := make([]float64, n)
	temps := make([]float64, n)
	for i, v := range vectors {
		voltages[i] = v.Voltage
		deltas[i] = v.DeltaV
		noises[i] = v.Noise
		temps[i] = v.Temp
	}
	return &Envelope{
		MeanDelta:  stat.Mean(deltas, nil),
		StdDelta:   stat.StdDev(deltas, nil),
		MeanNoise:  stat.Mean(noises, nil),
		StdNoise:   stat.StdDev(noises, nil),
		MinVoltage: floats.Min(voltages),
		MaxVoltage: floats.Max(voltages),
		MinTemp:    floats.Min(temps),
		MaxTemp:    floats.Max(temps),
	}
}
