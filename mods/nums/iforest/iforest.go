// Package iforest implements an isolation forest, an unsupervised
// outlier model. A point that is easy to separate from the bulk of the
// training data takes a short path through the randomized trees and
// receives a score close to 1; typical points score near 0.5 or below.
package iforest

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

const (
	DefaultTrees      = 200
	DefaultSampleSize = 256
	DefaultSeed       = 42
)

var (
	ErrNotFitted        = errors.New("forest is not fitted")
	ErrInsufficientData = errors.New("insufficient training data")
)

type Option func(*Forest)

// WithTrees sets the ensemble size.
func WithTrees(n int) Option {
	return func(f *Forest) { f.numTrees = n }
}

// WithSampleSize sets the per-tree subsample size.
func WithSampleSize(n int) Option {
	return func(f *Forest) { f.sampleSize = n }
}

// WithContamination sets the fraction of the training population the
// forest is told to expect to be anomalous. It calibrates the decision
// threshold during Fit.
func WithContamination(c float64) Option {
	return func(f *Forest) { f.contamination = c }
}

// WithSeed sets the random seed, making Fit deterministic.
func WithSeed(seed int64) Option {
	return func(f *Forest) { f.seed = seed }
}

type Forest struct {
	numTrees      int
	sampleSize    int
	contamination float64
	seed          int64

	trees       []*node
	numFeatures int
	cNorm       float64 // c(sampleSize), path length normalizer
	threshold   float64
	fitted      bool
}

func New(opts ...Option) *Forest {
	f := &Forest{
		numTrees:      DefaultTrees,
		sampleSize:    DefaultSampleSize,
		contamination: 0.02,
		seed:          DefaultSeed,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type node struct {
	splitFeature int
	splitValue   float64
	left         *node
	right        *node
	size         int
	isLeaf       bool
}

// Fit builds the ensemble from the training matrix and calibrates the
// decision threshold so that roughly the contamination fraction of the
// training points themselves fall on the outlier side.
func (f *Forest) Fit(data [][]float64) error {
	if len(data) < 2 {
		return fmt.Errorf("%w: %d rows", ErrInsufficientData, len(data))
	}
	f.numFeatures = len(data[0])
	for i, row := range data {
		if len(row) != f.numFeatures {
			return fmt.Errorf("row %d has %d features, want %d", i, len(row), f.numFeatures)
		}
	}

	sampleSize := f.sampleSize
	if sampleSize > len(data) {
		sampleSize = len(data)
	}
	maxDepth := int(math.Ceil(math.Log2(float64(sampleSize))))
	rng := rand.New(rand.NewSource(f.seed))

	f.trees = make([]*node, f.numTrees)
	for i := 0; i < f.numTrees; i++ {
		sample := subsample(data, sampleSize, rng)
		f.trees[i] = buildNode(sample, 0, maxDepth, rng)
	}
	f.cNorm = avgPathLength(float64(sampleSize))
	f.fitted = true

	scores := make([]float64, len(data))
	for i, row := range data {
		scores[i], _ = f.Score(row)
	}
	// threshold such that ceil(n*contamination) training points score
	// strictly above it
	sort.Float64s(scores)
	idx := len(scores) - 1 - int(math.Ceil(float64(len(scores))*f.contamination))
	if idx >= len(scores) {
		idx = len(scores) - 1
	}
	if idx < 0 {
		idx = 0
	}
	f.threshold = scores[idx]
	return nil
}

// Score returns the anomaly score of x in (0, 1], higher = more anomalous.
func (f *Forest) Score(x []float64) (float64, error) {
	if !f.fitted {
		return 0, ErrNotFitted
	}
	if len(x) != f.numFeatures {
		return 0, fmt.Errorf("sample has %d features, want %d", len(x), f.numFeatures)
	}
	sum := 0.0
	for _, t := range f.trees {
		sum += pathLength(x, t, 0)
	}
	avg := sum / float64(len(f.trees))
	return math.Pow(2, -avg/f.cNorm), nil
}

// Decision returns threshold minus score; negative values are outliers.
// The scale is model-defined, only useful for relative comparison.
func (f *Forest) Decision(x []float64) (float64, error) {
	score, err := f.Score(x)
	if err != nil {
		return 0, err
	}
	return f.threshold - score, nil
}

// Predict reports whether x falls on the outlier side of the calibrated
// threshold.
func (f *Forest) Predict(x []float64) (bool, error) {
	d, err := f.Decision(x)
	if err != nil {
		return false, err
	}
	return d < 0, nil
}

// Threshold returns the score threshold calibrated at fit time.
func (f *Forest) Threshold() float64 {
	return f.threshold
}

func subsample(data [][]float64, size int, rng *rand.Rand) [][]float64 {
	if len(data) <= size {
		return data
	}
	sample := make([][]float64, size)
	for i, idx := range rng.Perm(len(data))[:size] {
		sample[i] = data[idx]
	}
	return sample
}

func buildNode(data [][]float64, depth, maxDepth int, rng *rand.Rand) *node {
	if len(data) <= 1 || depth >= maxDepth {
		return &node{isLeaf: true, size: len(data)}
	}

	// pick a random feature that still varies in this partition
	feature, minVal, maxVal := -1, 0.0, 0.0
	for _, fi := range rng.Perm(len(data[0])) {
		lo, hi := data[0][fi], data[0][fi]
		for _, row := range data {
			if row[fi] < lo {
				lo = row[fi]
			}
			if row[fi] > hi {
				hi = row[fi]
			}
		}
		if lo < hi {
			feature, minVal, maxVal = fi, lo, hi
			break
		}
	}
	if feature < 0 {
		// all points identical
		return &node{isLeaf: true, size: len(data)}
	}

	splitValue := minVal + rng.Float64()*(maxVal-minVal)

	var left, right [][]float64
	for _, row := range data {
		if row[feature] < splitValue {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	return &node{
		splitFeature: feature,
		splitValue:   splitValue,
		left:         buildNode(left, depth+1, maxDepth, rng),
		right:        buildNode(right, depth+1, maxDepth, rng),
	}
}

func pathLength(x []float64, n *node, depth int) float64 {
	if n.isLeaf {
		return float64(depth) + avgPathLength(float64(n.size))
	}
	if x[n.splitFeature] < n.splitValue {
		return pathLength(x, n.left, depth+1)
	}
	return pathLength(x, n.right, depth+1)
}

// avgPathLength is c(n), the average path length of an unsuccessful
// search in a binary search tree of n nodes.
func avgPathLength(n float64) float64 {
	if n <= 1 {
		return 0
	}
	if n == 2 {
		return 1
	}
	const eulerGamma = 0.5772156649
	return 2*(math.Log(n-1)+eulerGamma) - 2*(n-1)/n
}
