// Package model implements the logistic accident-risk classifier and its
// JSON artifact format.
package model

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/marrowdrift/road-risk-service/internal/domain"
)

// Logistic is a binary logistic-regression classifier over a fixed,
// standardized feature vector. The zero value is unusable; construct via
// NewLogistic, Fit, or Load.
type Logistic struct {
	Weights      []float64 `json:"weights"`
	Bias         float64   `json:"bias"`
	FeatureNames []string  `json:"feature_names"`
	Means        []float64 `json:"means"`
	Stds         []float64 `json:"stds"`
}

var _ domain.Classifier = (*Logistic)(nil)

// NewLogistic returns an untrained model for the named features with
// identity standardization.
func NewLogistic(featureNames []string) *Logistic {
	n := len(featureNames)
	m := &Logistic{
		Weights:      make([]float64, n),
		FeatureNames: append([]string(nil), featureNames...),
		Means:        make([]float64, n),
		Stds:         make([]float64, n),
	}
	for i := range m.Stds {
		m.Stds[i] = 1
	}
	return m
}

func (m *Logistic) FeatureCount() int { return len(m.Weights) }

func (m *Logistic) ModelType() string { return "logistic_regression" }

// PredictProbability returns the positive-class probability for a raw
// feature vector.
func (m *Logistic) PredictProbability(features []float64) (float64, error) {
	if len(features) != len(m.Weights) {
		return 0, &domain.WidthMismatchError{Got: len(features), Want: len(m.Weights)}
	}
	std := make([]float64, len(features))
	for i, v := range features {
		std[i] = (v - m.Means[i]) / m.Stds[i]
	}
	z := mat.Dot(mat.NewVecDense(len(std), std), mat.NewVecDense(len(m.Weights), m.Weights)) + m.Bias
	return sigmoid(z), nil
}

// Predict returns 1 when the positive-class probability reaches 0.5.
func (m *Logistic) Predict(features []float64) (int, error) {
	p, err := m.PredictProbability(features)
	if err != nil {
		return 0, err
	}
	if p >= 0.5 {
		return 1, nil
	}
	return 0, nil
}

// FitOptions tune gradient descent. Zero values take the defaults.
type FitOptions struct {
	LearningRate float64
	Epochs       int
}

// Fit trains by full-batch gradient descent on binary labels. Feature
// standardization statistics are computed from the training matrix and
// stored with the model.
func (m *Logistic) Fit(rows [][]float64, labels []float64, opts FitOptions) error {
	if len(rows) == 0 {
		return fmt.Errorf("fitting model: %w", domain.ErrNoAccidentData)
	}
	if len(rows) != len(labels) {
		return fmt.Errorf("fitting model: %d rows but %d labels", len(rows), len(labels))
	}
	width := len(m.Weights)
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("fitting model: row %d: %w", i, &domain.WidthMismatchError{Got: len(row), Want: width})
		}
	}
	if opts.LearningRate == 0 {
		opts.LearningRate = 0.1
	}
	if opts.Epochs == 0 {
		opts.Epochs = 300
	}

	m.standardizeStats(rows)
	std := make([][]float64, len(rows))
	for i, row := range rows {
		s := make([]float64, width)
		for j, v := range row {
			s[j] = (v - m.Means[j]) / m.Stds[j]
		}
		std[i] = s
	}

	n := float64(len(rows))
	grad := make([]float64, width)
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for j := range grad {
			grad[j] = 0
		}
		var biasGrad float64
		for i, row := range std {
			z := m.Bias
			for j, v := range row {
				z += m.Weights[j] * v
			}
			diff := sigmoid(z) - labels[i]
			for j, v := range row {
				grad[j] += diff * v
			}
			biasGrad += diff
		}
		for j := range m.Weights {
			m.Weights[j] -= opts.LearningRate * grad[j] / n
		}
		m.Bias -= opts.LearningRate * biasGrad / n
	}
	return nil
}

func (m *Logistic) standardizeStats(rows [][]float64) {
	width := len(m.Weights)
	n := float64(len(rows))
	for j := 0; j < width; j++ {
		var sum float64
		for _, row := range rows {
			sum += row[j]
		}
		mean := sum / n
		var variance float64
		for _, row := range rows {
			d := row[j] - mean
			variance += d * d
		}
		std := math.Sqrt(variance / n)
		if std == 0 {
			std = 1
		}
		m.Means[j] = mean
		m.Stds[j] = std
	}
}

// Save writes the model artifact as indented JSON.
func (m *Logistic) Save(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling model: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing model: %w", err)
	}
	return nil
}

// Load reads a model artifact and validates its internal consistency and,
// when expectWidth is positive, its width against the schema manifest.
func Load(path string, expectWidth int) (*Logistic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model: %w", err)
	}
	var m Logistic
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing model: %w", err)
	}
	w := len(m.Weights)
	if len(m.Means) != w || len(m.Stds) != w || len(m.FeatureNames) != w {
		return nil, fmt.Errorf("model artifact %s is internally inconsistent", path)
	}
	for i, s := range m.Stds {
		if s == 0 {
			return nil, fmt.Errorf("model artifact %s has zero std for feature %s", path, m.FeatureNames[i])
		}
	}
	if expectWidth > 0 && w != expectWidth {
		return nil, &domain.WidthMismatchError{Got: w, Want: expectWidth}
	}
	return &m, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
