package footy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"
)

const numClasses = 3 // away, draw, home

// ModelMetrics records how the artifact was fitted and how it performed on
// the held-out test slice
type ModelMetrics struct {
	Accuracy     float64   `json:"accuracy"`
	LogLoss      float64   `json:"logLoss"`
	TrainRows    int       `json:"trainRows"`
	ValRows      int       `json:"valRows"`
	TestRows     int       `json:"testRows"`
	RejectedRows int       `json:"rejectedRows"`
	Lambda       float64   `json:"lambda"`
	TrainedAt    time.Time `json:"trainedAt"`
}

// ModelArtifact is the serialised form of a trained per-league model. It
// carries the feature schema and standardisation parameters so predictions
// are self-contained against whichever artifact version is on disk
type ModelArtifact struct {
	LeagueID       int          `json:"leagueId"`
	FeatureColumns []string     `json:"featureColumns"`
	Weights        [][]float64  `json:"weights"` // [class][feature+1], last entry is the bias
	Means          []float64    `json:"means"`
	Stds           []float64    `json:"stds"`
	Metrics        ModelMetrics `json:"metrics"`
}

// modelPath returns the artifact location for a league
func modelPath(leagueID int) string {
	return filepath.Join(Config.ModelsPath, fmt.Sprintf("model_%d.json", leagueID))
}

// SaveArtifact writes the artifact atomically: a temp file in the same
// directory, fsynced, then renamed over the target. A failed write leaves
// any previous artifact untouched
func SaveArtifact(a *ModelArtifact) error {
	if err := os.MkdirAll(Config.ModelsPath, 0755); err != nil {
		return fmt.Errorf("failed to create models directory: %w", err)
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model artifact: %w", err)
	}

	target := modelPath(a.LeagueID)
	tmp, err := os.CreateTemp(Config.ModelsPath, fmt.Sprintf("model_%d_*.tmp", a.LeagueID))
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp artifact: %w", err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to install model artifact: %w", err)
	}
	return nil
}

// LoadArtifact reads a league's artifact, or ErrModelNotTrained when none
// exists
func LoadArtifact(leagueID int) (*ModelArtifact, error) {
	data, err := os.ReadFile(modelPath(leagueID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("league %d: %w", leagueID, ErrModelNotTrained)
		}
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}
	a := &ModelArtifact{}
	if err := json.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact: %w", err)
	}
	if len(a.Weights) != numClasses || len(a.FeatureColumns) == 0 {
		return nil, fmt.Errorf("model artifact for league %d is malformed", leagueID)
	}
	return a, nil
}

// HasArtifact reports whether a trained model exists for the league
func HasArtifact(leagueID int) bool {
	_, err := os.Stat(modelPath(leagueID))
	return err == nil
}

/////////////////////////////////////////////////////////////////////////
////// Multinomial Logistic Regression
/////////////////////////////////////////////////////////////////////////

// fitSoftmax trains one weight vector per outcome class by batch gradient
// descent on standardised features with L2 regularisation. The context is
// checked between epochs so a cancelled training run stops promptly
func fitSoftmax(ctx context.Context, x [][]float64, y []int, means, stds []float64, lambda float64) ([][]float64, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("empty training set")
	}
	nFeatures := len(x[0])
	nSamples := float64(len(x))

	std := standardiseAll(x, means, stds)

	weights := make([][]float64, numClasses)
	for c := range weights {
		weights[c] = make([]float64, nFeatures+1) // trailing bias
	}

	for epoch := 0; epoch < Config.DescentEpochs; epoch++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		grad := make([][]float64, numClasses)
		for c := range grad {
			grad[c] = make([]float64, nFeatures+1)
		}

		for i, row := range std {
			probs := softmax(weights, row)
			for c := 0; c < numClasses; c++ {
				indicator := 0.0
				if y[i] == c {
					indicator = 1.0
				}
				diff := probs[c] - indicator
				for j, v := range row {
					grad[c][j] += diff * v
				}
				grad[c][nFeatures] += diff
			}
		}

		for c := 0; c < numClasses; c++ {
			for j := 0; j <= nFeatures; j++ {
				g := grad[c][j] / nSamples
				if j < nFeatures { // bias is not regularised
					g += lambda * weights[c][j] / nSamples
				}
				weights[c][j] -= Config.LearningRate * g
			}
		}
	}

	return weights, nil
}

// predictProba scores one raw feature vector against an artifact, returning
// [away, draw, home] probabilities
func (a *ModelArtifact) predictProba(raw []float64) []float64 {
	row := make([]float64, len(raw))
	for j, v := range raw {
		row[j] = standardise(v, a.Means[j], a.Stds[j])
	}
	return softmax(a.Weights, row)
}

// softmax computes class probabilities for one standardised row
func softmax(weights [][]float64, row []float64) []float64 {
	scores := make([]float64, len(weights))
	maxScore := math.Inf(-1)
	for c, w := range weights {
		s := w[len(row)] // bias
		for j, v := range row {
			s += w[j] * v
		}
		scores[c] = s
		if s > maxScore {
			maxScore = s
		}
	}

	// Subtract the max before exponentiating for numerical stability
	var sum float64
	probs := make([]float64, len(scores))
	for c, s := range scores {
		probs[c] = math.Exp(s - maxScore)
		sum += probs[c]
	}
	for c := range probs {
		probs[c] /= sum
	}
	return probs
}

// computeStandardisation derives per-column means and standard deviations
// from the training slice only
func computeStandardisation(x [][]float64) (means, stds []float64) {
	if len(x) == 0 {
		return nil, nil
	}
	nFeatures := len(x[0])
	means = make([]float64, nFeatures)
	stds = make([]float64, nFeatures)

	for _, row := range x {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= float64(len(x))
	}
	for _, row := range x {
		for j, v := range row {
			d := v - means[j]
			stds[j] += d * d
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / float64(len(x)))
	}
	return means, stds
}

func standardise(v, mean, std float64) float64 {
	if std < 1e-9 {
		return 0.0
	}
	return (v - mean) / std
}

func standardiseAll(x [][]float64, means, stds []float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		std := make([]float64, len(row))
		for j, v := range row {
			std[j] = standardise(v, means[j], stds[j])
		}
		out[i] = std
	}
	return out
}

// evaluate scores a fitted model on a slice, returning accuracy and log-loss
func evaluate(weights [][]float64, x [][]float64, y []int, means, stds []float64) (accuracy, logLoss float64) {
	if len(x) == 0 {
		return 0.0, 0.0
	}
	correct := 0
	for i, raw := range x {
		row := make([]float64, len(raw))
		for j, v := range raw {
			row[j] = standardise(v, means[j], stds[j])
		}
		probs := softmax(weights, row)

		best := 0
		for c := 1; c < len(probs); c++ {
			if probs[c] > probs[best] {
				best = c
			}
		}
		if best == y[i] {
			correct++
		}

		p := probs[y[i]]
		if p < 1e-15 {
			p = 1e-15
		}
		logLoss -= math.Log(p)
	}
	return float64(correct) / float64(len(x)), logLoss / float64(len(x))
}
