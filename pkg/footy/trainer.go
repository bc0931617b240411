package footy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/richard-senior/footy/internal/logger"
)

// Per-league training state. A league is either idle or training; the map
// entry is the training flag
var (
	trainingMu sync.Mutex
	training   = make(map[int]bool)
)

// beginTraining claims the league's training slot, failing when a run is
// already underway
func beginTraining(leagueID int) error {
	trainingMu.Lock()
	defer trainingMu.Unlock()
	if training[leagueID] {
		return fmt.Errorf("league %d: %w", leagueID, ErrTrainingInProgress)
	}
	training[leagueID] = true
	return nil
}

// endTraining releases the league's training slot
func endTraining(leagueID int) {
	trainingMu.Lock()
	defer trainingMu.Unlock()
	delete(training, leagueID)
}

// IsTraining reports whether a training run currently holds the league
func IsTraining(leagueID int) bool {
	trainingMu.Lock()
	defer trainingMu.Unlock()
	return training[leagueID]
}

// Train fits a fresh model for one league and atomically installs the
// artifact. The dataset is ordered by match date and split chronologically:
// the oldest slice trains, the middle slice chooses the regularisation
// strength, the newest slice is only ever touched for the final accuracy
// metric. Cancellation via ctx or any failure leaves the previous artifact
// in place
func Train(ctx context.Context, leagueID int) (*ModelArtifact, error) {
	if _, ok := GetLeagueConfig(leagueID); !ok {
		return nil, fmt.Errorf("unknown league %d", leagueID)
	}
	if err := beginTraining(leagueID); err != nil {
		return nil, err
	}
	defer endTraining(leagueID)

	start := time.Now()
	logger.Info("Training model", "league", leagueID)

	vectors, labels, rejected, err := BuildDataset(leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset for league %d: %w", leagueID, err)
	}
	if len(vectors) < Config.MinTrainingMatches {
		return nil, fmt.Errorf("league %d has %d usable matches, need %d: %w",
			leagueID, len(vectors), Config.MinTrainingMatches, ErrInsufficientData)
	}

	// Chronological split. The dataset is already date-ordered, so slicing
	// keeps all training data older than validation, and validation older
	// than test
	n := len(vectors)
	testStart := n - int(float64(n)*Config.TestFraction)
	valStart := testStart - int(float64(n)*Config.ValidationFraction)

	trainX, trainY := vectors[:valStart], labels[:valStart]
	valX, valY := vectors[valStart:testStart], labels[valStart:testStart]
	testX, testY := vectors[testStart:], labels[testStart:]

	means, stds := computeStandardisation(trainX)

	// Choose the regularisation strength on the validation slice
	bestLambda := Config.RegularisationGrid[0]
	var bestWeights [][]float64
	bestLoss := -1.0
	for _, lambda := range Config.RegularisationGrid {
		weights, err := fitSoftmax(ctx, trainX, trainY, means, stds, lambda)
		if err != nil {
			return nil, fmt.Errorf("training aborted for league %d: %w", leagueID, err)
		}
		var loss float64
		if len(valX) > 0 {
			_, loss = evaluate(weights, valX, valY, means, stds)
		} else {
			_, loss = evaluate(weights, trainX, trainY, means, stds)
		}
		logger.Debug("Lambda candidate evaluated", "lambda", lambda, "valLogLoss", loss)
		if bestLoss < 0 || loss < bestLoss {
			bestLoss = loss
			bestLambda = lambda
			bestWeights = weights
		}
	}

	accuracy, logLoss := evaluate(bestWeights, testX, testY, means, stds)

	artifact := &ModelArtifact{
		LeagueID:       leagueID,
		FeatureColumns: FeatureColumns(),
		Weights:        bestWeights,
		Means:          means,
		Stds:           stds,
		Metrics: ModelMetrics{
			Accuracy:     accuracy,
			LogLoss:      logLoss,
			TrainRows:    len(trainX),
			ValRows:      len(valX),
			TestRows:     len(testX),
			RejectedRows: rejected,
			Lambda:       bestLambda,
			TrainedAt:    time.Now().UTC(),
		},
	}

	if err := SaveArtifact(artifact); err != nil {
		return nil, fmt.Errorf("failed to persist model for league %d: %w", leagueID, err)
	}

	logger.Highlight("Model trained", "league", leagueID,
		"accuracy", accuracy, "logLoss", logLoss, "lambda", bestLambda,
		"elapsed", time.Since(start).Round(time.Millisecond).String())
	return artifact, nil
}
