package footy

import (
	"fmt"
	"time"

	"github.com/richard-senior/footy/internal/logger"
)

// Confidence labels
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// Prediction is one match outcome forecast
type Prediction struct {
	LeagueID     int       `json:"leagueId"`
	HomeTeam     string    `json:"homeTeam"`
	AwayTeam     string    `json:"awayTeam"`
	HomeID       string    `json:"homeId"`
	AwayID       string    `json:"awayId"`
	Date         string    `json:"date"`
	HomeWinProb  float64   `json:"homeWinProb"`
	DrawProb     float64   `json:"drawProb"`
	AwayWinProb  float64   `json:"awayWinProb"`
	Confidence   string    `json:"confidence"`
	Factors      []string  `json:"factors"`
	ModelTrained time.Time `json:"modelTrained"`
}

// PredictedOutcome returns the most probable class label
func (p *Prediction) PredictedOutcome() int {
	switch {
	case p.HomeWinProb >= p.DrawProb && p.HomeWinProb >= p.AwayWinProb:
		return OutcomeHome
	case p.AwayWinProb >= p.DrawProb:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}

// Predict forecasts the outcome of a home/away pairing on a date. Team names
// are resolved fuzzily against the league's team universe; date "" means
// today. The result is also appended to the prediction audit trail
func Predict(leagueID int, homeName, awayName string, date string) (*Prediction, error) {
	artifact, err := LoadArtifact(leagueID)
	if err != nil {
		return nil, err
	}

	home, err := ResolveTeam(homeName, leagueID)
	if err != nil {
		return nil, err
	}
	away, err := ResolveTeam(awayName, leagueID)
	if err != nil {
		return nil, err
	}
	if home.ID == away.ID {
		return nil, fmt.Errorf("%s and %s resolve to the same team", homeName, awayName)
	}

	if date == "" {
		date = time.Now().Format(DateLayout)
	} else if _, err := time.Parse(DateLayout, date); err != nil {
		return nil, fmt.Errorf("date %q is not %s: %w", date, DateLayout, err)
	}

	// A stored fixture for this pairing may carry market odds
	homeOdds, drawOdds, awayOdds := fixtureOdds(leagueID, home.ID, away.ID, date)

	fs, err := ComputeFeatures(leagueID, home.ID, away.ID, date, homeOdds, drawOdds, awayOdds)
	if err != nil {
		return nil, err
	}
	if fs.HomeMatches == 0 || fs.AwayMatches == 0 {
		if Config.ZeroHistoryPolicy == "reject" {
			missing := home.Name
			if fs.HomeMatches > 0 {
				missing = away.Name
			}
			return nil, fmt.Errorf("%s has no recorded matches in league %d: %w",
				missing, leagueID, ErrInsufficientHistory)
		}
		logger.Debug("Predicting with neutral defaults for unplayed team",
			home.Name, fs.HomeMatches, away.Name, fs.AwayMatches)
	}

	probs := artifact.predictProba(fs.Vector(artifact.FeatureColumns))
	probs = renormalise(probs)

	p := &Prediction{
		LeagueID:     leagueID,
		HomeTeam:     home.Name,
		AwayTeam:     away.Name,
		HomeID:       home.ID,
		AwayID:       away.ID,
		Date:         date,
		HomeWinProb:  probs[OutcomeHome],
		DrawProb:     probs[OutcomeDraw],
		AwayWinProb:  probs[OutcomeAway],
		Confidence:   confidenceLabel(probs),
		Factors:      buildFactors(fs, home.Name, away.Name),
		ModelTrained: artifact.Metrics.TrainedAt,
	}

	if err := RecordPrediction(p); err != nil {
		logger.Warn("Failed to record prediction", err)
	}

	return p, nil
}

// PredictUpcomingFixtures forecasts every scheduled fixture in the league
// over the next daysAhead days. Fixtures that cannot be predicted are
// skipped with a warning rather than failing the sweep
func PredictUpcomingFixtures(leagueID int, daysAhead int) ([]*Prediction, error) {
	if daysAhead < 1 {
		daysAhead = 7
	}
	from := time.Now().Format(DateLayout)
	to := time.Now().AddDate(0, 0, daysAhead).Format(DateLayout)

	fixtures, err := QueryFixtures(leagueID, from, to)
	if err != nil {
		return nil, err
	}

	var predictions []*Prediction
	for _, f := range fixtures {
		p, err := Predict(leagueID, f.HomeTeamName, f.AwayTeamName, f.Date)
		if err != nil {
			logger.Warn("Skipping fixture", f.HomeTeamName, f.AwayTeamName, f.Date, err)
			continue
		}
		predictions = append(predictions, p)
	}
	return predictions, nil
}

// fixtureOdds looks up market odds from a stored fixture row, returning -1s
// when no such row exists
func fixtureOdds(leagueID int, homeID, awayID, date string) (float64, float64, float64) {
	results, err := FindWhere(&Match{},
		"leagueId = ? AND homeId = ? AND awayId = ? AND date = ?",
		leagueID, homeID, awayID, date)
	if err != nil || len(results) == 0 {
		return -1.0, -1.0, -1.0
	}
	m := results[0].(*Match)
	return m.HomeOdds, m.DrawOdds, m.AwayOdds
}

// renormalise forces the class probabilities to sum to exactly 1
func renormalise(probs []float64) []float64 {
	var sum float64
	for _, p := range probs {
		sum += p
	}
	if sum <= 0 {
		uniform := make([]float64, len(probs))
		for i := range uniform {
			uniform[i] = 1.0 / float64(len(probs))
		}
		return uniform
	}
	out := make([]float64, len(probs))
	for i, p := range probs {
		out[i] = p / sum
	}
	return out
}

// confidenceLabel maps the top probability to HIGH, MEDIUM or LOW
func confidenceLabel(probs []float64) string {
	top := 0.0
	for _, p := range probs {
		if p > top {
			top = p
		}
	}
	switch {
	case top > Config.HighConfidenceThreshold:
		return ConfidenceHigh
	case top >= Config.MediumConfidenceThreshold:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}
