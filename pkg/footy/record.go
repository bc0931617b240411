package footy

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/richard-senior/footy/internal/logger"
)

// Compile-time check to ensure PredictionRecord implements Persistable interface
var _ Persistable = (*PredictionRecord)(nil)

// PredictionRecord is one line of the append-only prediction audit trail.
// Records are written when predictions are made and settled once the real
// result lands; the predictor itself never reads them
type PredictionRecord struct {
	ID       string `json:"id" column:"id" dbtype:"TEXT" primary:"true"`
	LeagueID int    `json:"leagueId" column:"leagueId" dbtype:"INTEGER" index:"true"`
	HomeID   string `json:"homeId" column:"homeId" dbtype:"TEXT NOT NULL" index:"true"`
	AwayID   string `json:"awayId" column:"awayId" dbtype:"TEXT NOT NULL" index:"true"`
	Date     string `json:"date" column:"date" dbtype:"TEXT NOT NULL" index:"true"`

	HomeWinProb float64 `json:"homeWinProb" column:"homeWinProb" dbtype:"REAL"`
	DrawProb    float64 `json:"drawProb" column:"drawProb" dbtype:"REAL"`
	AwayWinProb float64 `json:"awayWinProb" column:"awayWinProb" dbtype:"REAL"`
	Predicted   int     `json:"predicted" column:"predicted" dbtype:"INTEGER"`
	Confidence  string  `json:"confidence" column:"confidence" dbtype:"TEXT"`

	// Settlement. -1 until the real result is known
	ActualOutcome int `json:"actualOutcome" column:"actualOutcome" dbtype:"INTEGER DEFAULT -1"`
	Correct       int `json:"correct" column:"correct" dbtype:"INTEGER DEFAULT -1"` // 0 or 1 once settled

	ModelTrained time.Time `json:"modelTrained" column:"modelTrained" dbtype:"DATETIME"`
	CreatedAt    time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt    time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetTableName returns the table name for prediction records
func (r *PredictionRecord) GetTableName() string {
	return "prediction"
}

// GetPrimaryKey returns the primary key as a map
func (r *PredictionRecord) GetPrimaryKey() map[string]interface{} {
	return map[string]any{
		"id": r.ID,
	}
}

// SetPrimaryKey sets the primary key from a map
func (r *PredictionRecord) SetPrimaryKey(pk map[string]interface{}) error {
	if id, ok := pk["id"].(string); ok {
		r.ID = id
		return nil
	}
	return fmt.Errorf("primary key 'id' must be a string")
}

// BeforeSave stamps the record id and timestamps
func (r *PredictionRecord) BeforeSave() error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
	return nil
}

// AfterSave is called after saving the record
func (r *PredictionRecord) AfterSave() error { return nil }

// BeforeDelete is called before deleting the record
func (r *PredictionRecord) BeforeDelete() error { return nil }

// AfterDelete is called after deleting the record
func (r *PredictionRecord) AfterDelete() error { return nil }

/////////////////////////////////////////////////////////////////////////
////// Audit Trail Operations
/////////////////////////////////////////////////////////////////////////

// RecordPrediction appends a prediction to the audit trail
func RecordPrediction(p *Prediction) error {
	record := &PredictionRecord{
		LeagueID:      p.LeagueID,
		HomeID:        p.HomeID,
		AwayID:        p.AwayID,
		Date:          p.Date,
		HomeWinProb:   p.HomeWinProb,
		DrawProb:      p.DrawProb,
		AwayWinProb:   p.AwayWinProb,
		Predicted:     p.PredictedOutcome(),
		Confidence:    p.Confidence,
		ActualOutcome: -1,
		Correct:       -1,
		ModelTrained:  p.ModelTrained,
	}
	return Save(record)
}

// SettlePredictions fills in the actual outcome and correctness on any
// unsettled records whose match has since been played. Returns the number
// of records settled
func SettlePredictions(leagueID int) (int, error) {
	results, err := FindWhere(&PredictionRecord{},
		"leagueId = ? AND actualOutcome < 0", leagueID)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, res := range results {
		record := res.(*PredictionRecord)

		matches, err := FindWhere(&Match{},
			"leagueId = ? AND homeId = ? AND awayId = ? AND date = ? AND homeGoals >= 0 AND awayGoals >= 0",
			record.LeagueID, record.HomeID, record.AwayID, record.Date)
		if err != nil {
			return settled, err
		}
		if len(matches) == 0 {
			continue
		}

		outcome := matches[0].(*Match).Outcome()
		record.ActualOutcome = outcome
		record.Correct = 0
		if outcome == record.Predicted {
			record.Correct = 1
		}
		if err := Save(record); err != nil {
			return settled, fmt.Errorf("failed to settle prediction %s: %w", record.ID, err)
		}
		settled++
	}

	if settled > 0 {
		logger.Info("Settled predictions", "league", leagueID, "settled", settled)
	}
	return settled, nil
}
