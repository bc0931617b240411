package footy

import (
	"fmt"
	"time"
)

// Compile-time check to ensure League implements Persistable interface
var _ Persistable = (*League)(nil)

// League represents a tracked competition. Rows are seeded from the config
// registry at startup
type League struct {
	ID               int     `json:"id" column:"id" dbtype:"INTEGER" primary:"true"`
	Name             string  `json:"name" column:"name" dbtype:"TEXT NOT NULL"`
	Country          string  `json:"country" column:"country" dbtype:"TEXT"`
	Code             string  `json:"code" column:"code" dbtype:"TEXT" index:"true"`
	AvgGoals         float64 `json:"avgGoals" column:"avgGoals" dbtype:"REAL DEFAULT -1.0"`
	MatchesPerSeason int     `json:"matchesPerSeason" column:"matchesPerSeason" dbtype:"INTEGER DEFAULT -1"`

	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetTableName returns the table name for leagues
func (l *League) GetTableName() string {
	return "league"
}

// GetPrimaryKey returns the primary key as a map
func (l *League) GetPrimaryKey() map[string]interface{} {
	return map[string]any{
		"id": l.ID,
	}
}

// SetPrimaryKey sets the primary key from a map
func (l *League) SetPrimaryKey(pk map[string]interface{}) error {
	if id, ok := pk["id"]; ok {
		if idInt, ok := id.(int); ok {
			l.ID = idInt
			return nil
		}
		return fmt.Errorf("primary key 'id' must be an int")
	}
	return fmt.Errorf("primary key 'id' not found")
}

// BeforeSave is called before saving the league
func (l *League) BeforeSave() error {
	now := time.Now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	return nil
}

// AfterSave is called after saving the league
func (l *League) AfterSave() error { return nil }

// BeforeDelete is called before deleting the league
func (l *League) BeforeDelete() error { return nil }

// AfterDelete is called after deleting the league
func (l *League) AfterDelete() error { return nil }

/////////////////////////////////////////////////////////////////////////
////// League Operations
/////////////////////////////////////////////////////////////////////////

// RegisterLeagues upserts every league in the config registry
func RegisterLeagues() error {
	var rows []Persistable
	for _, lc := range Config.Leagues {
		rows = append(rows, &League{
			ID:               lc.ID,
			Name:             lc.Name,
			Country:          lc.Country,
			Code:             lc.Code,
			AvgGoals:         lc.AvgGoals,
			MatchesPerSeason: lc.MatchesPerSeason,
		})
	}
	if err := BulkSave(rows); err != nil {
		return fmt.Errorf("failed to register leagues: %w", err)
	}
	return nil
}

// GetLeague loads a league row by id
func GetLeague(leagueID int) (*League, error) {
	league := &League{}
	if err := FindByPrimaryKey(league, map[string]any{"id": leagueID}); err != nil {
		return nil, fmt.Errorf("unknown league %d: %w", leagueID, err)
	}
	return league, nil
}
