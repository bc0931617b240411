package footy

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Compile-time check to ensure Team implements Persistable interface
var _ Persistable = (*Team)(nil)

// Team represents a football team within one league. The same club appearing
// in two leagues is two rows; history never crosses league boundaries
type Team struct {
	ID       string `json:"id" column:"id" dbtype:"TEXT" primary:"true"`
	LeagueID int    `json:"leagueId" column:"leagueId" dbtype:"INTEGER" primary:"true" index:"true"`
	Name     string `json:"name" column:"name" dbtype:"TEXT NOT NULL"`

	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// NewTeam creates a team row; the id is a lowercase slug of the name so that
// re-imports of the same season resolve to the same row
func NewTeam(name string, leagueID int) *Team {
	return &Team{
		ID:       TeamID(name),
		LeagueID: leagueID,
		Name:     name,
	}
}

// TeamID derives the stable team identifier from a display name
func TeamID(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, " ", "-")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, ".", "")
	return s
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetTableName returns the table name for teams
func (t *Team) GetTableName() string {
	return "team"
}

// GetPrimaryKey returns the compound primary key as a map
func (t *Team) GetPrimaryKey() map[string]interface{} {
	return map[string]any{
		"id":       t.ID,
		"leagueId": t.LeagueID,
	}
}

// SetPrimaryKey sets the primary key from a map
func (t *Team) SetPrimaryKey(pk map[string]interface{}) error {
	id, ok := pk["id"].(string)
	if !ok {
		return fmt.Errorf("primary key 'id' must be a string")
	}
	leagueID, ok := pk["leagueId"].(int)
	if !ok {
		return fmt.Errorf("primary key 'leagueId' must be an int")
	}
	t.ID = id
	t.LeagueID = leagueID
	return nil
}

// BeforeSave is called before saving the team
func (t *Team) BeforeSave() error {
	if t.ID == "" {
		t.ID = TeamID(t.Name)
	}
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	return nil
}

// AfterSave is called after saving the team
func (t *Team) AfterSave() error { return nil }

// BeforeDelete is called before deleting the team
func (t *Team) BeforeDelete() error { return nil }

// AfterDelete is called after deleting the team
func (t *Team) AfterDelete() error { return nil }

/////////////////////////////////////////////////////////////////////////
////// Team Queries
/////////////////////////////////////////////////////////////////////////

// QueryTeams returns every team registered in the league, ordered by id
func QueryTeams(leagueID int) ([]*Team, error) {
	results, err := FindWhere(&Team{}, "leagueId = ? ORDER BY id ASC", leagueID)
	if err != nil {
		return nil, err
	}
	teams := make([]*Team, 0, len(results))
	for _, r := range results {
		teams = append(teams, r.(*Team))
	}
	return teams, nil
}

/////////////////////////////////////////////////////////////////////////
////// Fuzzy Name Resolution
/////////////////////////////////////////////////////////////////////////

// ResolveTeam matches a possibly partial, differently-cased team name against
// the league's team universe. Matching tiers: exact (case-insensitive), then
// substring either way, then token overlap. A single best match wins; a tie
// at the top score is AmbiguousTeamError, no match above the configured
// minimum score is TeamNotFoundError
func ResolveTeam(name string, leagueID int) (*Team, error) {
	teams, err := QueryTeams(leagueID)
	if err != nil {
		return nil, err
	}

	query := strings.ToLower(strings.TrimSpace(name))
	if query == "" {
		return nil, &TeamNotFoundError{Name: name, LeagueID: leagueID}
	}

	type scored struct {
		team  *Team
		score float64
	}
	var candidates []scored

	for _, t := range teams {
		s := resolutionScore(query, strings.ToLower(t.Name))
		if s >= Config.MinResolutionScore {
			candidates = append(candidates, scored{team: t, score: s})
		}
	}

	if len(candidates) == 0 {
		return nil, &TeamNotFoundError{Name: name, LeagueID: leagueID}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].team.ID < candidates[j].team.ID
	})

	best := candidates[0]
	var tied []string
	for _, c := range candidates {
		if c.score == best.score {
			tied = append(tied, c.team.Name)
		}
	}
	if len(tied) > 1 {
		return nil, &AmbiguousTeamError{Name: name, LeagueID: leagueID, Candidates: tied}
	}

	return best.team, nil
}

// resolutionScore rates how well a query matches a team name. Exact match is
// 1.0, containment 0.9, otherwise the fraction of query tokens present in
// the name
func resolutionScore(query, name string) float64 {
	if query == name {
		return 1.0
	}
	if strings.Contains(name, query) || strings.Contains(query, name) {
		return 0.9
	}

	queryTokens := strings.Fields(query)
	if len(queryTokens) == 0 {
		return 0.0
	}
	nameTokens := strings.Fields(name)
	matched := 0
	for _, qt := range queryTokens {
		for _, nt := range nameTokens {
			if qt == nt || strings.HasPrefix(nt, qt) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(queryTokens))
}
