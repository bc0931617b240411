package footy

import (
	"fmt"
	"sort"
	"strings"
)

// Standings views
const (
	ViewOverall = "overall"
	ViewHome    = "home"
	ViewAway    = "away"
	ViewForm    = "form"
)

// StandingsRow is one team's line in a league table
type StandingsRow struct {
	Rank          int     `json:"rank"`
	TeamID        string  `json:"teamId"`
	TeamName      string  `json:"teamName"`
	Played        int     `json:"played"`
	Won           int     `json:"won"`
	Drawn         int     `json:"drawn"`
	Lost          int     `json:"lost"`
	GoalsFor      int     `json:"goalsFor"`
	GoalsAgainst  int     `json:"goalsAgainst"`
	GoalDiff      int     `json:"goalDiff"`
	Points        int     `json:"points"`
	PointsPerGame float64 `json:"pointsPerGame"`
	Form          string  `json:"form,omitempty"` // newest first, e.g. "WWDLW", overall view only
}

// Standings is a computed league table for one season and view
type Standings struct {
	LeagueID int             `json:"leagueId"`
	Season   string          `json:"season"`
	View     string          `json:"view"`
	Rows     []*StandingsRow `json:"rows"`
}

// CurrentSeason returns the highest season code with any matches recorded
// for the league, or "" when the league is empty
func CurrentSeason(leagueID int) (string, error) {
	seasons, err := AvailableSeasons(leagueID)
	if err != nil {
		return "", err
	}
	if len(seasons) == 0 {
		return "", nil
	}
	return seasons[len(seasons)-1], nil
}

// AvailableSeasons lists the season codes present for a league in ascending
// order
func AvailableSeasons(leagueID int) ([]string, error) {
	d, err := GetDB()
	if err != nil {
		return nil, err
	}
	rows, err := d.Query("SELECT DISTINCT season FROM match WHERE leagueId = ? ORDER BY season ASC", leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seasons for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	var seasons []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("failed to scan season: %w", err)
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

// CalculateStandings computes a league table fresh from the match rows.
// season "" defaults to the current (max) season; view is one of overall,
// home, away or form. Only teams with at least one counted match appear,
// which keeps relegated and promoted sides out of seasons they never
// played in
func CalculateStandings(leagueID int, season string, view string) (*Standings, error) {
	switch view {
	case "", ViewOverall:
		view = ViewOverall
	case ViewHome, ViewAway, ViewForm:
	default:
		return nil, fmt.Errorf("unknown standings view %q", view)
	}

	if season == "" {
		current, err := CurrentSeason(leagueID)
		if err != nil {
			return nil, err
		}
		if current == "" {
			return nil, fmt.Errorf("no matches recorded for league %d: %w", leagueID, ErrInsufficientData)
		}
		season = current
	}

	matches, err := QueryMatches(leagueID, season, "")
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	for _, m := range matches {
		names[m.HomeID] = m.HomeTeamName
		names[m.AwayID] = m.AwayTeamName
	}

	var counted map[string][]*Match
	if view == ViewForm {
		// Only each team's last N matches count toward the form table
		counted = make(map[string][]*Match)
		for _, m := range matches {
			counted[m.HomeID] = append(counted[m.HomeID], m)
			counted[m.AwayID] = append(counted[m.AwayID], m)
		}
		n := Config.FormMatches
		for id, ms := range counted {
			if len(ms) > n {
				counted[id] = ms[len(ms)-n:]
			}
		}
	}

	rows := make(map[string]*StandingsRow)
	row := func(teamID string) *StandingsRow {
		r, ok := rows[teamID]
		if !ok {
			r = &StandingsRow{TeamID: teamID, TeamName: names[teamID]}
			rows[teamID] = r
		}
		return r
	}

	apply := func(r *StandingsRow, goalsFor, goalsAgainst int) {
		r.Played++
		r.GoalsFor += goalsFor
		r.GoalsAgainst += goalsAgainst
		r.GoalDiff = r.GoalsFor - r.GoalsAgainst
		switch {
		case goalsFor > goalsAgainst:
			r.Won++
			r.Points += 3
		case goalsFor == goalsAgainst:
			r.Drawn++
			r.Points++
		default:
			r.Lost++
		}
	}

	for _, m := range matches {
		switch view {
		case ViewOverall:
			apply(row(m.HomeID), m.HomeGoals, m.AwayGoals)
			apply(row(m.AwayID), m.AwayGoals, m.HomeGoals)
		case ViewHome:
			apply(row(m.HomeID), m.HomeGoals, m.AwayGoals)
		case ViewAway:
			apply(row(m.AwayID), m.AwayGoals, m.HomeGoals)
		case ViewForm:
			if containsMatch(counted[m.HomeID], m) {
				apply(row(m.HomeID), m.HomeGoals, m.AwayGoals)
			}
			if containsMatch(counted[m.AwayID], m) {
				apply(row(m.AwayID), m.AwayGoals, m.HomeGoals)
			}
		}
	}

	table := make([]*StandingsRow, 0, len(rows))
	for _, r := range rows {
		if r.Played > 0 {
			r.PointsPerGame = float64(r.Points) / float64(r.Played)
			table = append(table, r)
		}
	}

	sortStandingsRows(table)
	for i, r := range table {
		r.Rank = i + 1
	}

	if view == ViewOverall {
		for _, r := range table {
			r.Form = formString(matches, r.TeamID, Config.FormMatches)
		}
	}

	return &Standings{LeagueID: leagueID, Season: season, View: view, Rows: table}, nil
}

// PositionOf returns a team's rank in the overall table as of the given
// standings, or the neutral mid-table default when absent
func (s *Standings) PositionOf(teamID string) int {
	for _, r := range s.Rows {
		if r.TeamID == teamID {
			return r.Rank
		}
	}
	return Config.NeutralPosition
}

// RowOf returns a team's standings row, or nil when absent
func (s *Standings) RowOf(teamID string) *StandingsRow {
	for _, r := range s.Rows {
		if r.TeamID == teamID {
			return r
		}
	}
	return nil
}

// sortStandingsRows orders a table: points, then goal difference, then goals
// for, then team id for a total order
func sortStandingsRows(table []*StandingsRow) {
	sort.Slice(table, func(i, j int) bool {
		a, b := table[i], table[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDiff != b.GoalDiff {
			return a.GoalDiff > b.GoalDiff
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.TeamID < b.TeamID
	})
}

func containsMatch(ms []*Match, m *Match) bool {
	for _, x := range ms {
		if x == m {
			return true
		}
	}
	return false
}

// formString renders a team's last n results newest first, e.g. "WWDLW"
func formString(matches []*Match, teamID string, n int) string {
	var letters []string
	for i := len(matches) - 1; i >= 0 && len(letters) < n; i-- {
		m := matches[i]
		var gf, ga int
		switch teamID {
		case m.HomeID:
			gf, ga = m.HomeGoals, m.AwayGoals
		case m.AwayID:
			gf, ga = m.AwayGoals, m.HomeGoals
		default:
			continue
		}
		switch {
		case gf > ga:
			letters = append(letters, "W")
		case gf == ga:
			letters = append(letters, "D")
		default:
			letters = append(letters, "L")
		}
	}
	return strings.Join(letters, "")
}
