package footy

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/richard-senior/footy/internal/logger"
)

// Compile-time check to ensure Match implements Persistable interface
var _ Persistable = (*Match)(nil)

// Match statuses
const (
	StatusScheduled = "scheduled"
	StatusFinished  = "finished"
)

// Outcome classes for the classifier, ordered so that index == class label
const (
	OutcomeAway = 0
	OutcomeDraw = 1
	OutcomeHome = 2
)

// DateLayout is the canonical form of match dates in the store
const DateLayout = "2006-01-02"

// Match represents one fixture or result. The compound primary key means a
// fixture and its result are the same row: saving the result is an upsert
// that fills in the goals, so the two can never coexist
type Match struct {
	// Compound primary key
	LeagueID int    `json:"leagueId" column:"leagueId" dbtype:"INTEGER" primary:"true" index:"true"`
	Season   string `json:"season" column:"season" dbtype:"TEXT" primary:"true" index:"true"`
	HomeID   string `json:"homeId" column:"homeId" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	AwayID   string `json:"awayId" column:"awayId" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`
	Date     string `json:"date" column:"date" dbtype:"TEXT NOT NULL" primary:"true" index:"true"`

	HomeTeamName string `json:"homeTeamName" column:"homeTeamName" dbtype:"TEXT NOT NULL"`
	AwayTeamName string `json:"awayTeamName" column:"awayTeamName" dbtype:"TEXT NOT NULL"`
	Status       string `json:"status" column:"status" dbtype:"TEXT"` // "scheduled" or "finished"

	// Result. -1 means not yet played
	HomeGoals int `json:"homeGoals" column:"homeGoals" dbtype:"INTEGER DEFAULT -1"`
	AwayGoals int `json:"awayGoals" column:"awayGoals" dbtype:"INTEGER DEFAULT -1"`

	// Action
	HomeShots         int `json:"homeShots,omitempty" column:"homeShots" dbtype:"INTEGER DEFAULT -1"`
	AwayShots         int `json:"awayShots,omitempty" column:"awayShots" dbtype:"INTEGER DEFAULT -1"`
	HomeShotsOnTarget int `json:"homeShotsOnTarget,omitempty" column:"homeShotsOnTarget" dbtype:"INTEGER DEFAULT -1"`
	AwayShotsOnTarget int `json:"awayShotsOnTarget,omitempty" column:"awayShotsOnTarget" dbtype:"INTEGER DEFAULT -1"`
	HomeCorners       int `json:"homeCorners,omitempty" column:"homeCorners" dbtype:"INTEGER DEFAULT -1"`
	AwayCorners       int `json:"awayCorners,omitempty" column:"awayCorners" dbtype:"INTEGER DEFAULT -1"`

	// Discipline
	HomeFouls       int `json:"homeFouls,omitempty" column:"homeFouls" dbtype:"INTEGER DEFAULT -1"`
	AwayFouls       int `json:"awayFouls,omitempty" column:"awayFouls" dbtype:"INTEGER DEFAULT -1"`
	HomeYellowCards int `json:"homeYellowCards,omitempty" column:"homeYellowCards" dbtype:"INTEGER DEFAULT -1"`
	AwayYellowCards int `json:"awayYellowCards,omitempty" column:"awayYellowCards" dbtype:"INTEGER DEFAULT -1"`
	HomeRedCards    int `json:"homeRedCards,omitempty" column:"homeRedCards" dbtype:"INTEGER DEFAULT -1"`
	AwayRedCards    int `json:"awayRedCards,omitempty" column:"awayRedCards" dbtype:"INTEGER DEFAULT -1"`

	// Average betting odds (from football-data.co.uk)
	HomeOdds float64 `json:"homeOdds,omitempty" column:"homeOdds" dbtype:"REAL DEFAULT -1.0"`
	DrawOdds float64 `json:"drawOdds,omitempty" column:"drawOdds" dbtype:"REAL DEFAULT -1.0"`
	AwayOdds float64 `json:"awayOdds,omitempty" column:"awayOdds" dbtype:"REAL DEFAULT -1.0"`

	// Metadata
	CreatedAt time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updatedAt" column:"updated_at" dbtype:"DATETIME DEFAULT CURRENT_TIMESTAMP"`
}

// NewMatch creates a match with sentinel defaults for all unknown numerics
func NewMatch(leagueID int, season, homeName, awayName, date string) *Match {
	return &Match{
		LeagueID:     leagueID,
		Season:       season,
		HomeID:       TeamID(homeName),
		AwayID:       TeamID(awayName),
		Date:         date,
		HomeTeamName: homeName,
		AwayTeamName: awayName,
		Status:       StatusScheduled,
		HomeGoals:    -1, AwayGoals: -1,
		HomeShots: -1, AwayShots: -1,
		HomeShotsOnTarget: -1, AwayShotsOnTarget: -1,
		HomeCorners: -1, AwayCorners: -1,
		HomeFouls: -1, AwayFouls: -1,
		HomeYellowCards: -1, AwayYellowCards: -1,
		HomeRedCards: -1, AwayRedCards: -1,
		HomeOdds: -1.0, DrawOdds: -1.0, AwayOdds: -1.0,
	}
}

// IsPlayed reports whether this row carries a full-time result
func (m *Match) IsPlayed() bool {
	return m.HomeGoals >= 0 && m.AwayGoals >= 0
}

// Outcome returns the class label for a played match, or -1 for a fixture
func (m *Match) Outcome() int {
	if !m.IsPlayed() {
		return -1
	}
	switch {
	case m.HomeGoals > m.AwayGoals:
		return OutcomeHome
	case m.HomeGoals < m.AwayGoals:
		return OutcomeAway
	default:
		return OutcomeDraw
	}
}

/////////////////////////////////////////////////////////////////////////
////// Persistable Interface Implementation
/////////////////////////////////////////////////////////////////////////

// GetTableName returns the table name for matches
func (m *Match) GetTableName() string {
	return "match"
}

// GetPrimaryKey returns the compound primary key as a map
func (m *Match) GetPrimaryKey() map[string]interface{} {
	return map[string]any{
		"leagueId": m.LeagueID,
		"season":   m.Season,
		"homeId":   m.HomeID,
		"awayId":   m.AwayID,
		"date":     m.Date,
	}
}

// SetPrimaryKey sets the primary key from a map
func (m *Match) SetPrimaryKey(pk map[string]interface{}) error {
	leagueID, ok := pk["leagueId"].(int)
	if !ok {
		return fmt.Errorf("primary key 'leagueId' must be an int")
	}
	season, ok := pk["season"].(string)
	if !ok {
		return fmt.Errorf("primary key 'season' must be a string")
	}
	homeID, ok := pk["homeId"].(string)
	if !ok {
		return fmt.Errorf("primary key 'homeId' must be a string")
	}
	awayID, ok := pk["awayId"].(string)
	if !ok {
		return fmt.Errorf("primary key 'awayId' must be a string")
	}
	date, ok := pk["date"].(string)
	if !ok {
		return fmt.Errorf("primary key 'date' must be a string")
	}
	m.LeagueID = leagueID
	m.Season = season
	m.HomeID = homeID
	m.AwayID = awayID
	m.Date = date
	return nil
}

// BeforeSave derives the status from the goals and stamps timestamps
func (m *Match) BeforeSave() error {
	if m.HomeID == m.AwayID {
		return fmt.Errorf("match %s vs %s: a team cannot play itself", m.HomeTeamName, m.AwayTeamName)
	}
	if _, err := time.Parse(DateLayout, m.Date); err != nil {
		return fmt.Errorf("match date %q is not %s: %w", m.Date, DateLayout, err)
	}
	if m.IsPlayed() {
		m.Status = StatusFinished
	} else if m.Status == "" {
		m.Status = StatusScheduled
	}

	now := time.Now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	return nil
}

// AfterSave is called after saving the match
func (m *Match) AfterSave() error { return nil }

// BeforeDelete is called before deleting the match
func (m *Match) BeforeDelete() error { return nil }

// AfterDelete is called after deleting the match
func (m *Match) AfterDelete() error { return nil }

/////////////////////////////////////////////////////////////////////////
////// Match Queries
/////////////////////////////////////////////////////////////////////////

// QueryMatches returns played matches for a league in chronological order.
// season narrows to one season when non-empty; asOf excludes matches on or
// after that date when non-empty
func QueryMatches(leagueID int, season string, asOf string) ([]*Match, error) {
	where := "leagueId = ? AND homeGoals >= 0 AND awayGoals >= 0"
	args := []any{leagueID}
	if season != "" {
		where += " AND season = ?"
		args = append(args, season)
	}
	if asOf != "" {
		where += " AND date < ?"
		args = append(args, asOf)
	}
	where += " ORDER BY date ASC, homeId ASC"

	results, err := FindWhere(&Match{}, where, args...)
	if err != nil {
		return nil, err
	}
	matches := make([]*Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, r.(*Match))
	}
	return matches, nil
}

// QueryFixtures returns scheduled matches for a league with dates in
// [from, to], chronologically ordered
func QueryFixtures(leagueID int, from, to string) ([]*Match, error) {
	results, err := FindWhere(&Match{},
		"leagueId = ? AND homeGoals < 0 AND date >= ? AND date <= ? ORDER BY date ASC, homeId ASC",
		leagueID, from, to)
	if err != nil {
		return nil, err
	}
	fixtures := make([]*Match, 0, len(results))
	for _, r := range results {
		fixtures = append(fixtures, r.(*Match))
	}
	return fixtures, nil
}

// MatchesForTeam returns the played matches involving a team before asOf,
// most recent first, at most limit rows. venue narrows to "home" or "away"
func MatchesForTeam(leagueID int, teamID string, asOf string, venue string, limit int) ([]*Match, error) {
	where := "leagueId = ? AND homeGoals >= 0 AND awayGoals >= 0 AND date < ?"
	args := []any{leagueID, asOf}

	switch venue {
	case "home":
		where += " AND homeId = ?"
		args = append(args, teamID)
	case "away":
		where += " AND awayId = ?"
		args = append(args, teamID)
	default:
		where += " AND (homeId = ? OR awayId = ?)"
		args = append(args, teamID, teamID)
	}

	where += " ORDER BY date DESC"
	if limit > 0 {
		where += fmt.Sprintf(" LIMIT %d", limit)
	}

	results, err := FindWhere(&Match{}, where, args...)
	if err != nil {
		return nil, err
	}
	matches := make([]*Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, r.(*Match))
	}
	return matches, nil
}

// HeadToHead returns the most recent played meetings between two teams in
// either venue arrangement, newest first
func HeadToHead(leagueID int, teamA, teamB string, asOf string, limit int) ([]*Match, error) {
	where := "leagueId = ? AND homeGoals >= 0 AND awayGoals >= 0 AND date < ?" +
		" AND ((homeId = ? AND awayId = ?) OR (homeId = ? AND awayId = ?)) ORDER BY date DESC"
	if limit > 0 {
		where += fmt.Sprintf(" LIMIT %d", limit)
	}
	results, err := FindWhere(&Match{}, where, leagueID, asOf, teamA, teamB, teamB, teamA)
	if err != nil {
		return nil, err
	}
	matches := make([]*Match, 0, len(results))
	for _, r := range results {
		matches = append(matches, r.(*Match))
	}
	return matches, nil
}

/////////////////////////////////////////////////////////////////////////
////// CSV Season Import
/////////////////////////////////////////////////////////////////////////

// ImportSeasonCSV reads a football-data.co.uk style season CSV and commits
// the batch (matches plus first-seen teams) in one transaction. Rows that
// cannot be parsed are skipped with a warning; the rejected count is
// returned alongside the imported count
func ImportSeasonCSV(r io.Reader, leagueID int, season string) (imported, rejected int, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"Date", "HomeTeam", "AwayTeam"} {
		if _, ok := col[required]; !ok {
			return 0, 0, fmt.Errorf("CSV is missing required column %s", required)
		}
	}

	var rows []Persistable
	seenTeams := make(map[string]bool)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("Skipping malformed CSV row", err)
			rejected++
			continue
		}

		get := func(name string) string {
			i, ok := col[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		date, err := parseCSVDate(get("Date"))
		if err != nil {
			logger.Warn("Skipping row with unparseable date", get("Date"))
			rejected++
			continue
		}
		homeName, awayName := get("HomeTeam"), get("AwayTeam")
		if homeName == "" || awayName == "" || homeName == awayName {
			rejected++
			continue
		}

		m := NewMatch(leagueID, season, homeName, awayName, date)
		m.HomeGoals = csvInt(get("FTHG"))
		m.AwayGoals = csvInt(get("FTAG"))
		m.HomeShots = csvInt(get("HS"))
		m.AwayShots = csvInt(get("AS"))
		m.HomeShotsOnTarget = csvInt(get("HST"))
		m.AwayShotsOnTarget = csvInt(get("AST"))
		m.HomeCorners = csvInt(get("HC"))
		m.AwayCorners = csvInt(get("AC"))
		m.HomeFouls = csvInt(get("HF"))
		m.AwayFouls = csvInt(get("AF"))
		m.HomeYellowCards = csvInt(get("HY"))
		m.AwayYellowCards = csvInt(get("AY"))
		m.HomeRedCards = csvInt(get("HR"))
		m.AwayRedCards = csvInt(get("AR"))
		m.HomeOdds = csvFloat(get("B365H"))
		m.DrawOdds = csvFloat(get("B365D"))
		m.AwayOdds = csvFloat(get("B365A"))

		for _, name := range []string{homeName, awayName} {
			if !seenTeams[TeamID(name)] {
				seenTeams[TeamID(name)] = true
				rows = append(rows, NewTeam(name, leagueID))
			}
		}
		rows = append(rows, m)
		imported++
	}

	if len(rows) == 0 {
		return 0, rejected, nil
	}
	if err := BulkSave(rows); err != nil {
		return 0, rejected, fmt.Errorf("failed to commit season import: %w", err)
	}

	logger.Info("Imported season CSV", "league", leagueID, "season", season, "matches", imported, "rejected", rejected)
	return imported, rejected, nil
}

// parseCSVDate handles the two date shapes football-data.co.uk has used
// over the years (dd/mm/yy and dd/mm/yyyy)
func parseCSVDate(s string) (string, error) {
	for _, layout := range []string{"02/01/2006", "02/01/06", DateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognised date %q", s)
}

func csvInt(s string) int {
	if s == "" {
		return -1
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return v
}

func csvFloat(s string) float64 {
	if s == "" {
		return -1.0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return -1.0
	}
	return v
}
