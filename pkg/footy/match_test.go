package footy

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Div,Date,HomeTeam,AwayTeam,FTHG,FTAG,HS,AS,HST,AST,HC,AC,HF,AF,HY,AY,HR,AR,B365H,B365D,B365A
E0,16/08/2024,Arsenal,Wolves,2,0,18,6,8,2,7,3,10,12,1,2,0,0,1.30,5.50,9.00
E0,17/08/2024,Everton,Brighton,0,3,10,15,3,7,5,6,11,9,2,1,0,1,3.20,3.40,2.25
E0,18/08/2024,Chelsea,Man City,0,2,7,14,2,6,4,8,13,8,3,1,0,0,3.80,3.60,1.95
`

func TestImportSeasonCSV(t *testing.T) {
	newTestStore(t)

	imported, rejected, err := ImportSeasonCSV(strings.NewReader(sampleCSV), 1, "2425")
	require.NoError(t, err)
	assert.Equal(t, 3, imported)
	assert.Zero(t, rejected)

	matches, err := QueryMatches(1, "2425", "")
	require.NoError(t, err)
	require.Len(t, matches, 3)

	first := matches[0]
	assert.Equal(t, "2024-08-16", first.Date, "dd/mm/yyyy dates are canonicalised")
	assert.Equal(t, "Arsenal", first.HomeTeamName)
	assert.Equal(t, 2, first.HomeGoals)
	assert.Equal(t, 0, first.AwayGoals)
	assert.Equal(t, StatusFinished, first.Status)
	assert.Equal(t, 18, first.HomeShots)
	assert.Equal(t, 8, first.HomeShotsOnTarget)
	assert.Equal(t, 1.30, first.HomeOdds)

	// First-seen teams are registered in the same transaction
	teams, err := QueryTeams(1)
	require.NoError(t, err)
	assert.Len(t, teams, 6)
}

func TestImportSeasonCSVIsIdempotent(t *testing.T) {
	newTestStore(t)

	_, _, err := ImportSeasonCSV(strings.NewReader(sampleCSV), 1, "2425")
	require.NoError(t, err)
	_, _, err = ImportSeasonCSV(strings.NewReader(sampleCSV), 1, "2425")
	require.NoError(t, err)

	count, err := CountWhere(&Match{}, "leagueId = ?", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "re-importing the same season must not duplicate rows")
}

func TestImportRejectsBadRows(t *testing.T) {
	newTestStore(t)

	csv := "Date,HomeTeam,AwayTeam,FTHG,FTAG\n" +
		"not-a-date,Arsenal,Chelsea,1,0\n" +
		"16/08/2024,Arsenal,Arsenal,1,0\n" +
		"17/08/2024,Arsenal,Chelsea,2,1\n"

	imported, rejected, err := ImportSeasonCSV(strings.NewReader(csv), 1, "2425")
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, 2, rejected)
}

func TestImportRequiresCoreColumns(t *testing.T) {
	newTestStore(t)

	_, _, err := ImportSeasonCSV(strings.NewReader("Date,HomeTeam\n"), 1, "2425")
	assert.Error(t, err)
}

func TestMatchOutcome(t *testing.T) {
	m := NewMatch(1, "2425", "Arsenal", "Chelsea", "2024-08-16")
	assert.Equal(t, -1, m.Outcome(), "a fixture has no outcome")
	assert.False(t, m.IsPlayed())

	m.HomeGoals, m.AwayGoals = 2, 1
	assert.Equal(t, OutcomeHome, m.Outcome())
	m.HomeGoals, m.AwayGoals = 1, 1
	assert.Equal(t, OutcomeDraw, m.Outcome())
	m.HomeGoals, m.AwayGoals = 0, 1
	assert.Equal(t, OutcomeAway, m.Outcome())
}

func TestMatchRejectsSelfPlay(t *testing.T) {
	newTestStore(t)

	m := NewMatch(1, "2425", "Arsenal", "Arsenal", "2024-08-16")
	assert.Error(t, Save(m))
}

func TestResolveTeamTiers(t *testing.T) {
	newTestStore(t)

	seedTeam(t, 1, "Manchester United")
	seedTeam(t, 1, "Manchester City")
	seedTeam(t, 1, "Arsenal")

	// Exact, case-insensitive
	team, err := ResolveTeam("manchester united", 1)
	require.NoError(t, err)
	assert.Equal(t, "Manchester United", team.Name)

	// Unique substring
	team, err = ResolveTeam("arse", 1)
	require.NoError(t, err)
	assert.Equal(t, "Arsenal", team.Name)

	// Shared prefix is ambiguous
	_, err = ResolveTeam("Manchester", 1)
	var ambiguous *AmbiguousTeamError
	require.ErrorAs(t, err, &ambiguous)
	assert.ElementsMatch(t, []string{"Manchester United", "Manchester City"}, ambiguous.Candidates)

	// No match at all
	_, err = ResolveTeam("Real Madrid", 1)
	var notFound *TeamNotFoundError
	assert.ErrorAs(t, err, &notFound)
}
