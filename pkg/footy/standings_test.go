package footy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandingsPointsIdentity(t *testing.T) {
	newTestStore(t)

	seedResult(t, 1, "2425", "Arsenal", "Chelsea", day(0), 2, 0)
	seedResult(t, 1, "2425", "Chelsea", "Liverpool", day(1), 1, 1)
	seedResult(t, 1, "2425", "Liverpool", "Arsenal", day(2), 0, 3)
	seedResult(t, 1, "2425", "Arsenal", "Liverpool", day(3), 1, 2)

	s, err := CalculateStandings(1, "2425", ViewOverall)
	require.NoError(t, err)
	require.Len(t, s.Rows, 3)

	totalPlayed := 0
	for _, r := range s.Rows {
		assert.Equal(t, r.Won+r.Drawn+r.Lost, r.Played, "%s W+D+L should equal played", r.TeamName)
		assert.Equal(t, 3*r.Won+r.Drawn, r.Points, "%s points identity", r.TeamName)
		assert.Equal(t, r.GoalsFor-r.GoalsAgainst, r.GoalDiff, "%s goal difference", r.TeamName)
		totalPlayed += r.Played
	}
	// Every match contributes exactly two appearances
	assert.Equal(t, 8, totalPlayed)
}

func TestStandingsOrdering(t *testing.T) {
	newTestStore(t)

	// Three teams engineered to finish level on points and goal difference
	// so the GF and team id tie-breaks both get exercised
	seedResult(t, 1, "2425", "Alpha", "Beta", day(0), 3, 0)
	seedResult(t, 1, "2425", "Beta", "Gamma", day(1), 4, 1)
	seedResult(t, 1, "2425", "Gamma", "Alpha", day(2), 3, 0)

	s, err := CalculateStandings(1, "2425", ViewOverall)
	require.NoError(t, err)
	require.Len(t, s.Rows, 3)

	// All on 3 points and GD 0. Alpha has GF 3, Beta and Gamma GF 4, so
	// Alpha is last and the Beta/Gamma tie falls to team id order
	assert.Equal(t, "Beta", s.Rows[0].TeamName)
	assert.Equal(t, "Gamma", s.Rows[1].TeamName)
	assert.Equal(t, "Alpha", s.Rows[2].TeamName)
	for i, r := range s.Rows {
		assert.Equal(t, i+1, r.Rank)
	}
}

func TestDuplicateSaveIsIdempotentUpsert(t *testing.T) {
	newTestStore(t)

	seedResult(t, 1, "2425", "Arsenal", "Chelsea", day(0), 1, 1)
	// Same compound key again with a corrected score
	seedResult(t, 1, "2425", "Arsenal", "Chelsea", day(0), 2, 1)

	count, err := CountWhere(&Match{}, "leagueId = ?", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "re-saving the same fixture must not create a second row")

	matches, err := QueryMatches(1, "2425", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 2, matches[0].HomeGoals, "the later save wins")
}

func TestFixtureBecomesResultNotDuplicate(t *testing.T) {
	newTestStore(t)

	seedFixture(t, 1, "2425", "Arsenal", "Chelsea", day(5))

	fixtures, err := QueryFixtures(1, day(0), day(10))
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Equal(t, StatusScheduled, fixtures[0].Status)

	seedResult(t, 1, "2425", "Arsenal", "Chelsea", day(5), 2, 0)

	count, err := CountWhere(&Match{}, "leagueId = ?", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "result must replace the fixture, not coexist with it")

	fixtures, err = QueryFixtures(1, day(0), day(10))
	require.NoError(t, err)
	assert.Empty(t, fixtures)
}

func TestStandingsDefaultsToLatestSeason(t *testing.T) {
	newTestStore(t)

	// Relegated FC only appear in the old season
	seedResult(t, 1, "2324", "Arsenal", "Relegated FC", day(0), 1, 0)
	seedResult(t, 1, "2425", "Arsenal", "Chelsea", day(365), 2, 2)

	s, err := CalculateStandings(1, "", ViewOverall)
	require.NoError(t, err)
	assert.Equal(t, "2425", s.Season)
	for _, r := range s.Rows {
		assert.NotEqual(t, "Relegated FC", r.TeamName,
			"teams without matches in the season must not appear")
	}

	seasons, err := AvailableSeasons(1)
	require.NoError(t, err)
	assert.Equal(t, []string{"2324", "2425"}, seasons)
}

func TestStandingsHomeAndAwayViews(t *testing.T) {
	newTestStore(t)

	seedResult(t, 1, "2425", "Arsenal", "Chelsea", day(0), 2, 0)
	seedResult(t, 1, "2425", "Chelsea", "Arsenal", day(1), 1, 0)

	home, err := CalculateStandings(1, "2425", ViewHome)
	require.NoError(t, err)
	for _, r := range home.Rows {
		assert.Equal(t, 1, r.Played, "%s should have exactly one home match", r.TeamName)
		assert.Equal(t, 3, r.Points, "both teams won their home match")
	}

	away, err := CalculateStandings(1, "2425", ViewAway)
	require.NoError(t, err)
	for _, r := range away.Rows {
		assert.Equal(t, 1, r.Played)
		assert.Equal(t, 0, r.Points, "both teams lost away")
	}
}

func TestOverallRowsCarryFormString(t *testing.T) {
	newTestStore(t)

	seedResult(t, 1, "2425", "Arsenal", "Chelsea", day(0), 2, 0)
	seedResult(t, 1, "2425", "Chelsea", "Arsenal", day(1), 1, 1)
	seedResult(t, 1, "2425", "Arsenal", "Chelsea", day(2), 0, 1)

	s, err := CalculateStandings(1, "2425", ViewOverall)
	require.NoError(t, err)

	arsenal := s.RowOf(TeamID("Arsenal"))
	require.NotNil(t, arsenal)
	// Newest first: lost day 2, drew day 1, won day 0
	assert.Equal(t, "LDW", arsenal.Form)
}

func TestUnknownViewRejected(t *testing.T) {
	newTestStore(t)
	seedResult(t, 1, "2425", "Arsenal", "Chelsea", day(0), 1, 0)

	_, err := CalculateStandings(1, "2425", "sideways")
	assert.Error(t, err)
}
