package footy

import (
	"fmt"
)

// featureColumns fixes the feature vector schema. Order matters: vectors are
// built in this order, the trainer standardises column-wise against it, and
// the list is persisted inside the model artifact so a prediction against an
// older artifact still lines up
var featureColumns = []string{
	// Recent form, any venue
	"home_points_last5",
	"away_points_last5",
	"home_goals_per_match",
	"away_goals_per_match",
	"home_conceded_per_match",
	"away_conceded_per_match",
	"home_win_rate",
	"away_win_rate",
	"home_clean_sheet_rate",
	"away_clean_sheet_rate",
	// Venue-specific form
	"home_venue_points_last5",
	"away_venue_points_last5",
	// League position
	"home_position",
	"away_position",
	"position_diff",
	"home_points_total",
	"away_points_total",
	"home_goal_difference",
	"away_goal_difference",
	// Head to head
	"h2h_matches",
	"h2h_home_wins",
	"h2h_draws",
	"h2h_away_wins",
	"h2h_home_win_rate",
	"h2h_avg_goals",
	// Differentials
	"form_diff",
	"goals_diff",
	"cards_diff",
	"shots_diff",
	"shot_accuracy_diff",
	"conversion_diff",
	// Market signal
	"imp_home_prob",
	"imp_draw_prob",
	"imp_away_prob",
}

// FeatureColumns returns the ordered feature schema
func FeatureColumns() []string {
	out := make([]string, len(featureColumns))
	copy(out, featureColumns)
	return out
}

// FeatureSet holds one fixture's engineered features plus how much history
// backed them, so the caller can apply its zero-history policy
type FeatureSet struct {
	Values      map[string]float64
	HomeMatches int // played matches the home team has ever had in this league before the date
	AwayMatches int
}

// Vector returns the features in schema order, filling any column missing
// from the map with its neutral default
func (fs *FeatureSet) Vector(columns []string) []float64 {
	v := make([]float64, len(columns))
	for i, c := range columns {
		if val, ok := fs.Values[c]; ok {
			v[i] = val
		} else {
			v[i] = neutralDefault(c)
		}
	}
	return v
}

// teamForm summarises a team's recent matches from one perspective
type teamForm struct {
	matches        int
	points         int
	goalsFor       int
	goalsAgainst   int
	wins           int
	cleanSheets    int
	cards          float64 // yellows + 2*reds per match, over rows carrying the columns
	shots          float64 // per match
	shotsOnTarget  float64 // per match
	statRows       int
	goalsPerMatch  float64
	concededPerMch float64
}

// ComputeFeatures engineers the feature vector for a home/away pairing as of
// a date. Only matches strictly before asOf contribute, so features for a
// historical match never see that match's own result. Odds are the match's
// pre-kickoff prices when known, or -1 to fall back to uniform implied
// probabilities
func ComputeFeatures(leagueID int, homeID, awayID string, asOf string, homeOdds, drawOdds, awayOdds float64) (*FeatureSet, error) {
	homeAll, err := MatchesForTeam(leagueID, homeID, asOf, "", 0)
	if err != nil {
		return nil, err
	}
	awayAll, err := MatchesForTeam(leagueID, awayID, asOf, "", 0)
	if err != nil {
		return nil, err
	}

	fs := &FeatureSet{
		Values:      make(map[string]float64, len(featureColumns)),
		HomeMatches: len(homeAll),
		AwayMatches: len(awayAll),
	}

	n := Config.FormMatches
	homeForm := summariseForm(truncate(homeAll, n), homeID)
	awayForm := summariseForm(truncate(awayAll, n), awayID)

	setFormFeatures(fs.Values, "home", homeForm)
	setFormFeatures(fs.Values, "away", awayForm)

	// Venue form: points from the last N matches at the relevant venue
	homeVenue, err := MatchesForTeam(leagueID, homeID, asOf, "home", n)
	if err != nil {
		return nil, err
	}
	awayVenue, err := MatchesForTeam(leagueID, awayID, asOf, "away", n)
	if err != nil {
		return nil, err
	}
	if len(homeVenue) > 0 {
		fs.Values["home_venue_points_last5"] = float64(summariseForm(homeVenue, homeID).points)
	}
	if len(awayVenue) > 0 {
		fs.Values["away_venue_points_last5"] = float64(summariseForm(awayVenue, awayID).points)
	}

	// League position from the table as it stood before asOf
	table, err := standingsAsOf(leagueID, asOf)
	if err != nil {
		return nil, err
	}
	if table != nil {
		if r := table.RowOf(homeID); r != nil {
			fs.Values["home_position"] = float64(r.Rank)
			fs.Values["home_points_total"] = float64(r.Points)
			fs.Values["home_goal_difference"] = float64(r.GoalDiff)
		}
		if r := table.RowOf(awayID); r != nil {
			fs.Values["away_position"] = float64(r.Rank)
			fs.Values["away_points_total"] = float64(r.Points)
			fs.Values["away_goal_difference"] = float64(r.GoalDiff)
		}
	}
	fs.Values["position_diff"] = get(fs.Values, "away_position") - get(fs.Values, "home_position")

	// Head to head over the configured window
	h2h, err := HeadToHead(leagueID, homeID, awayID, asOf, Config.H2HMatches)
	if err != nil {
		return nil, err
	}
	setH2HFeatures(fs.Values, h2h, homeID)

	// Differentials, home minus away
	fs.Values["form_diff"] = get(fs.Values, "home_points_last5") - get(fs.Values, "away_points_last5")
	fs.Values["goals_diff"] = get(fs.Values, "home_goals_per_match") - get(fs.Values, "away_goals_per_match")
	if homeForm.statRows > 0 && awayForm.statRows > 0 {
		fs.Values["cards_diff"] = homeForm.cards - awayForm.cards
		fs.Values["shots_diff"] = homeForm.shots - awayForm.shots
		fs.Values["shot_accuracy_diff"] = accuracy(homeForm) - accuracy(awayForm)
		fs.Values["conversion_diff"] = conversion(homeForm) - conversion(awayForm)
	}

	// Market signal: normalised implied probabilities when prices exist
	if homeOdds > 1.0 && drawOdds > 1.0 && awayOdds > 1.0 {
		h, d, a := 1.0/homeOdds, 1.0/drawOdds, 1.0/awayOdds
		overround := h + d + a
		fs.Values["imp_home_prob"] = h / overround
		fs.Values["imp_draw_prob"] = d / overround
		fs.Values["imp_away_prob"] = a / overround
	}

	return fs, nil
}

// BuildDataset materialises the labelled training dataset for a league in
// chronological order. Every played match becomes one row, featurised as of
// its own date. Rows whose result cannot yield a label are counted as
// rejected
func BuildDataset(leagueID int) (vectors [][]float64, labels []int, rejected int, err error) {
	matches, err := QueryMatches(leagueID, "", "")
	if err != nil {
		return nil, nil, 0, err
	}

	for _, m := range matches {
		outcome := m.Outcome()
		if outcome < 0 {
			rejected++
			continue
		}
		fs, err := ComputeFeatures(m.LeagueID, m.HomeID, m.AwayID, m.Date, m.HomeOdds, m.DrawOdds, m.AwayOdds)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("failed to featurise %s vs %s on %s: %w",
				m.HomeID, m.AwayID, m.Date, err)
		}
		vectors = append(vectors, fs.Vector(featureColumns))
		labels = append(labels, outcome)
	}

	return vectors, labels, rejected, nil
}

// standingsAsOf builds the overall table from the latest season with any
// matches before asOf, counting only matches before asOf. Returns nil when
// the league has no history at all
func standingsAsOf(leagueID int, asOf string) (*Standings, error) {
	played, err := QueryMatches(leagueID, "", asOf)
	if err != nil {
		return nil, err
	}
	if len(played) == 0 {
		return nil, nil
	}

	season := ""
	for _, m := range played {
		if m.Season > season {
			season = m.Season
		}
	}

	names := make(map[string]string)
	rows := make(map[string]*StandingsRow)
	row := func(teamID string) *StandingsRow {
		r, ok := rows[teamID]
		if !ok {
			r = &StandingsRow{TeamID: teamID, TeamName: names[teamID]}
			rows[teamID] = r
		}
		return r
	}
	apply := func(r *StandingsRow, gf, ga int) {
		r.Played++
		r.GoalsFor += gf
		r.GoalsAgainst += ga
		r.GoalDiff = r.GoalsFor - r.GoalsAgainst
		switch {
		case gf > ga:
			r.Won++
			r.Points += 3
		case gf == ga:
			r.Drawn++
			r.Points++
		default:
			r.Lost++
		}
	}
	for _, m := range played {
		if m.Season != season {
			continue
		}
		names[m.HomeID] = m.HomeTeamName
		names[m.AwayID] = m.AwayTeamName
		apply(row(m.HomeID), m.HomeGoals, m.AwayGoals)
		apply(row(m.AwayID), m.AwayGoals, m.HomeGoals)
	}

	table := make([]*StandingsRow, 0, len(rows))
	for _, r := range rows {
		table = append(table, r)
	}
	sortStandingsRows(table)
	for i, r := range table {
		r.Rank = i + 1
	}

	return &Standings{LeagueID: leagueID, Season: season, View: ViewOverall, Rows: table}, nil
}

func summariseForm(matches []*Match, teamID string) teamForm {
	var f teamForm
	for _, m := range matches {
		var gf, ga int
		var shots, sot, yellows, reds int
		if m.HomeID == teamID {
			gf, ga = m.HomeGoals, m.AwayGoals
			shots, sot = m.HomeShots, m.HomeShotsOnTarget
			yellows, reds = m.HomeYellowCards, m.HomeRedCards
		} else {
			gf, ga = m.AwayGoals, m.HomeGoals
			shots, sot = m.AwayShots, m.AwayShotsOnTarget
			yellows, reds = m.AwayYellowCards, m.AwayRedCards
		}
		f.matches++
		f.goalsFor += gf
		f.goalsAgainst += ga
		switch {
		case gf > ga:
			f.wins++
			f.points += 3
		case gf == ga:
			f.points++
		}
		if ga == 0 {
			f.cleanSheets++
		}
		if shots >= 0 && sot >= 0 && yellows >= 0 && reds >= 0 {
			f.statRows++
			f.shots += float64(shots)
			f.shotsOnTarget += float64(sot)
			f.cards += float64(yellows) + 2.0*float64(reds)
		}
	}
	if f.matches > 0 {
		f.goalsPerMatch = float64(f.goalsFor) / float64(f.matches)
		f.concededPerMch = float64(f.goalsAgainst) / float64(f.matches)
	}
	if f.statRows > 0 {
		f.shots /= float64(f.statRows)
		f.shotsOnTarget /= float64(f.statRows)
		f.cards /= float64(f.statRows)
	}
	return f
}

func setFormFeatures(values map[string]float64, side string, f teamForm) {
	if f.matches == 0 {
		return // neutral defaults fill in at vectorisation
	}
	values[side+"_points_last5"] = float64(f.points)
	values[side+"_goals_per_match"] = f.goalsPerMatch
	values[side+"_conceded_per_match"] = f.concededPerMch
	values[side+"_win_rate"] = float64(f.wins) / float64(f.matches)
	values[side+"_clean_sheet_rate"] = float64(f.cleanSheets) / float64(f.matches)
}

func setH2HFeatures(values map[string]float64, h2h []*Match, homeID string) {
	values["h2h_matches"] = float64(len(h2h))
	if len(h2h) == 0 {
		values["h2h_home_wins"] = 0
		values["h2h_draws"] = 0
		values["h2h_away_wins"] = 0
		values["h2h_home_win_rate"] = Config.NeutralWinRate
		values["h2h_avg_goals"] = 2.0 * Config.NeutralGoalsPerMatch
		return
	}

	var homeWins, draws, awayWins, goals int
	for _, m := range h2h {
		goals += m.HomeGoals + m.AwayGoals
		winner := ""
		switch m.Outcome() {
		case OutcomeHome:
			winner = m.HomeID
		case OutcomeAway:
			winner = m.AwayID
		}
		switch winner {
		case "":
			draws++
		case homeID:
			homeWins++
		default:
			awayWins++
		}
	}
	values["h2h_home_wins"] = float64(homeWins)
	values["h2h_draws"] = float64(draws)
	values["h2h_away_wins"] = float64(awayWins)
	values["h2h_home_win_rate"] = float64(homeWins) / float64(len(h2h))
	values["h2h_avg_goals"] = float64(goals) / float64(len(h2h))
}

// neutralDefault supplies the midpoint value for a column absent from a
// feature map, so no-history fixtures lean toward neither side
func neutralDefault(column string) float64 {
	switch column {
	case "home_points_last5", "away_points_last5", "home_venue_points_last5", "away_venue_points_last5":
		return Config.NeutralFormPoints
	case "home_goals_per_match", "away_goals_per_match":
		return Config.NeutralGoalsPerMatch
	case "home_conceded_per_match", "away_conceded_per_match":
		return Config.NeutralConcededPerMatch
	case "home_win_rate", "away_win_rate", "h2h_home_win_rate":
		return Config.NeutralWinRate
	case "home_clean_sheet_rate", "away_clean_sheet_rate":
		return Config.NeutralCleanSheetRate
	case "home_position", "away_position":
		return float64(Config.NeutralPosition)
	case "h2h_avg_goals":
		return 2.0 * Config.NeutralGoalsPerMatch
	case "imp_home_prob", "imp_draw_prob", "imp_away_prob":
		return 1.0 / 3.0
	default:
		return 0.0
	}
}

func accuracy(f teamForm) float64 {
	if f.shots <= 0 {
		return 0.0
	}
	return f.shotsOnTarget / f.shots
}

func conversion(f teamForm) float64 {
	if f.shots <= 0 {
		return 0.0
	}
	return f.goalsPerMatch / f.shots
}

func truncate(matches []*Match, n int) []*Match {
	if len(matches) > n {
		return matches[:n]
	}
	return matches
}

func get(values map[string]float64, column string) float64 {
	if v, ok := values[column]; ok {
		return v
	}
	return neutralDefault(column)
}
