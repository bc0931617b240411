package footy

import (
	"fmt"
	"sort"
)

// Factor groups, in tie-break priority order. When two statements carry the
// same magnitude the lower group wins, so explanations are stable across runs
const (
	groupForm = iota
	groupVenue
	groupPosition
	groupH2H
	groupAttack
	groupDefence
)

type factor struct {
	text      string
	magnitude float64
	group     int
}

// buildFactors derives the human-readable explanation statements from a
// feature set. The rule layer is deterministic: the same features always
// produce the same statements in the same order
func buildFactors(fs *FeatureSet, homeName, awayName string) []string {
	var factors []factor
	add := func(group int, magnitude float64, format string, args ...any) {
		factors = append(factors, factor{
			text:      fmt.Sprintf(format, args...),
			magnitude: magnitude,
			group:     group,
		})
	}

	v := fs.Values
	homeForm := int(get(v, "home_points_last5"))
	awayForm := int(get(v, "away_points_last5"))
	maxForm := 3 * Config.FormMatches

	// Recent form
	if homeForm >= Config.ExcellentFormPoints {
		add(groupForm, float64(homeForm)-Config.NeutralFormPoints,
			"%s are in excellent form with %d points from their last %d matches", homeName, homeForm, Config.FormMatches)
	} else if homeForm >= Config.GoodFormPoints {
		add(groupForm, float64(homeForm)-Config.NeutralFormPoints,
			"%s are in good form with %d points from their last %d matches", homeName, homeForm, Config.FormMatches)
	} else if homeForm <= Config.PoorFormPoints && fs.HomeMatches > 0 {
		add(groupForm, Config.NeutralFormPoints-float64(homeForm),
			"%s are in poor form with only %d points from their last %d matches", homeName, homeForm, Config.FormMatches)
	}
	if awayForm >= Config.ExcellentFormPoints {
		add(groupForm, float64(awayForm)-Config.NeutralFormPoints,
			"%s are in excellent form with %d points from their last %d matches", awayName, awayForm, Config.FormMatches)
	} else if awayForm >= Config.GoodFormPoints {
		add(groupForm, float64(awayForm)-Config.NeutralFormPoints,
			"%s are in good form with %d points from their last %d matches", awayName, awayForm, Config.FormMatches)
	} else if awayForm <= Config.PoorFormPoints && fs.AwayMatches > 0 {
		add(groupForm, Config.NeutralFormPoints-float64(awayForm),
			"%s are in poor form with only %d points from their last %d matches", awayName, awayForm, Config.FormMatches)
	}

	// Venue form
	homeVenue := int(get(v, "home_venue_points_last5"))
	awayVenue := int(get(v, "away_venue_points_last5"))
	if homeVenue >= Config.StrongVenuePoints {
		add(groupVenue, float64(homeVenue)-Config.NeutralFormPoints,
			"%s are strong at home, taking %d of the last %d points there", homeName, homeVenue, maxForm)
	}
	if awayVenue >= Config.StrongVenuePoints {
		add(groupVenue, float64(awayVenue)-Config.NeutralFormPoints,
			"%s travel well, taking %d of the last %d points away", awayName, awayVenue, maxForm)
	}

	// League position
	posDiff := get(v, "position_diff") // positive when home sit higher
	if posDiff > float64(Config.PositionGapThreshold) {
		add(groupPosition, posDiff,
			"%s sit %d places above %s in the table", homeName, int(posDiff), awayName)
	} else if -posDiff > float64(Config.PositionGapThreshold) {
		add(groupPosition, -posDiff,
			"%s sit %d places above %s in the table", awayName, int(-posDiff), homeName)
	}

	// Head to head
	h2hMatches := int(get(v, "h2h_matches"))
	if h2hMatches >= Config.H2HDominanceWins {
		homeWins := int(get(v, "h2h_home_wins"))
		awayWins := int(get(v, "h2h_away_wins"))
		if homeWins >= awayWins+2 && homeWins >= Config.H2HDominanceWins {
			add(groupH2H, float64(homeWins-awayWins),
				"%s have won %d of the last %d meetings", homeName, homeWins, h2hMatches)
		} else if awayWins >= homeWins+2 && awayWins >= Config.H2HDominanceWins {
			add(groupH2H, float64(awayWins-homeWins),
				"%s have won %d of the last %d meetings", awayName, awayWins, h2hMatches)
		}
	}

	// Attack
	homeScoring := get(v, "home_goals_per_match")
	awayScoring := get(v, "away_goals_per_match")
	if homeScoring >= Config.HighScoringRate {
		add(groupAttack, homeScoring-Config.NeutralGoalsPerMatch,
			"%s are scoring freely, averaging %.1f goals per match", homeName, homeScoring)
	}
	if awayScoring >= Config.HighScoringRate {
		add(groupAttack, awayScoring-Config.NeutralGoalsPerMatch,
			"%s are scoring freely, averaging %.1f goals per match", awayName, awayScoring)
	}

	// Defence
	homeConceded := get(v, "home_conceded_per_match")
	awayConceded := get(v, "away_conceded_per_match")
	if homeConceded <= Config.TightDefenceRate && fs.HomeMatches > 0 {
		add(groupDefence, Config.NeutralConcededPerMatch-homeConceded,
			"%s have a tight defence, conceding %.1f per match", homeName, homeConceded)
	} else if homeConceded >= Config.LeakyDefenceRate {
		add(groupDefence, homeConceded-Config.NeutralConcededPerMatch,
			"%s are leaking goals, conceding %.1f per match", homeName, homeConceded)
	}
	if awayConceded <= Config.TightDefenceRate && fs.AwayMatches > 0 {
		add(groupDefence, Config.NeutralConcededPerMatch-awayConceded,
			"%s have a tight defence, conceding %.1f per match", awayName, awayConceded)
	} else if awayConceded >= Config.LeakyDefenceRate {
		add(groupDefence, awayConceded-Config.NeutralConcededPerMatch,
			"%s are leaking goals, conceding %.1f per match", awayName, awayConceded)
	}

	// Magnitude desc, then group priority, then text for a total order
	sort.Slice(factors, func(i, j int) bool {
		a, b := factors[i], factors[j]
		if a.magnitude != b.magnitude {
			return a.magnitude > b.magnitude
		}
		if a.group != b.group {
			return a.group < b.group
		}
		return a.text < b.text
	})

	if len(factors) > Config.MaxFactors {
		factors = factors[:Config.MaxFactors]
	}
	out := make([]string, len(factors))
	for i, f := range factors {
		out[i] = f.text
	}
	return out
}
