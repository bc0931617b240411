package footy

// LeagueStatus summarises one league's data and model state
type LeagueStatus struct {
	LeagueID      int           `json:"leagueId"`
	Name          string        `json:"name"`
	MatchCount    int           `json:"matchCount"`
	TeamCount     int           `json:"teamCount"`
	CurrentSeason string        `json:"currentSeason,omitempty"`
	ModelTrained  bool          `json:"modelTrained"`
	Training      bool          `json:"training"`
	Metrics       *ModelMetrics `json:"metrics,omitempty"`
}

// Status reports the data and model state of every configured league
func Status() ([]*LeagueStatus, error) {
	var out []*LeagueStatus
	for _, lc := range Config.Leagues {
		s := &LeagueStatus{
			LeagueID: lc.ID,
			Name:     lc.Name,
			Training: IsTraining(lc.ID),
		}

		matches, err := CountWhere(&Match{}, "leagueId = ? AND homeGoals >= 0 AND awayGoals >= 0", lc.ID)
		if err != nil {
			return nil, err
		}
		s.MatchCount = matches

		teams, err := CountWhere(&Team{}, "leagueId = ?", lc.ID)
		if err != nil {
			return nil, err
		}
		s.TeamCount = teams

		season, err := CurrentSeason(lc.ID)
		if err != nil {
			return nil, err
		}
		s.CurrentSeason = season

		if artifact, err := LoadArtifact(lc.ID); err == nil {
			s.ModelTrained = true
			metrics := artifact.Metrics
			s.Metrics = &metrics
		}

		out = append(out, s)
	}
	return out, nil
}
