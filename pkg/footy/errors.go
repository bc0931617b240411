package footy

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the prediction pipeline. Callers distinguish them with
// errors.Is / errors.As and map them to distinct exit codes or HTTP statuses.
var (
	// ErrInsufficientHistory means a team exists but has no recorded matches
	// in the league before the requested date
	ErrInsufficientHistory = errors.New("insufficient match history")

	// ErrInsufficientData means a league has too few completed matches to
	// train a model at all
	ErrInsufficientData = errors.New("insufficient training data")

	// ErrModelNotTrained means no model artifact exists for the league
	ErrModelNotTrained = errors.New("model not trained")

	// ErrTrainingInProgress means another training run holds the league's
	// training slot
	ErrTrainingInProgress = errors.New("training already in progress")
)

// TeamNotFoundError is returned when a team name resolves to nothing
// in the league's team universe
type TeamNotFoundError struct {
	Name     string
	LeagueID int
}

func (e *TeamNotFoundError) Error() string {
	return fmt.Sprintf("no team matching %q in league %d", e.Name, e.LeagueID)
}

// AmbiguousTeamError is returned when a team name resolves to more than one
// team with no clear winner. Candidates lists the tied team names so the
// caller can re-ask with a more specific name
type AmbiguousTeamError struct {
	Name       string
	LeagueID   int
	Candidates []string
}

func (e *AmbiguousTeamError) Error() string {
	return fmt.Sprintf("team name %q is ambiguous in league %d, candidates: %s",
		e.Name, e.LeagueID, strings.Join(e.Candidates, ", "))
}
