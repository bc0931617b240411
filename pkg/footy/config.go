package footy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FootyConfig contains all configurable parameters that influence prediction outcomes
// This centralizes all magic numbers and constants for easy adjustment
type FootyConfig struct {
	// Filesystem layout
	AssetsPath string `yaml:"assetsPath"` // The base directory of footy assets
	DbPath     string `yaml:"dbPath"`     // The location of the footy sqlite database
	ModelsPath string `yaml:"modelsPath"` // The directory holding trained model artifacts

	// The leagues we track. Teams and matches belong to exactly one of these
	Leagues []LeagueConfig `yaml:"leagues"`

	// === FEATURE ENGINEERING ===

	FormMatches int `yaml:"formMatches"` // Rolling form window (default: 5)
	H2HMatches  int `yaml:"h2hMatches"`  // Head-to-head window (default: 5)

	// Neutral defaults used when a team has no prior matches.
	// These sit at league-typical midpoints rather than zero so that a
	// no-history fixture leans toward neither side
	NeutralFormPoints       float64 `yaml:"neutralFormPoints"`       // points over the form window (default: 6.5)
	NeutralGoalsPerMatch    float64 `yaml:"neutralGoalsPerMatch"`    // (default: 1.3)
	NeutralConcededPerMatch float64 `yaml:"neutralConcededPerMatch"` // (default: 1.3)
	NeutralWinRate          float64 `yaml:"neutralWinRate"`          // (default: 0.333)
	NeutralCleanSheetRate   float64 `yaml:"neutralCleanSheetRate"`   // (default: 0.3)
	NeutralPosition         int     `yaml:"neutralPosition"`         // mid-table rank (default: 10)

	// === TRAINING ===

	MinTrainingMatches int     `yaml:"minTrainingMatches"` // Minimum viable dataset size (default: 100)
	TestFraction       float64 `yaml:"testFraction"`       // Newest slice held out for the accuracy metric (default: 0.2)
	ValidationFraction float64 `yaml:"validationFraction"` // Slice used for hyperparameter choice (default: 0.1)

	DescentEpochs      int       `yaml:"descentEpochs"`      // Gradient descent epochs (default: 500)
	LearningRate       float64   `yaml:"learningRate"`       // Gradient descent step size (default: 0.1)
	RegularisationGrid []float64 `yaml:"regularisationGrid"` // L2 lambdas tried against the validation split

	// === PREDICTION ===

	HighConfidenceThreshold   float64 `yaml:"highConfidenceThreshold"`   // top probability above this is HIGH (default: 0.65)
	MediumConfidenceThreshold float64 `yaml:"mediumConfidenceThreshold"` // top probability above this is MEDIUM (default: 0.50)

	// What to do when a team has literally no recorded matches in the league:
	// "neutral" predicts from neutral-default features, "reject" surfaces
	// InsufficientHistory to the caller
	ZeroHistoryPolicy string `yaml:"zeroHistoryPolicy"`

	// Team name resolution
	MinResolutionScore float64 `yaml:"minResolutionScore"` // minimum fuzzy-match score (default: 0.5)

	// === EXPLANATION THRESHOLDS ===
	// Boundary values for the human-readable factor statements. Defaults taken
	// from the accepted behaviour of the original engine; kept as configuration
	// so acceptance tests can pin them down

	ExcellentFormPoints  int     `yaml:"excellentFormPoints"`  // >= this from last 5 is "excellent form" (default: 12)
	GoodFormPoints       int     `yaml:"goodFormPoints"`       // >= this is "good form" (default: 9)
	PoorFormPoints       int     `yaml:"poorFormPoints"`       // <= this is "poor form" (default: 3)
	StrongVenuePoints    int     `yaml:"strongVenuePoints"`    // >= this at a venue is "strong" there (default: 12)
	PositionGapThreshold int     `yaml:"positionGapThreshold"` // table-rank gap worth mentioning (default: 5)
	H2HDominanceWins     int     `yaml:"h2hDominanceWins"`     // wins in the H2H window worth mentioning (default: 3)
	HighScoringRate      float64 `yaml:"highScoringRate"`      // goals/match worth mentioning (default: 2.0)
	TightDefenceRate     float64 `yaml:"tightDefenceRate"`     // conceded/match worth mentioning (default: 0.5)
	LeakyDefenceRate     float64 `yaml:"leakyDefenceRate"`     // conceded/match worth a warning (default: 2.0)
	MaxFactors           int     `yaml:"maxFactors"`           // explanation statements kept after ranking (default: 5)
}

// LeagueConfig describes one tracked league
type LeagueConfig struct {
	ID               int     `yaml:"id"`
	Name             string  `yaml:"name"`
	Country          string  `yaml:"country"`
	Code             string  `yaml:"code"` // football-data.co.uk league code, e.g. E0
	AvgGoals         float64 `yaml:"avgGoals"`
	MatchesPerSeason int     `yaml:"matchesPerSeason"`
}

// DefaultConfig returns the default configuration with all standard values
func DefaultConfig() *FootyConfig {
	assetsPath := "/tmp/.footy/"
	config := &FootyConfig{
		AssetsPath: assetsPath,
		DbPath:     assetsPath + "footy.db",
		ModelsPath: assetsPath + "models/",

		Leagues: []LeagueConfig{
			{ID: 1, Name: "Premier League", Country: "England", Code: "E0", AvgGoals: 2.8, MatchesPerSeason: 380},
			{ID: 2, Name: "La Liga", Country: "Spain", Code: "SP1", AvgGoals: 2.7, MatchesPerSeason: 380},
			{ID: 3, Name: "Bundesliga", Country: "Germany", Code: "D1", AvgGoals: 3.1, MatchesPerSeason: 306},
			{ID: 4, Name: "Serie A", Country: "Italy", Code: "I1", AvgGoals: 2.6, MatchesPerSeason: 380},
			{ID: 5, Name: "Ligue 1", Country: "France", Code: "F1", AvgGoals: 2.7, MatchesPerSeason: 306},
		},

		// === FEATURE ENGINEERING ===
		FormMatches: 5,
		H2HMatches:  5,

		NeutralFormPoints:       6.5,
		NeutralGoalsPerMatch:    1.3,
		NeutralConcededPerMatch: 1.3,
		NeutralWinRate:          1.0 / 3.0,
		NeutralCleanSheetRate:   0.3,
		NeutralPosition:         10,

		// === TRAINING ===
		MinTrainingMatches: 100,
		TestFraction:       0.2,
		ValidationFraction: 0.1,

		DescentEpochs:      500,
		LearningRate:       0.1,
		RegularisationGrid: []float64{0.0, 0.01, 0.1, 1.0},

		// === PREDICTION ===
		HighConfidenceThreshold:   0.65,
		MediumConfidenceThreshold: 0.50,
		ZeroHistoryPolicy:         "neutral",
		MinResolutionScore:        0.5,

		// === EXPLANATION THRESHOLDS ===
		ExcellentFormPoints:  12,
		GoodFormPoints:       9,
		PoorFormPoints:       3,
		StrongVenuePoints:    12,
		PositionGapThreshold: 5,
		H2HDominanceWins:     3,
		HighScoringRate:      2.0,
		TightDefenceRate:     0.5,
		LeakyDefenceRate:     2.0,
		MaxFactors:           5,
	}

	return config
}

// Global configuration instance
var Config *FootyConfig

// init initializes the global configuration with default values
func init() {
	Config = DefaultConfig()
}

// UpdateConfig allows updating the global configuration
func UpdateConfig(newConfig *FootyConfig) {
	Config = newConfig
}

// LoadConfig overlays the default configuration with values from a yaml file
// and installs the result as the global configuration
func LoadConfig(path string) (*FootyConfig, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	Config = config
	return config, nil
}

// === CONFIGURATION VALIDATION ===

// ValidateConfig ensures all configuration values are within reasonable ranges
func ValidateConfig(config *FootyConfig) error {
	if config.FormMatches < 1 {
		return fmt.Errorf("FormMatches must be at least 1, got: %d", config.FormMatches)
	}
	if config.TestFraction <= 0.0 || config.TestFraction >= 1.0 {
		return fmt.Errorf("TestFraction must be between 0.0 and 1.0, got: %f", config.TestFraction)
	}
	if config.ValidationFraction < 0.0 || config.ValidationFraction >= 1.0 {
		return fmt.Errorf("ValidationFraction must be between 0.0 and 1.0, got: %f", config.ValidationFraction)
	}
	if config.TestFraction+config.ValidationFraction >= 1.0 {
		return fmt.Errorf("TestFraction + ValidationFraction must leave room for training data, got: %f",
			config.TestFraction+config.ValidationFraction)
	}
	if config.MediumConfidenceThreshold >= config.HighConfidenceThreshold {
		return fmt.Errorf("MediumConfidenceThreshold must be below HighConfidenceThreshold, got: %f >= %f",
			config.MediumConfidenceThreshold, config.HighConfidenceThreshold)
	}
	if config.ZeroHistoryPolicy != "neutral" && config.ZeroHistoryPolicy != "reject" {
		return fmt.Errorf("ZeroHistoryPolicy must be 'neutral' or 'reject', got: %s", config.ZeroHistoryPolicy)
	}
	if len(config.RegularisationGrid) == 0 {
		return fmt.Errorf("RegularisationGrid must contain at least one lambda")
	}
	if config.MinTrainingMatches < 10 {
		return fmt.Errorf("MinTrainingMatches should be at least 10 for a meaningful fit, got: %d", config.MinTrainingMatches)
	}
	if config.MaxFactors < 1 {
		return fmt.Errorf("MaxFactors must be at least 1, got: %d", config.MaxFactors)
	}
	return nil
}

// === HELPER FUNCTIONS FOR EASY ACCESS ===

// GetLeagueConfig returns the configuration entry for a league id
func GetLeagueConfig(leagueID int) (*LeagueConfig, bool) {
	for i := range Config.Leagues {
		if Config.Leagues[i].ID == leagueID {
			return &Config.Leagues[i], true
		}
	}
	return nil, false
}

// GetFormMatches returns the rolling form window size
func GetFormMatches() int {
	return Config.FormMatches
}

// GetH2HMatches returns the head-to-head window size
func GetH2HMatches() int {
	return Config.H2HMatches
}

// GetHighConfidenceThreshold returns the HIGH confidence boundary
func GetHighConfidenceThreshold() float64 {
	return Config.HighConfidenceThreshold
}

// GetMediumConfidenceThreshold returns the MEDIUM confidence boundary
func GetMediumConfidenceThreshold() float64 {
	return Config.MediumConfidenceThreshold
}
