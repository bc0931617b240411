package footy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	assert.NoError(t, ValidateConfig(DefaultConfig()))
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*FootyConfig)
	}{
		{"zero form window", func(c *FootyConfig) { c.FormMatches = 0 }},
		{"test fraction too large", func(c *FootyConfig) { c.TestFraction = 1.0 }},
		{"splits leave no training data", func(c *FootyConfig) { c.TestFraction = 0.6; c.ValidationFraction = 0.5 }},
		{"inverted confidence thresholds", func(c *FootyConfig) { c.MediumConfidenceThreshold = 0.9 }},
		{"unknown zero history policy", func(c *FootyConfig) { c.ZeroHistoryPolicy = "panic" }},
		{"tiny dataset floor", func(c *FootyConfig) { c.MinTrainingMatches = 5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, ValidateConfig(cfg))
		})
	}
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	previous := Config
	t.Cleanup(func() { Config = previous })

	path := filepath.Join(t.TempDir(), "footy.yaml")
	yaml := "formMatches: 6\nhighConfidenceThreshold: 0.7\nzeroHistoryPolicy: reject\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.FormMatches)
	assert.Equal(t, 0.7, cfg.HighConfidenceThreshold)
	assert.Equal(t, "reject", cfg.ZeroHistoryPolicy)
	// Untouched values keep their defaults
	assert.Equal(t, 100, cfg.MinTrainingMatches)
	assert.Len(t, cfg.Leagues, 5)
	// The loaded config is installed globally
	assert.Same(t, cfg, Config)
}

func TestLoadConfigRejectsInvalidOverlay(t *testing.T) {
	previous := Config
	t.Cleanup(func() { Config = previous })

	path := filepath.Join(t.TempDir(), "footy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zeroHistoryPolicy: shrug\n"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestGetLeagueConfig(t *testing.T) {
	lc, ok := GetLeagueConfig(1)
	require.True(t, ok)
	assert.Equal(t, "Premier League", lc.Name)
	assert.Equal(t, "E0", lc.Code)

	_, ok = GetLeagueConfig(999)
	assert.False(t, ok)
}
