package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/richard-senior/footy/pkg/footy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	previous := footy.Config
	cfg := footy.DefaultConfig()
	dir := t.TempDir()
	cfg.DbPath = filepath.Join(dir, "footy.db")
	cfg.ModelsPath = filepath.Join(dir, "models")
	footy.Config = cfg

	require.NoError(t, footy.UseDatabase(cfg.DbPath))
	require.NoError(t, footy.RegisterLeagues())

	t.Cleanup(func() {
		footy.CloseDatabase()
		footy.Config = previous
	})

	return New(":0")
}

func seedMatch(t *testing.T, home, away, date string, hg, ag int) {
	t.Helper()
	m := footy.NewMatch(1, "2425", home, away, date)
	m.HomeGoals = hg
	m.AwayGoals = ag
	require.NoError(t, footy.Save(m))
}

func do(s *Server, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestStandingsEndpoint(t *testing.T) {
	s := newTestServer(t)
	seedMatch(t, "Arsenal", "Chelsea", "2024-08-16", 2, 0)
	seedMatch(t, "Chelsea", "Arsenal", "2024-08-23", 1, 1)

	rec := do(s, http.MethodGet, "/api/standings/1?season=2425&view=overall")
	require.Equal(t, http.StatusOK, rec.Code)

	var standings footy.Standings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &standings))
	require.Len(t, standings.Rows, 2)
	assert.Equal(t, "Arsenal", standings.Rows[0].TeamName)
	assert.Equal(t, 1, standings.Rows[0].Rank)
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer(t)
	seedMatch(t, "Arsenal", "Chelsea", "2024-08-16", 2, 0)

	rec := do(s, http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var status []*footy.LeagueStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Len(t, status, len(footy.Config.Leagues))
	assert.Equal(t, 1, status[0].MatchCount)
	assert.False(t, status[0].ModelTrained)
}

func TestPredictEndpointErrorMapping(t *testing.T) {
	s := newTestServer(t)
	seedMatch(t, "Arsenal", "Chelsea", "2024-08-16", 2, 0)

	// No model yet
	rec := do(s, http.MethodGet, "/api/predict/1?home=Arsenal&away=Chelsea")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Missing parameters
	rec = do(s, http.MethodGet, "/api/predict/1?home=Arsenal")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Non-numeric league
	rec = do(s, http.MethodGet, "/api/predict/EPL?home=Arsenal&away=Chelsea")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTrainEndpointInsufficientData(t *testing.T) {
	s := newTestServer(t)
	seedMatch(t, "Arsenal", "Chelsea", "2024-08-16", 2, 0)

	rec := do(s, http.MethodPost, "/api/train/1")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "error")
}
