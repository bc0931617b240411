package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/richard-senior/footy/internal/logger"
	"github.com/richard-senior/footy/pkg/footy"
)

// Server is the HTTP boundary for the prediction engine, consumed by the
// CLI and the dashboard
type Server struct {
	router *mux.Router
	http   *http.Server
}

// New builds the server with all routes registered
func New(addr string) *Server {
	s := &Server{router: mux.NewRouter()}

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/train/{league}", s.handleTrain).Methods(http.MethodPost)
	api.HandleFunc("/predict/{league}", s.handlePredict).Methods(http.MethodGet)
	api.HandleFunc("/fixtures/{league}", s.handleFixtures).Methods(http.MethodGet)
	api.HandleFunc("/standings/{league}", s.handleStandings).Methods(http.MethodGet)
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // training runs synchronously
	}
	return s
}

// ListenAndServe starts serving requests
func (s *Server) ListenAndServe() error {
	logger.Info("HTTP server listening", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

/////////////////////////////////////////////////////////////////////////
////// Handlers
/////////////////////////////////////////////////////////////////////////

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	leagueID, err := leagueParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	artifact, err := footy.Train(r.Context(), leagueID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"leagueId": leagueID,
		"metrics":  artifact.Metrics,
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	leagueID, err := leagueParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	home := r.URL.Query().Get("home")
	away := r.URL.Query().Get("away")
	if home == "" || away == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("home and away query parameters are required"))
		return
	}
	prediction, err := footy.Predict(leagueID, home, away, r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, prediction)
}

func (s *Server) handleFixtures(w http.ResponseWriter, r *http.Request) {
	leagueID, err := leagueParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	days := 7
	if d := r.URL.Query().Get("days"); d != "" {
		if parsed, err := strconv.Atoi(d); err == nil && parsed > 0 {
			days = parsed
		}
	}
	predictions, err := footy.PredictUpcomingFixtures(leagueID, days)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, predictions)
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	leagueID, err := leagueParam(r)
	if err != nil {
		writeError(w, err)
		return
	}
	standings, err := footy.CalculateStandings(leagueID,
		r.URL.Query().Get("season"), r.URL.Query().Get("view"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := footy.Status()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

/////////////////////////////////////////////////////////////////////////
////// Helpers
/////////////////////////////////////////////////////////////////////////

func leagueParam(r *http.Request) (int, error) {
	raw := mux.Vars(r)["league"]
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("league must be a numeric id, got %q", raw)
	}
	return id, nil
}

// writeError maps the core error taxonomy to distinguishable HTTP statuses
func writeError(w http.ResponseWriter, err error) {
	var notFound *footy.TeamNotFoundError
	var ambiguous *footy.AmbiguousTeamError

	status := http.StatusInternalServerError
	body := errorBody(err.Error())

	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &ambiguous):
		status = http.StatusBadRequest
		body["candidates"] = ambiguous.Candidates
	case errors.Is(err, footy.ErrModelNotTrained):
		status = http.StatusConflict
	case errors.Is(err, footy.ErrTrainingInProgress):
		status = http.StatusConflict
	case errors.Is(err, footy.ErrInsufficientData),
		errors.Is(err, footy.ErrInsufficientHistory):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled):
		status = 499 // client closed request
	case isBadRequest(err):
		status = http.StatusBadRequest
	}

	if status == http.StatusInternalServerError {
		logger.Error("Request failed", err)
	}
	writeJSON(w, status, body)
}

// isBadRequest covers plain validation errors raised before the core runs
func isBadRequest(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "must be a numeric id") ||
		strings.Contains(msg, "is not 2006-01-02") ||
		strings.Contains(msg, "unknown standings view") ||
		strings.Contains(msg, "unknown league")
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", err)
	}
}

func errorBody(msg string) map[string]any {
	return map[string]any{"error": msg}
}
