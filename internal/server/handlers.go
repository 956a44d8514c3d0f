package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/claude/gymgenie/internal/genplan"
	"github.com/claude/gymgenie/internal/models"
	"github.com/claude/gymgenie/internal/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, genplan.ErrInvalidResponse):
		// Permanent: retrying the same request will not help.
		status = http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNotActive),
		errors.Is(err, session.ErrAlreadyLogged):
		status = http.StatusConflict
	case errors.Is(err, session.ErrWorkoutIncomplete),
		errors.Is(err, session.ErrNoWorkout):
		status = http.StatusBadRequest
	case errors.Is(err, genplan.ErrAttemptsExhausted):
		// Retries exhausted against the generation service.
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Manager, bool) {
	info := userFromContext(r.Context())
	m, err := s.sessions.Get(r.Context(), info.ID)
	if err != nil {
		s.log.Error("session resume failed", "user", info.Login, "error", err)
		writeError(w, err)
		return nil, false
	}
	return m, true
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userFromContext(r.Context()))
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, m.Snapshot())
}

func (s *Server) handleTodaysWorkout(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}

	workout, found := m.ActiveWorkout()
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no workout for the current week and day"})
		return
	}

	logged, err := m.LoggedToday()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"workout":     workout,
		"canLog":      session.CanLog(workout),
		"loggedToday": logged,
	})
}

func (s *Server) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var input session.ProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	m, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := m.CreateProfile(r.Context(), input); err != nil {
		s.log.Error("profile creation failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m.Snapshot())
}

func (s *Server) handleModifyPlan(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Request string `json:"request"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if strings.TrimSpace(body.Request) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "request text is required"})
		return
	}

	m, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := m.ModifyPlan(r.Context(), body.Request); err != nil {
		s.log.Error("plan modification failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m.Snapshot())
}

func (s *Server) handleToggleExercise(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Week     int    `json:"week"`
		Day      int    `json:"day"`
		Exercise string `json:"exercise"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	m, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := m.ToggleExercise(r.Context(), body.Week, body.Day, body.Exercise); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m.Snapshot())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Week int `json:"week"`
		Day  int `json:"day"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	m, ok := s.session(w, r)
	if !ok {
		return
	}
	if body.Week != 0 {
		if err := m.SelectWeek(body.Week); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	if body.Day != 0 {
		if err := m.SelectDay(body.Day); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, m.Snapshot())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	entries, err := m.History()
	if err != nil {
		writeError(w, err)
		return
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleLogWorkout(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	entries, err := m.LogWorkout(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleStartOver(w http.ResponseWriter, r *http.Request) {
	m, ok := s.session(w, r)
	if !ok {
		return
	}
	m.StartOver()
	writeJSON(w, http.StatusOK, m.Snapshot())
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	info := userFromContext(r.Context())
	s.sessions.Drop(info.ID)
	writeJSON(w, http.StatusOK, map[string]string{"state": "unauthenticated"})
}
