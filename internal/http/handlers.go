package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/ladder/internal/attendance"
	"github.com/mauv0809/ladder/internal/events"
	"github.com/mauv0809/ladder/internal/tournament"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tournament.ErrNotFound),
		errors.Is(err, attendance.ErrSessionNotFound),
		errors.Is(err, attendance.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, tournament.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, tournament.ErrInvalidState):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tournament.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	log.Debug("Request rejected", "status", status, "error", err)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON body: %v: %w", err, tournament.ErrInvalidInput)
	}
	return nil
}

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) CreateSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.Name == "" {
			writeError(w, fmt.Errorf("name is required: %w", tournament.ErrInvalidInput))
			return
		}
		startsAt := time.Now()
		if req.StartsAt != "" {
			parsed, err := time.Parse(time.RFC3339, req.StartsAt)
			if err != nil {
				writeError(w, fmt.Errorf("startsAt must be RFC3339: %w", tournament.ErrInvalidInput))
				return
			}
			startsAt = parsed
		}
		session, err := s.Attendance.CreateSession(r.Context(), req.Name, startsAt)
		if err != nil {
			writeError(w, err)
			return
		}
		log.Info("Created session", "sessionID", session.ID, "name", session.Name)
		writeJSON(w, http.StatusCreated, session)
	}
}

func (s *Server) GetSessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.Attendance.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}

func (s *Server) UpsertPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var players []attendance.Player
		if err := decodeJSON(r, &players); err != nil {
			writeError(w, err)
			return
		}
		for _, p := range players {
			if p.ID == "" || p.Name == "" {
				writeError(w, fmt.Errorf("every player needs an id and a name: %w", tournament.ErrInvalidInput))
				return
			}
		}
		if err := s.Attendance.UpsertPlayers(r.Context(), players); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ListBadgesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		held, err := s.Badges.ListBadges(r.Context(), chi.URLParam(r, "playerID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, held)
	}
}

func (s *Server) ListAttendeesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		if _, err := s.Attendance.GetSession(r.Context(), sessionID); err != nil {
			writeError(w, err)
			return
		}
		attendees, err := s.Attendance.GetPresentAttendees(r.Context(), sessionID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, attendees)
	}
}

func (s *Server) SetPresenceHandler(present bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		playerID := chi.URLParam(r, "playerID")
		if err := s.Attendance.SetPresence(r.Context(), sessionID, playerID, present); err != nil {
			writeError(w, err)
			return
		}
		log.Info("Updated presence", "sessionID", sessionID, "playerID", playerID, "present", present)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ImportAttendanceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionID")
		var req importRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if _, err := s.Attendance.GetSession(r.Context(), sessionID); err != nil {
			writeError(w, err)
			return
		}

		var (
			imported int
			err      error
		)
		switch {
		case req.MatchID != "":
			imported, err = s.Importer.ImportMatch(r.Context(), sessionID, req.MatchID)
		case req.FromStartDate != "":
			imported, err = s.Importer.ImportClubMatches(r.Context(), sessionID, req.FromStartDate)
		default:
			err = fmt.Errorf("matchId or fromStartDate is required: %w", tournament.ErrInvalidInput)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, importResponse{Imported: imported})
	}
}

func (s *Server) GetTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := s.Tournaments.GetSessionTournament(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		if t == nil {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func (s *Server) SetupTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req setupTournamentRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		t, err := s.Tournaments.SetupTournament(r.Context(), chi.URLParam(r, "sessionID"), req.TeamMode)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, t)
	}
}

func (s *Server) RecordGameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recordGameRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if req.ScoreA == nil || req.ScoreB == nil {
			writeError(w, fmt.Errorf("scoreA and scoreB are required: %w", tournament.ErrInvalidInput))
			return
		}
		t, err := s.Tournaments.RecordTournamentGame(r.Context(),
			chi.URLParam(r, "sessionID"),
			chi.URLParam(r, "tournamentID"),
			chi.URLParam(r, "matchID"),
			*req.ScoreA, *req.ScoreB)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func (s *Server) EndTournamentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := s.Tournaments.EndTournamentEarly(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

// PubSubPushHandler receives events from a Pub/Sub push subscription. A
// non-2xx answer makes Pub/Sub redeliver the message.
func (s *Server) PubSubPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		topic := events.EventType(chi.URLParam(r, "topic"))
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received push message", "topic", topic, "body", string(bodyBytes))

		var msg pushMessage
		if err := json.Unmarshal(bodyBytes, &msg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(msg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}
		if isDryRunFromContext(r) {
			log.Info("[Dry Run] Would dispatch event", "topic", topic, "bytes", len(rawData))
			w.Write([]byte("OK"))
			return
		}
		if err := s.Dispatcher.Dispatch(r.Context(), topic, rawData); err != nil {
			log.Error("Failed to handle event", "topic", topic, "error", err)
			s.Metrics.IncHookFailures(string(topic))
			http.Error(w, "Failed to handle event", http.StatusInternalServerError)
			return
		}
		w.Write([]byte("OK"))
	}
}
