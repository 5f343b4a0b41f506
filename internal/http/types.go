package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mauv0809/ladder/internal/attendance"
	"github.com/mauv0809/ladder/internal/badges"
	"github.com/mauv0809/ladder/internal/events"
	"github.com/mauv0809/ladder/internal/metrics"
	"github.com/mauv0809/ladder/internal/tournament"
)

// TournamentService runs tournaments for sessions.
type TournamentService interface {
	SetupTournament(ctx context.Context, sessionID string, mode tournament.TeamMode) (*tournament.Tournament, error)
	RecordTournamentGame(ctx context.Context, sessionID, tournamentID, matchID string, scoreA, scoreB int) (*tournament.Tournament, error)
	EndTournamentEarly(ctx context.Context, sessionID string) (*tournament.Tournament, error)
	GetSessionTournament(ctx context.Context, sessionID string) (*tournament.Tournament, error)
}

// AttendanceImporter marks Playtomic players present at a session.
type AttendanceImporter interface {
	ImportMatch(ctx context.Context, sessionID, matchID string) (int, error)
	ImportClubMatches(ctx context.Context, sessionID, fromStartDate string) (int, error)
}

// Dispatcher runs the listeners of a topic.
type Dispatcher interface {
	Dispatch(ctx context.Context, topic events.EventType, data []byte) error
}

type Server struct {
	Tournaments    TournamentService
	Attendance     attendance.Store
	Importer       AttendanceImporter
	Badges         badges.Awarder
	Dispatcher     Dispatcher
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	// InngestHandler serves Inngest functions; nil unless that backend is on.
	InngestHandler http.Handler
	Router         chi.Router
}

type createSessionRequest struct {
	Name     string `json:"name"`
	StartsAt string `json:"startsAt"`
}

type importRequest struct {
	MatchID       string `json:"matchId"`
	FromStartDate string `json:"fromStartDate"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

type setupTournamentRequest struct {
	TeamMode tournament.TeamMode `json:"teamMode"`
}

type recordGameRequest struct {
	ScoreA *int `json:"scoreA"`
	ScoreB *int `json:"scoreB"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// pushMessage is the envelope of a Pub/Sub push subscription.
type pushMessage struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data string `json:"data"`
	} `json:"message"`
}
