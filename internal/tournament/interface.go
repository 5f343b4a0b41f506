package tournament

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/mauv0809/ladder/internal/attendance"
)

// Repository persists tournaments. Every method takes the queryer it runs on
// so the same calls work inside and outside a transaction.
type Repository interface {
	// WithTx runs fn in a transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(tx sqlx.ExtContext) error) error
	// Conn is the queryer for reads outside a transaction.
	Conn() sqlx.ExtContext

	HasActiveTournament(ctx context.Context, q sqlx.ExtContext) (bool, error)
	CreateTournament(ctx context.Context, q sqlx.ExtContext, t *Tournament) error
	CreateTeams(ctx context.Context, q sqlx.ExtContext, teams []Team) error
	CreateMatches(ctx context.Context, q sqlx.ExtContext, matches []Match) error
	GetTournament(ctx context.Context, q sqlx.ExtContext, tournamentID string) (*Tournament, error)
	GetLatestSessionTournament(ctx context.Context, q sqlx.ExtContext, sessionID string) (*Tournament, error)
	ListMatches(ctx context.Context, q sqlx.ExtContext, tournamentID string, stage *MatchStage) ([]Match, error)
	UpdateTournament(ctx context.Context, q sqlx.ExtContext, t *Tournament) error
	UpdateMatch(ctx context.Context, q sqlx.ExtContext, m *Match) error
	UpdateTeamRecord(ctx context.Context, q sqlx.ExtContext, team *Team) error
	DeleteMatchesByStage(ctx context.Context, q sqlx.ExtContext, tournamentID string, stage MatchStage) error
	LinkGame(ctx context.Context, q sqlx.ExtContext, game MatchGame) error
}

// GameRecorder stores a scored game and applies its rating changes.
type GameRecorder interface {
	CreateScoredGame(ctx context.Context, q sqlx.ExtContext, sessionID string, teamA, teamB []string, scoreA, scoreB int) (string, error)
}

// AttendanceSource answers who is at a session.
type AttendanceSource interface {
	GetSession(ctx context.Context, sessionID string) (*attendance.Session, error)
	GetPresentAttendees(ctx context.Context, sessionID string) ([]attendance.Attendee, error)
	GetPlayers(ctx context.Context, playerIDs []string) ([]attendance.Attendee, error)
}
