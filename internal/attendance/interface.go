package attendance

import (
	"context"
	"time"
)

// Store manages sessions, players and who is present at a session.
type Store interface {
	CreateSession(ctx context.Context, name string, startsAt time.Time) (*Session, error)
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	UpsertPlayers(ctx context.Context, players []Player) error
	SetPresence(ctx context.Context, sessionID, playerID string, present bool) error
	GetPresentAttendees(ctx context.Context, sessionID string) ([]Attendee, error)
	GetPlayers(ctx context.Context, playerIDs []string) ([]Attendee, error)
}
