package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type store struct {
	db  *sqlx.DB
	mu  sync.RWMutex
	now func() time.Time
}

var _ Store = (*store)(nil)

// New creates a new attendance store.
func New(db *sqlx.DB) Store {
	return &store{db: db, now: time.Now}
}

func (s *store) CreateSession(ctx context.Context, name string, startsAt time.Time) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := &Session{
		ID:        uuid.NewString(),
		Name:      name,
		StartsAt:  startsAt.Unix(),
		CreatedAt: s.now().Unix(),
	}
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO sessions (id, name, starts_at, created_at) VALUES (:id, :name, :starts_at, :created_at)`,
		session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	log.Info("Created session", "sessionID", session.ID, "name", name)
	return session, nil
}

func (s *store) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var session Session
	err := s.db.GetContext(ctx, &session, `SELECT id, name, starts_at, created_at FROM sessions WHERE id = ?`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &session, nil
}

// UpsertPlayers inserts new players and refreshes name and emoji of known ones.
// Ratings of existing players are left alone since they are owned by game results.
func (s *store) UpsertPlayers(ctx context.Context, players []Player) error {
	if len(players) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := s.now().Unix()
	for _, p := range players {
		rating := p.Rating
		if rating == 0 {
			rating = DefaultRating
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO players (id, name, emoji, rating, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				emoji = CASE WHEN excluded.emoji = '' THEN players.emoji ELSE excluded.emoji END`,
			p.ID, p.Name, p.Emoji, rating, now)
		if err != nil {
			return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	log.Debug("Upserted players", "count", len(players))
	return nil
}

func (s *store) SetPresence(ctx context.Context, sessionID, playerID string, present bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !present {
		_, err := s.db.ExecContext(ctx, `DELETE FROM session_attendees WHERE session_id = ? AND player_id = ?`, sessionID, playerID)
		if err != nil {
			return fmt.Errorf("failed to remove attendee: %w", err)
		}
		return nil
	}

	var exists bool
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM sessions WHERE id = ?)`, sessionID); err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM players WHERE id = ?)`, playerID); err != nil {
		return fmt.Errorf("failed to check player: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, playerID)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO session_attendees (session_id, player_id, checked_in_at) VALUES (?, ?, ?)
		ON CONFLICT(session_id, player_id) DO NOTHING`,
		sessionID, playerID, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to add attendee: %w", err)
	}
	return nil
}

// GetPresentAttendees returns the attendees of a session in check-in order.
func (s *store) GetPresentAttendees(ctx context.Context, sessionID string) ([]Attendee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	attendees := []Attendee{}
	err := s.db.SelectContext(ctx, &attendees, `
		SELECT p.id, p.name, p.emoji, p.rating
		FROM session_attendees sa
		JOIN players p ON p.id = sa.player_id
		WHERE sa.session_id = ?
		ORDER BY sa.checked_in_at, sa.rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get attendees: %w", err)
	}
	return attendees, nil
}

func (s *store) GetPlayers(ctx context.Context, playerIDs []string) ([]Attendee, error) {
	players := []Attendee{}
	if len(playerIDs) == 0 {
		return players, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	query, args, err := sqlx.In(`SELECT id, name, emoji, rating FROM players WHERE id IN (?) ORDER BY id`, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build players query: %w", err)
	}
	if err := s.db.SelectContext(ctx, &players, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get players: %w", err)
	}
	return players, nil
}
