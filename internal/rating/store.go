package rating

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Store persists games and applies their rating changes. It holds no
// connection of its own; callers pass the queryer, usually a transaction.
type Store struct {
	now func() time.Time
}

func New() *Store {
	return &Store{now: time.Now}
}

// CreateScoredGame stores a game, moves every player's rating and records the
// change history. It returns the new game id.
func (s *Store) CreateScoredGame(ctx context.Context, q sqlx.ExtContext, sessionID string, teamA, teamB []string, scoreA, scoreB int) (string, error) {
	if scoreA == scoreB {
		return "", fmt.Errorf("game between %v and %v has no winner", teamA, teamB)
	}
	game := Game{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		TeamA:     teamA,
		TeamB:     teamB,
		ScoreA:    scoreA,
		ScoreB:    scoreB,
		CreatedAt: s.now().Unix(),
	}
	_, err := sqlx.NamedExecContext(ctx, q, `
		INSERT INTO games (id, session_id, team_a_player_ids, team_b_player_ids, score_a, score_b, created_at)
		VALUES (:id, :session_id, :team_a_player_ids, :team_b_player_ids, :score_a, :score_b, :created_at)`, game)
	if err != nil {
		return "", fmt.Errorf("failed to insert game: %w", err)
	}

	a, err := loadPlayers(ctx, q, teamA)
	if err != nil {
		return "", err
	}
	b, err := loadPlayers(ctx, q, teamB)
	if err != nil {
		return "", err
	}
	current := make(map[string]int, len(a)+len(b))
	for _, p := range append(append([]Player{}, a...), b...) {
		current[p.ID] = p.Rating
	}

	for playerID, delta := range Deltas(a, b, scoreA > scoreB) {
		after := current[playerID] + delta
		if _, err := q.ExecContext(ctx, `UPDATE players SET rating = ? WHERE id = ?`, after, playerID); err != nil {
			return "", fmt.Errorf("failed to update rating for %s: %w", playerID, err)
		}
		if _, err := q.ExecContext(ctx, `
			INSERT INTO rating_history (game_id, player_id, delta, rating_after) VALUES (?, ?, ?, ?)`,
			game.ID, playerID, delta, after); err != nil {
			return "", fmt.Errorf("failed to record rating change for %s: %w", playerID, err)
		}
	}
	log.Debug("Recorded scored game", "gameID", game.ID, "scoreA", scoreA, "scoreB", scoreB)
	return game.ID, nil
}

// History returns a player's rating changes, oldest first.
func (s *Store) History(ctx context.Context, q sqlx.QueryerContext, playerID string) ([]Change, error) {
	changes := []Change{}
	err := sqlx.SelectContext(ctx, q, &changes, `
		SELECT rh.game_id, rh.player_id, rh.delta, rh.rating_after
		FROM rating_history rh
		JOIN games g ON g.id = rh.game_id
		WHERE rh.player_id = ?
		ORDER BY g.created_at, g.rowid`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rating history: %w", err)
	}
	return changes, nil
}

func loadPlayers(ctx context.Context, q sqlx.ExtContext, ids []string) ([]Player, error) {
	players := []Player{}
	if len(ids) == 0 {
		return players, nil
	}
	query, args, err := sqlx.In(`SELECT id, rating FROM players WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build players query: %w", err)
	}
	if err := sqlx.SelectContext(ctx, q, &players, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	if len(players) != len(ids) {
		return nil, fmt.Errorf("expected %d players, found %d", len(ids), len(players))
	}
	return players, nil
}

type playerIDs []string

func (p playerIDs) Value() (driver.Value, error) {
	if p == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *playerIDs) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return json.Unmarshal([]byte(v), (*[]string)(p))
	case []byte:
		return json.Unmarshal(v, (*[]string)(p))
	case nil:
		*p = nil
		return nil
	default:
		return fmt.Errorf("unsupported column type %T", src)
	}
}
