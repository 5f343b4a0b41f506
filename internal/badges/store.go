package badges

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
)

type store struct {
	db  *sqlx.DB
	mu  sync.Mutex
	now func() time.Time
}

var _ Awarder = (*store)(nil)

func New(db *sqlx.DB) Awarder {
	return &store{db: db, now: time.Now}
}

func (s *store) AwardEligibleBadges(ctx context.Context, playerID, tournamentID string) ([]Badge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var titles int
	err := s.db.GetContext(ctx, &titles, `
		SELECT COUNT(*)
		FROM tournaments t
		JOIN tournament_teams tt ON tt.id = t.winner_team_id
		WHERE t.status = 'COMPLETED' AND (tt.player_a_id = ? OR tt.player_b_id = ?)`,
		playerID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count titles: %w", err)
	}

	var awarded []Badge
	for _, threshold := range titleThresholds {
		if titles < threshold.Titles {
			break
		}
		res, err := s.db.ExecContext(ctx, `
			INSERT INTO player_badges (player_id, badge, tournament_id, awarded_at) VALUES (?, ?, ?, ?)
			ON CONFLICT(player_id, badge) DO NOTHING`,
			playerID, threshold.Badge, tournamentID, s.now().Unix())
		if err != nil {
			return nil, fmt.Errorf("failed to award %s: %w", threshold.Badge, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			awarded = append(awarded, threshold.Badge)
		}
	}
	if len(awarded) > 0 {
		log.Info("Awarded badges", "playerID", playerID, "badges", awarded, "titles", titles)
	}
	return awarded, nil
}

func (s *store) ListBadges(ctx context.Context, playerID string) ([]PlayerBadge, error) {
	badges := []PlayerBadge{}
	err := s.db.SelectContext(ctx, &badges, `
		SELECT player_id, badge, tournament_id, awarded_at FROM player_badges
		WHERE player_id = ? ORDER BY awarded_at, rowid`, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	return badges, nil
}
