package tournament

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

const (
	tournamentColumns = `id, session_id, status, team_mode, stage, special_mode, winner_team_id, created_at, ended_at`
	teamColumns       = `id, tournament_id, name, seed, player_a_id, player_b_id, wins, losses`
	matchColumns      = `id, tournament_id, stage, round, slot, best_of, team_a_id, team_b_id, team_a_player_ids, team_b_player_ids,
		wins_a, wins_b, is_complete, winner_team_id, loser_team_id, metadata`
)

type store struct {
	db *sqlx.DB
	mu sync.Mutex
}

var _ Repository = (*store)(nil)

// NewStore creates a new sqlx backed tournament repository.
func NewStore(db *sqlx.DB) Repository {
	return &store{db: db}
}

func (s *store) WithTx(ctx context.Context, fn func(tx sqlx.ExtContext) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *store) Conn() sqlx.ExtContext {
	return s.db
}

func (s *store) HasActiveTournament(ctx context.Context, q sqlx.ExtContext) (bool, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, q, &exists, `SELECT EXISTS(SELECT 1 FROM tournaments WHERE status = ?)`, StatusActive); err != nil {
		return false, fmt.Errorf("failed to check for active tournament: %w", err)
	}
	return exists, nil
}

func (s *store) CreateTournament(ctx context.Context, q sqlx.ExtContext, t *Tournament) error {
	_, err := sqlx.NamedExecContext(ctx, q, `
		INSERT INTO tournaments (`+tournamentColumns+`)
		VALUES (:id, :session_id, :status, :team_mode, :stage, :special_mode, :winner_team_id, :created_at, :ended_at)`, t)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("another tournament is already active: %w", ErrConflict)
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (s *store) CreateTeams(ctx context.Context, q sqlx.ExtContext, teams []Team) error {
	for i := range teams {
		_, err := sqlx.NamedExecContext(ctx, q, `
			INSERT INTO tournament_teams (`+teamColumns+`)
			VALUES (:id, :tournament_id, :name, :seed, :player_a_id, :player_b_id, :wins, :losses)`, &teams[i])
		if err != nil {
			return fmt.Errorf("failed to create team %s: %w", teams[i].Name, err)
		}
	}
	return nil
}

func (s *store) CreateMatches(ctx context.Context, q sqlx.ExtContext, matches []Match) error {
	for i := range matches {
		_, err := sqlx.NamedExecContext(ctx, q, `
			INSERT INTO tournament_matches (`+matchColumns+`)
			VALUES (:id, :tournament_id, :stage, :round, :slot, :best_of, :team_a_id, :team_b_id, :team_a_player_ids, :team_b_player_ids,
				:wins_a, :wins_b, :is_complete, :winner_team_id, :loser_team_id, :metadata)`, &matches[i])
		if err != nil {
			return fmt.Errorf("failed to create match %s: %w", matches[i].ID, err)
		}
	}
	return nil
}

// GetTournament loads a tournament with its teams, matches and linked games.
func (s *store) GetTournament(ctx context.Context, q sqlx.ExtContext, tournamentID string) (*Tournament, error) {
	var t Tournament
	err := sqlx.GetContext(ctx, q, &t, `SELECT `+tournamentColumns+` FROM tournaments WHERE id = ?`, tournamentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tournament %s: %w", tournamentID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament: %w", err)
	}
	if err := s.hydrate(ctx, q, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetLatestSessionTournament returns nil without error when the session has none.
func (s *store) GetLatestSessionTournament(ctx context.Context, q sqlx.ExtContext, sessionID string) (*Tournament, error) {
	var t Tournament
	err := sqlx.GetContext(ctx, q, &t, `
		SELECT `+tournamentColumns+` FROM tournaments
		WHERE session_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session tournament: %w", err)
	}
	if err := s.hydrate(ctx, q, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *store) hydrate(ctx context.Context, q sqlx.ExtContext, t *Tournament) error {
	t.Teams = []Team{}
	if err := sqlx.SelectContext(ctx, q, &t.Teams, `SELECT `+teamColumns+` FROM tournament_teams WHERE tournament_id = ? ORDER BY seed`, t.ID); err != nil {
		return fmt.Errorf("failed to get teams: %w", err)
	}
	matches, err := s.ListMatches(ctx, q, t.ID, nil)
	if err != nil {
		return err
	}

	games := []MatchGame{}
	err = sqlx.SelectContext(ctx, q, &games, `
		SELECT mg.tournament_match_id, mg.game_id, mg.game_number, g.score_a, g.score_b
		FROM tournament_match_games mg
		JOIN tournament_matches m ON m.id = mg.tournament_match_id
		JOIN games g ON g.id = mg.game_id
		WHERE m.tournament_id = ?
		ORDER BY mg.tournament_match_id, mg.game_number`, t.ID)
	if err != nil {
		return fmt.Errorf("failed to get match games: %w", err)
	}
	byMatch := make(map[string][]MatchGame)
	for _, g := range games {
		byMatch[g.TournamentMatchID] = append(byMatch[g.TournamentMatchID], g)
	}
	for i := range matches {
		matches[i].Games = byMatch[matches[i].ID]
		if matches[i].Games == nil {
			matches[i].Games = []MatchGame{}
		}
	}
	t.Matches = matches
	return nil
}

// ListMatches returns matches in play order, optionally limited to one stage.
func (s *store) ListMatches(ctx context.Context, q sqlx.ExtContext, tournamentID string, stage *MatchStage) ([]Match, error) {
	query := `SELECT ` + matchColumns + ` FROM tournament_matches WHERE tournament_id = ?`
	args := []any{tournamentID}
	if stage != nil {
		query += ` AND stage = ?`
		args = append(args, *stage)
	}
	query += ` ORDER BY round, slot`

	matches := []Match{}
	if err := sqlx.SelectContext(ctx, q, &matches, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Stage.order() < matches[j].Stage.order()
	})
	return matches, nil
}

func (s *store) UpdateTournament(ctx context.Context, q sqlx.ExtContext, t *Tournament) error {
	_, err := q.ExecContext(ctx, `
		UPDATE tournaments SET status = ?, stage = ?, winner_team_id = ?, ended_at = ? WHERE id = ?`,
		t.Status, t.Stage, t.WinnerTeamID, t.EndedAt, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update tournament: %w", err)
	}
	return nil
}

func (s *store) UpdateMatch(ctx context.Context, q sqlx.ExtContext, m *Match) error {
	_, err := q.ExecContext(ctx, `
		UPDATE tournament_matches
		SET wins_a = ?, wins_b = ?, is_complete = ?, winner_team_id = ?, loser_team_id = ?
		WHERE id = ?`,
		m.WinsA, m.WinsB, m.IsComplete, m.WinnerTeamID, m.LoserTeamID, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}
	return nil
}

func (s *store) UpdateTeamRecord(ctx context.Context, q sqlx.ExtContext, team *Team) error {
	_, err := q.ExecContext(ctx, `UPDATE tournament_teams SET wins = ?, losses = ? WHERE id = ?`, team.Wins, team.Losses, team.ID)
	if err != nil {
		return fmt.Errorf("failed to update team record: %w", err)
	}
	return nil
}

func (s *store) DeleteMatchesByStage(ctx context.Context, q sqlx.ExtContext, tournamentID string, stage MatchStage) error {
	_, err := q.ExecContext(ctx, `DELETE FROM tournament_matches WHERE tournament_id = ? AND stage = ?`, tournamentID, stage)
	if err != nil {
		return fmt.Errorf("failed to delete %s matches: %w", stage, err)
	}
	return nil
}

func (s *store) LinkGame(ctx context.Context, q sqlx.ExtContext, game MatchGame) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO tournament_match_games (tournament_match_id, game_id, game_number) VALUES (?, ?, ?)`,
		game.TournamentMatchID, game.GameID, game.GameNumber)
	if err != nil {
		return fmt.Errorf("failed to link game to match: %w", err)
	}
	return nil
}

// isUniqueViolation recognises unique index failures from the local sqlite3
// driver by code. The libSQL client only reports them as text.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
