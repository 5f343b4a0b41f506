package tournament

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/mauv0809/ladder/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sqlx.DB, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	return db, teardown
}

func insertSession(t *testing.T, db *sqlx.DB, id string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO sessions (id, name, starts_at, created_at) VALUES (?, ?, 0, 0)`, id, "Session "+id)
	require.NoError(t, err)
}

func TestStore_CreateAndHydrate(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	repo := NewStore(db)
	insertSession(t, db, "s1")

	teams := testTeams(3)
	tour := newTestTournament(StageRoundRobin, nil, nil)
	tour.SessionID = "s1"
	tour.CreatedAt = 10
	matches := fullRoundRobin(tour.ID, teams, nil, 3).Matches
	byes := pairBracketRound(tour.ID, teams, 1, 3)
	err := repo.WithTx(ctx, func(tx sqlx.ExtContext) error {
		require.NoError(t, repo.CreateTournament(ctx, tx, tour))
		require.NoError(t, repo.CreateTeams(ctx, tx, teams))
		require.NoError(t, repo.CreateMatches(ctx, tx, byes))
		return repo.CreateMatches(ctx, tx, matches)
	})
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO games (id, session_id, team_a_player_ids, team_b_player_ids, score_a, score_b, created_at)
		VALUES ('g1', 's1', '[]', '[]', 6, 4, 0)`)
	require.NoError(t, err)
	require.NoError(t, repo.LinkGame(ctx, repo.Conn(), MatchGame{TournamentMatchID: matches[0].ID, GameID: "g1", GameNumber: 1}))

	got, err := repo.GetTournament(ctx, repo.Conn(), tour.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, got.Status)
	assert.Equal(t, SpecialModeNone, got.SpecialMode)
	assert.Equal(t, []string{"t1", "t2", "t3"}, teamIDs(got.Teams))
	require.Len(t, got.Matches, 5)
	assert.Equal(t, MatchStageRoundRobin, got.Matches[0].Stage, "round robin is listed before the bracket")
	assert.Equal(t, 102, got.Matches[2].Slot)
	assert.Equal(t, MatchStageBracket, got.Matches[3].Stage)

	first := got.Matches[0]
	assert.Equal(t, PlayerIDs{"t1a", "t1b"}, first.TeamAPlayerIDs)
	require.Len(t, first.Games, 1)
	assert.Equal(t, 6, first.Games[0].ScoreA)
	assert.Equal(t, 4, first.Games[0].ScoreB)
	assert.NotNil(t, got.Matches[1].Games)

	bye := got.Matches[4]
	assert.True(t, bye.IsBye())
	assert.True(t, bye.IsComplete)
	assert.Equal(t, "t3", *bye.WinnerTeamID)

	stage := MatchStageBracket
	require.NoError(t, repo.DeleteMatchesByStage(ctx, repo.Conn(), tour.ID, stage))
	bracket, err := repo.ListMatches(ctx, repo.Conn(), tour.ID, &stage)
	require.NoError(t, err)
	assert.Empty(t, bracket)
}

func TestStore_MatchMetadataRoundTrip(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	repo := NewStore(db)
	insertSession(t, db, "s1")

	tour := newTestTournament(StageRoundRobin, nil, nil)
	tour.SessionID = "s1"
	matches := rotationForFive(tour.ID, nil, testAttendees(5), 3).Matches
	require.NoError(t, repo.CreateTournament(ctx, repo.Conn(), tour))
	require.NoError(t, repo.CreateMatches(ctx, repo.Conn(), matches))

	got, err := repo.GetTournament(ctx, repo.Conn(), tour.ID)
	require.NoError(t, err)
	require.Len(t, got.Matches, 5)
	assert.Equal(t, MatchMetadata{Format: formatRotation, SittingOutPlayerID: "p2"}, got.Matches[1].Metadata)
	assert.IsType(t, AdHocRoster{}, got.Matches[1].SideA())
}

func TestStore_SingleActiveTournament(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	repo := NewStore(db)
	insertSession(t, db, "s1")
	insertSession(t, db, "s2")

	first := newTestTournament(StageBracket, nil, nil)
	first.SessionID = "s1"
	require.NoError(t, repo.CreateTournament(ctx, repo.Conn(), first))

	active, err := repo.HasActiveTournament(ctx, repo.Conn())
	require.NoError(t, err)
	assert.True(t, active)

	second := newTestTournament(StageBracket, nil, nil)
	second.ID = "tour-2"
	second.SessionID = "s2"
	err = repo.CreateTournament(ctx, repo.Conn(), second)
	assert.ErrorIs(t, err, ErrConflict)

	endedAt := int64(20)
	first.Status, first.Stage, first.EndedAt = StatusEnded, StageEnded, &endedAt
	require.NoError(t, repo.UpdateTournament(ctx, repo.Conn(), first))
	require.NoError(t, repo.CreateTournament(ctx, repo.Conn(), second))
}

func TestStore_GetLatestSessionTournament(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	repo := NewStore(db)
	insertSession(t, db, "s1")

	got, err := repo.GetLatestSessionTournament(ctx, repo.Conn(), "s1")
	require.NoError(t, err)
	assert.Nil(t, got)

	older := newTestTournament(StageEnded, nil, nil)
	older.ID, older.SessionID, older.Status, older.CreatedAt = "old", "s1", StatusEnded, 5
	newer := newTestTournament(StageBracket, nil, nil)
	newer.ID, newer.SessionID, newer.CreatedAt = "new", "s1", 5
	require.NoError(t, repo.CreateTournament(ctx, repo.Conn(), older))
	require.NoError(t, repo.CreateTournament(ctx, repo.Conn(), newer))

	got, err = repo.GetLatestSessionTournament(ctx, repo.Conn(), "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "new", got.ID, "insertion order breaks created_at ties")
	assert.Empty(t, got.Teams)

	_, err = repo.GetTournament(ctx, repo.Conn(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_WithTxRollsBack(t *testing.T) {
	db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()
	repo := NewStore(db)
	insertSession(t, db, "s1")

	tour := newTestTournament(StageBracket, nil, nil)
	tour.SessionID = "s1"
	err := repo.WithTx(ctx, func(tx sqlx.ExtContext) error {
		require.NoError(t, repo.CreateTournament(ctx, tx, tour))
		return ErrInvalidState
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = repo.GetTournament(ctx, repo.Conn(), tour.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"sqlite unique index", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}, true},
		{"wrapped sqlite unique index", fmt.Errorf("insert: %w", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintUnique}), true},
		{"sqlite foreign key", sqlite3.Error{Code: sqlite3.ErrConstraint, ExtendedCode: sqlite3.ErrConstraintForeignKey}, false},
		{"libsql text", errors.New("SQLITE_CONSTRAINT: UNIQUE constraint failed: tournaments.status"), true},
		{"other", errors.New("database is locked"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}
