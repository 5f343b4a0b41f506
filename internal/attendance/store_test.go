package attendance_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mauv0809/ladder/internal/attendance"
	"github.com/mauv0809/ladder/internal/database"
	"github.com/mauv0809/ladder/internal/playtomic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (attendance.Store, *sqlx.DB, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	return attendance.New(db), db, teardown
}

func TestCreateAndGetSession(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	created, err := store.CreateSession(ctx, "Thursday ladder", time.Unix(1700000000, 0))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := store.GetSession(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Thursday ladder", got.Name)
	assert.Equal(t, int64(1700000000), got.StartsAt)

	_, err = store.GetSession(ctx, "missing")
	assert.ErrorIs(t, err, attendance.ErrSessionNotFound)
}

func TestUpsertPlayers_KeepsRating(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	require.NoError(t, store.UpsertPlayers(ctx, []attendance.Player{
		{ID: "p1", Name: "Ana", Emoji: "🦊", Rating: 1300},
		{ID: "p2", Name: "Bo"},
	}))
	_, err := db.Exec(`UPDATE players SET rating = 1412 WHERE id = 'p1'`)
	require.NoError(t, err)

	require.NoError(t, store.UpsertPlayers(ctx, []attendance.Player{
		{ID: "p1", Name: "Ana Maria", Rating: 900},
	}))

	players, err := store.GetPlayers(ctx, []string{"p1", "p2"})
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Ana Maria", players[0].Name)
	assert.Equal(t, "🦊", players[0].Emoji, "empty emoji must not clear the stored one")
	assert.Equal(t, 1412, players[0].Rating)
	assert.Equal(t, attendance.DefaultRating, players[1].Rating)
}

func TestPresence(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	session, err := store.CreateSession(ctx, "Session", time.Now())
	require.NoError(t, err)
	require.NoError(t, store.UpsertPlayers(ctx, []attendance.Player{
		{ID: "p1", Name: "Ana"}, {ID: "p2", Name: "Bo"}, {ID: "p3", Name: "Cy"},
	}))

	for _, id := range []string{"p2", "p1", "p3"} {
		require.NoError(t, store.SetPresence(ctx, session.ID, id, true))
	}
	// Checking in twice is a no-op.
	require.NoError(t, store.SetPresence(ctx, session.ID, "p2", true))

	attendees, err := store.GetPresentAttendees(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, attendees, 3)
	assert.Equal(t, []string{"p2", "p1", "p3"}, []string{attendees[0].ID, attendees[1].ID, attendees[2].ID})

	require.NoError(t, store.SetPresence(ctx, session.ID, "p1", false))
	attendees, err = store.GetPresentAttendees(ctx, session.ID)
	require.NoError(t, err)
	assert.Len(t, attendees, 2)

	err = store.SetPresence(ctx, session.ID, "ghost", true)
	assert.ErrorIs(t, err, attendance.ErrPlayerNotFound)
	err = store.SetPresence(ctx, "missing", "p1", true)
	assert.ErrorIs(t, err, attendance.ErrSessionNotFound)
}

func TestImporter_ImportMatch(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	session, err := store.CreateSession(ctx, "Session", time.Now())
	require.NoError(t, err)

	client := playtomic.NewMockClient()
	client.GetBookingFunc = func(matchID string) (playtomic.Booking, error) {
		return playtomic.Booking{
			MatchID:    matchID,
			GameStatus: playtomic.GameStatusPending,
			Teams: []playtomic.Team{
				{ID: "1", Players: []playtomic.Player{{UserID: "u1", Name: "Ana", Level: 3.5}, {UserID: "u2", Name: "Bo"}}},
				{ID: "2", Players: []playtomic.Player{{UserID: "u3", Name: "Cy", Level: 2}, {UserID: "", Name: "Guest"}}},
			},
		}, nil
	}

	importer := attendance.NewImporter(store, client, "tenant-1")
	n, err := importer.ImportMatch(ctx, session.ID, "m1")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"m1"}, client.GetBookingCalls)

	attendees, err := store.GetPresentAttendees(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, attendees, 3)
	ratings := map[string]int{}
	for _, a := range attendees {
		ratings[a.ID] = a.Rating
	}
	assert.Equal(t, 1350, ratings["u1"])
	assert.Equal(t, attendance.DefaultRating, ratings["u2"])
	assert.Equal(t, 1200, ratings["u3"])
}

func TestImporter_ImportClubMatches(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	session, err := store.CreateSession(ctx, "Session", time.Now())
	require.NoError(t, err)

	client := playtomic.NewMockClient()
	client.GetMatchesFunc = func(params *playtomic.SearchMatchesParams) ([]playtomic.MatchSummary, error) {
		assert.Equal(t, []string{"tenant-1"}, params.TenantIDs)
		return []playtomic.MatchSummary{{MatchID: "m1"}, {MatchID: "m2"}}, nil
	}
	client.GetBookingFunc = func(matchID string) (playtomic.Booking, error) {
		if matchID == "m2" {
			return playtomic.Booking{MatchID: matchID, GameStatus: playtomic.GameStatusCanceled}, nil
		}
		return playtomic.Booking{
			MatchID: matchID,
			Teams:   []playtomic.Team{{Players: []playtomic.Player{{UserID: "u1", Name: "Ana"}}}},
		}, nil
	}

	importer := attendance.NewImporter(store, client, "tenant-1")
	n, err := importer.ImportClubMatches(ctx, session.ID, "2025-07-09T00:00:00")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestImporter_Errors(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	client := playtomic.NewMockClient()
	importer := attendance.NewImporter(store, client, "")

	_, err := importer.ImportMatch(ctx, "missing", "m1")
	assert.ErrorIs(t, err, attendance.ErrSessionNotFound)
	assert.Empty(t, client.GetBookingCalls)

	session, err := store.CreateSession(ctx, "Session", time.Now())
	require.NoError(t, err)
	client.GetBookingFunc = func(string) (playtomic.Booking, error) {
		return playtomic.Booking{}, errors.New("boom")
	}
	_, err = importer.ImportMatch(ctx, session.ID, "m1")
	assert.Error(t, err)

	_, err = importer.ImportClubMatches(ctx, session.ID, "")
	assert.Error(t, err, "no tenant configured")
}
