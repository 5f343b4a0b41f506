package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_DeliversDecodedPayload(t *testing.T) {
	local := NewLocal()
	var got TournamentCompleted
	local.Subscribe(EventTournamentCompleted, func(ctx context.Context, data []byte) error {
		return ProcessMessage(data, &got)
	})

	sent := TournamentCompleted{
		TournamentID:    "t1",
		WinnerTeamID:    "team-1",
		WinnerPlayerIDs: []string{"p1", "p2"},
		EndedAt:         42,
	}
	require.NoError(t, local.SendMessage(context.Background(), EventTournamentCompleted, sent))
	assert.Equal(t, sent, got)
}

func TestLocal_IsolatesHandlerFailures(t *testing.T) {
	local := NewLocal()
	var failures []EventType
	local.OnError(func(topic EventType, err error) { failures = append(failures, topic) })

	calls := 0
	local.Subscribe(EventTournamentEnded, func(ctx context.Context, data []byte) error {
		return errors.New("badge store down")
	})
	local.Subscribe(EventTournamentEnded, func(ctx context.Context, data []byte) error {
		panic("boom")
	})
	local.Subscribe(EventTournamentEnded, func(ctx context.Context, data []byte) error {
		calls++
		return nil
	})

	err := local.SendMessage(context.Background(), EventTournamentEnded, TournamentEnded{TournamentID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "later handlers still run")
	assert.Equal(t, []EventType{EventTournamentEnded, EventTournamentEnded}, failures)
}

func TestLocal_NoSubscribers(t *testing.T) {
	local := NewLocal()
	assert.NoError(t, local.SendMessage(context.Background(), EventStageAdvanced, StageAdvanced{}))
}
