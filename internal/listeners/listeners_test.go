package listeners_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mauv0809/ladder/internal/attendance"
	"github.com/mauv0809/ladder/internal/badges"
	"github.com/mauv0809/ladder/internal/events"
	"github.com/mauv0809/ladder/internal/listeners"
	"github.com/mauv0809/ladder/internal/metrics"
	"github.com/mauv0809/ladder/internal/notifier"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type playerLookup map[string]attendance.Attendee

func (p playerLookup) GetPlayers(ctx context.Context, ids []string) ([]attendance.Attendee, error) {
	out := []attendance.Attendee{}
	for _, id := range []string{"p1", "p2", "p3"} {
		for _, want := range ids {
			if a, ok := p[id]; ok && id == want {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func setup() (*listeners.Listeners, *badges.Mock, *notifier.Mock, *metrics.Mock) {
	awarder := badges.NewMock()
	notify := notifier.NewMock()
	m := metrics.NewMock()
	players := playerLookup{
		"p1": {ID: "p1", Name: "Ana", Emoji: "🦊"},
		"p2": {ID: "p2", Name: "Bo"},
	}
	return listeners.New(awarder, notify, players, m, true), awarder, notify, m
}

func encode(t *testing.T, v any) []byte {
	t.Helper()
	data, err := events.Encode(v)
	require.NoError(t, err)
	return data
}

func TestDispatch_Completed(t *testing.T) {
	l, awarder, notify, m := setup()
	awarder.AwardEligibleBadgesFunc = func(playerID, tournamentID string) ([]badges.Badge, error) {
		assert.Equal(t, "tour-1", tournamentID)
		if playerID == "p1" {
			return []badges.Badge{badges.BadgeFirstTitle, badges.BadgeHatTrick}, nil
		}
		return nil, nil
	}
	event := events.TournamentCompleted{TournamentID: "tour-1", WinnerTeamName: "Ana + Bo", WinnerPlayerIDs: []string{"p1", "p2"}}

	err := l.Dispatch(context.Background(), events.EventTournamentCompleted, encode(t, event))

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p1", "p2"}, awarder.Calls())
	assert.Equal(t, 2, m.BadgesAwarded())
	require.Len(t, notify.BadgeCalls(), 1)
	assert.Equal(t, "🦊Ana", notify.BadgeCalls()[0].PlayerName)
	require.Len(t, notify.SendTournamentCompletedCalls, 1)
	assert.Equal(t, "Ana + Bo", notify.SendTournamentCompletedCalls[0].WinnerTeamName)
}

func TestDispatch_AwardFailureStillAnnounces(t *testing.T) {
	l, awarder, notify, m := setup()
	awarder.AwardEligibleBadgesFunc = func(playerID, tournamentID string) ([]badges.Badge, error) {
		return nil, errors.New("database is locked")
	}
	event := events.TournamentCompleted{TournamentID: "tour-1", WinnerPlayerIDs: []string{"p1"}}

	err := l.Dispatch(context.Background(), events.EventTournamentCompleted, encode(t, event))

	assert.ErrorContains(t, err, "database is locked")
	assert.Len(t, notify.SendTournamentCompletedCalls, 1)
	assert.Zero(t, m.BadgesAwarded())
}

func TestDispatch_Announcements(t *testing.T) {
	l, _, notify, _ := setup()
	ctx := context.Background()

	require.NoError(t, l.Dispatch(ctx, events.EventTournamentStarted, encode(t, events.TournamentStarted{TournamentID: "t", TeamNames: []string{"A + B"}})))
	require.NoError(t, l.Dispatch(ctx, events.EventStageAdvanced, encode(t, events.StageAdvanced{From: "ROUND_ROBIN", To: "BRACKET"})))
	require.NoError(t, l.Dispatch(ctx, events.EventTournamentEnded, encode(t, events.TournamentEnded{TournamentID: "t"})))

	require.Len(t, notify.SendTournamentStartedCalls, 1)
	assert.Equal(t, []string{"A + B"}, notify.SendTournamentStartedCalls[0].TeamNames)
	require.Len(t, notify.SendStageAdvancedCalls, 1)
	assert.Equal(t, "BRACKET", notify.SendStageAdvancedCalls[0].To)
	assert.Len(t, notify.SendTournamentEndedCalls, 1)
}

func TestDispatch_Errors(t *testing.T) {
	l, _, notify, _ := setup()
	ctx := context.Background()

	assert.Error(t, l.Dispatch(ctx, events.EventType("unknown"), nil))
	assert.Error(t, l.Dispatch(ctx, events.EventTournamentStarted, []byte{0xc1}))

	notify.Err = errors.New("slack is down")
	assert.ErrorIs(t, l.Dispatch(ctx, events.EventTournamentEnded, encode(t, events.TournamentEnded{})), notify.Err)
}

func TestRegister_WithLocalPublisher(t *testing.T) {
	l, _, notify, _ := setup()
	local := events.NewLocal()
	l.Register(local)

	require.NoError(t, local.SendMessage(context.Background(), events.EventTournamentEnded, events.TournamentEnded{TournamentID: "t"}))

	require.Len(t, notify.SendTournamentEndedCalls, 1)
	assert.Equal(t, "t", notify.SendTournamentEndedCalls[0].TournamentID)
}
