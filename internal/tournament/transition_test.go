package tournament

import (
	"testing"

	"github.com/mauv0809/ladder/internal/attendance"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTournament(stage Stage, teams []Team, matches []Match) *Tournament {
	return &Tournament{
		ID:          "tour",
		SessionID:   "session",
		Status:      StatusActive,
		TeamMode:    TeamModeFair,
		Stage:       stage,
		SpecialMode: SpecialModeNone,
		Teams:       teams,
		Matches:     matches,
	}
}

// finish completes a best-of-three match for one side.
func finish(t *testing.T, m *Match, aWins bool) {
	t.Helper()
	score := [2]int{6, 3}
	if !aWins {
		score = [2]int{3, 6}
	}
	play(t, m, score, score)
	require.True(t, m.IsComplete)
}

func teamIDs(teams []Team) []string {
	ids := make([]string, 0, len(teams))
	for _, team := range teams {
		ids = append(ids, team.ID)
	}
	return ids
}

func TestRankTeams(t *testing.T) {
	teams := testTeams(5)
	teams[0].Wins, teams[0].Losses = 1, 2
	teams[1].Wins, teams[1].Losses = 2, 2
	teams[2].Wins, teams[2].Losses = 2, 1
	teams[3].Wins, teams[3].Losses = 2, 1
	teams[4].Wins, teams[4].Losses = 1, 1

	ranked, err := RankTeams(teams)

	require.NoError(t, err)
	assert.Equal(t, []string{"t3", "t4", "t2", "t5", "t1"}, teamIDs(ranked))
	assert.Equal(t, "t1", teams[0].ID, "input order is left alone")
}

func TestRankTeams_DuplicateSeed(t *testing.T) {
	teams := testTeams(3)
	teams[2].Seed = 1

	_, err := RankTeams(teams)

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestLargestPowerOfTwo(t *testing.T) {
	for n, want := range map[int]int{0: 0, 1: 1, 2: 2, 3: 2, 5: 4, 7: 4, 8: 8, 9: 8} {
		assert.Equal(t, want, largestPowerOfTwo(n), "n=%d", n)
	}
}

func TestFinalizeRoundRobin_WaitsForAllMatches(t *testing.T) {
	teams := testTeams(3)
	tour := newTestTournament(StageRoundRobin, teams, fullRoundRobin("tour", teams, nil, 3).Matches)
	finish(t, &tour.Matches[0], true)

	tr, err := FinalizeRoundRobin(tour, nil, 3)

	require.NoError(t, err)
	assert.Nil(t, tr)
}

func TestFinalizeRoundRobin_SeedsBracketFromStandings(t *testing.T) {
	teams := testTeams(5)
	// t5 goes unbeaten, t1 wins nothing.
	record := map[string][2]int{"t1": {0, 4}, "t2": {2, 2}, "t3": {1, 3}, "t4": {3, 1}, "t5": {4, 0}}
	for i := range teams {
		teams[i].Wins, teams[i].Losses = record[teams[i].ID][0], record[teams[i].ID][1]
	}
	matches := fullRoundRobin("tour", teams, nil, 3).Matches
	for i := range matches {
		finish(t, &matches[i], true)
	}
	stale := pairBracketRound("tour", teams[:2], 1, 3)
	tour := newTestTournament(StageRoundRobin, teams, append(matches, stale...))

	tr, err := FinalizeRoundRobin(tour, nil, 3)

	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, StageRoundRobin, tr.From)
	assert.Equal(t, StageBracket, tr.Stage)
	assert.True(t, tr.PurgeBracket)
	assert.False(t, tr.Completes())
	require.Len(t, tr.NewMatches, 2)
	assert.Equal(t, "t5", *tr.NewMatches[0].TeamAID)
	assert.Equal(t, "t4", *tr.NewMatches[0].TeamBID)
	assert.Equal(t, "t2", *tr.NewMatches[1].TeamAID)
	assert.Equal(t, "t3", *tr.NewMatches[1].TeamBID)

	tr.Apply(tour)
	assert.Equal(t, StageBracket, tour.Stage)
	bracket := tour.MatchesIn(MatchStageBracket)
	require.Len(t, bracket, 2)
	assert.Equal(t, tr.NewMatches[0].ID, bracket[0].ID, "stale bracket matches are purged")
	assert.Len(t, tour.MatchesIn(MatchStageRoundRobin), 10)
}

func TestFinalizeRoundRobin_ThreeTeamsPlayAFinal(t *testing.T) {
	teams := testTeams(3)
	matches := fullRoundRobin("tour", teams, nil, 3).Matches
	for i := range matches {
		finish(t, &matches[i], false)
	}
	teams[0].Losses = 2
	teams[1].Wins, teams[1].Losses = 1, 1
	teams[2].Wins = 2
	tour := newTestTournament(StageRoundRobin, teams, matches)

	tr, err := FinalizeRoundRobin(tour, nil, 3)

	require.NoError(t, err)
	require.Len(t, tr.NewMatches, 1)
	assert.Equal(t, "t3", *tr.NewMatches[0].TeamAID)
	assert.Equal(t, "t2", *tr.NewMatches[0].TeamBID)
}

func TestFinalizeRoundRobin_MixedSendsBestPairsToFinal(t *testing.T) {
	attendees := testAttendees(4)
	teams := FormTeams("tour", attendees, TeamModeFair, noShuffle)
	tour := newTestTournament(StageRoundRobin, teams, mixedPartitions("tour", teams, attendees, 3).Matches)
	tour.SpecialMode = SpecialModeMixedRoundRobin
	// p2+p3 take two games off p1+p4, p1+p2 and p1+p3 sweep.
	play(t, &tour.Matches[0], [2]int{6, 3}, [2]int{3, 6}, [2]int{3, 6})
	finish(t, &tour.Matches[1], true)
	finish(t, &tour.Matches[2], true)
	players := map[string]attendance.Attendee{}
	for _, a := range attendees {
		players[a.ID] = a
	}

	tr, err := FinalizeRoundRobin(tour, players, 5)

	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, StageFinals, tr.Stage)
	assert.False(t, tr.PurgeBracket)
	require.Len(t, tr.NewTeams, 2)
	top, runnerUp := tr.NewTeams[0], tr.NewTeams[1]
	assert.Equal(t, PlayerIDs{"p2", "p3"}, top.PlayerIDs(), "first pair to reach the top tally wins ties")
	assert.Equal(t, finalistSeedA, top.Seed)
	assert.Equal(t, PlayerIDs{"p1", "p4"}, runnerUp.PlayerIDs(), "runner-up shares no player with the top pair")
	assert.Equal(t, finalistSeedB, runnerUp.Seed)
	assert.Equal(t, "Player 2 + Player 3", top.Name)

	require.Len(t, tr.NewMatches, 1)
	final := tr.NewMatches[0]
	assert.Equal(t, MatchStageWinnersFinal, final.Stage)
	assert.Equal(t, finalsBestOf, final.BestOf)
	assert.Equal(t, top.ID, *final.TeamAID)
	assert.Equal(t, runnerUp.ID, *final.TeamBID)
}

func TestFinalizeRoundRobin_MixedRotationForFive(t *testing.T) {
	attendees := testAttendees(5)
	tour := newTestTournament(StageRoundRobin, FormTeams("tour", attendees, TeamModeFair, noShuffle),
		rotationForFive("tour", nil, attendees, 1).Matches)
	tour.SpecialMode = SpecialModeMixedRoundRobin
	for i := range tour.Matches {
		play(t, &tour.Matches[i], [2]int{6, 4})
	}

	tr, err := FinalizeRoundRobin(tour, nil, 1)

	require.NoError(t, err)
	require.NotNil(t, tr)
	assert.Equal(t, PlayerIDs{"p2", "p3"}, tr.NewTeams[0].PlayerIDs())
	assert.Equal(t, PlayerIDs{"p4", "p5"}, tr.NewTeams[1].PlayerIDs())
	assert.Equal(t, "p2 + p3", tr.NewTeams[0].Name, "unknown players fall back to their id")
}

func TestAdvanceBracket_SemifinalsAddLosersFinal(t *testing.T) {
	teams := testTeams(4)
	tour := newTestTournament(StageBracket, teams, directBracket("tour", teams, nil, 3).Matches)
	finish(t, &tour.Matches[0], true)

	assert.Nil(t, AdvanceBracket(tour, 3, 100), "round still in progress")

	finish(t, &tour.Matches[1], false)
	tr := AdvanceBracket(tour, 3, 100)

	require.NotNil(t, tr)
	assert.Empty(t, tr.Stage)
	require.Len(t, tr.NewMatches, 2)
	final, losers := tr.NewMatches[0], tr.NewMatches[1]
	assert.Equal(t, MatchStageBracket, final.Stage)
	assert.Equal(t, 2, final.Round)
	assert.Equal(t, "t1", *final.TeamAID)
	assert.Equal(t, "t4", *final.TeamBID)
	assert.Equal(t, MatchStageLosersFinal, losers.Stage)
	assert.Equal(t, "t2", *losers.TeamAID)
	assert.Equal(t, "t3", *losers.TeamBID)

	tr.Apply(tour)
	assert.Equal(t, StageBracket, tour.Stage)
	assert.Nil(t, AdvanceBracket(tour, 3, 100))

	finish(t, tour.MatchesIn(MatchStageBracket)[2], false)
	tr = AdvanceBracket(tour, 3, 100)

	require.NotNil(t, tr)
	assert.True(t, tr.Completes())
	assert.Empty(t, tr.NewMatches)
	tr.Apply(tour)
	assert.Equal(t, StatusCompleted, tour.Status)
	assert.Equal(t, StageCompleted, tour.Stage)
	assert.Equal(t, "t4", *tour.WinnerTeamID)
	assert.Equal(t, int64(100), *tour.EndedAt)
	assert.False(t, tour.MatchesIn(MatchStageLosersFinal)[0].IsComplete, "the losers final does not hold up completion")
}

func TestAdvanceBracket_EightTeamsConvergeWithOneLosersFinal(t *testing.T) {
	teams := testTeams(8)
	tour := newTestTournament(StageBracket, teams, directBracket("tour", teams, nil, 3).Matches)

	var lastWinner string
	rounds := 0
	for tour.Status == StatusActive {
		rounds++
		require.LessOrEqual(t, rounds, 3, "an eight team bracket needs three rounds")
		var open []*Match
		for _, m := range tour.MatchesIn(MatchStageBracket) {
			if m.Round == rounds && !m.IsComplete {
				open = append(open, m)
			}
		}
		assert.Len(t, open, 8>>rounds, "round %d", rounds)
		for _, m := range open {
			finish(t, m, true)
			lastWinner = *m.WinnerTeamID
		}

		tr := AdvanceBracket(tour, 3, 100)
		require.NotNil(t, tr)
		tr.Apply(tour)

		switch rounds {
		case 1:
			assert.Empty(t, tour.MatchesIn(MatchStageLosersFinal), "quarterfinals have no losers final")
		case 2:
			assert.Len(t, tour.MatchesIn(MatchStageLosersFinal), 1)
		}
	}

	assert.Equal(t, 3, rounds)
	assert.Equal(t, StatusCompleted, tour.Status)
	assert.Equal(t, StageCompleted, tour.Stage)
	require.NotNil(t, tour.WinnerTeamID)
	assert.Equal(t, lastWinner, *tour.WinnerTeamID)
	assert.Equal(t, "t1", *tour.WinnerTeamID)
	assert.Len(t, tour.MatchesIn(MatchStageLosersFinal), 1)
}

func TestAdvanceBracket_OddWinnersGetBye(t *testing.T) {
	teams := testTeams(6)
	tour := newTestTournament(StageBracket, teams, directBracket("tour", teams, nil, 3).Matches)
	for _, m := range tour.MatchesIn(MatchStageBracket) {
		finish(t, m, true)
	}

	tr := AdvanceBracket(tour, 3, 100)

	require.NotNil(t, tr)
	require.Len(t, tr.NewMatches, 2, "three winners, no losers final")
	assert.Equal(t, "t1", *tr.NewMatches[0].TeamAID)
	assert.Equal(t, "t3", *tr.NewMatches[0].TeamBID)
	assert.True(t, tr.NewMatches[1].IsBye())
	assert.Equal(t, "t5", *tr.NewMatches[1].WinnerTeamID)
	tr.Apply(tour)

	finish(t, &tour.Matches[3], false)
	tr = AdvanceBracket(tour, 3, 100)

	require.NotNil(t, tr)
	require.Len(t, tr.NewMatches, 1, "a bye has no loser to send to a losers final")
	assert.Equal(t, 3, tr.NewMatches[0].Round)
	assert.Equal(t, "t3", *tr.NewMatches[0].TeamAID)
	assert.Equal(t, "t5", *tr.NewMatches[0].TeamBID)
}

func TestAdvanceBracket_IgnoresOtherStages(t *testing.T) {
	teams := testTeams(3)
	tour := newTestTournament(StageRoundRobin, teams, fullRoundRobin("tour", teams, nil, 3).Matches)

	assert.Nil(t, AdvanceBracket(tour, 3, 100))
	assert.Nil(t, FinalizeFinals(tour, 100))
}

func TestFinalizeFinals(t *testing.T) {
	teams := testTeams(2)
	teams[0].Seed, teams[1].Seed = finalistSeedA, finalistSeedB
	final := newTeamMatch("tour", MatchStageWinnersFinal, 1, 1, finalsBestOf, &teams[0], &teams[1])
	tour := newTestTournament(StageFinals, teams, []Match{final})

	assert.Nil(t, FinalizeFinals(tour, 100))

	finish(t, &tour.Matches[0], false)
	tr := FinalizeFinals(tour, 100)

	require.NotNil(t, tr)
	assert.Equal(t, StageFinals, tr.From)
	assert.True(t, tr.Completes())
	assert.Equal(t, "t2", *tr.WinnerTeamID)
}
