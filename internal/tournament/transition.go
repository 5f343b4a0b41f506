package tournament

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mauv0809/ladder/internal/attendance"
)

// finalsBestOf is the series length of the winners and losers finals.
const finalsBestOf = 3

// Transition is a state change computed from a tournament snapshot.
type Transition struct {
	From         Stage
	Stage        Stage
	Status       Status
	PurgeBracket bool
	NewTeams     []Team
	NewMatches   []Match
	WinnerTeamID *string
	EndedAt      *int64
}

// Completes reports whether the transition finishes the tournament.
func (tr *Transition) Completes() bool {
	return tr.Status == StatusCompleted
}

// Apply mutates the snapshot the same way the transition mutates storage.
func (tr *Transition) Apply(t *Tournament) {
	if tr.PurgeBracket {
		kept := t.Matches[:0]
		for _, m := range t.Matches {
			if m.Stage != MatchStageBracket {
				kept = append(kept, m)
			}
		}
		t.Matches = kept
	}
	t.Teams = append(t.Teams, tr.NewTeams...)
	t.Matches = append(t.Matches, tr.NewMatches...)
	if tr.Stage != "" {
		t.Stage = tr.Stage
	}
	if tr.Status != "" {
		t.Status = tr.Status
	}
	if tr.WinnerTeamID != nil {
		t.WinnerTeamID = tr.WinnerTeamID
	}
	if tr.EndedAt != nil {
		t.EndedAt = tr.EndedAt
	}
}

// RankTeams orders teams by wins descending, losses ascending, then seed.
// Seeds must be unique so the order is total.
func RankTeams(teams []Team) ([]Team, error) {
	seen := make(map[int]bool, len(teams))
	for _, team := range teams {
		if seen[team.Seed] {
			return nil, fmt.Errorf("duplicate seed %d: %w", team.Seed, ErrInvalidState)
		}
		seen[team.Seed] = true
	}
	ranked := make([]Team, len(teams))
	copy(ranked, teams)
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if a.Losses != b.Losses {
			return a.Losses < b.Losses
		}
		return a.Seed < b.Seed
	})
	return ranked, nil
}

// largestPowerOfTwo returns the largest power of two not above n, or 0.
func largestPowerOfTwo(n int) int {
	if n < 1 {
		return 0
	}
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}

func allComplete(matches []*Match) bool {
	for _, m := range matches {
		if !m.IsComplete {
			return false
		}
	}
	return true
}

// FinalizeRoundRobin promotes a finished round robin. Standard tournaments
// seed a bracket from the standings; mixed ones send the two best pairs to a
// winners final. A nil transition means nothing changes yet.
func FinalizeRoundRobin(t *Tournament, players map[string]attendance.Attendee, bestOf int) (*Transition, error) {
	if t.Stage != StageRoundRobin {
		return nil, nil
	}
	rr := t.MatchesIn(MatchStageRoundRobin)
	if len(rr) == 0 || !allComplete(rr) {
		return nil, nil
	}
	if t.SpecialMode == SpecialModeMixedRoundRobin {
		return finalizeMixed(t, rr, players), nil
	}

	ranked, err := RankTeams(t.Teams)
	if err != nil {
		return nil, err
	}
	size := largestPowerOfTwo(len(ranked))
	if size < 2 {
		return nil, nil
	}
	return &Transition{
		From:         t.Stage,
		Stage:        StageBracket,
		PurgeBracket: true,
		NewMatches:   pairBracketRound(t.ID, ranked[:size], 1, bestOf),
	}, nil
}

type pairTally struct {
	players PlayerIDs
	wins    int
}

func pairKey(players PlayerIDs) (string, PlayerIDs) {
	sorted := append(PlayerIDs{}, players...)
	sort.Strings(sorted)
	return strings.Join(sorted, ","), sorted
}

// finalizeMixed tallies wins per pair across the rotating rosters. The final
// is the top pair against the best pair sharing no player with it, so nobody
// plays on both sides.
func finalizeMixed(t *Tournament, rr []*Match, players map[string]attendance.Attendee) *Transition {
	tallies := map[string]*pairTally{}
	var order []*pairTally
	add := func(roster PlayerIDs, wins int) {
		if len(roster) != 2 {
			return
		}
		key, sorted := pairKey(roster)
		tally, ok := tallies[key]
		if !ok {
			tally = &pairTally{players: sorted}
			tallies[key] = tally
			order = append(order, tally)
		}
		tally.wins += wins
	}
	for _, m := range rr {
		add(m.TeamAPlayerIDs, m.WinsA)
		add(m.TeamBPlayerIDs, m.WinsB)
	}
	// Stable so first appearance breaks ties.
	sort.SliceStable(order, func(i, j int) bool { return order[i].wins > order[j].wins })
	if len(order) < 2 {
		return nil
	}

	top := order[0]
	var runnerUp *pairTally
	for _, tally := range order[1:] {
		if !tally.players.Contains(top.players[0]) && !tally.players.Contains(top.players[1]) {
			runnerUp = tally
			break
		}
	}
	if runnerUp == nil {
		return nil
	}

	teamA := finalistTeam(t.ID, top.players, finalistSeedA, players)
	teamB := finalistTeam(t.ID, runnerUp.players, finalistSeedB, players)
	return &Transition{
		From:       t.Stage,
		Stage:      StageFinals,
		NewTeams:   []Team{teamA, teamB},
		NewMatches: []Match{newTeamMatch(t.ID, MatchStageWinnersFinal, 1, 1, finalsBestOf, &teamA, &teamB)},
	}
}

func finalistTeam(tournamentID string, pair PlayerIDs, seed int, players map[string]attendance.Attendee) Team {
	lookup := func(id string) attendance.Attendee {
		if p, ok := players[id]; ok {
			return p
		}
		return attendance.Attendee{ID: id, Name: id}
	}
	playerB := pair[1]
	return Team{
		ID:           uuid.NewString(),
		TournamentID: tournamentID,
		Name:         teamName(lookup(pair[0]), lookup(pair[1])),
		Seed:         seed,
		PlayerAID:    pair[0],
		PlayerBID:    &playerB,
	}
}

// AdvanceBracket moves the winners of a finished bracket round on, giving the
// last of an odd number a bye. A lone winner takes the tournament. When the
// finished round was the semifinal the two losers meet in a losers final.
func AdvanceBracket(t *Tournament, bestOf int, now int64) *Transition {
	if t.Stage != StageBracket {
		return nil
	}
	bracket := t.MatchesIn(MatchStageBracket)
	if len(bracket) == 0 {
		return nil
	}
	round := 0
	for _, m := range bracket {
		if m.Round > round {
			round = m.Round
		}
	}
	var current []*Match
	for _, m := range bracket {
		if m.Round == round {
			current = append(current, m)
		}
	}
	if !allComplete(current) {
		return nil
	}
	sort.Slice(current, func(i, j int) bool { return current[i].Slot < current[j].Slot })

	var winners []Team
	for _, m := range current {
		if m.WinnerTeamID == nil {
			continue
		}
		if team, ok := t.Team(*m.WinnerTeamID); ok {
			winners = append(winners, *team)
		}
	}
	switch len(winners) {
	case 0:
		return nil
	case 1:
		return complete(t, winners[0].ID, now)
	}

	tr := &Transition{
		From:       t.Stage,
		NewMatches: pairBracketRound(t.ID, winners, round+1, bestOf),
	}
	if len(current) == 2 && len(t.MatchesIn(MatchStageLosersFinal)) == 0 {
		if losersFinal, ok := losersFinalFor(t, current); ok {
			tr.NewMatches = append(tr.NewMatches, losersFinal)
		}
	}
	return tr
}

func losersFinalFor(t *Tournament, semifinals []*Match) (Match, bool) {
	var losers []*Team
	for _, m := range semifinals {
		if m.LoserTeamID == nil {
			return Match{}, false
		}
		team, ok := t.Team(*m.LoserTeamID)
		if !ok {
			return Match{}, false
		}
		losers = append(losers, team)
	}
	return newTeamMatch(t.ID, MatchStageLosersFinal, 1, 1, finalsBestOf, losers[0], losers[1]), true
}

// FinalizeFinals completes a mixed tournament once its winners final is decided.
func FinalizeFinals(t *Tournament, now int64) *Transition {
	if t.Stage != StageFinals {
		return nil
	}
	finals := t.MatchesIn(MatchStageWinnersFinal)
	if len(finals) == 0 || !finals[0].IsComplete || finals[0].WinnerTeamID == nil {
		return nil
	}
	return complete(t, *finals[0].WinnerTeamID, now)
}

func complete(t *Tournament, winnerTeamID string, now int64) *Transition {
	winner := winnerTeamID
	endedAt := now
	return &Transition{
		From:         t.Stage,
		Stage:        StageCompleted,
		Status:       StatusCompleted,
		WinnerTeamID: &winner,
		EndedAt:      &endedAt,
	}
}
