package tournament

import (
	"github.com/google/uuid"
	"github.com/mauv0809/ladder/internal/attendance"
)

// Plan is the opening stage of a tournament and its matches.
type Plan struct {
	Stage   Stage
	Matches []Match
}

// planStrategy builds the opening matches for one tournament shape.
type planStrategy func(tournamentID string, teams []Team, attendees []attendance.Attendee, bestOf int) Plan

// DeriveSpecialMode decides whether a group is small enough for the mixed round robin.
func DeriveSpecialMode(attendeeCount, teamCount int) SpecialMode {
	if attendeeCount == 5 || teamCount == 2 {
		return SpecialModeMixedRoundRobin
	}
	return SpecialModeNone
}

// PlanInitialStage picks the opening format and emits its matches.
func PlanInitialStage(tournamentID string, teams []Team, attendees []attendance.Attendee, special SpecialMode, bestOf int) Plan {
	return selectStrategy(teams, attendees, special)(tournamentID, teams, attendees, bestOf)
}

func selectStrategy(teams []Team, attendees []attendance.Attendee, special SpecialMode) planStrategy {
	switch {
	case special == SpecialModeMixedRoundRobin && len(attendees) == 5:
		return rotationForFive
	case special == SpecialModeMixedRoundRobin && len(teams) == 2:
		return mixedPartitions
	case len(teams)%2 == 1:
		return fullRoundRobin
	default:
		return directBracket
	}
}

// rotationForFive sits one attendee out per round; the other four play first
// two against last two in rotated order.
func rotationForFive(tournamentID string, _ []Team, attendees []attendance.Attendee, bestOf int) Plan {
	n := len(attendees)
	matches := make([]Match, 0, n)
	for r := 0; r < n; r++ {
		rotated := make(PlayerIDs, 0, n-1)
		for k := 1; k < n; k++ {
			rotated = append(rotated, attendees[(r+k)%n].ID)
		}
		m := newAdHocMatch(tournamentID, MatchStageRoundRobin, r+1, 1, bestOf, rotated[:2], rotated[2:4])
		m.Metadata = MatchMetadata{Format: formatRotation, SittingOutPlayerID: attendees[r].ID}
		matches = append(matches, m)
	}
	return Plan{Stage: StageRoundRobin, Matches: matches}
}

// mixedPartitions plays the three ways of splitting two teams' players into pairs.
func mixedPartitions(tournamentID string, teams []Team, _ []attendance.Attendee, bestOf int) Plan {
	a, b := teams[0].PlayerIDs(), teams[1].PlayerIDs()
	splits := [][2]PlayerIDs{
		{{a[0], a[1]}, {b[0], b[1]}},
		{{a[0], b[0]}, {a[1], b[1]}},
		{{a[0], b[1]}, {a[1], b[0]}},
	}
	matches := make([]Match, 0, len(splits))
	for i, split := range splits {
		m := newAdHocMatch(tournamentID, MatchStageRoundRobin, i+1, 1, bestOf, split[0], split[1])
		m.Metadata = MatchMetadata{Format: formatPartitions}
		matches = append(matches, m)
	}
	return Plan{Stage: StageRoundRobin, Matches: matches}
}

// fullRoundRobin plays every pair of teams once. The slot encodes the pair.
func fullRoundRobin(tournamentID string, teams []Team, _ []attendance.Attendee, bestOf int) Plan {
	var matches []Match
	for i := 0; i < len(teams); i++ {
		for j := i + 1; j < len(teams); j++ {
			matches = append(matches, newTeamMatch(tournamentID, MatchStageRoundRobin, 1, i*100+j, bestOf, &teams[i], &teams[j]))
		}
	}
	return Plan{Stage: StageRoundRobin, Matches: matches}
}

func directBracket(tournamentID string, teams []Team, _ []attendance.Attendee, bestOf int) Plan {
	return Plan{Stage: StageBracket, Matches: pairBracketRound(tournamentID, teams, 1, bestOf)}
}

// pairBracketRound pairs teams in order (1v2, 3v4, ...). An unpaired last team
// receives a bye.
func pairBracketRound(tournamentID string, teams []Team, round, bestOf int) []Match {
	var matches []Match
	slot := 1
	for i := 0; i < len(teams); i += 2 {
		if i+1 < len(teams) {
			matches = append(matches, newTeamMatch(tournamentID, MatchStageBracket, round, slot, bestOf, &teams[i], &teams[i+1]))
		} else {
			matches = append(matches, newBye(tournamentID, round, slot, bestOf, &teams[i]))
		}
		slot++
	}
	return matches
}

func newTeamMatch(tournamentID string, stage MatchStage, round, slot, bestOf int, a, b *Team) Match {
	aID, bID := a.ID, b.ID
	return Match{
		ID:             uuid.NewString(),
		TournamentID:   tournamentID,
		Stage:          stage,
		Round:          round,
		Slot:           slot,
		BestOf:         bestOf,
		TeamAID:        &aID,
		TeamBID:        &bID,
		TeamAPlayerIDs: a.PlayerIDs(),
		TeamBPlayerIDs: b.PlayerIDs(),
	}
}

func newAdHocMatch(tournamentID string, stage MatchStage, round, slot, bestOf int, a, b PlayerIDs) Match {
	return Match{
		ID:             uuid.NewString(),
		TournamentID:   tournamentID,
		Stage:          stage,
		Round:          round,
		Slot:           slot,
		BestOf:         bestOf,
		TeamAPlayerIDs: append(PlayerIDs{}, a...),
		TeamBPlayerIDs: append(PlayerIDs{}, b...),
	}
}

// newBye advances a team without play.
func newBye(tournamentID string, round, slot, bestOf int, team *Team) Match {
	id := team.ID
	winner := team.ID
	return Match{
		ID:             uuid.NewString(),
		TournamentID:   tournamentID,
		Stage:          MatchStageBracket,
		Round:          round,
		Slot:           slot,
		BestOf:         bestOf,
		TeamAID:        &id,
		TeamAPlayerIDs: team.PlayerIDs(),
		TeamBPlayerIDs: PlayerIDs{},
		IsComplete:     true,
		WinnerTeamID:   &winner,
	}
}
