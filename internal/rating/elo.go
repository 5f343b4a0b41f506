package rating

import "math"

// KFactor bounds how far one game moves a rating.
const KFactor = 32

// Player is a rated participant of a game.
type Player struct {
	ID     string `db:"id"`
	Rating int    `db:"rating"`
}

func teamRating(team []Player) float64 {
	if len(team) == 0 {
		return 0
	}
	sum := 0
	for _, p := range team {
		sum += p.Rating
	}
	return float64(sum) / float64(len(team))
}

// Expected is the probability of team a beating team b.
func Expected(a, b []Player) float64 {
	return 1 / (1 + math.Pow(10, (teamRating(b)-teamRating(a))/400))
}

// Deltas returns the rating change of every player of a two-team game. Both
// teams are rated on their average; each player moves by their team's delta.
func Deltas(teamA, teamB []Player, aWon bool) map[string]int {
	actual := 0.0
	if aWon {
		actual = 1
	}
	delta := int(math.Round(KFactor * (actual - Expected(teamA, teamB))))

	out := make(map[string]int, len(teamA)+len(teamB))
	for _, p := range teamA {
		out[p.ID] = delta
	}
	for _, p := range teamB {
		out[p.ID] = -delta
	}
	return out
}
