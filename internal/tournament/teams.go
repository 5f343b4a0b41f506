package tournament

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/mauv0809/ladder/internal/attendance"
)

// Shuffler permutes n elements through swap, like rand.Shuffle.
type Shuffler func(n int, swap func(i, j int))

// FormTeams pairs attendees into two-player teams. With an odd count one
// attendee is left out: the last one after shuffling for RANDOM, the median
// rating for FAIR. Seeds follow creation order starting at 1.
func FormTeams(tournamentID string, attendees []attendance.Attendee, mode TeamMode, shuffle Shuffler) []Team {
	pool := make([]attendance.Attendee, len(attendees))
	copy(pool, attendees)

	var pairs [][2]attendance.Attendee
	switch mode {
	case TeamModeRandom:
		shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
		for i := 0; i+1 < len(pool); i += 2 {
			pairs = append(pairs, [2]attendance.Attendee{pool[i], pool[i+1]})
		}
	default:
		sort.SliceStable(pool, func(i, j int) bool { return pool[i].Rating > pool[j].Rating })
		for i, j := 0, len(pool)-1; i < j; i, j = i+1, j-1 {
			pairs = append(pairs, [2]attendance.Attendee{pool[i], pool[j]})
		}
	}

	teams := make([]Team, 0, len(pairs))
	for i, pair := range pairs {
		playerB := pair[1].ID
		teams = append(teams, Team{
			ID:           uuid.NewString(),
			TournamentID: tournamentID,
			Name:         teamName(pair[0], pair[1]),
			Seed:         i + 1,
			PlayerAID:    pair[0].ID,
			PlayerBID:    &playerB,
		})
	}
	return teams
}

func teamName(a, b attendance.Attendee) string {
	return fmt.Sprintf("%s%s + %s%s", a.Emoji, a.Name, b.Emoji, b.Name)
}
