package attendance

import "errors"

// DefaultRating is given to players that join without a known level.
const DefaultRating = 1000

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPlayerNotFound  = errors.New("player not found")
)

// Session is one evening of play.
type Session struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	StartsAt  int64  `db:"starts_at" json:"startsAt"`
	CreatedAt int64  `db:"created_at" json:"createdAt"`
}

// Player is a registered club member.
type Player struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Emoji  string `db:"emoji" json:"emoji"`
	Rating int    `db:"rating" json:"rating"`
}

// Attendee is a player present at a session, as seen when a tournament is set up.
type Attendee struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Emoji  string `db:"emoji" json:"emoji"`
	Rating int    `db:"rating" json:"rating"`
}

// RatingFromLevel converts a Playtomic level (0-7) into an initial rating.
func RatingFromLevel(level float64) int {
	if level <= 0 {
		return DefaultRating
	}
	return DefaultRating + int(level*100)
}
