package playtomic

// SearchMatchesParams narrows a match search at a club.
type SearchMatchesParams struct {
	SportID       string
	HasPlayers    bool
	Sort          string
	TenantIDs     []string
	FromStartDate string
}

// MatchSummary is a search hit; the roster needs a separate lookup.
type MatchSummary struct {
	MatchID string
	OwnerID *string
}

// GameStatus is the play state Playtomic reports for a booking.
type GameStatus string

const (
	GameStatusPending    GameStatus = "PENDING"
	GameStatusPlayed     GameStatus = "PLAYED"
	GameStatusCanceled   GameStatus = "CANCELED"
	GameStatusWaitingFor GameStatus = "WAITING_FOR"
	GameStatusExpired    GameStatus = "EXPIRED"
	GameStatusUnknown    GameStatus = "UNKNOWN"
)

// Booking is a court booking with the players registered for it.
type Booking struct {
	MatchID      string
	OwnerID      string
	Start        int64
	ResourceName string
	GameStatus   GameStatus
	Teams        []Team
}

// Players flattens the roster of every team.
func (b Booking) Players() []Player {
	var players []Player
	for _, team := range b.Teams {
		players = append(players, team.Players...)
	}
	return players
}

type Team struct {
	ID      string
	Players []Player
}

type Player struct {
	UserID string
	Name   string
	Level  float64
}

type bookingResponse struct {
	OwnerID      string         `json:"owner_id"`
	StartDate    string         `json:"start_date"`
	GameStatus   string         `json:"game_status"`
	ResourceName string         `json:"resource_name"`
	Teams        []teamResponse `json:"teams"`
}

type teamResponse struct {
	TeamID  string           `json:"team_id"`
	Players []playerResponse `json:"players"`
}

type playerResponse struct {
	UserID     string   `json:"user_id"`
	Name       string   `json:"name"`
	LevelValue *float64 `json:"level_value"`
}
