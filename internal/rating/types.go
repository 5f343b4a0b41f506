package rating

// Game is a scored game between two rosters.
type Game struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"sessionId"`
	TeamA     playerIDs `db:"team_a_player_ids" json:"teamA"`
	TeamB     playerIDs `db:"team_b_player_ids" json:"teamB"`
	ScoreA    int       `db:"score_a" json:"scoreA"`
	ScoreB    int       `db:"score_b" json:"scoreB"`
	CreatedAt int64     `db:"created_at" json:"createdAt"`
}

// Change is one player's rating movement from one game.
type Change struct {
	GameID      string `db:"game_id" json:"gameId"`
	PlayerID    string `db:"player_id" json:"playerId"`
	Delta       int    `db:"delta" json:"delta"`
	RatingAfter int    `db:"rating_after" json:"ratingAfter"`
}
