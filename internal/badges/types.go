package badges

// Badge is an achievement a player keeps once earned.
type Badge string

const (
	BadgeFirstTitle   Badge = "FIRST_TITLE"
	BadgeHatTrick     Badge = "HAT_TRICK"
	BadgeLadderLegend Badge = "LADDER_LEGEND"
)

// titleThresholds maps a badge to the tournament wins it takes.
var titleThresholds = []struct {
	Badge  Badge
	Titles int
}{
	{BadgeFirstTitle, 1},
	{BadgeHatTrick, 3},
	{BadgeLadderLegend, 10},
}

// PlayerBadge is a badge held by a player.
type PlayerBadge struct {
	PlayerID     string  `db:"player_id" json:"playerId"`
	Badge        Badge   `db:"badge" json:"badge"`
	TournamentID *string `db:"tournament_id" json:"tournamentId"`
	AwardedAt    int64   `db:"awarded_at" json:"awardedAt"`
}
