package badges

import "context"

// Awarder grants achievements earned from tournament results.
type Awarder interface {
	// AwardEligibleBadges grants every badge the player now qualifies for and
	// returns the newly awarded ones. Awarding is idempotent.
	AwardEligibleBadges(ctx context.Context, playerID, tournamentID string) ([]Badge, error)
	ListBadges(ctx context.Context, playerID string) ([]PlayerBadge, error)
}
