package playtomic

import "context"

// PlaytomicClient looks up club bookings and their rosters.
type PlaytomicClient interface {
	GetMatches(ctx context.Context, params *SearchMatchesParams) ([]MatchSummary, error)
	GetBooking(ctx context.Context, matchID string) (Booking, error)
}
