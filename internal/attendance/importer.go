package attendance

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ladder/internal/playtomic"
)

// Importer checks players into a session from Playtomic bookings.
type Importer struct {
	store    Store
	client   playtomic.PlaytomicClient
	tenantID string
}

func NewImporter(store Store, client playtomic.PlaytomicClient, tenantID string) *Importer {
	return &Importer{store: store, client: client, tenantID: tenantID}
}

// ImportMatch registers every player of a booking and marks them present.
// It returns the number of players checked in.
func (i *Importer) ImportMatch(ctx context.Context, sessionID, matchID string) (int, error) {
	if _, err := i.store.GetSession(ctx, sessionID); err != nil {
		return 0, err
	}
	booking, err := i.client.GetBooking(ctx, matchID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch booking %s: %w", matchID, err)
	}
	if booking.GameStatus == playtomic.GameStatusCanceled {
		log.Info("Skipping canceled booking", "matchID", matchID)
		return 0, nil
	}

	var players []Player
	for _, p := range booking.Players() {
		if p.UserID == "" {
			continue
		}
		players = append(players, Player{
			ID:     p.UserID,
			Name:   p.Name,
			Rating: RatingFromLevel(p.Level),
		})
	}
	if err := i.store.UpsertPlayers(ctx, players); err != nil {
		return 0, err
	}
	for _, p := range players {
		if err := i.store.SetPresence(ctx, sessionID, p.ID, true); err != nil {
			return 0, err
		}
	}
	log.Info("Imported Playtomic booking", "sessionID", sessionID, "matchID", matchID, "players", len(players))
	return len(players), nil
}

// ImportClubMatches imports every booking with players at the configured
// tenant starting from fromStartDate (format 2006-01-02T15:04:05).
func (i *Importer) ImportClubMatches(ctx context.Context, sessionID, fromStartDate string) (int, error) {
	if i.tenantID == "" {
		return 0, fmt.Errorf("no Playtomic tenant configured")
	}
	summaries, err := i.client.GetMatches(ctx, &playtomic.SearchMatchesParams{
		SportID:       "PADEL",
		HasPlayers:    true,
		Sort:          "start_date,ASC",
		TenantIDs:     []string{i.tenantID},
		FromStartDate: fromStartDate,
	})
	if err != nil {
		return 0, err
	}
	total := 0
	for _, summary := range summaries {
		n, err := i.ImportMatch(ctx, sessionID, summary.MatchID)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}
