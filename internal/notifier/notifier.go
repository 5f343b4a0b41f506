package notifier

import (
	"context"

	"github.com/mauv0809/ladder/internal/badges"
	"github.com/mauv0809/ladder/internal/events"
)

// Notifier announces tournament progress to the club.
// This decouples the rest of the application from the specific notification provider (e.g., Slack).
type Notifier interface {
	SendTournamentStarted(ctx context.Context, event events.TournamentStarted, dryRun bool) error
	SendStageAdvanced(ctx context.Context, event events.StageAdvanced, dryRun bool) error
	SendTournamentCompleted(ctx context.Context, event events.TournamentCompleted, dryRun bool) error
	SendTournamentEnded(ctx context.Context, event events.TournamentEnded, dryRun bool) error
	SendBadgesAwarded(ctx context.Context, playerName string, awarded []badges.Badge, dryRun bool) error
}
