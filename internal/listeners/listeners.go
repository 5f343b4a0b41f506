package listeners

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ladder/internal/attendance"
	"github.com/mauv0809/ladder/internal/badges"
	"github.com/mauv0809/ladder/internal/events"
	"github.com/mauv0809/ladder/internal/metrics"
	"github.com/mauv0809/ladder/internal/notifier"
	"golang.org/x/sync/errgroup"
)

// PlayerLookup resolves display names for announcements.
type PlayerLookup interface {
	GetPlayers(ctx context.Context, playerIDs []string) ([]attendance.Attendee, error)
}

// Listeners react to tournament events once they are committed. Every
// delivery backend (in process, Pub/Sub push, Inngest) dispatches through
// Handlers so reactions behave the same wherever they run.
type Listeners struct {
	awarder  badges.Awarder
	notifier notifier.Notifier
	players  PlayerLookup
	metrics  metrics.Metrics
	dryRun   bool
}

func New(awarder badges.Awarder, notifier notifier.Notifier, players PlayerLookup, metrics metrics.Metrics, dryRun bool) *Listeners {
	return &Listeners{
		awarder:  awarder,
		notifier: notifier,
		players:  players,
		metrics:  metrics,
		dryRun:   dryRun,
	}
}

// Handlers returns the handlers for every topic.
func (l *Listeners) Handlers() map[events.EventType][]events.Handler {
	return map[events.EventType][]events.Handler{
		events.EventTournamentStarted:   {l.announceStarted},
		events.EventStageAdvanced:       {l.announceStageAdvanced},
		events.EventTournamentCompleted: {l.awardBadges, l.announceCompleted},
		events.EventTournamentEnded:     {l.announceEnded},
	}
}

// Dispatch runs every handler of a topic and joins their errors.
func (l *Listeners) Dispatch(ctx context.Context, topic events.EventType, data []byte) error {
	handlers, ok := l.Handlers()[topic]
	if !ok {
		return fmt.Errorf("unknown topic %q", topic)
	}
	var errs []error
	for _, h := range handlers {
		if err := h(ctx, data); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d handler(s) failed for %s: %w", len(errs), topic, errs[0])
	}
	return nil
}

// Subscriber is implemented by in-process publishers.
type Subscriber interface {
	Subscribe(topic events.EventType, h events.Handler)
}

// Register subscribes every handler to an in-process publisher.
func (l *Listeners) Register(sub Subscriber) {
	for topic, handlers := range l.Handlers() {
		for _, h := range handlers {
			sub.Subscribe(topic, h)
		}
	}
}

func (l *Listeners) announceStarted(ctx context.Context, data []byte) error {
	var event events.TournamentStarted
	if err := events.ProcessMessage(data, &event); err != nil {
		return err
	}
	return l.notifier.SendTournamentStarted(ctx, event, l.dryRun)
}

func (l *Listeners) announceStageAdvanced(ctx context.Context, data []byte) error {
	var event events.StageAdvanced
	if err := events.ProcessMessage(data, &event); err != nil {
		return err
	}
	return l.notifier.SendStageAdvanced(ctx, event, l.dryRun)
}

func (l *Listeners) announceCompleted(ctx context.Context, data []byte) error {
	var event events.TournamentCompleted
	if err := events.ProcessMessage(data, &event); err != nil {
		return err
	}
	return l.notifier.SendTournamentCompleted(ctx, event, l.dryRun)
}

func (l *Listeners) announceEnded(ctx context.Context, data []byte) error {
	var event events.TournamentEnded
	if err := events.ProcessMessage(data, &event); err != nil {
		return err
	}
	return l.notifier.SendTournamentEnded(ctx, event, l.dryRun)
}

// awardBadges checks every winning player for new badges concurrently.
func (l *Listeners) awardBadges(ctx context.Context, data []byte) error {
	var event events.TournamentCompleted
	if err := events.ProcessMessage(data, &event); err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		awarded = make(map[string][]badges.Badge)
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, playerID := range event.WinnerPlayerIDs {
		g.Go(func() error {
			got, err := l.awarder.AwardEligibleBadges(gctx, playerID, event.TournamentID)
			if err != nil {
				return fmt.Errorf("failed to award badges to %s: %w", playerID, err)
			}
			if len(got) > 0 {
				mu.Lock()
				awarded[playerID] = got
				mu.Unlock()
			}
			return nil
		})
	}
	err := g.Wait()

	total := 0
	for _, got := range awarded {
		total += len(got)
	}
	if total > 0 {
		l.metrics.IncBadgesAwarded(total)
		l.announceBadges(ctx, awarded)
	}
	return err
}

func (l *Listeners) announceBadges(ctx context.Context, awarded map[string][]badges.Badge) {
	ids := make([]string, 0, len(awarded))
	for id := range awarded {
		ids = append(ids, id)
	}
	players, err := l.players.GetPlayers(ctx, ids)
	if err != nil {
		log.Warn("Failed to look up badge winners", "error", err)
		return
	}
	// GetPlayers orders by id, which keeps announcements stable.
	for _, p := range players {
		if err := l.notifier.SendBadgesAwarded(ctx, p.Emoji+p.Name, awarded[p.ID], l.dryRun); err != nil {
			log.Error("Failed to announce badges", "playerID", p.ID, "error", err)
		}
	}
}
