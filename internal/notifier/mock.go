package notifier

import (
	"context"
	"sync"

	"github.com/mauv0809/ladder/internal/badges"
	"github.com/mauv0809/ladder/internal/events"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Call records
	SendTournamentStartedCalls   []events.TournamentStarted
	SendStageAdvancedCalls       []events.StageAdvanced
	SendTournamentCompletedCalls []events.TournamentCompleted
	SendTournamentEndedCalls     []events.TournamentEnded
	SendBadgesAwardedCalls       []BadgesAwardedCall

	// Err is returned from every send when set.
	Err error
}

type BadgesAwardedCall struct {
	PlayerName string
	Badges     []badges.Badge
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendTournamentStartedCalls = nil
	m.SendStageAdvancedCalls = nil
	m.SendTournamentCompletedCalls = nil
	m.SendTournamentEndedCalls = nil
	m.SendBadgesAwardedCalls = nil
}

func (m *Mock) SendTournamentStarted(ctx context.Context, event events.TournamentStarted, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendTournamentStartedCalls = append(m.SendTournamentStartedCalls, event)
	return m.Err
}

func (m *Mock) SendStageAdvanced(ctx context.Context, event events.StageAdvanced, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendStageAdvancedCalls = append(m.SendStageAdvancedCalls, event)
	return m.Err
}

func (m *Mock) SendTournamentCompleted(ctx context.Context, event events.TournamentCompleted, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendTournamentCompletedCalls = append(m.SendTournamentCompletedCalls, event)
	return m.Err
}

func (m *Mock) SendTournamentEnded(ctx context.Context, event events.TournamentEnded, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendTournamentEndedCalls = append(m.SendTournamentEndedCalls, event)
	return m.Err
}

func (m *Mock) SendBadgesAwarded(ctx context.Context, playerName string, awarded []badges.Badge, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendBadgesAwardedCalls = append(m.SendBadgesAwardedCalls, BadgesAwardedCall{PlayerName: playerName, Badges: awarded})
	return m.Err
}

// BadgeCalls returns a copy of the badge announcements, safe to read while
// listeners are still running.
func (m *Mock) BadgeCalls() []BadgesAwardedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]BadgesAwardedCall(nil), m.SendBadgesAwardedCalls...)
}
