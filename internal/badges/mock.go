package badges

import (
	"context"
	"sync"
)

// Mock is a mock Awarder for testing. It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	AwardEligibleBadgesFunc func(playerID, tournamentID string) ([]Badge, error)

	AwardEligibleBadgesCalls []string
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) AwardEligibleBadges(ctx context.Context, playerID, tournamentID string) ([]Badge, error) {
	m.mu.Lock()
	m.AwardEligibleBadgesCalls = append(m.AwardEligibleBadgesCalls, playerID)
	fn := m.AwardEligibleBadgesFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(playerID, tournamentID)
	}
	return nil, nil
}

func (m *Mock) ListBadges(ctx context.Context, playerID string) ([]PlayerBadge, error) {
	return []PlayerBadge{}, nil
}

// Calls returns the players badges were requested for.
func (m *Mock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.AwardEligibleBadgesCalls...)
}
