package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                  sync.Mutex
	tournamentsStarted  int
	tournamentsFinished map[string]int
	gamesRecorded       int
	stageTransitions    []string
	recordDurations     []float64
	hookFailures        map[string]int
	badgesAwarded       int
	slackNotifSent      int
	slackNotifFailed    int
	startupTime         float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		tournamentsFinished: make(map[string]int),
		hookFailures:        make(map[string]int),
	}
}

func (m *Mock) IncTournamentsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tournamentsStarted++
}

func (m *Mock) IncTournamentsFinished(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tournamentsFinished[status]++
}

func (m *Mock) IncGamesRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamesRecorded++
}

func (m *Mock) IncStageTransitions(from, to string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stageTransitions = append(m.stageTransitions, from+"->"+to)
}

func (m *Mock) ObserveGameRecordDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordDurations = append(m.recordDurations, duration)
}

func (m *Mock) IncHookFailures(topic string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hookFailures[topic]++
}

func (m *Mock) IncBadgesAwarded(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.badgesAwarded += count
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// TournamentsStarted returns the number of times IncTournamentsStarted was called.
func (m *Mock) TournamentsStarted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tournamentsStarted
}

// TournamentsFinished returns how many tournaments finished with the status.
func (m *Mock) TournamentsFinished(status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tournamentsFinished[status]
}

func (m *Mock) GamesRecorded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gamesRecorded
}

// StageTransitions returns the recorded transitions as "FROM->TO".
func (m *Mock) StageTransitions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.stageTransitions...)
}

func (m *Mock) HookFailures(topic string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.hookFailures[topic]
}

func (m *Mock) BadgesAwarded() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.badgesAwarded
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
