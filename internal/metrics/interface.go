package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncTournamentsStarted()
	IncTournamentsFinished(status string)
	IncGamesRecorded()
	IncStageTransitions(from, to string)
	ObserveGameRecordDuration(duration float64)
	IncHookFailures(topic string)
	IncBadgesAwarded(count int)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
