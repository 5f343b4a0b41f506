package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	TournamentsStarted  prometheus.Counter
	TournamentsFinished *prometheus.CounterVec
	GamesRecorded       prometheus.Counter
	StageTransitions    *prometheus.CounterVec
	GameRecordDuration  prometheus.Histogram
	HookFailures        *prometheus.CounterVec
	BadgesAwarded       prometheus.Counter
	SlackNotifSent      prometheus.Counter
	SlackNotifFailed    prometheus.Counter
	StartupTimeSeconds  prometheus.Gauge
}
