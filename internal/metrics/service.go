package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		TournamentsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_tournaments_started_total",
			Help: "The total number of tournaments set up.",
		}),
		TournamentsFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ladder_tournaments_finished_total",
			Help: "The total number of tournaments that reached a terminal status.",
		}, []string{"status"}),
		GamesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_games_recorded_total",
			Help: "The total number of tournament games recorded.",
		}),
		StageTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ladder_stage_transitions_total",
			Help: "The total number of tournament stage transitions.",
		}, []string{"from", "to"}),
		GameRecordDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ladder_game_record_duration_seconds",
			Help:    "The duration of recording a game including stage transitions.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		HookFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ladder_hook_failures_total",
			Help: "The total number of post-commit hooks that failed.",
		}, []string{"topic"}),
		BadgesAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_badges_awarded_total",
			Help: "The total number of badges awarded to players.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ladder_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.TournamentsStarted,
		s.TournamentsFinished,
		s.GamesRecorded,
		s.StageTransitions,
		s.GameRecordDuration,
		s.HookFailures,
		s.BadgesAwarded,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncTournamentsStarted() {
	s.TournamentsStarted.Inc()
}

func (s *Service) IncTournamentsFinished(status string) {
	s.TournamentsFinished.WithLabelValues(status).Inc()
}

func (s *Service) IncGamesRecorded() {
	s.GamesRecorded.Inc()
}

func (s *Service) IncStageTransitions(from, to string) {
	s.StageTransitions.WithLabelValues(from, to).Inc()
}

func (s *Service) ObserveGameRecordDuration(duration float64) {
	s.GameRecordDuration.Observe(duration)
}

func (s *Service) IncHookFailures(topic string) {
	s.HookFailures.WithLabelValues(topic).Inc()
}

func (s *Service) IncBadgesAwarded(count int) {
	s.BadgesAwarded.Add(float64(count))
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
