package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/inngest/inngestgo"
	"github.com/mauv0809/ladder/internal/attendance"
	"github.com/mauv0809/ladder/internal/badges"
	"github.com/mauv0809/ladder/internal/config"
	"github.com/mauv0809/ladder/internal/database"
	"github.com/mauv0809/ladder/internal/events"
	server "github.com/mauv0809/ladder/internal/http"
	"github.com/mauv0809/ladder/internal/inngest"
	"github.com/mauv0809/ladder/internal/listeners"
	"github.com/mauv0809/ladder/internal/metrics"
	"github.com/mauv0809/ladder/internal/notifier/slack"
	"github.com/mauv0809/ladder/internal/playtomic"
	"github.com/mauv0809/ladder/internal/rating"
	"github.com/mauv0809/ladder/internal/tournament"
)

func main() {
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	dbInitDuration := time.Since(startTime)
	log.Info("Database initialization time recorded", "duration_ms", dbInitDuration.Milliseconds())
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer func() {
		log.Info("Closing database connection")
		dbTeardown()
	}()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()
	people := attendance.New(db)
	awarder := badges.New(db)
	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	if cfg.Slack.DryRun() {
		log.Warn("No Slack token configured, notifications run dry")
	}
	handlers := listeners.New(awarder, notifier, people, metricsSvc, cfg.Slack.DryRun())

	var (
		publisher      events.Publisher
		inngestHandler http.Handler
	)
	switch cfg.Events.Backend {
	case config.EventsBackendPubSub:
		client, err := events.NewPubSub(context.Background(), cfg.ProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize Pub/Sub: %s", err)
		}
		defer client.Close()
		publisher = client
	case config.EventsBackendInngest:
		options := inngestgo.ClientOpts{
			AppID:      cfg.Inngest.AppID,
			SigningKey: &cfg.Inngest.SigningKey,
			EventKey:   &cfg.Inngest.EventKey,
			Dev:        &cfg.Inngest.Dev,
		}
		inngestProvider, err := inngestgo.NewClient(options)
		if err != nil {
			log.Fatalf("Failed to initialize inngest: %s", err)
		}
		inngestClient, err := inngest.New(inngestProvider, handlers)
		if err != nil {
			log.Fatalf("Failed to register inngest functions: %s", err)
		}
		publisher = inngestClient
		inngestHandler = inngestClient.Serve()
	default:
		local := events.NewLocal()
		local.OnError(func(topic events.EventType, err error) {
			metricsSvc.IncHookFailures(string(topic))
		})
		handlers.Register(local)
		publisher = local
	}
	log.Info("Events backend ready", "backend", cfg.Events.Backend)

	tournaments := tournament.NewService(tournament.NewStore(db), people, rating.New(), publisher, metricsSvc, cfg.Tournament.BestOf)
	importer := attendance.NewImporter(people, playtomic.NewClient(), cfg.TenantID)

	s := server.NewServer(&server.Server{
		Tournaments:    tournaments,
		Attendance:     people,
		Importer:       importer,
		Badges:         awarder,
		Dispatcher:     handlers,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		InngestHandler: inngestHandler,
	})

	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: s,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}
