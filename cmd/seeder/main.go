package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/ladder/internal/attendance"
	"github.com/mauv0809/ladder/internal/database"
)

const defaultPlayers = 8

type seederConfig struct {
	dbName     string
	primaryURL string
	authToken  string
	players    int
	seed       uint64
}

func loadConfig() seederConfig {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	dbName, ok := os.LookupEnv("DB_NAME")
	if !ok {
		log.Fatalf("Error: Required environment variable DB_NAME is not set.")
	}
	cfg := seederConfig{
		dbName:     dbName,
		primaryURL: os.Getenv("TURSO_PRIMARY_URL"),
		authToken:  os.Getenv("TURSO_AUTH_TOKEN"),
		players:    defaultPlayers,
		seed:       uint64(time.Now().UnixNano()),
	}
	if v, ok := os.LookupEnv("SEED_PLAYERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			log.Fatalf("Error: SEED_PLAYERS must be a positive number, got %q", v)
		}
		cfg.players = n
	}
	if v, ok := os.LookupEnv("SEED"); ok {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			log.Fatalf("Error: SEED must be a number, got %q", v)
		}
		cfg.seed = n
	}
	return cfg
}

func fakePlayers(faker *gofakeit.Faker, n int) []attendance.Player {
	players := make([]attendance.Player, n)
	for i := range players {
		players[i] = attendance.Player{
			ID:     faker.UUID(),
			Name:   faker.FirstName(),
			Emoji:  faker.Emoji(),
			Rating: faker.IntRange(900, 1600),
		}
	}
	return players
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg.dbName, cfg.primaryURL, cfg.authToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	ctx := context.Background()
	store := attendance.New(db)
	faker := gofakeit.New(cfg.seed)

	players := fakePlayers(faker, cfg.players)
	if err := store.UpsertPlayers(ctx, players); err != nil {
		log.Fatalf("Failed to insert players: %s", err)
	}
	log.Info("Inserted players", "count", len(players), "seed", cfg.seed)

	name := fmt.Sprintf("%s night", faker.WeekDay())
	session, err := store.CreateSession(ctx, name, time.Now())
	if err != nil {
		log.Fatalf("Failed to create session: %s", err)
	}
	for _, p := range players {
		if err := store.SetPresence(ctx, session.ID, p.ID, true); err != nil {
			log.Fatalf("Failed to check in player %s: %s", p.Name, err)
		}
	}
	log.Info("Seeded session", "sessionID", session.ID, "name", session.Name, "attendees", len(players))
}
