package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"delivery-board-service/internal/adapters/calendarapi"
	"delivery-board-service/internal/adapters/snapshot"
	"delivery-board-service/internal/api"
	"delivery-board-service/internal/api/handlers"
	"delivery-board-service/internal/board"
	"delivery-board-service/internal/config"
	"delivery-board-service/internal/drag"
	"delivery-board-service/internal/platform/db"
	"delivery-board-service/internal/ports"
	"delivery-board-service/internal/syncer"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires the board store, drag coordinator, calendar API client, local
// snapshot store, and sync adapter behind the HTTP surface.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	apiURL := os.Getenv("CALENDAR_API_URL")
	if strings.TrimSpace(apiURL) == "" {
		log.Fatal("CALENDAR_API_URL is required")
	}
	apiKey := os.Getenv("CALENDAR_API_KEY")
	port := config.Get("PORT", "8080")

	database, local, err := openSnapshotStore()
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	client, err := calendarapi.NewClient(apiURL, apiKey)
	if err != nil {
		log.Fatal(err)
	}

	store := board.NewStore()
	drags := drag.NewCoordinator(store)
	notices := &handlers.Notices{}

	adapter := syncer.New(syncer.Config{
		Store:    store,
		Drags:    drags,
		Source:   client,
		Writer:   client,
		Local:    local,
		Interval: pollInterval(),
		Notify:   notices.Add,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go adapter.Run(ctx)

	router := api.NewRouter(store, drags, adapter, notices)

	log.Printf("Server listening addr=:%s", port)
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openSnapshotStore picks Postgres when DATABASE_URL is set, falling back
// to a local SQLite file, and prepares the schema either way.
func openSnapshotStore() (*sql.DB, ports.SnapshotStore, error) {
	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		database, err := db.OpenPostgres(databaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := snapshot.InitSchema(database); err != nil {
			database.Close()
			return nil, nil, err
		}
		return database, snapshot.NewSQLSnapshotStore(database), nil
	}

	dbPath := config.Get("DB_PATH", "data/board.db")
	database, err := db.OpenSqlite(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := snapshot.InitSchema(database); err != nil {
		database.Close()
		return nil, nil, err
	}
	return database, snapshot.NewSqliteSnapshotStore(database), nil
}

func pollInterval() time.Duration {
	raw := config.Get("POLL_INTERVAL", "")
	if raw == "" {
		return syncer.DefaultPollInterval
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("invalid POLL_INTERVAL %q, using default", raw)
		return syncer.DefaultPollInterval
	}
	return d
}
