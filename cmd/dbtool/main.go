package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"strings"

	"delivery-board-service/internal/adapters/snapshot"
	"delivery-board-service/internal/config"
	"delivery-board-service/internal/platform/db"
	"delivery-board-service/internal/ports"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// dbtool prepares the local snapshot database: schema init plus an
// optional board seed for environments without a reachable calendar API.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	var (
		database *sql.DB
		store    ports.SnapshotStore
		err      error
	)

	if databaseURL := os.Getenv("DATABASE_URL"); strings.TrimSpace(databaseURL) != "" {
		database, err = db.OpenPostgres(databaseURL)
		if err != nil {
			log.Fatal(err)
		}
		store = snapshot.NewSQLSnapshotStore(database)
	} else {
		dbPath := config.Get("DB_PATH", "data/board.db")
		database, err = db.OpenSqlite(dbPath)
		if err != nil {
			log.Fatal(err)
		}
		store = snapshot.NewSqliteSnapshotStore(database)
	}
	defer database.Close()

	log.Println("Initializing database schema...")
	if err := snapshot.InitSchema(database); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	seedPath := config.Get("SEED_PATH", "")
	if seedPath == "" {
		return
	}

	log.Println("Seeding board snapshot...")
	if err := snapshot.SeedFromJSON(context.Background(), store, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
