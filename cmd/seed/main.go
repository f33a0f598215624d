// Command seed fills the grid_users table with generated users so the
// server can run with GRID_SOURCE=postgres.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/techbeat/internal/config"
	"github.com/JonMunkholm/techbeat/internal/grid"
	"github.com/JonMunkholm/techbeat/internal/logging"
	"github.com/JonMunkholm/techbeat/internal/source"
)

func main() {
	rows := flag.Int("rows", 50, "number of users to generate")
	seed := flag.Uint64("seed", 0, "generator seed (0 = time based)")
	flag.Parse()

	_ = godotenv.Overload()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if cfg.Database.URL == "" {
		slog.Error("DATABASE_URL is required to seed")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := source.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	users := grid.NewGenerator(*seed).Generate(*rows)

	n, err := source.NewPostgres(pool).Seed(ctx, users)
	if err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
	slog.Info("seeded grid users", "table", source.TableName, "rows", n, "seed", *seed)
}
