package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/mcdev12/wheelspin/go/internal/config"
	"github.com/mcdev12/wheelspin/go/internal/history"
	historydb "github.com/mcdev12/wheelspin/go/internal/history/db"
)

func main() {
	retention := flag.Duration("older-than", 30*24*time.Hour, "delete spin results settled before now minus this duration")
	configPath := flag.String("config", os.Getenv("WHEEL_CONFIG"), "path to the wheel YAML config")
	flag.Parse()

	if *retention <= 0 {
		fmt.Fprintln(os.Stderr, "older-than must be positive")
		os.Exit(2)
	}

	ctx := context.Background()

	// 1) Connect using the server's database settings
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Database.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid database settings: %v\n", err)
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 2) Bind the history queries to the pool
	database := stdlib.OpenDBFromPool(pool)
	defer database.Close()
	app := history.NewApp(history.NewRepository(historydb.New(database)))

	// 3) Prune and report
	cutoff := time.Now().Add(-*retention)
	deleted, err := app.Prune(ctx, cutoff)
	if err != nil {
		fmt.Fprintf(os.Stderr, "prune failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Spin history prune complete: %d deleted (settled before %s)\n", deleted, cutoff.Format(time.RFC3339))
}
