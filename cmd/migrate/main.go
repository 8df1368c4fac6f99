package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/kevin07696/payment-orchestrator/internal/config"
)

const defaultMigrationsDir = "internal/db/migrations"

func main() {
	dir := flag.String("dir", defaultMigrationsDir, "directory with migration files")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("connect to database: %v", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("set dialect: %v", err)
	}

	if err := goose.RunContext(ctx, args[0], db, *dir, args[1:]...); err != nil {
		log.Fatalf("goose %s: %v", args[0], err)
	}
}

func usage() {
	fmt.Print(`Usage: migrate [-dir DIR] COMMAND

Applies schema migrations for the payment orchestrator database.
Connection settings come from the DB_* environment variables.

Commands:
    up                   Apply all pending migrations
    up-by-one            Apply the next pending migration
    down                 Roll back the most recent migration
    down-to VERSION      Roll back to VERSION
    status               Print applied and pending migrations
    version              Print the current schema version
    create NAME sql      Create a new timestamped migration file

Examples:
    migrate up
    migrate status
    migrate create add_refund_tables sql
`)
}
