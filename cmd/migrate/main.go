package main

// Run database migrations for the configured store:
//   LOCAL_STORE=postgres DATABASE_URL=... go run ./cmd/migrate
//   LOCAL_STORE=sqlite LOCAL_STORE_PATH=./data/roaster.db go run ./cmd/migrate

import (
	"context"
	"database/sql"
	"log"
	"os"

	"resume-roaster/internal/shared/config"
	"resume-roaster/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()
	opts := db.OptionsFromEnv(db.DefaultMigrateOptions())

	var (
		sqlDB   *sql.DB
		err     error
		migrate func(context.Context, *sql.DB) error
	)
	switch cfg.LocalStoreType {
	case "postgres":
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
		migrate = db.RunMigrations
	case "sqlite":
		sqlDB, err = db.OpenSQLite(ctx, cfg.LocalStorePath, opts)
		migrate = db.RunSQLiteMigrations
	default:
		log.Printf("LOCAL_STORE=%s has no schema to migrate", cfg.LocalStoreType)
		return
	}
	if err != nil {
		log.Printf("failed to connect database: %v", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	if err := migrate(ctx, sqlDB); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
	log.Printf("migrations applied for %s", cfg.LocalStoreType)
}
