// Package db holds the schema migrations and the goose runner used by
// the API binary's migrate subcommand and by startup auto-migration.
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

func open(databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	return db, nil
}

// MigrateUp applies all pending migrations.
func MigrateUp(ctx context.Context, databaseURL string) error {
	db, err := open(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()
	return goose.UpContext(ctx, db, migrationsDir)
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, databaseURL string) error {
	db, err := open(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()
	return goose.DownContext(ctx, db, migrationsDir)
}

// MigrateStatus prints the applied/pending state of each migration.
func MigrateStatus(ctx context.Context, databaseURL string) error {
	db, err := open(databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()
	return goose.StatusContext(ctx, db, migrationsDir)
}
