package db

import (
	"database/sql"
	"embed"
	"fmt"

	"backend-numeneon/internal/config"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var openSQLFn = sql.Open

// Migrate applies every pending migration embedded in the binary.
func Migrate(cfg config.Config) error {
	sqlDB, err := openSQLFn("postgres", cfg.PostgresURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer sqlDB.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(sqlDB, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
