package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrations embed.FS

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// Migrate brings the schema up to date. PostgreSQL uses the versioned goose
// migrations; SQLite is created from the gorm models.
func Migrate(ctx context.Context, db *gorm.DB, driver string, models ...any) error {
	if driver != DriverPostgres {
		if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		slog.Info("schema migrated", "driver", driver, "mode", "auto")
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, sqlDB, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	slog.Info("schema migrated", "driver", driver, "mode", "goose")
	return nil
}
