package testhelpers

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/route-dashboard/internal/repository/postgres"
	_ "github.com/route-dashboard/migrations"
	"go.uber.org/zap"
)

// ApplyMigrations применяет встроенные миграции к тестовой базе
func ApplyMigrations(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	return postgres.NewDBForTest(db, logger).Migrate(ctx)
}
