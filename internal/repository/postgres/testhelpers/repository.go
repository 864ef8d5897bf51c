package testhelpers

import (
	"github.com/jmoiron/sqlx"
	"github.com/route-dashboard/internal/domain/repository"
	"github.com/route-dashboard/internal/repository/postgres"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewRouteRepositoryForTest creates a route repository with test database and logger
func NewRouteRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.RouteRepository {
	return postgres.NewRouteRepository(NewDBForTest(db, logger))
}

// NewLocationRepositoryForTest creates a location repository with test database and logger
func NewLocationRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.LocationRepository {
	return postgres.NewLocationRepository(NewDBForTest(db, logger))
}

// NewChangeLogRepositoryForTest creates a change log repository with test database and logger
func NewChangeLogRepositoryForTest(db *sqlx.DB, logger *zap.Logger) repository.ChangeLogRepository {
	return postgres.NewChangeLogRepository(NewDBForTest(db, logger))
}
