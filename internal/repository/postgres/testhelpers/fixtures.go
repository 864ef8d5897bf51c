package testhelpers

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/route-dashboard/internal/domain"
)

// SeedRoute вставляет маршрут и возвращает его ID
func SeedRoute(ctx context.Context, db *sqlx.DB, name, slug string) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx,
		"INSERT INTO routes (name, slug) VALUES ($1, $2) RETURNING id", name, slug).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("seed route %s: %w", slug, err)
	}
	return id, nil
}

// SeedLocation вставляет точку с минимальным набором полей и возвращает её ID
func SeedLocation(ctx context.Context, db *sqlx.DB, routeID int64, code int, mode *domain.PowerMode) (int64, error) {
	var id int64
	err := db.QueryRowContext(ctx, `
		INSERT INTO locations (code, location, delivery, lat, lng, power_mode, route_id)
		VALUES ($1, $2, 'Daily', 3.139, 101.6869, $3, $4)
		RETURNING id`,
		code, fmt.Sprintf("Machine %d", code), mode, routeID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("seed location %d: %w", code, err)
	}
	return id, nil
}
