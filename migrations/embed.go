// Package migrations встраивает SQL-миграции в бинарник.
package migrations

import (
	"embed"

	"github.com/route-dashboard/internal/repository/postgres"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	postgres.MigrationsFS = migrationsFS
	postgres.MigrationsDir = "."
}
