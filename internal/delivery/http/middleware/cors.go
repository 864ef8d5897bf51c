package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS - middleware для настройки Cross-Origin Resource Sharing.
// Пустой список origins разрешает любой origin без credentials.
func CORS(origins []string) fiber.Handler {
	cfg := cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Accept,Accept-Language,X-Request-ID",
		AllowCredentials: true,
	}
	if len(origins) == 0 {
		cfg.AllowOrigins = "*"
		cfg.AllowCredentials = false
	}
	return cors.New(cfg)
}
