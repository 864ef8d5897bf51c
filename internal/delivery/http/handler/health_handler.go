package handler

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const healthTimeout = 2 * time.Second

// HealthChecker - зависимость, которую можно пропинговать
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthResponse - состояние сервиса и его зависимостей
type HealthResponse struct {
	Status       string            `json:"status"`
	Time         time.Time         `json:"time"`
	Dependencies map[string]string `json:"dependencies"`
}

// HealthHandler проверяет доступность базы и Redis
type HealthHandler struct {
	checks map[string]HealthChecker
	logger *zap.Logger
}

// NewHealthHandler - checks: имя зависимости -> проверка
func NewHealthHandler(checks map[string]HealthChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		checks: checks,
		logger: logger,
	}
}

// Check godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /api/v1/health [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	var (
		mu     sync.Mutex
		status = make(map[string]string, len(h.checks))
	)

	var g errgroup.Group
	for name, check := range h.checks {
		g.Go(func() error {
			err := check.Health(ctx)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				status[name] = "unhealthy"
				h.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
				return err
			}
			status[name] = "healthy"
			return nil
		})
	}

	resp := HealthResponse{
		Status:       "healthy",
		Time:         time.Now(),
		Dependencies: status,
	}

	if err := g.Wait(); err != nil {
		resp.Status = "unhealthy"
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
