package http

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/route-dashboard/internal/config"
	"github.com/route-dashboard/internal/delivery/http/handler"
	"github.com/route-dashboard/internal/delivery/http/middleware"
	"github.com/route-dashboard/internal/pkg/errors"
	"github.com/route-dashboard/internal/pkg/utils"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"
)

// Handlers - обработчики, которые регистрирует сервер
type Handlers struct {
	Route    *handler.RouteHandler
	Location *handler.LocationHandler
	Session  *handler.SessionHandler
	Health   *handler.HealthHandler
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app      *fiber.App
	config   *config.Config
	logger   *zap.Logger
	handlers Handlers
}

// NewServer - создание нового HTTP сервера
func NewServer(cfg *config.Config, logger *zap.Logger, handlers Handlers) *Server {
	s := &Server{
		app:      NewApp(logger),
		config:   cfg,
		logger:   logger,
		handlers: handlers,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// NewApp создаёт fiber.App с JSON-кодеком sonic и обработчиком ошибок в формате API
func NewApp(logger *zap.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "Route Dashboard",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  sonic.Marshal,
		JSONDecoder:  sonic.Unmarshal,
		ErrorHandler: customErrorHandler(logger),
	})
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOriginList()))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")
	RegisterRoutes(api, s.handlers)
}

// RegisterRoutes регистрирует эндпоинты API на router
func RegisterRoutes(api fiber.Router, h Handlers) {
	api.Get("/health", h.Health.Check)

	// Routes
	api.Get("/routes", h.Route.List)
	api.Post("/routes", h.Route.Create)
	api.Get("/routes/:slug/locations.geojson", h.Location.GeoJSON)
	api.Get("/routes/:slug/locations", h.Location.ListByRoute)
	api.Get("/routes/:slug/changes", h.Route.Changes)
	api.Post("/routes/:slug/sessions", h.Session.Open)
	api.Get("/routes/:slug", h.Route.Get)
	api.Patch("/routes/:slug", h.Route.Update)
	api.Delete("/routes/:slug", h.Route.Delete)

	// Locations
	api.Get("/locations/check-duplicate", h.Location.CheckDuplicate)
	api.Post("/locations", h.Location.Create)
	api.Put("/locations/:id", h.Location.Update)
	api.Delete("/locations/:id", h.Location.Delete)
	api.Get("/deliveries/suggestions", h.Location.DeliverySuggestions)

	// Edit sessions
	api.Get("/sessions/:id", h.Session.Get)
	api.Delete("/sessions/:id", h.Session.Close)
	api.Post("/sessions/:id/changes", h.Session.Stage)
	api.Delete("/sessions/:id/changes", h.Session.Discard)
	api.Post("/sessions/:id/commit", h.Session.Commit)
	api.Get("/sessions/:id/check-code", h.Session.CheckCode)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - ошибки fiber (404 маршрута, 405, слишком большое тело) в формате API
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if _, ok := errors.As(err); ok {
			return utils.SendError(c, err)
		}

		code := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("HTTP Error",
				zap.String("path", c.Path()),
				zap.Int("status", code),
				zap.Error(err),
			)
			return utils.SendError(c, errors.ErrInternalServer)
		}

		return utils.SendErrorStatus(c, code, errors.New("HTTP_ERROR", err.Error(), code))
	}
}
