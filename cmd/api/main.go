package main

// @title Route Dashboard API
// @version 1.0.0
// @description Сервис планирования маршрутов доставки: маршруты, точки с кодами и расписанием питания,
// @description сессии редактирования с буферизованной фиксацией изменений.
// @description
// @description Основные возможности:
// @description - Управление маршрутами и их точками
// @description - Вычисление активности и приоритета точек по правилам расписания
// @description - Проверка дубликатов кодов с учётом несохранённых изменений
// @description - GeoJSON выгрузка точек маршрута для карты

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/route-dashboard/docs/swagger"
	"github.com/route-dashboard/internal/config"
	httpDelivery "github.com/route-dashboard/internal/delivery/http"
	"github.com/route-dashboard/internal/delivery/http/handler"
	"github.com/route-dashboard/internal/domain"
	"github.com/route-dashboard/internal/pkg/logger"
	"github.com/route-dashboard/internal/repository/cache"
	"github.com/route-dashboard/internal/repository/postgres"
	redisRepo "github.com/route-dashboard/internal/repository/redis"
	"github.com/route-dashboard/internal/usecase"
	_ "github.com/route-dashboard/migrations"
	"go.uber.org/zap"
)

// sessionJanitorInterval - период очистки простаивающих сессий
const sessionJanitorInterval = time.Minute

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Route Dashboard")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("timezone", cfg.Schedule.Timezone),
	)

	// 3. Connect to PostgreSQL
	db, err := postgres.New(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}()

	if cfg.Database.AutoMigrate {
		migrateCtx, migrateCancel := context.WithTimeout(context.Background(), time.Minute)
		err := db.Migrate(migrateCtx)
		migrateCancel()
		if err != nil {
			log.Fatal("Failed to apply migrations", zap.Error(err))
		}
	}

	// 4. Connect to Redis
	redisClient, err := cache.NewRedis(&cfg.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	// 5. Health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		log.Fatal("PostgreSQL health check failed", zap.Error(err))
	}

	if err := redisClient.Health(ctx); err != nil {
		log.Fatal("Redis health check failed", zap.Error(err))
	}

	log.Info("All connections healthy")

	// 6. Initialize Repositories
	routeRepo := postgres.NewRouteRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	changeLogRepo := postgres.NewChangeLogRepository(db)
	cacheRepo := cache.NewCacheRepository(redisClient)
	streamRepo := redisRepo.NewStreamRepository(redisClient.Client(), log)

	log.Info("Repositories initialized")

	// 7. Initialize Use Cases
	tz, err := cfg.Schedule.LoadLocation()
	if err != nil {
		log.Fatal("Invalid schedule timezone", zap.Error(err))
	}
	clock := domain.SystemClock{Location: tz}

	locationUC := usecase.NewLocationUseCase(
		locationRepo,
		routeRepo,
		cacheRepo,
		streamRepo,
		clock,
		cfg.Cache.RouteLocationsTTL,
		log,
	)

	routeUC := usecase.NewRouteUseCase(
		routeRepo,
		locationRepo,
		changeLogRepo,
		cacheRepo,
		clock,
		log,
	)

	changeLogUC := usecase.NewChangeLogUseCase(changeLogRepo, routeRepo, log)

	sessionUC := usecase.NewSessionUseCase(
		locationUC,
		routeRepo,
		clock,
		cfg.Session.DuplicateCheckDebounce,
		cfg.Session.IdleTTL,
		log,
	)

	log.Info("Use cases initialized")

	// 8. Initialize HTTP Handlers
	handlers := httpDelivery.Handlers{
		Route:    handler.NewRouteHandler(routeUC, changeLogUC, log),
		Location: handler.NewLocationHandler(locationUC, log),
		Session:  handler.NewSessionHandler(sessionUC, log),
		Health: handler.NewHealthHandler(map[string]handler.HealthChecker{
			"postgres": db,
			"redis":    redisClient,
		}, log),
	}

	log.Info("HTTP handlers initialized")

	// 9. Initialize HTTP Server
	server := httpDelivery.NewServer(cfg, log, handlers)

	// 10. Start session janitor and server
	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	go sessionUC.StartJanitor(janitorCtx, sessionJanitorInterval)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")
	stopJanitor()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	if open := sessionUC.Count(); open > 0 {
		log.Warn("Discarding open edit sessions", zap.Int("sessions", open))
	}

	log.Info("Server stopped successfully")
}
