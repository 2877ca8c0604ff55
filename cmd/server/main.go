package main

import (
	"context"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/resume-analyzer/internal/cache"
	"github.com/fadilmartias/resume-analyzer/internal/config"
	"github.com/fadilmartias/resume-analyzer/internal/domain/fiber/handler"
	applogger "github.com/fadilmartias/resume-analyzer/internal/logger"
	"github.com/fadilmartias/resume-analyzer/internal/middleware"
	"github.com/fadilmartias/resume-analyzer/internal/model"
	"github.com/fadilmartias/resume-analyzer/internal/repository"
	"github.com/fadilmartias/resume-analyzer/internal/service"
	"github.com/fadilmartias/resume-analyzer/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		applogger.Warn().Msg("Could not load .env file")
	}

	logConfig := config.LoadLoggerConfig()
	applogger.Init(applogger.Config{
		Level:  logConfig.Level,
		Format: logConfig.Format,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appConfig := config.LoadAppConfig()

	db := ConnectDB()
	analysisCache := ConnectCache(ctx)
	renderer := service.NewChromedpRenderer(config.LoadPDFConfig())

	uc := usecase.NewAnalysisUsecase(repository.NewAnalysisRepository(db), analysisCache, renderer)
	analysisHandler := handler.NewAnalysisHandler(uc)

	app := fiber.New(fiber.Config{
		AppName:      appConfig.Name,
		ErrorHandler: handler.ErrorHandler,
		BodyLimit:    8 * 1024 * 1024,
	})
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // 1
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New(healthcheck.Config{
		ReadinessProbe: func(c *fiber.Ctx) bool {
			return uc.Ready(c.UserContext())
		},
	}))

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	analysisHandler.RegisterRoutes(app)

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				applogger.Debug().Int("goroutines", runtime.NumGoroutine()).Msg("runtime stats")
			}
		}
	}()

	go func() {
		<-ctx.Done()
		applogger.Info().Msg("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			applogger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	applogger.Info().Str("port", appConfig.Port).Msg("Server running")
	if err := app.Listen(appConfig.Port); err != nil {
		applogger.Fatal().Err(err).Msg("server stopped")
	}
}

func ConnectDB() *gorm.DB {
	dbConfig := config.LoadDBConfig()
	appConfig := config.LoadAppConfig()

	db, err := gorm.Open(postgres.Open(dbConfig.DSN()), &gorm.Config{})
	if err != nil {
		applogger.Fatal().Err(err).Msg("Could not connect to database")
	}
	pgDB, err := db.DB()
	if err != nil {
		applogger.Fatal().Err(err).Msg("Could not get database instance")
	}
	if !appConfig.IsProduction() {
		pgDB.SetMaxIdleConns(5)
		pgDB.SetMaxOpenConns(10)
		pgDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		pgDB.SetMaxIdleConns(20)
		pgDB.SetMaxOpenConns(200)
		pgDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(&model.AnalysisRecord{}); err != nil {
		applogger.Fatal().Err(err).Msg("migration failed")
	}
	return db
}

// ConnectCache returns the redis read cache, or a no-op cache when redis is not
// configured or unreachable.
func ConnectCache(ctx context.Context) cache.AnalysisCache {
	redisConfig := config.LoadRedisConfig()
	if !redisConfig.Enabled() {
		applogger.Info().Msg("REDIS_ADDR not set, analysis cache disabled")
		return cache.NopAnalysisCache{}
	}

	client, err := cache.NewRedisClient(ctx, redisConfig)
	if err != nil {
		applogger.Warn().Err(err).Str("addr", redisConfig.Addr).Msg("redis unreachable, analysis cache disabled")
		return cache.NopAnalysisCache{}
	}
	return cache.NewRedisAnalysisCache(client, redisConfig.CacheTTL)
}
