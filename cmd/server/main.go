package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/studypath/internal/config"
	"github.com/fadilmartias/studypath/internal/domain/fiber/handler"
	"github.com/fadilmartias/studypath/internal/logger"
	"github.com/fadilmartias/studypath/internal/middleware"
	"github.com/fadilmartias/studypath/internal/repository"
	"github.com/fadilmartias/studypath/internal/service"
	"github.com/fadilmartias/studypath/internal/usecase"
	"github.com/fadilmartias/studypath/internal/view"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	sessionConfig := config.LoadSessionConfig()

	zl, err := logger.New(*config.LoadLogConfig())
	if err != nil {
		log.Fatalf("Could not build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	advisor := service.NewAdvisorService(config.LoadAdvisorConfig(), zl)
	probeAdvisor(ctx, advisor, zl)

	catalog := usecase.NewCatalogUsecase(advisor, zl)
	sessions := repository.NewSessionRepository(view.Deps{
		Advisor:  advisor,
		Profiles: usecase.NewProfileUsecase(advisor, zl),
		Catalog:  catalog,
		Log:      zl,
	})

	app := fiber.New(fiber.Config{
		AppName: appConfig.Name,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			// Status code defaults to 500
			code := fiber.StatusInternalServerError

			// Retrieve the custom status code if it's a *fiber.Error
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"success": false, "message": message})
		},
	})
	app.Use(middleware.RequestLogger(zl.Named("http")))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: appConfig.Env != "production",
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // 1
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.Env == "production"
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(120, 1*time.Minute))

	handler.NewSessionHandler(sessions, catalog, sessionConfig.ChatRateLimit, zl).RegisterRoutes(app)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zl.Info("Server running", zap.String("port", appConfig.Port))
		return app.Listen(appConfig.Port)
	})

	// Expire idle sessions and report goroutine count
	g.Go(func() error {
		ticker := time.NewTicker(sessionConfig.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case now := <-ticker.C:
				if expired := sessions.ExpireIdle(sessionConfig.IdleTimeout, now); len(expired) > 0 {
					zl.Info("Expired idle sessions", zap.Strings("session_ids", expired))
				}
				zl.Debug("Sweep done",
					zap.Int("sessions", sessions.Count()),
					zap.Int("goroutines", runtime.NumGoroutine()),
				)
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		zl.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := app.ShutdownWithContext(shutdownCtx)
		sessions.CloseAll()
		return err
	})

	if err := g.Wait(); err != nil {
		zl.Fatal("Server stopped", zap.Error(err))
	}
}

// probeAdvisor checks that the advisory API answers. The dashboard still starts when it
// does not; every section will then report its own error.
func probeAdvisor(ctx context.Context, advisor service.AdvisorServiceInterface, zl *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	msg, err := advisor.Ping(ctx)
	if err != nil {
		zl.Warn("Advisor api is not reachable", zap.Error(err))
		return
	}
	zl.Info("Advisor api reachable", zap.String("message", msg))
}
