package FiberConfig

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"Folio/Controllers"
	"Folio/Models"
	"Folio/middleware"
)

const bodyLimit = 64 * 1024

func SetupRoutes(app *fiber.App, contact *Controllers.ContactController) {
	app.Get("/health", Controllers.Health)

	api := app.Group("/api")
	api.Post("/contact", contact.Submit)
}

// NewApp builds the Fiber application with middleware and routes.
func NewApp(cfg Models.Config, contact *Controllers.ContactController, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:     "Folio",
		BodyLimit:   bodyLimit,
		ProxyHeader: cfg.ProxyHeader,
		// The proxy header is only read from listed peers, and must parse as an IP.
		EnableTrustedProxyCheck: cfg.ProxyHeader != "",
		TrustedProxies:          cfg.TrustedProxies,
		EnableIPValidation:      true,
		DisableStartupMessage:   true,
		ErrorHandler:            errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
		MaxAge:       300, // Max age for preflight requests caching (5 minutes)
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(middleware.RequestLogger(middleware.DefaultLogConfig(logger)))

	SetupRoutes(app, contact)

	if cfg.StaticDir != "" {
		// Serve the built client and fall back to index.html for client-side routes.
		app.Static("/", cfg.StaticDir, fiber.Static{Compress: true, CacheDuration: time.Minute})
		index := filepath.Join(cfg.StaticDir, "index.html")
		app.Get("/*", func(c *fiber.Ctx) error {
			if strings.HasPrefix(c.Path(), "/api/") || c.Path() == "/api" {
				return fiber.ErrNotFound
			}
			if _, err := os.Stat(index); err != nil {
				return fiber.ErrNotFound
			}
			return c.SendFile(index)
		})
	}

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	return c.Status(code).JSON(Models.Result{Ok: false, Error: message})
}

// FiberConfig serves app until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func FiberConfig(ctx context.Context, app *fiber.App, port int, shutdownTimeout time.Duration, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(fmt.Sprintf(":%d", port))
	}()
	logger.Info("server listening", zap.String("url", fmt.Sprintf("http://localhost:%d", port)))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
