package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig holds configuration for the logging middleware
type LogConfig struct {
	Logger *zap.Logger
	// Skip logging for paths with these prefixes
	SkipPaths []string
	// Requests slower than this are logged at warn level
	SlowThreshold time.Duration
}

// DefaultLogConfig returns a default configuration for the logging middleware
func DefaultLogConfig(logger *zap.Logger) LogConfig {
	return LogConfig{
		Logger:        logger,
		SkipPaths:     []string{"/health", "/assets"},
		SlowThreshold: time.Second,
	}
}

// RequestLogger logs one structured line per request
func RequestLogger(cfg LogConfig) fiber.Handler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	logger := cfg.Logger.With(zap.String("component", "http"))

	return func(c *fiber.Ctx) error {
		for _, skipPath := range cfg.SkipPaths {
			if strings.HasPrefix(c.Path(), skipPath) {
				return c.Next()
			}
		}

		start := time.Now()
		err := c.Next()
		latency := time.Since(start)

		status := c.Response().StatusCode()
		if err != nil {
			// The error handler has not run yet.
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.IP()),
			zap.String("user_agent", c.Get(fiber.HeaderUserAgent)),
			zap.Int("content_length", len(c.Response().Body())),
		}
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}

		logger.Log(levelFor(status, latency, cfg.SlowThreshold), "request", fields...)
		return err
	}
}

func levelFor(status int, latency, slow time.Duration) zapcore.Level {
	switch {
	case status >= 500:
		return zapcore.ErrorLevel
	case status >= 400:
		return zapcore.WarnLevel
	case slow > 0 && latency >= slow:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}
