// Package dashboard serves the plan analytics as a JSON API for the web
// dashboard.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"energy-analyzer/internal/backend"
	errx "energy-analyzer/internal/core/errx"
	"energy-analyzer/internal/models"
	logx "energy-analyzer/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Source is the backend the dashboard reads plans from.
type Source interface {
	Providers(ctx context.Context) ([]models.Provider, error)
	Plans(ctx context.Context, filter models.PlanFilter) ([]models.Plan, error)
	Plan(ctx context.Context, id int64) (*models.Plan, error)
	TriggerScrape(ctx context.Context, req backend.ScrapeRequest) (*backend.ScrapeResult, error)
}

// Options tune the server.
type Options struct {
	// UsageKwh and BaseFee are used when a request does not send its own.
	UsageKwh float64
	BaseFee  float64
	// RateLimit is the number of /api requests a client may make per minute.
	RateLimit int
	// AccessLog enables the request logger middleware.
	AccessLog bool
}

// Server is the dashboard HTTP server.
type Server struct {
	app    *fiber.App
	source Source
	opts   Options
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// New builds the Fiber app and installs the routes.
func New(source Source, opts Options) *Server {
	if opts.RateLimit <= 0 {
		opts.RateLimit = 60
	}

	s := &Server{
		source: source,
		opts:   opts,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               "energy-analyzer",
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * time.Minute,
	})

	s.app.Use(recover.New())
	if opts.AccessLog {
		s.app.Use(logger.New())
	}

	api := s.app.Group("/api", limiter.New(limiter.Config{
		Max:        opts.RateLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests, slow down")
		},
	}))
	api.Get("/health", s.handleHealth)
	api.Get("/providers", s.handleProviders)
	api.Get("/plans", s.handlePlans)
	api.Get("/summary", s.handleSummary)
	api.Get("/distribution", s.handleDistribution)
	api.Get("/compare", s.handleCompare)
	api.Post("/scrape", s.handleScrape)

	return s
}

// App exposes the Fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	logx.Info().Str("addr", addr).Msg("dashboard listening")
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func errorHandler(c *fiber.Ctx, err error) error {
	status := errx.StatusOf(err)
	message := errx.MessageOf(err)

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		message = fe.Message
	}

	if status >= fiber.StatusInternalServerError {
		logx.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Int("status", status).Msg("request failed")
	}

	return c.Status(status).JSON(ErrorResponse{
		Error:   errorCode(status),
		Message: message,
	})
}

// errorCode turns a status into a snake_case code, e.g. 502 -> bad_gateway.
func errorCode(status int) string {
	text := http.StatusText(status)
	if text == "" {
		return "error"
	}
	return strings.ReplaceAll(strings.ToLower(text), " ", "_")
}
