// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/template/html/v2"
	"go.uber.org/zap"

	"photo-curator-service/internal/transport/httpserver/dto"
	"photo-curator-service/internal/transport/httpserver/handler"
	"photo-curator-service/internal/transport/httpserver/middleware"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Host         string
	Port         int
	BodyLimit    int
	Debug        bool
	TemplatesDir string
	StaticDir    string
}

// Handlers groups every route handler.
type Handlers struct {
	Review  *handler.ReviewHandler
	Gallery *handler.GalleryHandler
	Setup   *handler.SetupHandler
	Session *handler.SessionHandler
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
	host   string
	port   int
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	cfg ServerConfig,
	h Handlers,
	checks map[string]middleware.PingFunc,
	logger *zap.Logger,
) *Server {
	if cfg.TemplatesDir == "" {
		cfg.TemplatesDir = "./web/templates"
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = "./web/static"
	}

	engine := html.New(cfg.TemplatesDir, ".html")
	engine.AddFunc("inc", func(i int) int { return i + 1 })
	if cfg.Debug {
		engine.Reload(true)
	}

	app := fiber.New(fiber.Config{
		AppName:               "photo-curator-service",
		BodyLimit:             cfg.BodyLimit,
		ErrorHandler:          errorHandler(logger),
		Views:                 engine,
		DisableStartupMessage: !cfg.Debug,
	})

	// Probes answer before any other middleware runs.
	app.Use(middleware.NewHealthCheck(checks, 2*time.Second, logger))

	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(compress.New())

	app.Static("/static", cfg.StaticDir)

	registerRoutes(app, h)

	return &Server{
		App:    app,
		Logger: logger,
		host:   cfg.Host,
		port:   cfg.Port,
	}
}

func registerRoutes(app *fiber.App, h Handlers) {
	// Health checks are handled by middleware (/livez, /readyz)

	app.Get("/", h.Review.Home)
	app.Get("/review", h.Review.Review)
	app.Get("/review/:idx", h.Review.Jump)
	app.Post("/decision", h.Review.Decision)
	app.Post("/term-decision", h.Review.TermDecision)
	app.Post("/api-decision", h.Review.APIDecision)
	app.Post("/download-api-images", h.Review.DownloadAPIImages)

	app.Get("/gallery", h.Gallery.Gallery)
	app.Post("/delete-image", h.Gallery.DeleteImage)
	app.Get("/download-zip", h.Gallery.DownloadZip)

	app.Get("/setup", h.Setup.Show)
	app.Post("/setup", h.Setup.Save)
	app.Get("/settings", h.Setup.Settings)

	v1 := app.Group("/api/v1")

	session := v1.Group("/session")
	session.Get("/", h.Session.Get)
	session.Post("/decision", h.Session.Decide)
	session.Post("/jump", h.Session.Jump)

	v1.Get("/catalog", h.Session.Catalog)
	v1.Get("/providers", h.Session.Providers)
	v1.Post("/downloads/:provider", h.Session.Download)
}

// errorHandler logs by status class and answers in JSON for API routes,
// plain text for pages. 404s are logged at DEBUG.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}

		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("resource not found",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		case code >= 500:
			logger.Error("server error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		default:
			logger.Warn("client error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		}

		msg := err.Error()
		if code >= 500 {
			msg = "internal server error"
		}

		c.Status(code)
		if middleware.IsAPI(c) {
			return c.JSON(dto.ErrorResponse{Error: msg, Code: "UNHANDLED_ERROR"})
		}

		return c.SendString(msg)
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	s.Logger.Info("starting HTTP server", zap.String("addr", addr))

	return s.App.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.Shutdown()
}
