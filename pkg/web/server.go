// Package web serves the voice ordering client: static assets, the
// ephemeral-token endpoint for browser-side realtime sessions, the main
// client event channel, and a dashboard broadcast of cart activity.
package web

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/sliceline/voiceorder/internal/log"
	"github.com/sliceline/voiceorder/pkg/hub"
	"github.com/sliceline/voiceorder/pkg/menu"
)

// Options configures the web server.
type Options struct {
	Port    string
	APIKey  string
	Catalog *menu.Catalog

	// StaticDir holds the browser client. Empty disables static serving.
	StaticDir string

	// Voice is the realtime voice name. Empty uses the upstream default.
	Voice string

	// Debug enables per-request logging.
	Debug bool
}

// Server is the ordering service's HTTP and WebSocket surface.
type Server struct {
	app  *fiber.App
	opts Options

	// dashboard receives cart snapshots and transcript entries from every
	// live session.
	dashboard *hub.Hub
}

// NewServer builds the fiber app and its routes.
func NewServer(opts Options) *Server {
	s := &Server{
		opts:      opts,
		dashboard: hub.New("dashboard"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "voiceorder",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
	}))
	if opts.Debug {
		app.Use(fiberlogger.New())
	}

	if opts.StaticDir != "" {
		app.Static("/", opts.StaticDir)
	}

	app.Get("/health", s.handleHealth)

	api := app.Group("/api")
	api.Get("/menu", s.handleMenu)
	api.Post("/session", s.handleSessionToken)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(s.handleOrderWS))
	app.Get("/ws/cart", websocket.New(s.handleDashboardWS))

	s.app = app
	return s
}

// Start runs the dashboard hub and blocks serving HTTP.
func (s *Server) Start() error {
	go s.dashboard.Run()
	log.Info("web server listening", "port", s.opts.Port)
	return s.app.Listen(":" + s.opts.Port)
}

// Shutdown gracefully stops the server, waiting for in-flight requests
// until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// DashboardClients returns the number of connected dashboard observers.
func (s *Server) DashboardClients() int {
	return s.dashboard.ClientCount()
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"observers": s.dashboard.ClientCount(),
	})
}

func (s *Server) handleMenu(c *fiber.Ctx) error {
	return c.JSON(s.opts.Catalog)
}

// handleDashboardWS attaches an observer to the dashboard hub. Blocks for
// the connection lifetime.
func (s *Server) handleDashboardWS(conn *websocket.Conn) {
	hub.Serve(s.dashboard, conn)
}
