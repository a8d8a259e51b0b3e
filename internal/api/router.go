package api

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/neonchat/chat-server/internal/api/handler"
	"github.com/neonchat/chat-server/internal/api/middleware"
	"github.com/neonchat/chat-server/internal/api/ws"
	"github.com/neonchat/chat-server/internal/core/ports"
	"github.com/neonchat/chat-server/internal/core/service"
)

// Deps carries the wired collaborators the router needs.
type Deps struct {
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Verifier ports.TokenVerifier
	Auth     ports.AuthService
	Chat     ports.ChatService
	Registry *service.Registry
	MaxFrame int64
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("chat"))

	authMiddleware := middleware.Auth(d.Verifier)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(d.Auth)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Chat ---
	gateway := ws.NewGateway(d.Verifier, d.Chat, d.Registry, d.MaxFrame, d.Log)
	e.GET("/ws", gateway.Handle)

	historyHandler := handler.NewHistoryHandler(d.Chat)
	e.GET("/messages", historyHandler.Recent, authMiddleware)

	// --- Health checks and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(d.Pool, d.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
