package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/slate-hq/slate-api/internal/config"
	"github.com/slate-hq/slate-api/internal/handler"
	"github.com/slate-hq/slate-api/internal/middleware"
	"github.com/slate-hq/slate-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	WorkspaceHandler    *handler.WorkspaceHandler
	ChannelHandler      *handler.ChannelHandler
	MemberHandler       *handler.MemberHandler
	ConversationHandler *handler.ConversationHandler
	MessageHandler      *handler.MessageHandler
	ReactionHandler     *handler.ReactionHandler
	UploadHandler       *handler.UploadHandler
	UserHandler         *handler.UserHandler
	RealtimeHandler     *handler.RealtimeHandler
	JWTMiddleware       fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	app.Get("/metrics", observability.MetricsHandler())

	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.WorkspaceHandler != nil {
		deps.WorkspaceHandler.Register(api.Group("/workspaces", jwtMiddleware))
	}
	if deps.ChannelHandler != nil {
		deps.ChannelHandler.Register(api.Group("/channels", jwtMiddleware))
	}
	if deps.MemberHandler != nil {
		deps.MemberHandler.Register(api.Group("/members", jwtMiddleware))
	}
	if deps.ConversationHandler != nil {
		deps.ConversationHandler.Register(api.Group("/conversations", jwtMiddleware))
	}
	if deps.MessageHandler != nil {
		deps.MessageHandler.Register(api.Group("/messages", jwtMiddleware,
			middleware.RateLimit("messages", 30, time.Minute)))
	}
	if deps.ReactionHandler != nil {
		deps.ReactionHandler.Register(api.Group("/reactions", jwtMiddleware,
			middleware.RateLimit("reactions", 60, time.Minute)))
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(api.Group("/uploads", jwtMiddleware,
			middleware.RateLimit("uploads", 10, time.Minute)))
	}
	if deps.UserHandler != nil {
		deps.UserHandler.Register(api.Group("/users", jwtMiddleware))
	}
	if deps.RealtimeHandler != nil {
		deps.RealtimeHandler.Register(api.Group("/realtime", jwtMiddleware))
	}
}
