package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/slate-hq/slate-api/internal/realtime"
	"github.com/slate-hq/slate-api/internal/service"
	"github.com/slate-hq/slate-api/internal/utils"
)

// RealtimeHandler upgrades websocket connections onto the event hub.
// Membership in the requested workspace is verified before the upgrade.
type RealtimeHandler struct {
	hub     *realtime.Hub
	members service.MemberService
	logger  zerolog.Logger
}

// NewRealtimeHandler constructs a realtime handler.
func NewRealtimeHandler(hub *realtime.Hub, members service.MemberService, logger zerolog.Logger) *RealtimeHandler {
	return &RealtimeHandler{
		hub:     hub,
		members: members,
		logger:  logger.With().Str("component", "realtime_handler").Logger(),
	}
}

// Register wires the websocket route.
func (h *RealtimeHandler) Register(router fiber.Router) {
	router.Use("", h.authorize)
	router.Get("", websocket.New(h.serve))
}

func (h *RealtimeHandler) authorize(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return utils.SendError(c, fiber.StatusUpgradeRequired, "websocket upgrade required")
	}

	userID := userIDFromContext(c)
	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "workspace_id is required")
	}

	member, err := h.members.Current(c.Context(), userID, workspaceID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to authorize realtime connection")
	}
	if member == nil {
		return utils.SendError(c, fiber.StatusForbidden, "not a member of this workspace")
	}

	// Locals survive the upgrade; the websocket handler reads them back.
	c.Locals("realtime_user_id", userID)
	c.Locals("realtime_workspace_id", workspaceID)
	return c.Next()
}

func (h *RealtimeHandler) serve(conn *websocket.Conn) {
	userID, _ := conn.Locals("realtime_user_id").(string)
	workspaceID, _ := conn.Locals("realtime_workspace_id").(string)

	h.hub.ServeConnection(conn, realtime.ConnectionOptions{
		UserID:      userID,
		WorkspaceID: workspaceID,
	})
}
