package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/slate-hq/slate-api/internal/dto"
	"github.com/slate-hq/slate-api/internal/service"
	"github.com/slate-hq/slate-api/internal/utils"
)

// MemberHandler handles membership listing, role changes and removal.
type MemberHandler struct {
	service service.MemberService
	logger  zerolog.Logger
}

// NewMemberHandler constructs a member handler.
func NewMemberHandler(service service.MemberService, logger zerolog.Logger) *MemberHandler {
	return &MemberHandler{
		service: service,
		logger:  logger.With().Str("component", "member_handler").Logger(),
	}
}

// Register wires member routes.
func (h *MemberHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/current", h.current)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.updateRole)
	router.Delete("/:id", h.remove)
}

func (h *MemberHandler) list(c *fiber.Ctx) error {
	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "workspace_id is required")
	}

	response, err := h.service.List(c.Context(), userIDFromContext(c), workspaceID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list members")
	}

	return utils.SendSuccess(c, "members retrieved", response)
}

func (h *MemberHandler) current(c *fiber.Ctx) error {
	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "workspace_id is required")
	}

	response, err := h.service.Current(c.Context(), userIDFromContext(c), workspaceID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to retrieve membership")
	}

	return utils.SendSuccess(c, "membership retrieved", response)
}

func (h *MemberHandler) get(c *fiber.Ctx) error {
	response, err := h.service.Get(c.Context(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to retrieve member")
	}

	return utils.SendSuccess(c, "member retrieved", response)
}

func (h *MemberHandler) updateRole(c *fiber.Ctx) error {
	var payload dto.MemberUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.UpdateRole(c.Context(), userIDFromContext(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to update member role")
	}

	return utils.SendSuccess(c, "member role updated", response)
}

func (h *MemberHandler) remove(c *fiber.Ctx) error {
	if err := h.service.Remove(c.Context(), userIDFromContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to remove member")
	}

	return utils.SendSuccess(c, "member removed", nil)
}
