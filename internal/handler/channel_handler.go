package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/slate-hq/slate-api/internal/dto"
	"github.com/slate-hq/slate-api/internal/service"
	"github.com/slate-hq/slate-api/internal/utils"
)

// ChannelHandler handles channel operations.
type ChannelHandler struct {
	service service.ChannelService
	logger  zerolog.Logger
}

// NewChannelHandler constructs a channel handler.
func NewChannelHandler(service service.ChannelService, logger zerolog.Logger) *ChannelHandler {
	return &ChannelHandler{
		service: service,
		logger:  logger.With().Str("component", "channel_handler").Logger(),
	}
}

// Register wires channel routes.
func (h *ChannelHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.remove)
}

func (h *ChannelHandler) create(c *fiber.Ctx) error {
	var payload dto.ChannelCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to create channel")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "channel created", response)
}

func (h *ChannelHandler) list(c *fiber.Ctx) error {
	workspaceID := c.Query("workspace_id")
	if workspaceID == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "workspace_id is required")
	}

	response, err := h.service.List(c.Context(), userIDFromContext(c), workspaceID)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list channels")
	}

	return utils.SendSuccess(c, "channels retrieved", response)
}

func (h *ChannelHandler) get(c *fiber.Ctx) error {
	response, err := h.service.Get(c.Context(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to retrieve channel")
	}

	return utils.SendSuccess(c, "channel retrieved", response)
}

func (h *ChannelHandler) update(c *fiber.Ctx) error {
	var payload dto.ChannelUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Update(c.Context(), userIDFromContext(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to update channel")
	}

	return utils.SendSuccess(c, "channel updated", response)
}

func (h *ChannelHandler) remove(c *fiber.Ctx) error {
	if err := h.service.Remove(c.Context(), userIDFromContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to remove channel")
	}

	return utils.SendSuccess(c, "channel removed", nil)
}
