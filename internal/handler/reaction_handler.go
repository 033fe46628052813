package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/slate-hq/slate-api/internal/dto"
	"github.com/slate-hq/slate-api/internal/service"
	"github.com/slate-hq/slate-api/internal/utils"
)

// ReactionHandler handles reaction toggles.
type ReactionHandler struct {
	service service.ReactionService
	logger  zerolog.Logger
}

// NewReactionHandler constructs a reaction handler.
func NewReactionHandler(service service.ReactionService, logger zerolog.Logger) *ReactionHandler {
	return &ReactionHandler{
		service: service,
		logger:  logger.With().Str("component", "reaction_handler").Logger(),
	}
}

// Register wires reaction routes.
func (h *ReactionHandler) Register(router fiber.Router) {
	router.Post("/toggle", h.toggle)
}

func (h *ReactionHandler) toggle(c *fiber.Ctx) error {
	var payload dto.ReactionToggleRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Toggle(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to toggle reaction")
	}

	return utils.SendSuccess(c, "reaction toggled", response)
}
