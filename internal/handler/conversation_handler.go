package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/slate-hq/slate-api/internal/dto"
	"github.com/slate-hq/slate-api/internal/service"
	"github.com/slate-hq/slate-api/internal/utils"
)

// ConversationHandler handles one-to-one conversation resolution.
type ConversationHandler struct {
	service service.ConversationService
	logger  zerolog.Logger
}

// NewConversationHandler constructs a conversation handler.
func NewConversationHandler(service service.ConversationService, logger zerolog.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: service,
		logger:  logger.With().Str("component", "conversation_handler").Logger(),
	}
}

// Register wires conversation routes.
func (h *ConversationHandler) Register(router fiber.Router) {
	router.Post("", h.createOrGet)
	router.Get("/:id", h.get)
}

func (h *ConversationHandler) createOrGet(c *fiber.Ctx) error {
	var payload dto.ConversationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.CreateOrGet(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to resolve conversation")
	}

	return utils.SendSuccess(c, "conversation resolved", response)
}

func (h *ConversationHandler) get(c *fiber.Ctx) error {
	response, err := h.service.Get(c.Context(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to retrieve conversation")
	}

	return utils.SendSuccess(c, "conversation retrieved", response)
}
