package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/slate-hq/slate-api/internal/dto"
	"github.com/slate-hq/slate-api/internal/service"
	"github.com/slate-hq/slate-api/internal/utils"
)

// MessageHandler handles message CRUD and the paginated listings.
type MessageHandler struct {
	service service.MessageService
	logger  zerolog.Logger
}

// NewMessageHandler constructs a message handler.
func NewMessageHandler(service service.MessageService, logger zerolog.Logger) *MessageHandler {
	return &MessageHandler{
		service: service,
		logger:  logger.With().Str("component", "message_handler").Logger(),
	}
}

// Register wires message routes.
func (h *MessageHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.remove)
}

func (h *MessageHandler) create(c *fiber.Ctx) error {
	var payload dto.MessageCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to create message")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "message created", response)
}

func (h *MessageHandler) list(c *fiber.Ctx) error {
	var query dto.MessageListQuery
	if err := c.QueryParser(&query); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid query")
	}

	response, err := h.service.List(c.Context(), userIDFromContext(c), query)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list messages")
	}

	return utils.SendSuccess(c, "messages retrieved", response)
}

func (h *MessageHandler) get(c *fiber.Ctx) error {
	response, err := h.service.Get(c.Context(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to retrieve message")
	}

	return utils.SendSuccess(c, "message retrieved", response)
}

func (h *MessageHandler) update(c *fiber.Ctx) error {
	var payload dto.MessageUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Update(c.Context(), userIDFromContext(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to update message")
	}

	return utils.SendSuccess(c, "message updated", response)
}

func (h *MessageHandler) remove(c *fiber.Ctx) error {
	if err := h.service.Remove(c.Context(), userIDFromContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to remove message")
	}

	return utils.SendSuccess(c, "message removed", nil)
}
