package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/slate-hq/slate-api/internal/dto"
	"github.com/slate-hq/slate-api/internal/service"
	"github.com/slate-hq/slate-api/internal/utils"
)

// WorkspaceHandler handles workspace CRUD and join-code operations.
type WorkspaceHandler struct {
	service service.WorkspaceService
	logger  zerolog.Logger
}

// NewWorkspaceHandler constructs a workspace handler.
func NewWorkspaceHandler(service service.WorkspaceService, logger zerolog.Logger) *WorkspaceHandler {
	return &WorkspaceHandler{
		service: service,
		logger:  logger.With().Str("component", "workspace_handler").Logger(),
	}
}

// Register wires workspace routes.
func (h *WorkspaceHandler) Register(router fiber.Router) {
	router.Post("", h.create)
	router.Get("", h.list)
	router.Get("/:id", h.get)
	router.Get("/:id/info", h.info)
	router.Patch("/:id", h.update)
	router.Delete("/:id", h.remove)
	router.Post("/:id/join", h.join)
	router.Post("/:id/join-code", h.rotateJoinCode)
}

func (h *WorkspaceHandler) create(c *fiber.Ctx) error {
	var payload dto.WorkspaceCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Create(c.Context(), userIDFromContext(c), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to create workspace")
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "workspace created", response)
}

func (h *WorkspaceHandler) list(c *fiber.Ctx) error {
	response, err := h.service.List(c.Context(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to list workspaces")
	}

	return utils.SendSuccess(c, "workspaces retrieved", response)
}

func (h *WorkspaceHandler) get(c *fiber.Ctx) error {
	response, err := h.service.Get(c.Context(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to retrieve workspace")
	}

	return utils.SendSuccess(c, "workspace retrieved", response)
}

func (h *WorkspaceHandler) info(c *fiber.Ctx) error {
	response, err := h.service.Info(c.Context(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to retrieve workspace info")
	}

	return utils.SendSuccess(c, "workspace info retrieved", response)
}

func (h *WorkspaceHandler) update(c *fiber.Ctx) error {
	var payload dto.WorkspaceUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Update(c.Context(), userIDFromContext(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to update workspace")
	}

	return utils.SendSuccess(c, "workspace updated", response)
}

func (h *WorkspaceHandler) remove(c *fiber.Ctx) error {
	if err := h.service.Remove(c.Context(), userIDFromContext(c), c.Params("id")); err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to remove workspace")
	}

	return utils.SendSuccess(c, "workspace removed", nil)
}

func (h *WorkspaceHandler) join(c *fiber.Ctx) error {
	var payload dto.WorkspaceJoinRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Join(c.Context(), userIDFromContext(c), c.Params("id"), payload)
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to join workspace")
	}

	return utils.SendSuccess(c, "workspace joined", response)
}

func (h *WorkspaceHandler) rotateJoinCode(c *fiber.Ctx) error {
	response, err := h.service.RotateJoinCode(c.Context(), userIDFromContext(c), c.Params("id"))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to rotate join code")
	}

	return utils.SendSuccess(c, "join code rotated", response)
}
