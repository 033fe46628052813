package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/slate-hq/slate-api/internal/service"
	"github.com/slate-hq/slate-api/internal/utils"
)

// UserHandler exposes the caller's mirrored identity profile.
type UserHandler struct {
	service service.UserService
	logger  zerolog.Logger
}

// NewUserHandler constructs a user handler.
func NewUserHandler(service service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger.With().Str("component", "user_handler").Logger(),
	}
}

// Register wires user routes.
func (h *UserHandler) Register(router fiber.Router) {
	router.Get("/me", h.me)
	router.Put("/me", h.ensure)
}

func (h *UserHandler) me(c *fiber.Ctx) error {
	response, err := h.service.Current(c.Context(), userIDFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to retrieve profile")
	}

	return utils.SendSuccess(c, "profile retrieved", response)
}

func (h *UserHandler) ensure(c *fiber.Ctx) error {
	response, err := h.service.Ensure(c.Context(), userIDFromContext(c), profileFromContext(c))
	if err != nil {
		return sendServiceError(c, requestLogger(h.logger, c), err, "failed to store profile")
	}

	return utils.SendSuccess(c, "profile stored", response)
}
