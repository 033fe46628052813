package handler

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/slate-hq/slate-api/internal/middleware"
	"github.com/slate-hq/slate-api/internal/service"
	"github.com/slate-hq/slate-api/internal/utils"
)

func userIDFromContext(c *fiber.Ctx) string {
	if v := c.Locals("user_id"); v != nil {
		if id, ok := v.(string); ok {
			return strings.TrimSpace(id)
		}
	}
	return ""
}

func profileFromContext(c *fiber.Ctx) service.Profile {
	profile := service.Profile{}
	if v, ok := c.Locals("user_name").(string); ok {
		profile.Name = v
	}
	if v, ok := c.Locals("user_email").(string); ok {
		profile.Email = v
	}
	if v, ok := c.Locals("user_image").(string); ok {
		profile.Image = v
	}
	return profile
}

func requestLogger(base zerolog.Logger, c *fiber.Ctx) *zerolog.Logger {
	logger := base
	if c != nil {
		if correlation := middleware.GetCorrelationID(c); correlation != "" {
			logger = base.With().Str("correlation_id", correlation).Logger()
		}
	}
	return &logger
}

func isValidationError(err error) bool {
	var validationErrors validator.ValidationErrors
	return errors.As(err, &validationErrors)
}

// sendServiceError maps the service sentinel errors onto HTTP statuses.
// Unknown errors are logged and reported as a generic 500.
func sendServiceError(c *fiber.Ctx, logger *zerolog.Logger, err error, fallback string) error {
	switch {
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	case errors.Is(err, service.ErrUnauthenticated):
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	case errors.Is(err, service.ErrNotMember):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return utils.SendError(c, fiber.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrLastAdmin):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAlreadyMember):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidJoinCode):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrEmptyBody),
		errors.Is(err, service.ErrInvalidContainer),
		errors.Is(err, service.ErrInvalidCursor):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUploadTooLarge):
		return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, service.ErrUploadNotImage):
		return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, service.ErrWorkspaceNotFound),
		errors.Is(err, service.ErrChannelNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrMessageNotFound),
		errors.Is(err, service.ErrConversationNotFound):
		return utils.SendError(c, fiber.StatusNotFound, err.Error())
	default:
		logger.Error().Err(err).Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}
