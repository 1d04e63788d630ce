package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fathima-sithara/chat-backend/internal/apperr"
)

// statusFromError maps every domain error kind to exactly one status code.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, apperr.ErrInvalidArgument):
		return fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrDuplicateMessage),
		errors.Is(err, apperr.ErrDuplicateConversation),
		errors.Is(err, apperr.ErrDuplicateProfile):
		return fiber.StatusConflict
	case errors.Is(err, apperr.ErrMessageNotFound),
		errors.Is(err, apperr.ErrConversationNotFound),
		errors.Is(err, apperr.ErrProfileNotFound),
		errors.Is(err, apperr.ErrImageNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, apperr.ErrStorageUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func writeError(c *fiber.Ctx, err error) error {
	return c.Status(statusFromError(err)).JSON(fiber.Map{"error": err.Error()})
}
