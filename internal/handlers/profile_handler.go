package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/chat-backend/internal/apperr"
	"github.com/fathima-sithara/chat-backend/internal/models"
	"github.com/fathima-sithara/chat-backend/internal/service"
)

type ProfileHandler struct {
	svc *service.ProfileService
	log *zap.SugaredLogger
}

func NewProfileHandler(svc *service.ProfileService, log *zap.SugaredLogger) *ProfileHandler {
	return &ProfileHandler{svc: svc, log: log}
}

// GetProfile handles GET /api/profile/:username.
func (h *ProfileHandler) GetProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	profile, err := h.svc.GetProfile(c.UserContext(), username)
	if err != nil {
		h.log.Warnw("get profile", "username", username, "err", err)
		return writeError(c, err)
	}
	return c.JSON(profile)
}

// AddProfile handles POST /api/profile.
func (h *ProfileHandler) AddProfile(c *fiber.Ctx) error {
	var profile models.Profile
	if err := c.BodyParser(&profile); err != nil {
		return writeError(c, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err))
	}
	if err := h.svc.CreateProfile(c.UserContext(), &profile); err != nil {
		h.log.Warnw("add profile", "username", profile.Username, "err", err)
		return writeError(c, err)
	}
	h.log.Infow("profile created", "username", profile.Username)
	return c.Status(fiber.StatusCreated).JSON(profile)
}

// DeleteProfile handles DELETE /api/profile/:username.
func (h *ProfileHandler) DeleteProfile(c *fiber.Ctx) error {
	username := c.Params("username")
	if err := h.svc.DeleteProfile(c.UserContext(), username); err != nil {
		h.log.Warnw("delete profile", "username", username, "err", err)
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
