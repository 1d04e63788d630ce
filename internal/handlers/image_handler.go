package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/chat-backend/internal/apperr"
	"github.com/fathima-sithara/chat-backend/internal/models"
	"github.com/fathima-sithara/chat-backend/internal/service"
)

type ImageHandler struct {
	svc *service.ImageService
	log *zap.SugaredLogger
}

func NewImageHandler(svc *service.ImageService, log *zap.SugaredLogger) *ImageHandler {
	return &ImageHandler{svc: svc, log: log}
}

// UploadImage handles POST /api/images (multipart/form-data "file").
func (h *ImageHandler) UploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return writeError(c, fmt.Errorf("%w: file missing", apperr.ErrInvalidArgument))
	}
	f, err := fileHeader.Open()
	if err != nil {
		return writeError(c, fmt.Errorf("%w: cannot open file: %v", apperr.ErrInvalidArgument, err))
	}
	defer f.Close()

	data := make([]byte, fileHeader.Size)
	if _, err := f.Read(data); err != nil {
		return writeError(c, fmt.Errorf("%w: cannot read file: %v", apperr.ErrInvalidArgument, err))
	}

	ct := fileHeader.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}

	id, err := h.svc.Upload(c.UserContext(), ct, data)
	if err != nil {
		h.log.Warnw("upload image", "err", err)
		return writeError(c, err)
	}
	h.log.Infow("image uploaded", "imageId", id)
	return c.Status(fiber.StatusCreated).JSON(models.UploadImageResponse{ImageID: id})
}

// DownloadImage handles GET /api/images/:id.
func (h *ImageHandler) DownloadImage(c *fiber.Ctx) error {
	id := c.Params("id")
	data, err := h.svc.Download(c.UserContext(), id)
	if err != nil {
		h.log.Warnw("download image", "imageId", id, "err", err)
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, http.DetectContentType(data))
	return c.Send(data)
}

// DeleteImage handles DELETE /api/images/:id.
func (h *ImageHandler) DeleteImage(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.svc.Delete(c.UserContext(), id); err != nil {
		h.log.Warnw("delete image", "imageId", id, "err", err)
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
