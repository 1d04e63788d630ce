package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fathima-sithara/chat-backend/internal/apperr"
)

// ImageStore is the blob storage contract.
type ImageStore interface {
	Upload(ctx context.Context, contentType string, data []byte) (string, error)
	Download(ctx context.Context, id string) ([]byte, error)
	Delete(ctx context.Context, id string) error
}

type ImageService struct {
	store ImageStore
}

func NewImageService(store ImageStore) *ImageService {
	return &ImageService{store: store}
}

func (s *ImageService) Upload(ctx context.Context, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: image payload is empty", apperr.ErrInvalidArgument)
	}
	return s.store.Upload(ctx, contentType, data)
}

func (s *ImageService) Download(ctx context.Context, id string) ([]byte, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: image id must be provided", apperr.ErrInvalidArgument)
	}
	return s.store.Download(ctx, id)
}

func (s *ImageService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: image id must be provided", apperr.ErrInvalidArgument)
	}
	return s.store.Delete(ctx, id)
}
