package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fathima-sithara/chat-backend/internal/apperr"
	"github.com/fathima-sithara/chat-backend/internal/models"
)

// ProfileStore is the keyed profile storage contract.
type ProfileStore interface {
	Get(ctx context.Context, username string) (*models.Profile, bool, error)
	Insert(ctx context.Context, p *models.Profile) error
	Delete(ctx context.Context, username string) (bool, error)
}

// ProfileCache caches resolved profiles. A nil cache disables caching.
type ProfileCache interface {
	GetProfile(ctx context.Context, username string) (*models.Profile, bool)
	SetProfile(ctx context.Context, p *models.Profile)
	InvalidateProfile(ctx context.Context, username string)
}

type ProfileService struct {
	store ProfileStore
	cache ProfileCache
}

func NewProfileService(store ProfileStore, cache ProfileCache) *ProfileService {
	return &ProfileService{store: store, cache: cache}
}

// GetProfile resolves a username, read-through the cache.
func (s *ProfileService) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username must be provided", apperr.ErrInvalidArgument)
	}
	if s.cache != nil {
		if p, ok := s.cache.GetProfile(ctx, username); ok {
			return p, nil
		}
	}
	p, found, err := s.store.Get(ctx, username)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: username %s", apperr.ErrProfileNotFound, username)
	}
	if s.cache != nil {
		s.cache.SetProfile(ctx, p)
	}
	return p, nil
}

func (s *ProfileService) CreateProfile(ctx context.Context, p *models.Profile) error {
	if p == nil || strings.TrimSpace(p.Username) == "" || strings.TrimSpace(p.FirstName) == "" ||
		strings.TrimSpace(p.LastName) == "" || strings.TrimSpace(p.ProfilePictureID) == "" {
		return fmt.Errorf("%w: profile must carry username, firstName, lastName and profilePictureId", apperr.ErrInvalidArgument)
	}
	if err := s.store.Insert(ctx, p); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.SetProfile(ctx, p)
	}
	return nil
}

func (s *ProfileService) DeleteProfile(ctx context.Context, username string) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("%w: username must be provided", apperr.ErrInvalidArgument)
	}
	deleted, err := s.store.Delete(ctx, username)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: username %s", apperr.ErrProfileNotFound, username)
	}
	if s.cache != nil {
		s.cache.InvalidateProfile(ctx, username)
	}
	return nil
}
