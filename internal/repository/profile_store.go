package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fathima-sithara/chat-backend/internal/apperr"
	"github.com/fathima-sithara/chat-backend/internal/models"
)

// ProfileStore is a keyed store for user profiles. Username is the document
// id, so uniqueness comes from the _id index.
type ProfileStore struct {
	coll *mongo.Collection
}

func NewProfileStore(db *mongo.Database) *ProfileStore {
	return &ProfileStore{coll: db.Collection("profiles")}
}

func (s *ProfileStore) Get(ctx context.Context, username string) (*models.Profile, bool, error) {
	var p models.Profile
	err := s.coll.FindOne(ctx, bson.M{"_id": username}).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: get profile %s: %w", apperr.ErrStorageUnavailable, username, err)
	}
	return &p, true, nil
}

func (s *ProfileStore) Insert(ctx context.Context, p *models.Profile) error {
	if p == nil || strings.TrimSpace(p.Username) == "" || strings.TrimSpace(p.FirstName) == "" ||
		strings.TrimSpace(p.LastName) == "" || strings.TrimSpace(p.ProfilePictureID) == "" {
		return fmt.Errorf("%w: profile is missing required fields", apperr.ErrInvalidArgument)
	}
	if _, err := s.coll.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: username %s", apperr.ErrDuplicateProfile, p.Username)
		}
		return fmt.Errorf("%w: insert profile %s: %w", apperr.ErrStorageUnavailable, p.Username, err)
	}
	return nil
}

func (s *ProfileStore) Delete(ctx context.Context, username string) (bool, error) {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": username})
	if err != nil {
		return false, fmt.Errorf("%w: delete profile %s: %w", apperr.ErrStorageUnavailable, username, err)
	}
	return res.DeletedCount > 0, nil
}
