package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fathima-sithara/chat-backend/internal/apperr"
	"github.com/fathima-sithara/chat-backend/internal/models"
)

// ConversationStore holds per-user conversation pointer rows, partitioned by
// username. Every logical conversation has two mirrored rows, one per
// participant.
type ConversationStore struct {
	coll *mongo.Collection
}

func NewConversationStore(db *mongo.Database) (*ConversationStore, error) {
	coll := db.Collection("conversations")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}, {Key: "conversation_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_conv_unique"),
		},
		{
			Keys: bson.D{
				{Key: "username", Value: 1},
				{Key: "last_modified_unix_time", Value: -1},
				{Key: "conversation_id", Value: -1},
			},
			Options: options.Index().SetName("user_modified_desc"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("conversation store indexes: %w", err)
	}
	return &ConversationStore{coll: coll}, nil
}

func validPointer(c *models.Conversation) error {
	if c == nil || strings.TrimSpace(c.Username) == "" || strings.TrimSpace(c.Participant) == "" ||
		strings.TrimSpace(c.ConversationID) == "" {
		return fmt.Errorf("%w: conversation pointer is missing required fields", apperr.ErrInvalidArgument)
	}
	return nil
}

// Insert creates a pointer row, failing if this user already has one for the
// conversation.
func (s *ConversationStore) Insert(ctx context.Context, c *models.Conversation) error {
	if err := validPointer(c); err != nil {
		return err
	}
	if _, err := s.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: id %s for user %s", apperr.ErrDuplicateConversation, c.ConversationID, c.Username)
		}
		return fmt.Errorf("%w: insert conversation %s: %w", apperr.ErrStorageUnavailable, c.ConversationID, err)
	}
	return nil
}

// Upsert creates or overwrites the pointer row unconditionally. This is the
// write that advances a conversation's recency marker on every send.
func (s *ConversationStore) Upsert(ctx context.Context, c *models.Conversation) error {
	if err := validPointer(c); err != nil {
		return err
	}
	filter := bson.M{"username": c.Username, "conversation_id": c.ConversationID}
	_, err := s.coll.ReplaceOne(ctx, filter, c, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("%w: upsert conversation %s: %w", apperr.ErrStorageUnavailable, c.ConversationID, err)
	}
	return nil
}

// Get looks up one pointer row. Absence is reported via the bool.
func (s *ConversationStore) Get(ctx context.Context, username, conversationID string) (*models.Conversation, bool, error) {
	var c models.Conversation
	err := s.coll.FindOne(ctx, bson.M{"username": username, "conversation_id": conversationID}).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: get conversation %s: %w", apperr.ErrStorageUnavailable, conversationID, err)
	}
	return &c, true, nil
}

// List returns one page of a user's pointer rows with last-modified time at
// or after `since` (inclusive), most recently active first.
func (s *ConversationStore) List(ctx context.Context, username string, limit int, since int64, token string) ([]models.Conversation, string, error) {
	cur, err := decodeCursor(token)
	if err != nil {
		return nil, "", err
	}

	filter := bson.M{
		"username":                username,
		"last_modified_unix_time": bson.M{"$gte": since},
	}
	if cur != nil {
		filter = bson.M{
			"$and": bson.A{
				filter,
				bson.M{"$or": bson.A{
					bson.M{"last_modified_unix_time": bson.M{"$lt": cur.T}},
					bson.M{"last_modified_unix_time": cur.T, "conversation_id": bson.M{"$lt": cur.ID}},
				}},
			},
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "last_modified_unix_time", Value: -1}, {Key: "conversation_id", Value: -1}}).
		SetLimit(int64(limit) + 1)

	c, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, "", fmt.Errorf("%w: list conversations for %s: %w", apperr.ErrStorageUnavailable, username, err)
	}
	defer c.Close(ctx)

	var rows []models.Conversation
	if err := c.All(ctx, &rows); err != nil {
		return nil, "", fmt.Errorf("%w: list conversations for %s: %w", apperr.ErrStorageUnavailable, username, err)
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = encodeCursor(last.LastModifiedUnixTime, last.ConversationID)
	}
	return rows, next, nil
}

// Delete removes a single pointer row. Test teardown only.
func (s *ConversationStore) Delete(ctx context.Context, username, conversationID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"username": username, "conversation_id": conversationID}); err != nil {
		return fmt.Errorf("%w: delete conversation %s: %w", apperr.ErrStorageUnavailable, conversationID, err)
	}
	return nil
}
