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

// MessageStore is the append-only message ledger, partitioned by
// conversation id.
type MessageStore struct {
	coll *mongo.Collection
}

func NewMessageStore(db *mongo.Database) (*MessageStore, error) {
	coll := db.Collection("messages")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// The unique index is what makes Insert an atomic insert-if-absent;
	// the second index backs the descending listing scan.
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "conversation_id", Value: 1}, {Key: "message_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("conv_msg_unique"),
		},
		{
			Keys: bson.D{
				{Key: "conversation_id", Value: 1},
				{Key: "created_unix_time", Value: -1},
				{Key: "message_id", Value: -1},
			},
			Options: options.Index().SetName("conv_created_desc"),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("message store indexes: %w", err)
	}
	return &MessageStore{coll: coll}, nil
}

// Insert writes a new message, failing if the (conversationId, messageId)
// pair already exists.
func (s *MessageStore) Insert(ctx context.Context, m *models.Message) error {
	if m == nil || strings.TrimSpace(m.ConversationID) == "" || strings.TrimSpace(m.MessageID) == "" ||
		strings.TrimSpace(m.SenderUsername) == "" || strings.TrimSpace(m.Text) == "" {
		return fmt.Errorf("%w: message is missing required fields", apperr.ErrInvalidArgument)
	}
	if _, err := s.coll.InsertOne(ctx, m); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: id %s in conversation %s", apperr.ErrDuplicateMessage, m.MessageID, m.ConversationID)
		}
		return fmt.Errorf("%w: insert message %s: %w", apperr.ErrStorageUnavailable, m.MessageID, err)
	}
	return nil
}

// Get looks up a single message. Absence is reported via the bool, not an
// error.
func (s *MessageStore) Get(ctx context.Context, conversationID, messageID string) (*models.Message, bool, error) {
	var m models.Message
	err := s.coll.FindOne(ctx, bson.M{"conversation_id": conversationID, "message_id": messageID}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: get message %s: %w", apperr.ErrStorageUnavailable, messageID, err)
	}
	return &m, true, nil
}

// List returns one page of a conversation's messages newer than `after`
// (strict), most recent first, resumable via continuation token.
func (s *MessageStore) List(ctx context.Context, conversationID string, limit int, after int64, token string) ([]models.ListMessagesItem, string, error) {
	cur, err := decodeCursor(token)
	if err != nil {
		return nil, "", err
	}

	filter := bson.M{
		"conversation_id":   conversationID,
		"created_unix_time": bson.M{"$gt": after},
	}
	if cur != nil {
		filter = bson.M{
			"$and": bson.A{
				filter,
				bson.M{"$or": bson.A{
					bson.M{"created_unix_time": bson.M{"$lt": cur.T}},
					bson.M{"created_unix_time": cur.T, "message_id": bson.M{"$lt": cur.ID}},
				}},
			},
		}
	}

	// Fetch one extra row to know whether another page exists.
	opts := options.Find().
		SetSort(bson.D{{Key: "created_unix_time", Value: -1}, {Key: "message_id", Value: -1}}).
		SetLimit(int64(limit) + 1)

	c, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, "", fmt.Errorf("%w: list messages for %s: %w", apperr.ErrStorageUnavailable, conversationID, err)
	}
	defer c.Close(ctx)

	var rows []models.Message
	if err := c.All(ctx, &rows); err != nil {
		return nil, "", fmt.Errorf("%w: list messages for %s: %w", apperr.ErrStorageUnavailable, conversationID, err)
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = encodeCursor(last.CreatedUnixTime, last.MessageID)
	}

	items := make([]models.ListMessagesItem, 0, len(rows))
	for _, m := range rows {
		items = append(items, models.ListMessagesItem{
			Text:           m.Text,
			SenderUsername: m.SenderUsername,
			UnixTime:       m.CreatedUnixTime,
		})
	}
	return items, next, nil
}

// Delete removes a message. Used by test teardown paths only; messages are
// immutable in normal operation.
func (s *MessageStore) Delete(ctx context.Context, conversationID, messageID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"conversation_id": conversationID, "message_id": messageID}); err != nil {
		return fmt.Errorf("%w: delete message %s: %w", apperr.ErrStorageUnavailable, messageID, err)
	}
	return nil
}
