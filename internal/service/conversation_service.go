package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fathima-sithara/chat-backend/internal/apperr"
	"github.com/fathima-sithara/chat-backend/internal/events"
	"github.com/fathima-sithara/chat-backend/internal/metrics"
	"github.com/fathima-sithara/chat-backend/internal/models"
)

const conversationIDSeparator = "_"

// MessageLedger is the message-side storage contract consumed by the
// coordinator.
type MessageLedger interface {
	Insert(ctx context.Context, m *models.Message) error
	List(ctx context.Context, conversationID string, limit int, after int64, token string) ([]models.ListMessagesItem, string, error)
}

// ConversationIndex is the pointer-side storage contract.
type ConversationIndex interface {
	Insert(ctx context.Context, c *models.Conversation) error
	Upsert(ctx context.Context, c *models.Conversation) error
	List(ctx context.Context, username string, limit int, since int64, token string) ([]models.Conversation, string, error)
}

// ProfileGetter resolves a username to its profile, failing with
// apperr.ErrProfileNotFound when absent.
type ProfileGetter interface {
	GetProfile(ctx context.Context, username string) (*models.Profile, error)
}

// EventPublisher emits fire-and-forget domain events.
type EventPublisher interface {
	Publish(ctx context.Context, ev events.Event)
}

// ConversationService orchestrates sends and listings across the message
// ledger, the pointer index and the profile store. It is stateless and safe
// for concurrent use; consistency across the three writes of a send is
// best-effort (fixed write order, no compensation).
type ConversationService struct {
	messages      MessageLedger
	conversations ConversationIndex
	profiles      ProfileGetter
	publisher     EventPublisher
	log           *zap.SugaredLogger
}

func NewConversationService(m MessageLedger, c ConversationIndex, p ProfileGetter, pub EventPublisher, log *zap.SugaredLogger) *ConversationService {
	return &ConversationService{messages: m, conversations: c, profiles: p, publisher: pub, log: log}
}

// swapped out in tests for deterministic timestamps
var nowUnixMilli = func() int64 {
	return time.Now().UTC().UnixMilli()
}

func splitConversationID(conversationID string) (string, string, error) {
	parts := strings.Split(conversationID, conversationIDSeparator)
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return "", "", fmt.Errorf("%w: conversation id %q is not of the form participantA_participantB",
			apperr.ErrInvalidArgument, conversationID)
	}
	return parts[0], parts[1], nil
}

// SendMessage appends a message and advances both mirrored pointer rows to
// the message's timestamp. The returned value is the single timestamp for
// the whole event: the message's sort key and the pointers' recency marker.
func (s *ConversationService) SendMessage(ctx context.Context, conversationID, messageID, senderUsername, text string) (int64, error) {
	if strings.TrimSpace(conversationID) == "" || strings.TrimSpace(messageID) == "" ||
		strings.TrimSpace(senderUsername) == "" || strings.TrimSpace(text) == "" {
		return 0, fmt.Errorf("%w: conversationId, messageId, senderUsername and text must be provided", apperr.ErrInvalidArgument)
	}
	participantA, participantB, err := splitConversationID(conversationID)
	if err != nil {
		return 0, err
	}

	createdUnixTime := nowUnixMilli()
	msg := &models.Message{
		ConversationID:  conversationID,
		MessageID:       messageID,
		SenderUsername:  senderUsername,
		Text:            text,
		CreatedUnixTime: createdUnixTime,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return 0, err
	}

	if _, err := s.profiles.GetProfile(ctx, participantA); err != nil {
		return 0, err
	}
	if _, err := s.profiles.GetProfile(ctx, participantB); err != nil {
		return 0, err
	}

	// The upsert is unconditional: first send into a fresh id creates the
	// pointer rows, later sends only advance their timestamps. The message
	// is already durable at this point; a failed pointer write leaves the
	// mirrors behind until the next successful send into this conversation.
	for _, ptr := range mirroredPointers(participantA, participantB, conversationID, createdUnixTime) {
		if err := s.conversations.Upsert(ctx, ptr); err != nil {
			s.log.Errorw("message written but pointer update failed",
				"conversationId", conversationID, "username", ptr.Username, "err", err)
			return 0, err
		}
	}

	metrics.MessagesSent.Inc()
	if s.publisher != nil {
		s.publisher.Publish(ctx, events.Event{
			Type:           events.TypeMessageSent,
			ConversationID: conversationID,
			SenderUsername: senderUsername,
			UnixTime:       createdUnixTime,
		})
	}
	return createdUnixTime, nil
}

// AddConversation creates a new conversation from its first message. Unlike
// SendMessage this path enforces that the conversation is new, via
// insert-if-absent on both pointer rows.
func (s *ConversationService) AddConversation(ctx context.Context, firstMessage models.SendMessageRequest, participantA, participantB string) (string, int64, error) {
	if strings.TrimSpace(participantA) == "" || strings.TrimSpace(participantB) == "" {
		return "", 0, fmt.Errorf("%w: both participants must be provided", apperr.ErrInvalidArgument)
	}
	if strings.TrimSpace(firstMessage.ID) == "" || strings.TrimSpace(firstMessage.SenderUsername) == "" ||
		strings.TrimSpace(firstMessage.Text) == "" {
		return "", 0, fmt.Errorf("%w: first message must carry id, senderUsername and text", apperr.ErrInvalidArgument)
	}

	conversationID := participantA + conversationIDSeparator + participantB

	if _, err := s.profiles.GetProfile(ctx, participantA); err != nil {
		return "", 0, err
	}
	if _, err := s.profiles.GetProfile(ctx, participantB); err != nil {
		return "", 0, err
	}

	createdUnixTime := nowUnixMilli()
	msg := &models.Message{
		ConversationID:  conversationID,
		MessageID:       firstMessage.ID,
		SenderUsername:  firstMessage.SenderUsername,
		Text:            firstMessage.Text,
		CreatedUnixTime: createdUnixTime,
	}
	if err := s.messages.Insert(ctx, msg); err != nil {
		return "", 0, err
	}

	for _, ptr := range mirroredPointers(participantA, participantB, conversationID, createdUnixTime) {
		if err := s.conversations.Insert(ctx, ptr); err != nil {
			s.log.Errorw("first message written but pointer insert failed",
				"conversationId", conversationID, "username", ptr.Username, "err", err)
			return "", 0, err
		}
	}

	metrics.ConversationsStarted.Inc()
	if s.publisher != nil {
		s.publisher.Publish(ctx, events.Event{
			Type:           events.TypeConversationStarted,
			ConversationID: conversationID,
			SenderUsername: firstMessage.SenderUsername,
			UnixTime:       createdUnixTime,
		})
	}
	return conversationID, createdUnixTime, nil
}

// ListMessages returns one page of a conversation's messages, newest first.
// An empty page reports the conversation's messages as not found; callers
// cannot distinguish a missing conversation from an exhausted cursor.
func (s *ConversationService) ListMessages(ctx context.Context, conversationID string, limit int, lastSeenMessageTime int64, token string) ([]models.ListMessagesItem, string, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, "", fmt.Errorf("%w: conversationId must be provided", apperr.ErrInvalidArgument)
	}
	items, next, err := s.messages.List(ctx, conversationID, limit, lastSeenMessageTime, token)
	if err != nil {
		return nil, "", err
	}
	if len(items) == 0 {
		return nil, "", fmt.Errorf("%w: no messages in conversation %s", apperr.ErrMessageNotFound, conversationID)
	}
	return items, next, nil
}

// ListConversations returns one page of a user's conversations, most
// recently active first, each row enriched with the other participant's
// profile. A profile lookup failure aborts the whole listing.
func (s *ConversationService) ListConversations(ctx context.Context, username string, limit int, lastSeenConversationTime int64, token string) ([]models.ListConversationsItem, string, error) {
	if strings.TrimSpace(username) == "" {
		return nil, "", fmt.Errorf("%w: username must be provided", apperr.ErrInvalidArgument)
	}
	rows, next, err := s.conversations.List(ctx, username, limit, lastSeenConversationTime, token)
	if err != nil {
		return nil, "", err
	}
	if len(rows) == 0 {
		return nil, "", fmt.Errorf("%w: no conversations for user %s", apperr.ErrConversationNotFound, username)
	}

	items := make([]models.ListConversationsItem, 0, len(rows))
	for _, row := range rows {
		profile, err := s.profiles.GetProfile(ctx, row.Participant)
		if err != nil {
			return nil, "", err
		}
		items = append(items, models.ListConversationsItem{
			ConversationID:       row.ConversationID,
			Profile:              *profile,
			LastModifiedUnixTime: row.LastModifiedUnixTime,
		})
	}
	return items, next, nil
}

func mirroredPointers(participantA, participantB, conversationID string, ts int64) []*models.Conversation {
	return []*models.Conversation{
		{Username: participantA, Participant: participantB, ConversationID: conversationID, LastModifiedUnixTime: ts},
		{Username: participantB, Participant: participantA, ConversationID: conversationID, LastModifiedUnixTime: ts},
	}
}
