package handlers

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/chat-backend/internal/apperr"
	"github.com/fathima-sithara/chat-backend/internal/models"
	"github.com/fathima-sithara/chat-backend/internal/service"
)

const (
	defaultPageLimit = 10
)

type ConversationHandler struct {
	svc *service.ConversationService
	log *zap.SugaredLogger
}

func NewConversationHandler(svc *service.ConversationService, log *zap.SugaredLogger) *ConversationHandler {
	return &ConversationHandler{svc: svc, log: log}
}

// SendMessage handles POST /api/conversations/:conversationId/messages.
func (h *ConversationHandler) SendMessage(c *fiber.Ctx) error {
	conversationID := c.Params("conversationId")

	var req models.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err))
	}

	createdUnixTime, err := h.svc.SendMessage(c.UserContext(), conversationID, req.ID, req.SenderUsername, req.Text)
	if err != nil {
		h.log.Warnw("send message", "conversationId", conversationID, "messageId", req.ID, "err", err)
		return writeError(c, err)
	}
	h.log.Infow("message sent", "conversationId", conversationID, "messageId", req.ID)
	return c.Status(fiber.StatusCreated).JSON(models.SendMessageResponse{CreatedUnixTime: createdUnixTime})
}

// AddConversation handles POST /api/conversations.
func (h *ConversationHandler) AddConversation(c *fiber.Ctx) error {
	var req models.AddConversationRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, fmt.Errorf("%w: %v", apperr.ErrInvalidArgument, err))
	}
	if len(req.Participants) != 2 {
		return writeError(c, fmt.Errorf("%w: exactly two participants are required", apperr.ErrInvalidArgument))
	}

	conversationID, createdUnixTime, err := h.svc.AddConversation(c.UserContext(), req.FirstMessage, req.Participants[0], req.Participants[1])
	if err != nil {
		h.log.Warnw("add conversation", "participants", req.Participants, "err", err)
		return writeError(c, err)
	}
	h.log.Infow("conversation started", "conversationId", conversationID)
	return c.Status(fiber.StatusCreated).JSON(models.AddConversationResponse{
		ID:                  conversationID,
		Participants:        req.Participants,
		LastModifiedDateUtc: time.UnixMilli(createdUnixTime).UTC(),
	})
}

// ListMessages handles GET /api/conversations/:conversationId/messages.
func (h *ConversationHandler) ListMessages(c *fiber.Ctx) error {
	conversationID := c.Params("conversationId")
	limit := queryInt(c, "limit", defaultPageLimit)
	lastSeen := queryInt64(c, "lastSeenMessageTime", 0)
	token := c.Query("continuationToken")

	items, next, err := h.svc.ListMessages(c.UserContext(), conversationID, limit, lastSeen, token)
	if err != nil {
		h.log.Warnw("list messages", "conversationId", conversationID, "err", err)
		return writeError(c, err)
	}

	resp := models.ListMessagesResponse{Messages: items}
	if next != "" {
		resp.NextURI = fmt.Sprintf("/api/conversations/%s/messages?limit=%d&lastSeenMessageTime=%d&continuationToken=%s",
			conversationID, limit, lastSeen, url.QueryEscape(next))
	}
	return c.JSON(resp)
}

// ListConversations handles GET /api/conversations.
func (h *ConversationHandler) ListConversations(c *fiber.Ctx) error {
	username := c.Query("username")
	limit := queryInt(c, "limit", defaultPageLimit)
	lastSeen := queryInt64(c, "lastSeenConversationTime", 0)
	token := c.Query("continuationToken")

	items, next, err := h.svc.ListConversations(c.UserContext(), username, limit, lastSeen, token)
	if err != nil {
		h.log.Warnw("list conversations", "username", username, "err", err)
		return writeError(c, err)
	}

	resp := models.ListConversationsResponse{Conversations: items}
	if next != "" {
		resp.NextURI = fmt.Sprintf("/api/conversations?username=%s&limit=%d&lastSeenConversationTime=%d&continuationToken=%s",
			url.QueryEscape(username), limit, lastSeen, url.QueryEscape(next))
	}
	return c.JSON(resp)
}

func queryInt(c *fiber.Ctx, key string, def int) int {
	if s := c.Query(key); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func queryInt64(c *fiber.Ctx, key string, def int64) int64 {
	if s := c.Query(key); s != "" {
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v
		}
	}
	return def
}
