package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fathima-sithara/chat-backend/internal/api"
	"github.com/fathima-sithara/chat-backend/internal/apperr"
	"github.com/fathima-sithara/chat-backend/internal/handlers"
	"github.com/fathima-sithara/chat-backend/internal/models"
	"github.com/fathima-sithara/chat-backend/internal/service"
)

// in-memory collaborators backing the real services under the handlers

type memLedger struct {
	messages []models.Message
	listErr  error
}

func (m *memLedger) Insert(_ context.Context, msg *models.Message) error {
	for _, existing := range m.messages {
		if existing.ConversationID == msg.ConversationID && existing.MessageID == msg.MessageID {
			return fmt.Errorf("%w: id %s", apperr.ErrDuplicateMessage, msg.MessageID)
		}
	}
	m.messages = append(m.messages, *msg)
	return nil
}

func (m *memLedger) List(_ context.Context, conversationID string, limit int, after int64, token string) ([]models.ListMessagesItem, string, error) {
	if m.listErr != nil {
		return nil, "", m.listErr
	}
	var matching []models.Message
	for _, msg := range m.messages {
		if msg.ConversationID == conversationID && msg.CreatedUnixTime > after {
			matching = append(matching, msg)
		}
	}
	for i := 0; i < len(matching); i++ {
		for j := i + 1; j < len(matching); j++ {
			if matching[j].CreatedUnixTime > matching[i].CreatedUnixTime {
				matching[i], matching[j] = matching[j], matching[i]
			}
		}
	}
	start := 0
	if token != "" {
		start, _ = strconv.Atoi(token)
	}
	var items []models.ListMessagesItem
	for i := start; i < len(matching) && len(items) < limit; i++ {
		items = append(items, models.ListMessagesItem{
			Text:           matching[i].Text,
			SenderUsername: matching[i].SenderUsername,
			UnixTime:       matching[i].CreatedUnixTime,
		})
	}
	next := ""
	if start+len(items) < len(matching) {
		next = strconv.Itoa(start + len(items))
	}
	return items, next, nil
}

type memIndex struct {
	pointers map[string]models.Conversation
	listErr  error
}

func newMemIndex() *memIndex {
	return &memIndex{pointers: map[string]models.Conversation{}}
}

func (m *memIndex) key(username, conversationID string) string {
	return username + "|" + conversationID
}

func (m *memIndex) Insert(_ context.Context, c *models.Conversation) error {
	k := m.key(c.Username, c.ConversationID)
	if _, ok := m.pointers[k]; ok {
		return fmt.Errorf("%w: id %s", apperr.ErrDuplicateConversation, c.ConversationID)
	}
	m.pointers[k] = *c
	return nil
}

func (m *memIndex) Upsert(_ context.Context, c *models.Conversation) error {
	m.pointers[m.key(c.Username, c.ConversationID)] = *c
	return nil
}

func (m *memIndex) List(_ context.Context, username string, limit int, since int64, _ string) ([]models.Conversation, string, error) {
	if m.listErr != nil {
		return nil, "", m.listErr
	}
	var rows []models.Conversation
	for _, p := range m.pointers {
		if p.Username == username && p.LastModifiedUnixTime >= since {
			rows = append(rows, p)
		}
	}
	for i := 0; i < len(rows); i++ {
		for j := i + 1; j < len(rows); j++ {
			if rows[j].LastModifiedUnixTime > rows[i].LastModifiedUnixTime {
				rows[i], rows[j] = rows[j], rows[i]
			}
		}
	}
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, "", nil
}

type memProfileStore struct {
	profiles map[string]models.Profile
}

func newMemProfileStore(usernames ...string) *memProfileStore {
	s := &memProfileStore{profiles: map[string]models.Profile{}}
	for _, u := range usernames {
		s.profiles[u] = models.Profile{Username: u, FirstName: "First", LastName: "Last", ProfilePictureID: "pic-" + u}
	}
	return s
}

func (m *memProfileStore) Get(_ context.Context, username string) (*models.Profile, bool, error) {
	p, ok := m.profiles[username]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (m *memProfileStore) Insert(_ context.Context, p *models.Profile) error {
	if _, ok := m.profiles[p.Username]; ok {
		return fmt.Errorf("%w: username %s", apperr.ErrDuplicateProfile, p.Username)
	}
	m.profiles[p.Username] = *p
	return nil
}

func (m *memProfileStore) Delete(_ context.Context, username string) (bool, error) {
	if _, ok := m.profiles[username]; !ok {
		return false, nil
	}
	delete(m.profiles, username)
	return true, nil
}

type memImageStore struct {
	blobs map[string][]byte
	nxt   int
}

func (m *memImageStore) Upload(_ context.Context, _ string, data []byte) (string, error) {
	if m.blobs == nil {
		m.blobs = map[string][]byte{}
	}
	m.nxt++
	id := fmt.Sprintf("img-%d", m.nxt)
	m.blobs[id] = data
	return id, nil
}

func (m *memImageStore) Download(_ context.Context, id string) ([]byte, error) {
	b, ok := m.blobs[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %s", apperr.ErrImageNotFound, id)
	}
	return b, nil
}

func (m *memImageStore) Delete(_ context.Context, id string) error {
	delete(m.blobs, id)
	return nil
}

type testEnv struct {
	app    *fiber.App
	ledger *memLedger
	index  *memIndex
}

func newTestApp(t *testing.T, usernames ...string) *testEnv {
	t.Helper()
	ledger := &memLedger{}
	index := newMemIndex()
	profiles := newMemProfileStore(usernames...)
	log := zap.NewNop().Sugar()

	profileSvc := service.NewProfileService(profiles, nil)
	imageSvc := service.NewImageService(&memImageStore{})
	convSvc := service.NewConversationService(ledger, index, profileSvc, nil, log)

	app := api.NewServer(
		handlers.NewConversationHandler(convSvc, log),
		handlers.NewProfileHandler(profileSvc, log),
		handlers.NewImageHandler(imageSvc, log),
	)
	return &testEnv{app: app, ledger: ledger, index: index}
}

func doJSON(t *testing.T, app *fiber.App, method, target string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestAddConversation_Created(t *testing.T) {
	env := newTestApp(t, "alice", "bob")

	resp := doJSON(t, env.app, http.MethodPost, "/api/conversations", models.AddConversationRequest{
		FirstMessage: models.SendMessageRequest{ID: "m1", SenderUsername: "alice", Text: "hello"},
		Participants: []string{"alice", "bob"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decodeBody[models.AddConversationResponse](t, resp)
	require.Equal(t, "alice_bob", out.ID)
	require.Equal(t, []string{"alice", "bob"}, out.Participants)
	require.False(t, out.LastModifiedDateUtc.IsZero())
}

func TestAddConversation_WrongParticipantCount(t *testing.T) {
	env := newTestApp(t, "alice")

	resp := doJSON(t, env.app, http.MethodPost, "/api/conversations", models.AddConversationRequest{
		FirstMessage: models.SendMessageRequest{ID: "m1", SenderUsername: "alice", Text: "hello"},
		Participants: []string{"alice"},
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAddConversation_DuplicateConflict(t *testing.T) {
	env := newTestApp(t, "alice", "bob")

	first := models.AddConversationRequest{
		FirstMessage: models.SendMessageRequest{ID: "m1", SenderUsername: "alice", Text: "hello"},
		Participants: []string{"alice", "bob"},
	}
	resp := doJSON(t, env.app, http.MethodPost, "/api/conversations", first)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	first.FirstMessage.ID = "m2"
	resp = doJSON(t, env.app, http.MethodPost, "/api/conversations", first)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAddConversation_UnknownProfile(t *testing.T) {
	env := newTestApp(t, "alice")

	resp := doJSON(t, env.app, http.MethodPost, "/api/conversations", models.AddConversationRequest{
		FirstMessage: models.SendMessageRequest{ID: "m1", SenderUsername: "alice", Text: "hello"},
		Participants: []string{"alice", "ghost"},
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Empty(t, env.ledger.messages)
}

func TestSendMessage_Created(t *testing.T) {
	env := newTestApp(t, "alice", "bob")

	resp := doJSON(t, env.app, http.MethodPost, "/api/conversations/alice_bob/messages",
		models.SendMessageRequest{ID: "m1", SenderUsername: "alice", Text: "hello"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decodeBody[models.SendMessageResponse](t, resp)
	require.Positive(t, out.CreatedUnixTime)
}

func TestSendMessage_DuplicateConflict(t *testing.T) {
	env := newTestApp(t, "alice", "bob")

	body := models.SendMessageRequest{ID: "m1", SenderUsername: "alice", Text: "hello"}
	resp := doJSON(t, env.app, http.MethodPost, "/api/conversations/alice_bob/messages", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, env.app, http.MethodPost, "/api/conversations/alice_bob/messages", body)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSendMessage_BlankFieldBadRequest(t *testing.T) {
	env := newTestApp(t, "alice", "bob")

	resp := doJSON(t, env.app, http.MethodPost, "/api/conversations/alice_bob/messages",
		models.SendMessageRequest{ID: "m1", SenderUsername: "alice", Text: "  "})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Empty(t, env.ledger.messages)
}

func TestListMessages_EmptyIsNotFound(t *testing.T) {
	env := newTestApp(t, "alice", "bob")

	resp := doJSON(t, env.app, http.MethodGet, "/api/conversations/alice_bob/messages", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListMessages_PaginatesWithNextURI(t *testing.T) {
	env := newTestApp(t, "alice", "bob")
	env.ledger.messages = []models.Message{
		{ConversationID: "alice_bob", MessageID: "m1", SenderUsername: "alice", Text: "first", CreatedUnixTime: 100},
		{ConversationID: "alice_bob", MessageID: "m2", SenderUsername: "bob", Text: "second", CreatedUnixTime: 200},
	}

	resp := doJSON(t, env.app, http.MethodGet, "/api/conversations/alice_bob/messages?limit=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page1 := decodeBody[models.ListMessagesResponse](t, resp)
	require.Len(t, page1.Messages, 1)
	require.Equal(t, "second", page1.Messages[0].Text)
	require.NotEmpty(t, page1.NextURI)

	u, err := url.Parse(page1.NextURI)
	require.NoError(t, err)
	require.Equal(t, "/api/conversations/alice_bob/messages", u.Path)

	resp = doJSON(t, env.app, http.MethodGet, page1.NextURI, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page2 := decodeBody[models.ListMessagesResponse](t, resp)
	require.Len(t, page2.Messages, 1)
	require.Equal(t, "first", page2.Messages[0].Text)
	require.Empty(t, page2.NextURI)
	require.Greater(t, page1.Messages[0].UnixTime, page2.Messages[0].UnixTime)
}

func TestListConversations_MissingUsernameBadRequest(t *testing.T) {
	env := newTestApp(t)

	resp := doJSON(t, env.app, http.MethodGet, "/api/conversations", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListConversations_EnrichedListing(t *testing.T) {
	env := newTestApp(t, "alice", "bob")

	resp := doJSON(t, env.app, http.MethodPost, "/api/conversations", models.AddConversationRequest{
		FirstMessage: models.SendMessageRequest{ID: "m1", SenderUsername: "alice", Text: "hello"},
		Participants: []string{"alice", "bob"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, env.app, http.MethodGet, "/api/conversations?username=alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	out := decodeBody[models.ListConversationsResponse](t, resp)
	require.Len(t, out.Conversations, 1)
	require.Equal(t, "alice_bob", out.Conversations[0].ConversationID)
	require.Equal(t, "bob", out.Conversations[0].Profile.Username)
	require.Equal(t, "pic-bob", out.Conversations[0].Profile.ProfilePictureID)
}

func TestListConversations_StorageUnavailable(t *testing.T) {
	env := newTestApp(t, "alice")
	env.index.listErr = fmt.Errorf("%w: connection reset", apperr.ErrStorageUnavailable)

	resp := doJSON(t, env.app, http.MethodGet, "/api/conversations?username=alice", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}
