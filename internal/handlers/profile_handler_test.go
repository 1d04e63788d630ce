package handlers_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fathima-sithara/chat-backend/internal/models"
)

func TestGetProfile_NotFound(t *testing.T) {
	env := newTestApp(t)

	resp := doJSON(t, env.app, http.MethodGet, "/api/profile/ghost", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProfileLifecycle(t *testing.T) {
	env := newTestApp(t)
	profile := models.Profile{Username: "alice", FirstName: "Alice", LastName: "Smith", ProfilePictureID: "pic-1"}

	resp := doJSON(t, env.app, http.MethodPost, "/api/profile", profile)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, env.app, http.MethodPost, "/api/profile", profile)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, env.app, http.MethodGet, "/api/profile/alice", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[models.Profile](t, resp)
	require.Equal(t, profile, got)

	resp = doJSON(t, env.app, http.MethodDelete, "/api/profile/alice", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, env.app, http.MethodDelete, "/api/profile/alice", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddProfile_MissingFields(t *testing.T) {
	env := newTestApp(t)

	resp := doJSON(t, env.app, http.MethodPost, "/api/profile", models.Profile{Username: "alice"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestImageUploadAndDownload(t *testing.T) {
	env := newTestApp(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	payload := []byte("\x89PNG\r\n\x1a\nfake-image-bytes")
	_, err = fw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/images", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decodeBody[models.UploadImageResponse](t, resp)
	require.NotEmpty(t, out.ImageID)

	resp = doJSON(t, env.app, http.MethodGet, "/api/images/"+out.ImageID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, env.app, http.MethodDelete, "/api/images/"+out.ImageID, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, env.app, http.MethodGet, "/api/images/"+out.ImageID, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestImageUpload_NoFile(t *testing.T) {
	env := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/images", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
