package server

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngBytes is a minimal payload carrying the PNG signature, enough for MIME
// detection.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

func multipartUpload(t *testing.T, app *fiber.App, token, filename string, content []byte) (int, map[string]string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/media", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var body map[string]string
	decodeBody(t, resp, &body)
	return resp.StatusCode, body
}

func TestUploadMedia(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "alice")

	t.Run("valid image upload", func(t *testing.T) {
		status, body := multipartUpload(t, app, token, "avatar.png", pngBytes)
		require.Equal(t, fiber.StatusCreated, status)
		assert.NotEmpty(t, body["ref"])
		assert.True(t, strings.HasPrefix(body["url"], "/media/"), "url %q should live under the media base", body["url"])
	})

	t.Run("duplicate content dedupes to the same ref", func(t *testing.T) {
		_, first := multipartUpload(t, app, token, "one.png", pngBytes)
		_, second := multipartUpload(t, app, token, "two.png", pngBytes)
		assert.Equal(t, first["ref"], second["ref"])
	})

	t.Run("non-image rejected", func(t *testing.T) {
		status, _ := multipartUpload(t, app, token, "notes.txt", []byte("plain text"))
		assert.Equal(t, fiber.StatusBadRequest, status)
	})

	t.Run("missing file field", func(t *testing.T) {
		resp := jsonRequest(t, app, "POST", "/api/media", token, map[string]string{})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}
