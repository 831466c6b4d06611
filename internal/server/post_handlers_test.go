package server

import (
	"fmt"
	"testing"

	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPostViaAPI(t *testing.T, app *fiber.App, token, content string) models.Post {
	t.Helper()
	resp := jsonRequest(t, app, "POST", "/api/posts/", token, map[string]string{
		"content": content,
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var post models.Post
	decodeBody(t, resp, &post)
	require.NotZero(t, post.ID)
	return post
}

func TestCreatePost(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "alice")

	t.Run("valid post", func(t *testing.T) {
		post := createPostViaAPI(t, app, token, "hello world")
		assert.Equal(t, "hello world", post.Content)
	})

	t.Run("empty content", func(t *testing.T) {
		resp := jsonRequest(t, app, "POST", "/api/posts/", token, map[string]string{
			"content": "",
		})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid post id in path", func(t *testing.T) {
		resp := jsonRequest(t, app, "GET", "/api/posts/abc", token, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func feedContents(t *testing.T, app *fiber.App, token string) []string {
	t.Helper()
	resp := jsonRequest(t, app, "GET", "/api/posts/", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Posts []models.Post `json:"posts"`
	}
	decodeBody(t, resp, &body)

	out := make([]string, 0, len(body.Posts))
	for _, p := range body.Posts {
		out = append(out, p.Content)
	}
	return out
}

func TestFeedVisibility(t *testing.T) {
	_, app := newTestServer(t)
	aliceToken, _ := signupUser(t, app, "alice")
	bobToken, bobID := signupUser(t, app, "bob")

	createPostViaAPI(t, app, bobToken, "bob public post")

	t.Run("public posts show in the feed", func(t *testing.T) {
		assert.Contains(t, feedContents(t, app, aliceToken), "bob public post")
	})

	t.Run("private profile hides posts from strangers", func(t *testing.T) {
		private := true
		resp := jsonRequest(t, app, "PUT", "/api/users/me", bobToken, map[string]any{
			"is_private": &private,
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		assert.NotContains(t, feedContents(t, app, aliceToken), "bob public post")
	})

	t.Run("private profile withholds details", func(t *testing.T) {
		resp := jsonRequest(t, app, "GET", fmt.Sprintf("/api/users/%d", bobID), aliceToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body map[string]any
		decodeBody(t, resp, &body)
		assert.Equal(t, true, body["private"])
		assert.Nil(t, body["profile"])
	})

	t.Run("following reveals the private author", func(t *testing.T) {
		resp := jsonRequest(t, app, "POST", fmt.Sprintf("/api/users/%d/follow", bobID), aliceToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		assert.Contains(t, feedContents(t, app, aliceToken), "bob public post")
	})

	t.Run("a block hides everything again", func(t *testing.T) {
		resp := jsonRequest(t, app, "POST", fmt.Sprintf("/api/users/%d/block", bobID), aliceToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		assert.NotContains(t, feedContents(t, app, aliceToken), "bob public post")
	})
}

func TestToggleLike(t *testing.T) {
	_, app := newTestServer(t)
	aliceToken, _ := signupUser(t, app, "alice")
	bobToken, _ := signupUser(t, app, "bob")

	post := createPostViaAPI(t, app, bobToken, "like me")
	path := fmt.Sprintf("/api/posts/%d/like", post.ID)

	resp := jsonRequest(t, app, "POST", path, aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		Liked bool `json:"liked"`
	}
	decodeBody(t, resp, &body)
	assert.True(t, body.Liked)

	resp = jsonRequest(t, app, "POST", path, aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &body)
	assert.False(t, body.Liked)

	// The like produced exactly one notification for bob.
	resp = jsonRequest(t, app, "GET", "/api/notifications/unread-count", bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var count struct {
		UnreadCount int64 `json:"unread_count"`
	}
	decodeBody(t, resp, &count)
	assert.EqualValues(t, 1, count.UnreadCount)
}

func TestComments(t *testing.T) {
	_, app := newTestServer(t)
	aliceToken, _ := signupUser(t, app, "alice")
	bobToken, _ := signupUser(t, app, "bob")

	post := createPostViaAPI(t, app, bobToken, "comment on me")

	resp := jsonRequest(t, app, "POST", fmt.Sprintf("/api/posts/%d/comments", post.ID), aliceToken,
		map[string]string{"content": "first"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	resp = jsonRequest(t, app, "GET", fmt.Sprintf("/api/posts/%d/comments", post.ID), bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body struct {
		Comments []models.Comment `json:"comments"`
	}
	decodeBody(t, resp, &body)
	require.Len(t, body.Comments, 1)
	assert.Equal(t, "first", body.Comments[0].Content)

	// Counts flow back on the post itself.
	resp = jsonRequest(t, app, "GET", fmt.Sprintf("/api/posts/%d", post.ID), bobToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got models.Post
	decodeBody(t, resp, &got)
	assert.Equal(t, 1, got.CommentsCount)
}

func TestDeletePost(t *testing.T) {
	_, app := newTestServer(t)
	aliceToken, _ := signupUser(t, app, "alice")
	bobToken, _ := signupUser(t, app, "bob")

	post := createPostViaAPI(t, app, bobToken, "delete me")
	path := fmt.Sprintf("/api/posts/%d", post.ID)

	t.Run("a stranger cannot delete", func(t *testing.T) {
		resp := jsonRequest(t, app, "DELETE", path, aliceToken, nil)
		assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	})

	t.Run("the author can delete", func(t *testing.T) {
		resp := jsonRequest(t, app, "DELETE", path, bobToken, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp = jsonRequest(t, app, "GET", path, bobToken, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}
