package server

import (
	"fmt"
	"testing"

	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowEndpoints(t *testing.T) {
	_, app := newTestServer(t)
	aliceToken, aliceID := signupUser(t, app, "alice")
	_, bobID := signupUser(t, app, "bob")

	t.Run("self follow rejected", func(t *testing.T) {
		resp := jsonRequest(t, app, "POST", fmt.Sprintf("/api/users/%d/follow", aliceID), aliceToken, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("following an unknown user", func(t *testing.T) {
		resp := jsonRequest(t, app, "POST", "/api/users/9999/follow", aliceToken, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("follow and list", func(t *testing.T) {
		resp := jsonRequest(t, app, "POST", fmt.Sprintf("/api/users/%d/follow", bobID), aliceToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp = jsonRequest(t, app, "GET", fmt.Sprintf("/api/users/%d/followers", bobID), aliceToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var followers struct {
			Followers []models.User `json:"followers"`
		}
		decodeBody(t, resp, &followers)
		require.Len(t, followers.Followers, 1)
		assert.Equal(t, "alice", followers.Followers[0].Username)

		resp = jsonRequest(t, app, "GET", fmt.Sprintf("/api/users/%d/following", aliceID), aliceToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var following struct {
			Following []models.User `json:"following"`
		}
		decodeBody(t, resp, &following)
		require.Len(t, following.Following, 1)
		assert.Equal(t, "bob", following.Following[0].Username)
	})

	t.Run("unfollow", func(t *testing.T) {
		resp := jsonRequest(t, app, "DELETE", fmt.Sprintf("/api/users/%d/follow", bobID), aliceToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp = jsonRequest(t, app, "GET", fmt.Sprintf("/api/users/%d/followers", bobID), aliceToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var followers struct {
			Followers []models.User `json:"followers"`
		}
		decodeBody(t, resp, &followers)
		assert.Empty(t, followers.Followers)
	})
}

func TestBlockEndpoints(t *testing.T) {
	_, app := newTestServer(t)
	aliceToken, aliceID := signupUser(t, app, "alice")
	bobToken, bobID := signupUser(t, app, "bob")

	resp := jsonRequest(t, app, "POST", fmt.Sprintf("/api/users/%d/block", bobID), aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	t.Run("the block list shows the blocked user", func(t *testing.T) {
		resp := jsonRequest(t, app, "GET", "/api/blocks", aliceToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Blocks []models.Block `json:"blocks"`
		}
		decodeBody(t, resp, &body)
		require.Len(t, body.Blocks, 1)
		assert.Equal(t, bobID, body.Blocks[0].BlockedID)
	})

	t.Run("the blocked user cannot follow back", func(t *testing.T) {
		resp := jsonRequest(t, app, "POST", fmt.Sprintf("/api/users/%d/follow", aliceID), bobToken, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unblock restores interaction", func(t *testing.T) {
		resp := jsonRequest(t, app, "DELETE", fmt.Sprintf("/api/users/%d/block", bobID), aliceToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp = jsonRequest(t, app, "GET", "/api/blocks", aliceToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var body struct {
			Blocks []models.Block `json:"blocks"`
		}
		decodeBody(t, resp, &body)
		assert.Empty(t, body.Blocks)
	})
}

func TestSearchUsers(t *testing.T) {
	_, app := newTestServer(t)
	token, _ := signupUser(t, app, "alice")
	signupUser(t, app, "alicia")
	signupUser(t, app, "bob")

	t.Run("empty query rejected", func(t *testing.T) {
		resp := jsonRequest(t, app, "GET", "/api/users/search", token, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("case-insensitive match", func(t *testing.T) {
		resp := jsonRequest(t, app, "GET", "/api/users/search?q=ALI", token, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var body struct {
			Users []models.User `json:"users"`
		}
		decodeBody(t, resp, &body)
		require.Len(t, body.Users, 2)
	})
}
