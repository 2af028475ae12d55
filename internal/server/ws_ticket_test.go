package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"koinonia/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisTestServer(t *testing.T) (*Server, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return &Server{
		config: &config.Config{JWTSecret: "test-secret"},
		redis:  rdb,
	}, rdb
}

func TestIssueWSTicket(t *testing.T) {
	s, rdb := newRedisTestServer(t)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("userID", uint(7))
		return c.Next()
	})
	app.Post("/ws/ticket", s.IssueWSTicket)

	req := httptest.NewRequest(http.MethodPost, "/ws/ticket", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Ticket    string `json:"ticket"`
		ExpiresIn int    `json:"expires_in"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Ticket)
	assert.Equal(t, 30, body.ExpiresIn)

	// Ticket maps to the issuing user in Redis
	stored, err := rdb.Get(context.Background(), "ws_ticket:"+body.Ticket).Result()
	require.NoError(t, err)
	assert.Equal(t, "7", stored)
}

func TestAuthRequired_WSTicket(t *testing.T) {
	s, rdb := newRedisTestServer(t)
	ctx := context.Background()

	app := fiber.New()
	app.Get("/api/ws/feed", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"userID": c.Locals("userID")})
	})

	t.Run("Valid ticket authenticates and is consumed", func(t *testing.T) {
		ticket := "valid-ticket-1"
		key := fmt.Sprintf("ws_ticket:%s", ticket)
		require.NoError(t, rdb.Set(ctx, key, "123", time.Minute).Err())

		req := httptest.NewRequest(http.MethodGet, "/api/ws/feed?ticket="+ticket, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, float64(123), body["userID"])

		// Single use: ticket is gone
		exists, err := rdb.Exists(ctx, key).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(0), exists)
	})

	t.Run("Reused ticket rejected", func(t *testing.T) {
		ticket := "valid-ticket-2"
		require.NoError(t, rdb.Set(ctx, "ws_ticket:"+ticket, "123", time.Minute).Err())

		req := httptest.NewRequest(http.MethodGet, "/api/ws/feed?ticket="+ticket, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		req2 := httptest.NewRequest(http.MethodGet, "/api/ws/feed?ticket="+ticket, nil)
		resp2, err := app.Test(req2)
		require.NoError(t, err)
		defer func() { _ = resp2.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
	})

	t.Run("Unknown ticket on WS path returns 401", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/ws/feed?ticket=bogus", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRefreshTokenRotation(t *testing.T) {
	s, rdb := newRedisTestServer(t)
	ctx := context.Background()

	app := fiber.New()
	app.Post("/auth/refresh", s.Refresh)

	// Seed a refresh token as Login would
	require.NoError(t, rdb.Set(ctx, "refresh_token:old-token", "42", time.Hour).Err())

	body := []byte(`{"refresh_token":"old-token"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Token        string `json:"token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.NotEmpty(t, result.Token)
	assert.NotEmpty(t, result.RefreshToken)
	assert.NotEqual(t, "old-token", result.RefreshToken)

	// Old token revoked, new one valid
	exists, err := rdb.Exists(ctx, "refresh_token:old-token").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(0), exists)

	stored, err := rdb.Get(ctx, "refresh_token:"+result.RefreshToken).Result()
	require.NoError(t, err)
	assert.Equal(t, "42", stored)

	// Replaying the consumed token fails
	req2 := httptest.NewRequest(http.MethodPost, "/auth/refresh", bytes.NewReader(body))
	req2.Header.Set("Content-Type", "application/json")
	resp2, err := app.Test(req2)
	require.NoError(t, err)
	defer func() { _ = resp2.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
}

func TestLogoutBlacklistsToken(t *testing.T) {
	s, rdb := newRedisTestServer(t)

	app := fiber.New()
	app.Post("/auth/logout", s.Logout)
	app.Get("/protected", s.AuthRequired(), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	token, err := s.generateToken(42)
	require.NoError(t, err)

	// Token works before logout
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Logout
	req2 := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req2.Header.Set("Authorization", "Bearer "+token)
	resp2, err := app.Test(req2)
	require.NoError(t, err)
	_ = resp2.Body.Close()
	assert.Equal(t, http.StatusOK, resp2.StatusCode)

	// A blacklist entry exists for the token's jti
	keys := rdb.Keys(context.Background(), "blacklist:*").Val()
	require.Len(t, keys, 1)

	// Token no longer accepted
	req3 := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req3.Header.Set("Authorization", "Bearer "+token)
	resp3, err := app.Test(req3)
	require.NoError(t, err)
	defer func() { _ = resp3.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp3.StatusCode)
}
