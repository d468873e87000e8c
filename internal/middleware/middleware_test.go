package middleware

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New()
	app.Use(RequestLogger())
	app.Get("/whoami", EnsurePlayerID(), func(c *fiber.Ctx) error {
		return c.SendString(PlayerID(c))
	})
	app.Get("/ws", WebSocketUpgrade(), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func body(t *testing.T, app *fiber.App, target string, header map[string]string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", target, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(b)
}

func TestEnsurePlayerID(t *testing.T) {
	app := newApp()

	status, got := body(t, app, "/whoami", map[string]string{"X-Player-ID": "alice"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alice", got)

	status, got = body(t, app, "/whoami?playerId=bob", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "bob", got)

	status, got = body(t, app, "/whoami?playerId=bob", map[string]string{"X-Player-ID": "alice"})
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "alice", got, "header wins over query")

	status, got = body(t, app, "/whoami", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Contains(t, got, "Player ID is required")
}

func TestWebSocketUpgradeRejectsPlainRequests(t *testing.T) {
	status, _ := body(t, newApp(), "/ws", nil)
	assert.Equal(t, fiber.StatusUpgradeRequired, status)
}
