package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimePtr(t *testing.T) {
	assert.Nil(t, formatTimePtr(nil))

	now := time.Date(2025, 3, 9, 8, 15, 0, 0, time.Local)
	formatted := formatTimePtr(&now)
	assert.IsType(t, "", formatted)

	expected := now.UTC().Format(time.RFC3339)
	assert.Equal(t, expected, formatted)
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	var offset, limit int
	app.Get("/list", func(c *fiber.Ctx) error {
		offset, limit = parsePagination(c, 20, 50)
		return c.SendStatus(fiber.StatusNoContent)
	})

	cases := []struct {
		url        string
		wantOffset int
		wantLimit  int
	}{
		{"/list", 0, 20},
		{"/list?page=3&limit=10", 20, 10},
		{"/list?page=0&limit=-5", 0, 20},
		{"/list?limit=9999", 0, 50},
		{"/list?page=abc&limit=xyz", 0, 20},
	}

	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.url, nil)
		_, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, tc.wantOffset, offset, tc.url)
		assert.Equal(t, tc.wantLimit, limit, tc.url)
	}
}

func TestGetClientIPHeaders(t *testing.T) {
	app := fiber.New()
	var got string
	app.Get("/ip", func(c *fiber.Ctx) error {
		got = GetClientIP(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("CF-Connecting-IP", "203.0.113.9")
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	_, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.9", got)

	req = httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")
	_, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "198.51.100.1", got)

	req = httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.Header.Set("X-Real-IP", "192.0.2.7")
	_, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.7", got)
}

func TestIsLoggedInDefaultsFalse(t *testing.T) {
	app := fiber.New()
	app.Get("/check", func(c *fiber.Ctx) error {
		assert.False(t, isLoggedIn(c))
		assert.Empty(t, ExtractUsername(c))

		c.Locals(FROM_PROTECTED, true)
		c.Locals(USER_NAME, "kei")
		assert.True(t, isLoggedIn(c))
		assert.Equal(t, "kei", ExtractUsername(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/check", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
