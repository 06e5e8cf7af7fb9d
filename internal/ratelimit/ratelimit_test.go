package ratelimit

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anuvataru/jewelry-catalog/internal/apperr"
)

func TestLimiterRejectsAfterMax(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.Handler})
	app.Use("/api", New(2, time.Minute, nil))
	app.Get("/api/products", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	for i := 0; i < 2; i++ {
		res, err := app.Test(httptest.NewRequest("GET", "/api/products", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, res.StatusCode)
	}

	res, err := app.Test(httptest.NewRequest("GET", "/api/products", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, res.StatusCode)
	b, _ := io.ReadAll(res.Body)
	assert.True(t, strings.Contains(string(b), "Too many requests"), string(b))

	res, err = app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode, "routes outside /api are not limited")
}

func TestNewRedisStorageRejectsBadURL(t *testing.T) {
	_, err := NewRedisStorage(context.Background(), "not-a-redis-url")
	assert.Error(t, err)
}

// Runs against a real server only when REDIS_URL is set.
func TestRedisStorageRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	s, err := NewRedisStorage(context.Background(), url)
	require.NoError(t, err)
	defer s.Close()
	s.prefix = "jewelry-test:"

	got, err := s.Get("missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Set("k", []byte("v"), time.Minute))
	got, err = s.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, s.Delete("k"))
	require.NoError(t, s.Set("a", []byte("1"), time.Minute))
	require.NoError(t, s.Reset())
	got, err = s.Get("a")
	require.NoError(t, err)
	assert.Nil(t, got)
}
