package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckRateLimit(t *testing.T) {
	t.Run("bypassed outside production", func(t *testing.T) {
		for _, env := range []string{"", "test", "development"} {
			t.Setenv("APP_ENV", env)
			allowed, err := CheckRateLimit(context.Background(), nil, "signup", "1", 1, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed, "env %q should bypass", env)
		}
	})

	t.Run("enforces the limit", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

		for i := 0; i < 3; i++ {
			allowed, err := CheckRateLimit(context.Background(), rdb, "login", "u1", 3, time.Minute)
			require.NoError(t, err)
			assert.True(t, allowed, "request %d within limit", i+1)
		}

		allowed, err := CheckRateLimit(context.Background(), rdb, "login", "u1", 3, time.Minute)
		require.NoError(t, err)
		assert.False(t, allowed, "fourth request exceeds the limit")
	})

	t.Run("window expiry resets the counter", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

		allowed, err := CheckRateLimit(context.Background(), rdb, "login", "u2", 1, time.Minute)
		require.NoError(t, err)
		require.True(t, allowed)

		allowed, err = CheckRateLimit(context.Background(), rdb, "login", "u2", 1, time.Minute)
		require.NoError(t, err)
		require.False(t, allowed)

		mr.FastForward(2 * time.Minute)

		allowed, err = CheckRateLimit(context.Background(), rdb, "login", "u2", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("resources are limited independently", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

		allowed, err := CheckRateLimit(context.Background(), rdb, "signup", "u3", 1, time.Minute)
		require.NoError(t, err)
		require.True(t, allowed)
		allowed, err = CheckRateLimit(context.Background(), rdb, "signup", "u3", 1, time.Minute)
		require.NoError(t, err)
		require.False(t, allowed)

		allowed, err = CheckRateLimit(context.Background(), rdb, "login", "u3", 1, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "a different resource has its own counter")
	})

	t.Run("nil client errors in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, err := CheckRateLimit(context.Background(), nil, "login", "u4", 1, time.Minute)
		assert.Error(t, err)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("fails open without redis", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		app := fiber.New()
		app.Get("/", RateLimit(nil, 1, time.Minute, "test"), func(c *fiber.Ctx) error {
			return c.SendStatus(http.StatusOK)
		})

		for i := 0; i < 3; i++ {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			_ = resp.Body.Close()
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}
	})

	t.Run("returns 429 over the limit", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

		app := fiber.New()
		app.Get("/", RateLimit(rdb, 2, time.Minute, "test"), func(c *fiber.Ctx) error {
			return c.SendStatus(http.StatusOK)
		})

		statuses := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			_ = resp.Body.Close()
			statuses = append(statuses, resp.StatusCode)
		}
		assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
	})
}
