package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"

	"docsearch/internal/auth"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		rid := c.Locals(RequestIDLocalKey)
		return c.SendString(rid.(string))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		// Check if it's readable in handler (from response body)
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, ridHeader, buf.String())
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		existingID := "test-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, existingID, resp.Header.Get(RequestIDHeader))

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, existingID, buf.String())
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()

	// Logger depends on RequestID for the request_id field
	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})

	req := httptest.NewRequest("GET", "/test", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	// Verify log output
	var logData map[string]any
	err := json.Unmarshal(buf.Bytes(), &logData)
	assert.NoError(t, err)

	assert.NotEmpty(t, logData["request_id"])
	assert.Equal(t, "GET", logData["method"])
	assert.Equal(t, "/test", logData["path"])
	assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
	assert.NotNil(t, logData["latency"])
	assert.NotEmpty(t, logData["ts"])
}

func TestAPIKey(t *testing.T) {
	newApp := func(key string) *fiber.App {
		app := fiber.New()
		app.Use(APIKey(key))
		app.Get("/test", func(c *fiber.Ctx) error {
			return c.SendString("ok")
		})
		return app
	}

	t.Run("valid key passes", func(t *testing.T) {
		app := newApp("anon-key")
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(APIKeyHeader, "anon-key")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("missing key rejected", func(t *testing.T) {
		app := newApp("anon-key")
		req := httptest.NewRequest("GET", "/test", nil)

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		app := newApp("anon-key")
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(APIKeyHeader, "other")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("empty configured key disables check", func(t *testing.T) {
		app := newApp("")
		req := httptest.NewRequest("GET", "/test", nil)

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
}

func TestSession(t *testing.T) {
	app := fiber.New()
	app.Use(Session(auth.NewHeaderResolver()))
	app.Get("/test", func(c *fiber.Ctx) error {
		sess := SessionFromCtx(c)
		if sess == nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(sess.UserID)
	})

	t.Run("resolved session reaches handler", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(auth.UserIDHeader, "user-42")
		req.Header.Set(auth.UserEmailHeader, "u@example.com")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, "user-42", buf.String())
	})

	t.Run("missing identity rejected before handler", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestServiceRole(t *testing.T) {
	newApp := func(key string) *fiber.App {
		app := fiber.New()
		app.Post("/admin", ServiceRole(key), func(c *fiber.Ctx) error {
			return c.SendString("ok")
		})
		return app
	}

	t.Run("valid bearer token passes", func(t *testing.T) {
		app := newApp("service-key")
		req := httptest.NewRequest("POST", "/admin", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer service-key")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("anon key never grants admin access", func(t *testing.T) {
		app := newApp("service-key")
		req := httptest.NewRequest("POST", "/admin", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer anon-key")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		app := newApp("service-key")
		req := httptest.NewRequest("POST", "/admin", nil)

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unset key fails closed", func(t *testing.T) {
		app := newApp("")
		req := httptest.NewRequest("POST", "/admin", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer anything")

		resp, _ := app.Test(req)
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	})
}
