package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"docsearch/internal/auth"
)

const (
	// APIKeyHeader carries the public, client-scoped key on every API request.
	APIKeyHeader = "X-Api-Key"
	// SessionLocalKey is where the resolved session is stored in context locals.
	SessionLocalKey = "session"
)

// APIKey enforces the public anon key on client-facing routes. An empty
// configured key disables the check (local development).
func APIKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return c.Next()
		}
		got := c.Get(APIKeyHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			return writeAuthError(c, fiber.StatusUnauthorized, "INVALID_API_KEY", "invalid or missing api key")
		}
		return c.Next()
	}
}

// Session resolves the request's session via the given resolver and stores it
// in context locals for handlers. Requests without a verified user identity
// are rejected here, before any handler runs.
func Session(resolver auth.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := resolver.Resolve(c.UserContext(), func(k string) string { return c.Get(k) })
		if err != nil {
			return writeAuthError(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
		}
		c.Locals(SessionLocalKey, sess)
		return c.Next()
	}
}

// SessionFromCtx returns the session stored by the Session middleware, or nil.
func SessionFromCtx(c *fiber.Ctx) *auth.Session {
	if v := c.Locals(SessionLocalKey); v != nil {
		if s, ok := v.(*auth.Session); ok {
			return s
		}
	}
	return nil
}

// ServiceRole guards administrative routes with the privileged service-role
// key, carried as a bearer token. This credential bypasses per-user scoping,
// so it is compared in constant time and never echoed.
func ServiceRole(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if key == "" {
			return writeAuthError(c, fiber.StatusInternalServerError, "SERVICE_KEY_UNSET", "service-role key not configured")
		}
		token := strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(key)) != 1 {
			return writeAuthError(c, fiber.StatusUnauthorized, "INVALID_SERVICE_KEY", "invalid service-role credential")
		}
		return c.Next()
	}
}

func writeAuthError(c *fiber.Ctx, status int, code, message string) error {
	rid, _ := c.Locals(RequestIDLocalKey).(string)
	return c.Status(status).JSON(fiber.Map{
		"request_id": rid,
		"code":       code,
		"message":    message,
	})
}
