package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"acervo/pkg/model"
)

// UserLocalKey is the key used to store the authenticated account in Fiber's
// context locals.
const UserLocalKey = "auth_user"

// TokenVerifier resolves a session token to its account.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*model.User, error)
}

// CurrentUser returns the account stored by Auth, if any.
func CurrentUser(c *fiber.Ctx) (model.User, bool) {
	u, ok := c.Locals(UserLocalKey).(model.User)
	return u, ok
}

// Auth guards a route group behind a valid session. The token is read from
// the session cookie, falling back to an Authorization bearer header so
// non-browser clients can authenticate too. On success the account is stored
// in context locals under UserLocalKey.
func Auth(verifier TokenVerifier, cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(cookieName)
		if token == "" {
			if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
				token = strings.TrimPrefix(h, "Bearer ")
			}
		}
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized)
		}
		user, err := verifier.Verify(c.UserContext(), token)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized)
		}
		c.Locals(UserLocalKey, *user)
		return c.Next()
	}
}

// AdminOnly rejects requests whose authenticated account is not an admin.
// Must run after Auth.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized)
		}
		if !user.IsAdmin() {
			return fiber.NewError(fiber.StatusForbidden)
		}
		return c.Next()
	}
}
