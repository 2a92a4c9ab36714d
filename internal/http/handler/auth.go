package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"acervo/internal/http/middleware"
	"acervo/internal/service"
)

type credentialsBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerBody struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionCookie builds the session cookie carrying the signed token. An empty
// token with a negative TTL clears it.
func sessionCookie(name, token string, ttl time.Duration) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     name,
		Value:    token,
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	}
}

// Login authenticates credentials and sets the session cookie.
func Login(svc service.AuthService, cookieName string, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body credentialsBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		token, user, err := svc.Login(c.UserContext(), body.Email, body.Password)
		if err != nil {
			if errors.Is(err, service.ErrInvalidCredentials) {
				return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", "credenciais inválidas")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		c.Cookie(sessionCookie(cookieName, token, ttl))
		return writeData(c, fiber.StatusOK, user)
	}
}

// Register creates an account restricted to institutional email domains.
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body registerBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		user, err := svc.Register(c.UserContext(), body.Name, body.Email, body.Password)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrEmailDomain):
				return writeError(c, fiber.StatusBadRequest, "EMAIL_DOMAIN", "apenas e-mails institucionais são aceitos")
			case errors.Is(err, service.ErrEmailTaken):
				return writeError(c, fiber.StatusConflict, "EMAIL_TAKEN", "e-mail já cadastrado")
			case errors.Is(err, service.ErrInvalidCredentials):
				return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "nome, e-mail e senha são obrigatórios")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return writeData(c, fiber.StatusCreated, user)
	}
}

// Me returns the authenticated account.
func Me() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			return writeError(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		}
		return writeData(c, fiber.StatusOK, user)
	}
}

// Logout clears the session cookie.
func Logout(cookieName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(sessionCookie(cookieName, "", -time.Hour))
		return writeData(c, fiber.StatusOK, fiber.Map{"loggedOut": true})
	}
}
