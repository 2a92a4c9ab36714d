package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"acervo/internal/http/middleware"
	"acervo/internal/service"
	"acervo/pkg/model"
)

type roleBody struct {
	Role model.Role `json:"role"`
}

// ListUsers serves the admin account listing with name/email search.
func ListUsers(svc service.UserService, defaultLimit int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := pageWindow(c, defaultLimit)
		if err != nil {
			return err
		}

		res, err := svc.List(c.UserContext(), c.Query("search"), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(listPayload{
			Success: true,
			Data:    res.Items,
			Pagination: pagination{
				Total:  res.Total,
				Limit:  limit,
				Offset: offset,
				Pages:  res.PageCount,
			},
		})
	}
}

// UpdateUserRole changes an account's role. Self-demotion of the acting admin
// is rejected.
func UpdateUserRole(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, _ := middleware.CurrentUser(c)

		var body roleBody
		if err := c.BodyParser(&body); err != nil {
			return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		}

		user, err := svc.UpdateRole(c.UserContext(), actor, c.Params("id"), body.Role)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrSelfDemotion):
				return writeError(c, fiber.StatusForbidden, "SELF_DEMOTION", "você não pode remover seus próprios privilégios de administrador")
			case errors.Is(err, service.ErrInvalidRole):
				return writeError(c, fiber.StatusBadRequest, "INVALID_ROLE", "invalid role")
			case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrIDRequired):
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "user not found")
			default:
				return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
			}
		}
		return writeData(c, fiber.StatusOK, user)
	}
}

// AdminStats serves the administration panel counters.
func AdminStats(svc service.StatsService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := svc.Admin(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return writeData(c, fiber.StatusOK, stats)
	}
}
