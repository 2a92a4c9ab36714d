package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"acervo/internal/service"
	serviceMocks "acervo/internal/service/mocks"
	"acervo/pkg/model"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestListUsers(t *testing.T) {
	mockSvc := new(serviceMocks.MockUserService)
	app := fiber.New()
	app.Get("/api/users", ListUsers(mockSvc, 9))

	t.Run("success with search", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, "silva", 9, 0).
			Return(&service.UserListResult{
				Items:     []model.User{{ID: "user1"}, {ID: "user6"}},
				Total:     2,
				PageCount: 1,
			}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/users?search=silva", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result listPayload
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, 2, result.Pagination.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid offset", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/users?offset=-2", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_OFFSET", decodeError(t, resp).Error)
	})
}

func TestUpdateUserRole(t *testing.T) {
	admin := model.User{ID: "user1", Role: model.RoleAdmin}

	newApp := func(mockSvc *serviceMocks.MockUserService) *fiber.App {
		app := fiber.New()
		app.Put("/api/users/:id", asUser(admin), UpdateUserRole(mockSvc))
		return app
	}

	put := func(app *fiber.App, id string, role string) *http.Response {
		body, _ := json.Marshal(map[string]string{"role": role})
		req := httptest.NewRequest(http.MethodPut, "/api/users/"+id, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newApp(mockSvc)

		mockSvc.On("UpdateRole", mock.Anything, admin, "user2", model.RoleAdmin).
			Return(&model.User{ID: "user2", Role: model.RoleAdmin}, nil).Once()

		resp := put(app, "user2", "ADMIN")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("self demotion is refused", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newApp(mockSvc)

		mockSvc.On("UpdateRole", mock.Anything, admin, "user1", model.RoleUser).
			Return(nil, service.ErrSelfDemotion).Once()

		resp := put(app, "user1", "USER")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "SELF_DEMOTION", decodeError(t, resp).Error)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unknown role", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newApp(mockSvc)

		mockSvc.On("UpdateRole", mock.Anything, admin, "user2", model.Role("OWNER")).
			Return(nil, service.ErrInvalidRole).Once()

		resp := put(app, "user2", "OWNER")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ROLE", decodeError(t, resp).Error)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockUserService)
		app := newApp(mockSvc)

		mockSvc.On("UpdateRole", mock.Anything, admin, "missing", model.RoleAdmin).
			Return(nil, service.ErrUserNotFound).Once()

		resp := put(app, "missing", "ADMIN")
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAdminStats(t *testing.T) {
	mockSvc := new(serviceMocks.MockStatsService)
	app := fiber.New()
	app.Get("/api/admin/stats", AdminStats(mockSvc))

	mockSvc.On("Admin", mock.Anything).Return(&model.AdminStats{
		TotalDocuments:     6,
		TotalUsers:         6,
		TotalAdmins:        1,
		ActiveUsers:        6,
		TotalDownloads:     447,
		DocumentsThisMonth: 1,
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/stats", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var result struct {
		Data model.AdminStats `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	assert.Equal(t, 6, result.Data.TotalDocuments)
	assert.Equal(t, 447, result.Data.TotalDownloads)
	mockSvc.AssertExpectations(t)
}
