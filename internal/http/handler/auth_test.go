package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"acervo/internal/service"
	serviceMocks "acervo/internal/service/mocks"
	"acervo/pkg/model"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testCookie = "acervo_session"

func loginRequest(t *testing.T, email, password string) *http.Request {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLogin(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := fiber.New()
	app.Post("/auth/login", Login(mockSvc, testCookie, time.Hour))

	t.Run("success sets the session cookie", func(t *testing.T) {
		user := &model.User{ID: "user1", Email: "joao.silva@uenf.br", Role: model.RoleAdmin}
		mockSvc.On("Login", mock.Anything, "joao.silva@uenf.br", "123456").
			Return("signed-token", user, nil).Once()

		resp, _ := app.Test(loginRequest(t, "joao.silva@uenf.br", "123456"))

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var cookie *http.Cookie
		for _, ck := range resp.Cookies() {
			if ck.Name == testCookie {
				cookie = ck
			}
		}
		require.NotNil(t, cookie)
		assert.Equal(t, "signed-token", cookie.Value)
		assert.True(t, cookie.HttpOnly)

		var result struct {
			Success bool       `json:"success"`
			Data    model.User `json:"data"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "user1", result.Data.ID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("bad credentials", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, "joao.silva@uenf.br", "wrong").
			Return("", nil, service.ErrInvalidCredentials).Once()

		resp, _ := app.Test(loginRequest(t, "joao.silva@uenf.br", "wrong"))

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, resp).Error)
		mockSvc.AssertExpectations(t)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{")))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return("", nil, errors.New("db fail")).Once()

		resp, _ := app.Test(loginRequest(t, "joao.silva@uenf.br", "123456"))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})
}

func TestRegister(t *testing.T) {
	mockSvc := new(serviceMocks.MockAuthService)
	app := fiber.New()
	app.Post("/auth/register", Register(mockSvc))

	post := func(body map[string]string) *http.Response {
		b, _ := json.Marshal(body)
		req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Register", mock.Anything, "Nova Conta", "nova.conta@uenf.br", "s3cret").
			Return(&model.User{ID: "new-id", Role: model.RoleUser}, nil).Once()

		resp := post(map[string]string{
			"name": "Nova Conta", "email": "nova.conta@uenf.br", "password": "s3cret",
		})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("outside domain", func(t *testing.T) {
		mockSvc.On("Register", mock.Anything, "Alguém", "alguem@gmail.com", "s3cret").
			Return(nil, service.ErrEmailDomain).Once()

		resp := post(map[string]string{
			"name": "Alguém", "email": "alguem@gmail.com", "password": "s3cret",
		})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "EMAIL_DOMAIN", decodeError(t, resp).Error)
	})

	t.Run("duplicate email", func(t *testing.T) {
		mockSvc.On("Register", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(nil, service.ErrEmailTaken).Once()

		resp := post(map[string]string{
			"name": "João", "email": "joao.silva@uenf.br", "password": "s3cret",
		})
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "EMAIL_TAKEN", decodeError(t, resp).Error)
	})
}

func TestMe(t *testing.T) {
	t.Run("authenticated", func(t *testing.T) {
		app := fiber.New()
		app.Get("/auth/me", asUser(model.User{ID: "user1", Role: model.RoleAdmin}), Me())

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Data model.User `json:"data"`
		}
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, "user1", result.Data.ID)
	})

	t.Run("no session", func(t *testing.T) {
		app := fiber.New()
		app.Get("/auth/me", Me())

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestLogout(t *testing.T) {
	app := fiber.New()
	app.Post("/auth/logout", Logout(testCookie))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == testCookie {
			cookie = ck
		}
	}
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.Expires.Before(time.Now()))
}
