package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ItsOuaail/aptiv-interns-platform/internal/models"
	"github.com/ItsOuaail/aptiv-interns-platform/internal/service"
	appErrors "github.com/ItsOuaail/aptiv-interns-platform/pkg/errors"
)

type authServiceMock struct {
	login     models.LoginRequest
	userID    string
	change    models.ChangePasswordRequest
	loginErr  error
	changeErr error
}

func (m *authServiceMock) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	m.login = req
	if m.loginErr != nil {
		return nil, m.loginErr
	}
	return &models.LoginResponse{AccessToken: "token", TokenType: "Bearer"}, nil
}

func (m *authServiceMock) ChangePassword(_ context.Context, userID string, req models.ChangePasswordRequest) error {
	m.userID, m.change = userID, req
	return m.changeErr
}

func TestAuthHandlerLogin(t *testing.T) {
	mockSvc := &authServiceMock{}
	h := NewAuthHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/auth/login", models.LoginRequest{Email: "hr@aptiv.com", Password: "secret"})
	h.Login(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hr@aptiv.com", mockSvc.login.Email)
	assert.Contains(t, string(decode(t, w).Data), `"access_token":"token"`)
}

func TestAuthHandlerLoginInvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&authServiceMock{loginErr: appErrors.ErrInvalidCredentials})

	c, w := newTestContext(http.MethodPost, "/auth/login", models.LoginRequest{Email: "hr@aptiv.com", Password: "bad"})
	h.Login(c)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "INVALID_CREDENTIALS", decode(t, w).Error.Code)
}

func TestAuthHandlerChangePassword(t *testing.T) {
	mockSvc := &authServiceMock{}
	h := NewAuthHandler(mockSvc)

	c, w := newTestContext(http.MethodPost, "/auth/change-password", nil)
	h.ChangePassword(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = newTestContext(http.MethodPost, "/auth/change-password", models.ChangePasswordRequest{CurrentPassword: "old", NewPassword: "NewPassw0rd", ConfirmPassword: "NewPassw0rd"})
	withActor(c, &models.User{ID: "u-1", Role: models.RoleIntern})
	h.ChangePassword(c)
	c.Writer.WriteHeaderNow()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "u-1", mockSvc.userID)
	assert.Equal(t, "NewPassw0rd", mockSvc.change.NewPassword)
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestMetricsHandlerReady(t *testing.T) {
	up := pingerFunc(func(context.Context) error { return nil })
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	h := NewMetricsHandler(service.NewMetricsService(), map[string]Pinger{"postgres": up})
	c, w := newTestContext(http.MethodGet, "/ready", nil)
	h.Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	h = NewMetricsHandler(nil, map[string]Pinger{"postgres": up, "redis": down})
	c, w = newTestContext(http.MethodGet, "/ready", nil)
	h.Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "connection refused")

	c, w = newTestContext(http.MethodGet, "/metrics", nil)
	h.Prometheus(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
