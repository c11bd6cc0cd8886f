package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/gleam/dashboard/internal/auth"
	"github.com/gleam/dashboard/internal/database"
	"github.com/gleam/dashboard/internal/dto"
	"github.com/gleam/dashboard/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthService(t *testing.T, backend Backend) (*AuthService, *auth.JWTService) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	jwt := auth.New("test-secret", time.Hour)
	return NewAuthService(backend, repository.NewAuthRepository(db), jwt), jwt
}

func loginBackend() *fakeBackend {
	return &fakeBackend{handle: func(c backendCall) (interface{}, error) {
		switch c.Path {
		case "/login":
			return map[string]interface{}{
				"access_token": "upstream-abc",
				"user":         map[string]interface{}{"id": 42, "username": "bidan.ani", "name": "Ani", "role": "Nakes"},
			}, nil
		case "/profile":
			return map[string]interface{}{"id": 42, "username": "bidan.ani", "name": "Ani Lestari", "role": "admin"}, nil
		}
		return nil, nil
	}}
}

func TestAuthService_LoginCreatesSession(t *testing.T) {
	backend := loginBackend()
	svc, jwt := setupAuthService(t, backend)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: " bidan.ani ", Password: "pw"}, "test-agent", "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "nakes", resp.User.Role)
	assert.Equal(t, dto.ID("42"), resp.User.ID)

	claims, err := jwt.ValidateSessionToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)

	session, err := svc.Session(claims)
	require.NoError(t, err)
	assert.Equal(t, "upstream-abc", session.UpstreamToken)

	profile, err := svc.Profile(context.Background(), session, false)
	require.NoError(t, err)
	assert.Equal(t, "Ani", profile.Nama)
	assert.Equal(t, 1, backend.count("POST", "/login"))
}

func TestAuthService_LoginValidation(t *testing.T) {
	backend := loginBackend()
	svc, _ := setupAuthService(t, backend)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: " "}, "", "")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, backend.Calls())
}

func TestAuthService_LogoutRevokes(t *testing.T) {
	svc, jwt := setupAuthService(t, loginBackend())

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "a", Password: "b"}, "", "")
	require.NoError(t, err)
	claims, err := jwt.ValidateSessionToken(resp.AccessToken)
	require.NoError(t, err)

	id := uuid.MustParse(claims.Sub)
	require.NoError(t, svc.Logout(id, claims.JTI, resp.ExpiresAt))

	_, err = svc.Session(claims)
	assert.ErrorIs(t, err, ErrSessionRevoked)
}

func TestAuthService_RefreshProfileKeepsSessionRole(t *testing.T) {
	backend := loginBackend()
	svc, jwt := setupAuthService(t, backend)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "a", Password: "b"}, "", "")
	require.NoError(t, err)
	claims, _ := jwt.ValidateSessionToken(resp.AccessToken)
	session, err := svc.Session(claims)
	require.NoError(t, err)

	profile, err := svc.Profile(context.Background(), session, true)
	require.NoError(t, err)
	assert.Equal(t, "Ani Lestari", profile.Nama)
	assert.Equal(t, "nakes", profile.Role)

	reloaded, err := svc.Session(claims)
	require.NoError(t, err)
	cached, err := svc.Profile(context.Background(), reloaded, false)
	require.NoError(t, err)
	assert.Equal(t, "Ani Lestari", cached.Nama)
}

func TestAuthService_UpdatePasswordValidation(t *testing.T) {
	backend := loginBackend()
	svc, _ := setupAuthService(t, backend)

	err := svc.UpdatePassword(context.Background(), nil, dto.UpdatePasswordRequest{CurrentPassword: "old", NewPassword: "short", ConfirmPassword: "other"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 2)
	assert.Empty(t, backend.Calls())
}
