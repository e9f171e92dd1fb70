package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appidentity "github.com/shopcart/backend/internal/application/identity"
	"github.com/shopcart/backend/internal/domain/shared"
	"github.com/shopcart/backend/internal/infrastructure/auth"
	"github.com/shopcart/backend/internal/infrastructure/config"
	"github.com/shopcart/backend/internal/interfaces/http/dto"
	"github.com/shopcart/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input appidentity.RegisterInput) (*appidentity.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, input appidentity.LoginInput) (*appidentity.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.AuthResult), args.Error(1)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, input appidentity.RefreshTokenInput) (*appidentity.TokenPair, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.TokenPair), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, input appidentity.LogoutInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockAuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*appidentity.UserInfo, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.UserInfo), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, input appidentity.UpdateProfileInput) (*appidentity.UserInfo, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appidentity.UserInfo), args.Error(1)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, input appidentity.ChangePasswordInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "shopcart-test",
		MaxRefreshCount:        5,
	})
}

func setupAuthRouter(svc *MockAuthService, jwtService *auth.JWTService) *gin.Engine {
	h := NewAuthHandler(svc)
	router := gin.New()
	router.POST("/auth/register", h.Register)
	router.POST("/auth/login", h.Login)
	router.POST("/auth/token/refresh", h.RefreshToken)

	protected := router.Group("/auth")
	protected.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{JWTService: jwtService}))
	protected.POST("/logout", h.Logout)
	protected.GET("/profile", h.GetProfile)
	protected.PUT("/profile", h.UpdateProfile)
	protected.PUT("/password", h.ChangePassword)
	return router
}

func authResult() *appidentity.AuthResult {
	return &appidentity.AuthResult{
		Tokens: appidentity.TokenPair{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"},
		User:   appidentity.UserInfo{ID: uuid.New(), Username: "jdoe", Email: "jdoe@example.com"},
	}
}

func TestAuthHandler_Register(t *testing.T) {
	t.Run("creates account", func(t *testing.T) {
		svc := new(MockAuthService)
		router := setupAuthRouter(svc, testJWTService())

		svc.On("Register", mock.Anything, appidentity.RegisterInput{
			Username:  "jdoe",
			Email:     "jdoe@example.com",
			Password:  "password123",
			FirstName: "Jane",
		}).Return(authResult(), nil)

		w := serve(router, jsonRequest(http.MethodPost, "/auth/register", map[string]any{
			"username":   "jdoe",
			"email":      "jdoe@example.com",
			"password":   "password123",
			"first_name": "Jane",
		}))

		assert.Equal(t, http.StatusCreated, w.Code)
		data := decodeResponse(t, w).Data.(map[string]any)
		assert.Equal(t, "access", data["tokens"].(map[string]any)["access_token"])
		svc.AssertExpectations(t)
	})

	t.Run("short password and bad email", func(t *testing.T) {
		svc := new(MockAuthService)
		router := setupAuthRouter(svc, testJWTService())

		w := serve(router, jsonRequest(http.MethodPost, "/auth/register", map[string]any{
			"username": "jdoe",
			"email":    "not-an-email",
			"password": "short",
		}))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Len(t, resp.Error.Details, 2)
	})

	t.Run("username taken", func(t *testing.T) {
		svc := new(MockAuthService)
		router := setupAuthRouter(svc, testJWTService())

		svc.On("Register", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError(shared.CodeAlreadyExists, "A user with that username already exists."))

		w := serve(router, jsonRequest(http.MethodPost, "/auth/register", map[string]any{
			"username": "jdoe",
			"email":    "jdoe@example.com",
			"password": "password123",
		}))

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	svc := new(MockAuthService)
	router := setupAuthRouter(svc, testJWTService())

	svc.On("Login", mock.Anything, appidentity.LoginInput{Username: "jdoe", Password: "password123"}).Return(authResult(), nil)
	svc.On("Login", mock.Anything, appidentity.LoginInput{Username: "jdoe", Password: "wrong-pass"}).
		Return(nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password"))

	w := serve(router, jsonRequest(http.MethodPost, "/auth/login", `{"username":"jdoe","password":"password123"}`))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(router, jsonRequest(http.MethodPost, "/auth/login", `{"username":"jdoe","password":"wrong-pass"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidCredentials, decodeResponse(t, w).Error.Code)

	w = serve(router, jsonRequest(http.MethodPost, "/auth/login", `{"username":"jdoe"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	svc := new(MockAuthService)
	router := setupAuthRouter(svc, testJWTService())

	svc.On("RefreshToken", mock.Anything, appidentity.RefreshTokenInput{RefreshToken: "r1"}).
		Return(&appidentity.TokenPair{AccessToken: "a2", RefreshToken: "r2", TokenType: "Bearer"}, nil)

	w := serve(router, jsonRequest(http.MethodPost, "/auth/token/refresh", `{"refresh_token":"r1"}`))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "a2", data["access_token"])
	svc.AssertExpectations(t)
}

func TestAuthHandler_Logout(t *testing.T) {
	jwtService := testJWTService()
	userID := uuid.New()
	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{UserID: userID, Username: "jdoe"})
	require.NoError(t, err)
	claims, err := jwtService.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	svc := new(MockAuthService)
	router := setupAuthRouter(svc, jwtService)

	svc.On("Logout", mock.Anything, mock.MatchedBy(func(in appidentity.LogoutInput) bool {
		return in.UserID == userID && in.TokenJTI == claims.ID && in.TokenExpiresAt.Equal(claims.GetExpiresAtTime())
	})).Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := serve(router, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)

	w = serve(router, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Profile(t *testing.T) {
	jwtService := testJWTService()
	userID := uuid.New()
	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{UserID: userID, Username: "jdoe"})
	require.NoError(t, err)

	svc := new(MockAuthService)
	router := setupAuthRouter(svc, jwtService)
	info := &appidentity.UserInfo{ID: userID, Username: "jdoe", Email: "new@example.com"}

	svc.On("GetProfile", mock.Anything, userID).Return(info, nil)
	svc.On("UpdateProfile", mock.Anything, userID, mock.MatchedBy(func(in appidentity.UpdateProfileInput) bool {
		return in.Email != nil && *in.Email == "new@example.com" && in.FirstName == nil
	})).Return(info, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := serve(router, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = jsonRequest(http.MethodPut, "/auth/profile", `{"email":"new@example.com"}`)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w = serve(router, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = jsonRequest(http.MethodPut, "/auth/profile", `{"email":"nope"}`)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w = serve(router, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertExpectations(t)
}

func TestAuthHandler_ChangePassword(t *testing.T) {
	jwtService := testJWTService()
	userID := uuid.New()
	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{UserID: userID, Username: "jdoe"})
	require.NoError(t, err)

	svc := new(MockAuthService)
	router := setupAuthRouter(svc, jwtService)

	svc.On("ChangePassword", mock.Anything, appidentity.ChangePasswordInput{
		UserID:      userID,
		OldPassword: "password123",
		NewPassword: "newpassword456",
	}).Return(nil)

	req := jsonRequest(http.MethodPut, "/auth/password", `{"old_password":"password123","new_password":"newpassword456"}`)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	w := serve(router, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
