package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"yamdb/internal/microservices/http-api/access"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, tokenString string) (*models.User, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func setupRouter(a Authenticator, guards ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Authenticate(a, slog.New(slog.NewTextHandler(io.Discard, nil))))
	handlers := append(guards, func(c *gin.Context) {
		actor := ActorFrom(c)
		c.JSON(http.StatusOK, gin.H{"role": actor.Role.String(), "user_id": actor.UserID})
	})
	r.GET("/", handlers...)
	return r
}

func doRequest(r *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate_Anonymous(t *testing.T) {
	a := new(MockAuthenticator)
	w := doRequest(setupRouter(a), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"anonymous"`)
	a.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	a := new(MockAuthenticator)
	a.On("Authenticate", mock.Anything, "good").Return(&models.User{ID: 5, Role: models.RoleModerator}, nil)

	w := doRequest(setupRouter(a), "Bearer good")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"moderator"`)
	assert.Contains(t, w.Body.String(), `"user_id":5`)
}

func TestAuthenticate_Rejects(t *testing.T) {
	a := new(MockAuthenticator)
	a.On("Authenticate", mock.Anything, "bad").Return(nil, service.ErrInvalidToken)
	a.On("Authenticate", mock.Anything, "old").Return(nil, service.ErrExpiredToken)

	for _, header := range []string{"Bearer bad", "Bearer old", "Token abc", "Bearer", "Bearer a b"} {
		w := doRequest(setupRouter(a), header)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestRequireAuth(t *testing.T) {
	a := new(MockAuthenticator)
	a.On("Authenticate", mock.Anything, "good").Return(&models.User{ID: 1, Role: models.RoleUser}, nil)
	r := setupRouter(a, RequireAuth())

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, "Bearer good").Code)
}

func TestAuthorize(t *testing.T) {
	a := new(MockAuthenticator)
	a.On("Authenticate", mock.Anything, "user").Return(&models.User{ID: 1, Role: models.RoleUser}, nil)
	a.On("Authenticate", mock.Anything, "admin").Return(&models.User{ID: 2, Role: models.RoleAdmin}, nil)
	r := setupRouter(a, Authorize(access.Create, access.ResourceTitle))

	assert.Equal(t, http.StatusUnauthorized, doRequest(r, "").Code)
	assert.Equal(t, http.StatusForbidden, doRequest(r, "Bearer user").Code)
	assert.Equal(t, http.StatusOK, doRequest(r, "Bearer admin").Code)
}
