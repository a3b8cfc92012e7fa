package router

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"yamdb/internal/microservices/http-api/access"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthService struct {
	service.AuthService
	mock.Mock
}

func (m *mockAuthService) Signup(ctx context.Context, req dto.SignupRequest) (*dto.SignupResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.SignupResponse)
	return resp, args.Error(1)
}

func (m *mockAuthService) ExchangeToken(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error) {
	args := m.Called(ctx, req)
	resp, _ := args.Get(0).(*dto.TokenResponse)
	return resp, args.Error(1)
}

type mockTitleService struct {
	service.TitleService
	mock.Mock
}

func (m *mockTitleService) List(ctx context.Context, filter dto.TitleFilterQuery, page, pageSize int) (*dto.Paginated[dto.TitleResponse], error) {
	args := m.Called(ctx, filter, page, pageSize)
	resp, _ := args.Get(0).(*dto.Paginated[dto.TitleResponse])
	return resp, args.Error(1)
}

type mockReviewService struct {
	service.ReviewService
	mock.Mock
}

func (m *mockReviewService) Create(ctx context.Context, actor access.Actor, titleID int64, req dto.CreateReviewRequest) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, actor, titleID, req)
	resp, _ := args.Get(0).(*dto.ReviewResponse)
	return resp, args.Error(1)
}

// tokenAuthenticator accepts a fixed set of tokens.
type tokenAuthenticator map[string]*models.User

func (a tokenAuthenticator) Authenticate(_ context.Context, token string) (*models.User, error) {
	if u, ok := a[token]; ok {
		return u, nil
	}
	return nil, service.ErrInvalidToken
}

type testRouter struct {
	engine  *gin.Engine
	auth    *mockAuthService
	titles  *mockTitleService
	reviews *mockReviewService
}

func newTestRouter(t *testing.T) *testRouter {
	t.Helper()
	return newTestRouterWith(t, nil)
}

// newTestRouterWith lets a test adjust the options before the engine is built.
func newTestRouterWith(t *testing.T, configure func(*Options)) *testRouter {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tr := &testRouter{
		auth:    &mockAuthService{},
		titles:  &mockTitleService{},
		reviews: &mockReviewService{},
	}
	pager := handler.Pager{DefaultSize: 20, MaxSize: 100}

	opts := Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Authenticator: tokenAuthenticator{
			"user-token":  {ID: 5, Username: "reader", Role: models.RoleUser},
			"admin-token": {ID: 1, Username: "root", Role: models.RoleAdmin},
		},
		CORSOrigins:    []string{"http://localhost:3000"},
		RequestTimeout: time.Second,
	}
	if configure != nil {
		configure(&opts)
	}

	engine, err := New(Handlers{
		Auth:       handler.NewAuthHandler(tr.auth),
		Users:      handler.NewUserHandler(nil, pager),
		Categories: handler.NewCategoryHandler(nil, pager),
		Genres:     handler.NewGenreHandler(nil, pager),
		Titles:     handler.NewTitleHandler(tr.titles, pager),
		Reviews:    handler.NewReviewHandler(tr.reviews, pager),
		Comments:   handler.NewCommentHandler(nil, pager),
	}, opts)
	require.NoError(t, err)
	tr.engine = engine

	t.Cleanup(func() {
		tr.auth.AssertExpectations(t)
		tr.titles.AssertExpectations(t)
		tr.reviews.AssertExpectations(t)
	})
	return tr
}

func (tr *testRouter) do(method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	tr.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}

func TestListTitles_Anonymous(t *testing.T) {
	tr := newTestRouter(t)
	tr.titles.On("List", mock.Anything, dto.TitleFilterQuery{}, 1, 20).
		Return(dto.NewPaginated([]dto.TitleResponse{{ID: 3, Name: "Dune"}}, 1, 1, 20), nil)

	w := tr.do(http.MethodGet, "/v1/titles/", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.EqualValues(t, 1, body["total"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestCreateTitle_Anonymous(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(http.MethodPost, "/v1/titles/", `{"name":"Dune","year":1965}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateTitle_PlainUserForbidden(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(http.MethodPost, "/v1/titles/", `{"name":"Dune","year":1965}`, "user-token")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestInvalidBearerToken(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(http.MethodGet, "/v1/titles/", "", "forged")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(http.MethodPut, "/v1/titles/", `{}`, "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "method not allowed", decode(t, w)["error"])
}

func TestUnknownRoute(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(http.MethodGet, "/v1/nothing-here", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSignup(t *testing.T) {
	tr := newTestRouter(t)
	req := dto.SignupRequest{Username: "reader", Email: "reader@example.com"}
	tr.auth.On("Signup", mock.Anything, req).
		Return(&dto.SignupResponse{Username: req.Username, Email: req.Email}, nil)

	w := tr.do(http.MethodPost, "/v1/auth/signup", `{"username":"reader","email":"reader@example.com"}`, "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "reader", body["username"])
	assert.Equal(t, "reader@example.com", body["email"])
}

func TestSignup_ReservedUsername(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(http.MethodPost, "/v1/auth/signup", `{"username":"me","email":"me@example.com"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	fields, ok := decode(t, w)["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, fields, "username")
}

func TestToken_WrongCode(t *testing.T) {
	tr := newTestRouter(t)
	tr.auth.On("ExchangeToken", mock.Anything, dto.TokenRequest{Username: "reader", ConfirmationCode: "nope"}).
		Return(nil, service.ErrInvalidCredentials)

	w := tr.do(http.MethodPost, "/v1/auth/token", `{"username":"reader","confirmation_code":"nope"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w), "confirmation code")
}

func TestToken_UnknownUser(t *testing.T) {
	tr := newTestRouter(t)
	tr.auth.On("ExchangeToken", mock.Anything, mock.Anything).
		Return(nil, errors.Join(service.ErrNotFound, errors.New("user not found")))

	w := tr.do(http.MethodPost, "/v1/auth/token", `{"username":"ghost","confirmation_code":"x"}`, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateReview_FractionalScore(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(http.MethodPost, "/v1/titles/3/reviews/", `{"text":"good","score":8.5}`, "user-token")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReview(t *testing.T) {
	tr := newTestRouter(t)
	score := 8
	actor := access.Actor{UserID: 5, Role: access.User}
	tr.reviews.On("Create", mock.Anything, actor, int64(3), dto.CreateReviewRequest{Text: "good", Score: &score}).
		Return(&dto.ReviewResponse{ID: 11, Text: "good", Author: "reader", Score: 8}, nil)

	w := tr.do(http.MethodPost, "/v1/titles/3/reviews/", `{"text":"good","score":8}`, "user-token")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.EqualValues(t, 11, decode(t, w)["id"])
}

func TestCreateReview_Anonymous(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(http.MethodPost, "/v1/titles/3/reviews/", `{"text":"good","score":8}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestNonNumericTitleID(t *testing.T) {
	tr := newTestRouter(t)

	w := tr.do(http.MethodGet, "/v1/titles/abc/reviews/", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (tr *testRouter) signupFrom(remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/signup",
		strings.NewReader(`{"username":"reader","email":"reader@example.com"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	tr.engine.ServeHTTP(w, req)
	return w.Code
}

func TestAuthRateLimit_IgnoresForwardedForFromClients(t *testing.T) {
	tr := newTestRouterWith(t, func(o *Options) {
		o.AuthLimiter = middleware.NewIPRateLimiter(0.001, 1)
	})
	tr.auth.On("Signup", mock.Anything, mock.Anything).
		Return(&dto.SignupResponse{Username: "reader", Email: "reader@example.com"}, nil).Once()

	assert.Equal(t, http.StatusOK, tr.signupFrom("198.51.100.7:4000", "10.0.0.1"))
	for i := 2; i <= 20; i++ {
		code := tr.signupFrom("198.51.100.7:4000", fmt.Sprintf("10.0.0.%d", i))
		require.Equal(t, http.StatusTooManyRequests, code, "request %d", i)
	}
}

func TestAuthRateLimit_TrustedProxyForwardsClientIP(t *testing.T) {
	tr := newTestRouterWith(t, func(o *Options) {
		o.AuthLimiter = middleware.NewIPRateLimiter(0.001, 1)
		o.TrustedProxies = []string{"192.0.2.0/24"}
	})
	tr.auth.On("Signup", mock.Anything, mock.Anything).
		Return(&dto.SignupResponse{Username: "reader", Email: "reader@example.com"}, nil).Times(2)

	assert.Equal(t, http.StatusOK, tr.signupFrom("192.0.2.10:4000", "203.0.113.1"))
	assert.Equal(t, http.StatusOK, tr.signupFrom("192.0.2.10:4000", "203.0.113.2"))
	assert.Equal(t, http.StatusTooManyRequests, tr.signupFrom("192.0.2.10:4000", "203.0.113.1"))
}

func TestNew_RejectsInvalidTrustedProxy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	_, err := New(Handlers{}, Options{TrustedProxies: []string{"not-an-ip"}})
	assert.Error(t, err)
}
