package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"yamdb/internal/microservices/http-api/access"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestRespondError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", &service.ValidationError{Fields: map[string]string{"year": "too late"}}, http.StatusBadRequest},
		{"bad code", service.ErrInvalidCredentials, http.StatusBadRequest},
		{"not found", fmt.Errorf("title: %w", service.ErrNotFound), http.StatusNotFound},
		{"anonymous", access.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", access.ErrForbidden, http.StatusForbidden},
		{"conflict", fmt.Errorf("review: %w", service.ErrConflict), http.StatusConflict},
		{"unexpected", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext("/")
			respondError(c, tt.err)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRespondError_HidesInternalCause(t *testing.T) {
	c, w := newTestContext("/")
	respondError(c, errors.New("pq: password authentication failed"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "internal server error", body["error"])
	assert.Len(t, c.Errors, 1)
}

func TestPathID(t *testing.T) {
	c, w := newTestContext("/")
	c.Params = gin.Params{{Key: "title_id", Value: "abc"}}

	_, ok := pathID(c, "title_id", "title")
	assert.False(t, ok)
	assert.Equal(t, http.StatusNotFound, w.Code)

	c, _ = newTestContext("/")
	c.Params = gin.Params{{Key: "title_id", Value: "42"}}
	id, ok := pathID(c, "title_id", "title")
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestPager_Parse(t *testing.T) {
	pager := Pager{DefaultSize: 20, MaxSize: 100}

	tests := []struct {
		query    string
		ok       bool
		page     int
		pageSize int
	}{
		{"", true, 1, 20},
		{"?page=3&page_size=50", true, 3, 50},
		{"?page=0", false, 0, 0},
		{"?page=two", false, 0, 0},
		{"?page_size=101", false, 0, 0},
		{"?page_size=0", false, 0, 0},
		{"?page=9223372036854775807&page_size=10", false, 0, 0},
		{"?page=922337203685477581&page_size=10", true, 922337203685477581, 10},
		{"?page=922337203685477582&page_size=10", false, 0, 0},
		{"?page=9223372036854775807&page_size=1", true, 9223372036854775807, 1},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, w := newTestContext("/titles/" + tt.query)
			page, pageSize, ok := pager.Parse(c)

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.page, page)
			assert.Equal(t, tt.pageSize, pageSize)
			if !tt.ok {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}
