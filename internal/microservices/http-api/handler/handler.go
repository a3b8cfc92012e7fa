// Package handler maps HTTP requests onto the services and service errors
// onto status codes.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"yamdb/internal/microservices/http-api/access"
	"yamdb/internal/microservices/http-api/service"
	"yamdb/internal/microservices/http-api/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// invalidCodeKey is the response key for a rejected confirmation code.
const invalidCodeKey = "confirmation code"

// respondError writes the status for err. Unknown errors become a bare 500;
// the cause is attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": vErr.Fields})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{invalidCodeKey: err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, access.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, access.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// bindError reports a request body or query that failed to bind.
func bindError(c *gin.Context, err error) {
	var vErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var numErr *strconv.NumError

	switch {
	case errors.As(err, &vErrs):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": validation.Messages(vErrs)})
	case errors.As(err, &typeErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": map[string]string{typeErr.Field: "expected a valid " + typeErr.Type.String()},
		})
	case errors.As(err, &numErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid integer is required: " + numErr.Num})
	case errors.Is(err, io.EOF):
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body is required"})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
	}
}

// pathID parses a numeric path parameter. A non-numeric id cannot name a
// resource, so it is a 404 like any other unknown id.
func pathID(c *gin.Context, name, what string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		return 0, false
	}
	return id, true
}

// Pager reads page and page_size query parameters.
type Pager struct {
	DefaultSize int
	MaxSize     int
}

// Parse returns the requested page, writing a 400 when the values are unusable.
// The page is bounded so its row offset fits in an int.
func (p Pager) Parse(c *gin.Context) (page, pageSize int, ok bool) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": gin.H{"page": "must be a positive integer"}})
		return 0, 0, false
	}

	pageSize = p.DefaultSize
	if raw := c.Query("page_size"); raw != "" {
		pageSize, err = strconv.Atoi(raw)
		if err != nil || pageSize < 1 || pageSize > p.MaxSize {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "validation failed",
				"fields": gin.H{"page_size": "must be between 1 and " + strconv.Itoa(p.MaxSize)},
			})
			return 0, 0, false
		}
	}

	if page-1 > math.MaxInt/pageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": gin.H{"page": "is too large"}})
		return 0, 0, false
	}
	return page, pageSize, true
}
