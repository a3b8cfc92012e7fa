package router

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"yamdb/internal/microservices/http-api/handler"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/validation"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Handlers groups the HTTP handlers mounted under /v1.
type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Categories *handler.TaxonomyHandler
	Genres     *handler.TaxonomyHandler
	Titles     *handler.TitleHandler
	Reviews    *handler.ReviewHandler
	Comments   *handler.CommentHandler
}

type Options struct {
	Logger         *slog.Logger
	Authenticator  middleware.Authenticator
	AuthLimiter    *middleware.IPRateLimiter
	CORSOrigins    []string
	// TrustedProxies may set X-Forwarded-For; nil trusts none, so the
	// client IP is the connection's remote address.
	TrustedProxies []string
	RequestTimeout time.Duration
	// Health reports whether the service can reach its dependencies.
	Health func(ctx context.Context) error
}

// New builds the engine with every route of the API.
func New(h Handlers, opts Options) (*gin.Engine, error) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, fmt.Errorf("unexpected binding validator %T", binding.Validator.Engine())
	}
	if err := validation.Register(v); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(opts.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.GET("/healthz", func(c *gin.Context) {
		if opts.Health != nil {
			if err := opts.Health(c.Request.Context()); err != nil {
				opts.Logger.Warn("health_check_failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	v1.Use(middleware.Timeout(opts.RequestTimeout))
	v1.Use(middleware.Authenticate(opts.Authenticator, opts.Logger))

	auth := v1.Group("/auth")
	if opts.AuthLimiter != nil {
		auth.Use(middleware.RateLimit(opts.AuthLimiter))
	}
	h.Auth.RegisterRoutes(auth)

	h.Users.RegisterRoutes(v1.Group("/users"))
	h.Categories.RegisterRoutes(v1.Group("/categories"))
	h.Genres.RegisterRoutes(v1.Group("/genres"))

	titles := v1.Group("/titles")
	h.Titles.RegisterRoutes(titles)

	reviews := titles.Group("/:title_id/reviews")
	h.Reviews.RegisterRoutes(reviews)

	comments := reviews.Group("/:review_id/comments")
	h.Comments.RegisterRoutes(comments)

	return r, nil
}
