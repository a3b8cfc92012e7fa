package handler

import (
	"context"
	"net/http"

	"yamdb/internal/microservices/http-api/access"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"

	"github.com/gin-gonic/gin"
)

// TaxonomyService is the surface shared by the category and genre services.
type TaxonomyService interface {
	List(ctx context.Context, search string, page, pageSize int) (*dto.Paginated[dto.TaxonomyResponse], error)
	Get(ctx context.Context, slug string) (*dto.TaxonomyResponse, error)
	Create(ctx context.Context, req dto.TaxonomyRequest) (*dto.TaxonomyResponse, error)
	Update(ctx context.Context, slug string, req dto.UpdateTaxonomyRequest) (*dto.TaxonomyResponse, error)
	Delete(ctx context.Context, slug string) error
}

// TaxonomyHandler serves /categories and /genres, which differ only in the
// service and the resource checked.
type TaxonomyHandler struct {
	svc      TaxonomyService
	resource access.Resource
	pager    Pager
}

func NewCategoryHandler(svc TaxonomyService, pager Pager) *TaxonomyHandler {
	return &TaxonomyHandler{svc: svc, resource: access.ResourceCategory, pager: pager}
}

func NewGenreHandler(svc TaxonomyService, pager Pager) *TaxonomyHandler {
	return &TaxonomyHandler{svc: svc, resource: access.ResourceGenre, pager: pager}
}

func (h *TaxonomyHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/", h.List)
	router.POST("/", middleware.Authorize(access.Create, h.resource), h.Create)
	router.GET("/:slug", h.Get)
	router.PATCH("/:slug", middleware.Authorize(access.Update, h.resource), h.Update)
	router.DELETE("/:slug", middleware.Authorize(access.Delete, h.resource), h.Delete)
}

// GET /v1/{categories,genres}/?search=
func (h *TaxonomyHandler) List(c *gin.Context) {
	page, pageSize, ok := h.pager.Parse(c)
	if !ok {
		return
	}

	resp, err := h.svc.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaxonomyHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaxonomyHandler) Create(c *gin.Context) {
	var req dto.TaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *TaxonomyHandler) Update(c *gin.Context) {
	var req dto.UpdateTaxonomyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.svc.Update(c.Request.Context(), c.Param("slug"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *TaxonomyHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
