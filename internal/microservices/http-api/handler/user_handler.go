package handler

import (
	"net/http"

	"yamdb/internal/microservices/http-api/access"
	"yamdb/internal/microservices/http-api/dto"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
	pager       Pager
}

func NewUserHandler(userService service.UserService, pager Pager) *UserHandler {
	return &UserHandler{userService: userService, pager: pager}
}

// RegisterRoutes registers user routes. /me is open to any authenticated
// user, everything else is admin only.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	me := router.Group("/me", middleware.RequireAuth())
	{
		me.GET("", h.Me)
		me.PATCH("", h.UpdateMe)
	}

	router.GET("/", middleware.Authorize(access.Read, access.ResourceUser), h.List)
	router.POST("/", middleware.Authorize(access.Create, access.ResourceUser), h.Create)
	router.GET("/:username", middleware.Authorize(access.Read, access.ResourceUser), h.Get)
	router.PATCH("/:username", middleware.Authorize(access.Update, access.ResourceUser), h.Update)
	router.DELETE("/:username", middleware.Authorize(access.Delete, access.ResourceUser), h.Delete)
}

// List users
// GET /v1/users/?search=&page=1&page_size=20
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize, ok := h.pager.Parse(c)
	if !ok {
		return
	}

	resp, err := h.userService.List(c.Request.Context(), c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Create a user
// POST /v1/users/
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.userService.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GET /v1/users/:username
func (h *UserHandler) Get(c *gin.Context) {
	resp, err := h.userService.Get(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// PATCH /v1/users/:username
func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.userService.Update(c.Request.Context(), c.Param("username"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DELETE /v1/users/:username
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.userService.Delete(c.Request.Context(), c.Param("username")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me returns the caller's profile
// GET /v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	resp, err := h.userService.Me(c.Request.Context(), middleware.ActorFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateMe patches the caller's profile; a role in the body is ignored
// PATCH /v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.userService.UpdateMe(c.Request.Context(), middleware.ActorFrom(c).UserID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
