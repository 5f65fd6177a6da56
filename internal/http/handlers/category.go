package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adverto/adboard-backend/internal/http/response"
	"github.com/adverto/adboard-backend/internal/services"
)

type CategoryHandler struct {
	categoryService services.CategoryService
	versionService  services.CategoryVersionService
}

func NewCategoryHandler(categoryService services.CategoryService, versionService services.CategoryVersionService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService, versionService: versionService}
}

// POST /admin/categories
func (ch *CategoryHandler) Create(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	var req services.CreateCategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := ch.categoryService.CreateCategory(c.Request.Context(), rd.UserID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// PUT /admin/categories/:id
func (ch *CategoryHandler) Update(c *gin.Context) {
	categoryID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.VersionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := ch.categoryService.UpdateCategory(c.Request.Context(), categoryID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}

// GET /categories/:id
// Optional ?at=RFC3339 resolves the version covering that instant instead of
// the current one.
func (ch *CategoryHandler) Get(c *gin.Context) {
	categoryID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if raw := c.Query("at"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		node, err := ch.categoryService.GetCategoryAtTime(c.Request.Context(), nil, categoryID, at)
		if err != nil {
			response.RespondServiceError(c, err)
			return
		}
		response.RespondOK(c, node)
		return
	}
	node, err := ch.categoryService.GetCategory(c.Request.Context(), nil, categoryID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, node)
}

// GET /categories/tree
func (ch *CategoryHandler) Tree(c *gin.Context) {
	nodes, err := ch.categoryService.GetTree(c.Request.Context(), nil)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"categories": nodes})
}

// GET /categories?parent_id=<uuid>
// Without parent_id the root level is returned.
func (ch *CategoryHandler) Children(c *gin.Context) {
	var parentID *uuid.UUID
	if raw := c.Query("parent_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
			return
		}
		parentID = &id
	}
	nodes, err := ch.categoryService.ListChildren(c.Request.Context(), nil, parentID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"categories": nodes})
}

// GET /categories/:id/versions
func (ch *CategoryHandler) ListVersions(c *gin.Context) {
	categoryID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	versions, err := ch.versionService.ListVersions(c.Request.Context(), nil, categoryID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"versions": versions})
}

// DELETE /admin/categories/:id
func (ch *CategoryHandler) Delete(c *gin.Context) {
	categoryID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := ch.categoryService.DeleteCategory(c.Request.Context(), categoryID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /admin/categories/:id/restore
func (ch *CategoryHandler) Restore(c *gin.Context) {
	categoryID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	result, err := ch.categoryService.RestoreCategory(c.Request.Context(), categoryID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, result)
}
