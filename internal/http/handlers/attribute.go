package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adverto/adboard-backend/internal/http/response"
	"github.com/adverto/adboard-backend/internal/services"
)

type AttributeHandler struct {
	defService services.AttributeDefinitionService
}

func NewAttributeHandler(defService services.AttributeDefinitionService) *AttributeHandler {
	return &AttributeHandler{defService: defService}
}

// POST /admin/attributes
func (ah *AttributeHandler) Create(c *gin.Context) {
	var req services.CreateAttributeDefinitionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	def, err := ah.defService.CreateDefinition(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attribute": def})
}

// GET /attributes/:id
func (ah *AttributeHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	def, err := ah.defService.GetDefinition(c.Request.Context(), nil, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attribute": def})
}

// GET /attributes
func (ah *AttributeHandler) List(c *gin.Context) {
	defs, err := ah.defService.ListDefinitions(c.Request.Context(), nil)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attributes": defs})
}

// PATCH /admin/attributes/:id
func (ah *AttributeHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateAttributeDefinitionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	def, err := ah.defService.UpdateDefinition(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"attribute": def})
}

// DELETE /admin/attributes/:id
func (ah *AttributeHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := ah.defService.DeleteDefinition(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
