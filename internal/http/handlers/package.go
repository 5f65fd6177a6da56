package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adverto/adboard-backend/internal/http/response"
	"github.com/adverto/adboard-backend/internal/services"
)

type PackageHandler struct {
	packageService services.AdPackageService
}

func NewPackageHandler(packageService services.AdPackageService) *PackageHandler {
	return &PackageHandler{packageService: packageService}
}

// GET /packages
func (ph *PackageHandler) List(c *gin.Context) {
	activeOnly := c.Query("include_inactive") != "true"
	pkgs, err := ph.packageService.ListPackages(c.Request.Context(), nil, activeOnly)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"packages": pkgs})
}

// GET /packages/:id
func (ph *PackageHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	pkg, err := ph.packageService.GetPackage(c.Request.Context(), nil, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"package": pkg})
}

// POST /admin/packages
func (ph *PackageHandler) Create(c *gin.Context) {
	var req services.CreateAdPackageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	pkg, err := ph.packageService.CreatePackage(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"package": pkg})
}

// PATCH /admin/packages/:id
func (ph *PackageHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateAdPackageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	pkg, err := ph.packageService.UpdatePackage(c.Request.Context(), id, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"package": pkg})
}
