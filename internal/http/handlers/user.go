package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adverto/adboard-backend/internal/http/response"
	"github.com/adverto/adboard-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /me
func (uh *UserHandler) GetMe(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	me, err := uh.userService.GetProfile(c.Request.Context(), nil, rd.UserID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me})
}

// PATCH /me
func (uh *UserHandler) UpdateProfile(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	var req services.UpdateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	u, err := uh.userService.UpdateProfile(c.Request.Context(), rd.UserID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": u})
}

// POST /me/password
func (uh *UserHandler) ChangePassword(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := uh.userService.ChangePassword(c.Request.Context(), rd.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /me/avatar (multipart field "avatar")
func (uh *UserHandler) UploadAvatar(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	defer file.Close()

	u, err := uh.userService.UploadAvatar(c.Request.Context(), rd.UserID, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"me": u})
}

// PATCH /admin/users/:id/status
func (uh *UserHandler) SetUserStatus(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	userID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	u, err := uh.userService.SetUserStatus(c.Request.Context(), rd.UserID, userID, req.Status)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": u})
}
