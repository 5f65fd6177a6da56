package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adverto/adboard-backend/internal/data/repos"
	"github.com/adverto/adboard-backend/internal/http/response"
	"github.com/adverto/adboard-backend/internal/requestdata"
	"github.com/adverto/adboard-backend/internal/services"
)

type AdvertisementHandler struct {
	adService services.AdvertisementService
}

func NewAdvertisementHandler(adService services.AdvertisementService) *AdvertisementHandler {
	return &AdvertisementHandler{adService: adService}
}

// POST /ads
func (ah *AdvertisementHandler) Create(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	var req services.CreateAdInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ad, err := ah.adService.CreateAd(c.Request.Context(), rd.UserID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ad": ad})
}

// GET /ads/:id
// Works with or without a session. Owners see their non-active ads, everyone
// else only sees active ones.
func (ah *AdvertisementHandler) Get(c *gin.Context) {
	adID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	viewerID := uuid.Nil
	if rd := requestdata.GetRequestData(c.Request.Context()); rd != nil {
		viewerID = rd.UserID
	}
	ad, err := ah.adService.GetAd(c.Request.Context(), nil, adID, viewerID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ad": ad})
}

// GET /ads
func (ah *AdvertisementHandler) ListPublic(c *gin.Context) {
	filter := repos.AdListFilter{
		Subtree:  c.Query("subtree") == "true",
		Search:   c.Query("q"),
		MinPrice: queryFloatPtr(c, "min_price"),
		MaxPrice: queryFloatPtr(c, "max_price"),
		Limit:    queryInt(c, "limit", 0),
		Offset:   queryInt(c, "offset", 0),
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
			return
		}
		filter.CategoryID = id
	}
	adsList, total, err := ah.adService.ListPublic(c.Request.Context(), nil, filter)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ads": adsList, "total": total})
}

// GET /me/ads
func (ah *AdvertisementHandler) ListOwn(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	adsList, err := ah.adService.ListOwn(c.Request.Context(), nil, rd.UserID,
		queryInt(c, "limit", 0), queryInt(c, "offset", 0))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ads": adsList})
}

// PATCH /ads/:id
func (ah *AdvertisementHandler) Update(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	adID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateAdInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ad, err := ah.adService.UpdateAd(c.Request.Context(), rd.UserID, adID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ad": ad})
}

// POST /ads/:id/publish
func (ah *AdvertisementHandler) Publish(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	adID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	ad, err := ah.adService.PublishAd(c.Request.Context(), rd.UserID, adID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ad": ad})
}

// POST /admin/ads/:id/suspend
func (ah *AdvertisementHandler) Suspend(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	adID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	ad, err := ah.adService.SuspendAd(c.Request.Context(), rd.UserID, adID, req.Reason)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ad": ad})
}

// DELETE /ads/:id
func (ah *AdvertisementHandler) Delete(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	adID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := ah.adService.DeleteAd(c.Request.Context(), rd.UserID, rd.IsAdmin(), adID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// POST /ads/:id/media (multipart field "photos", repeatable)
func (ah *AdvertisementHandler) UploadMedia(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	adID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	fileHeaders := form.File["photos"]
	if len(fileHeaders) == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("no files submitted"))
		return
	}

	uploads := make([]services.MediaUpload, 0, len(fileHeaders))
	var opened []interface{ Close() error }
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, fh := range fileHeaders {
		file, err := fh.Open()
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		opened = append(opened, file)
		uploads = append(uploads, services.MediaUpload{
			FileName:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Reader:      file,
		})
	}

	media, err := ah.adService.AddMedia(c.Request.Context(), rd.UserID, adID, uploads)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"media": media})
}

// DELETE /ads/:id/media/:mediaID
func (ah *AdvertisementHandler) RemoveMedia(c *gin.Context) {
	rd := caller(c)
	if rd == nil {
		return
	}
	adID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	mediaID, ok := pathUUID(c, "mediaID")
	if !ok {
		return
	}
	if err := ah.adService.RemoveMedia(c.Request.Context(), rd.UserID, adID, mediaID); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
