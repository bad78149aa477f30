package handlers

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-realestate-listings/internal/application"
	"github.com/oksasatya/go-realestate-listings/pkg/response"
)

type PropertyHandler struct {
	Svc       *app.PropertyService
	Listings  *app.ListingService
	Logger    *logrus.Logger
	MaxUpload int64
}

func NewPropertyHandler(svc *app.PropertyService, listings *app.ListingService, logger *logrus.Logger, maxUpload int64) *PropertyHandler {
	return &PropertyHandler{Svc: svc, Listings: listings, Logger: logger, MaxUpload: maxUpload}
}

// List serves the public catalog. Malformed filter values are ignored.
func (h *PropertyHandler) List(c *gin.Context) {
	var req app.ListingRequest
	_ = c.ShouldBindQuery(&req)
	page, err := h.Listings.List(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, page, "properties", nil)
}

func (h *PropertyHandler) Detail(c *gin.Context) {
	d, err := h.Svc.Detail(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPropertyDetailDTO(d), "property", nil)
}

func (h *PropertyHandler) Create(c *gin.Context) {
	var req app.PropertyInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.Create(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toPropertyDTO(p), "property created", nil)
}

func (h *PropertyHandler) Update(c *gin.Context) {
	var req app.PropertyInput
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.Svc.Update(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPropertyDTO(p), "property updated", nil)
}

func (h *PropertyHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "property deleted", nil)
}

func (h *PropertyHandler) UploadImage(c *gin.Context) {
	up, closeFn, ok := h.readUpload(c)
	if !ok {
		return
	}
	defer closeFn()
	img, err := h.Svc.UploadImage(c.Request.Context(), c.GetString("userID"), c.Param("id"), up, c.PostForm("caption"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toImageDTO(img), "image uploaded", nil)
}

func (h *PropertyHandler) SetFeaturedImage(c *gin.Context) {
	up, closeFn, ok := h.readUpload(c)
	if !ok {
		return
	}
	defer closeFn()
	p, err := h.Svc.SetFeaturedImage(c.Request.Context(), c.GetString("userID"), c.Param("id"), up)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toPropertyDTO(p), "featured image updated", nil)
}

func (h *PropertyHandler) DeleteImage(c *gin.Context) {
	if err := h.Svc.DeleteImage(c.Request.Context(), c.GetString("userID"), c.Param("id"), c.Param("imageId")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "image deleted", nil)
}

// readUpload reads the "image" multipart field, bounded by MaxUpload.
func (h *PropertyHandler) readUpload(c *gin.Context) (app.Upload, func(), bool) {
	if h.MaxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUpload)
	}
	fh, err := c.FormFile("image")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			response.Error[any](c, http.StatusRequestEntityTooLarge, "file too large", nil)
			return app.Upload{}, nil, false
		}
		response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"image": "is required"})
		return app.Upload{}, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, h.Logger, err)
		return app.Upload{}, nil, false
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" || ct == "application/octet-stream" {
		ct = mime.TypeByExtension(filepath.Ext(fh.Filename))
	}
	return app.Upload{Filename: fh.Filename, ContentType: ct, Body: f}, func() { _ = f.Close() }, true
}
