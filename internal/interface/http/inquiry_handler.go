package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-realestate-listings/internal/application"
	"github.com/oksasatya/go-realestate-listings/pkg/response"
)

type InquiryHandler struct {
	Svc    *app.InquiryService
	Logger *logrus.Logger
}

func NewInquiryHandler(svc *app.InquiryService, logger *logrus.Logger) *InquiryHandler {
	return &InquiryHandler{Svc: svc, Logger: logger}
}

// Create answers 201 even when the owner could not be notified; the
// failure is reported in meta.warning.
func (h *InquiryHandler) Create(c *gin.Context) {
	var req app.InquiryInput
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.Svc.Create(c.Request.Context(), c.GetString("userID"), c.Param("id"), req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	var meta any
	msg := "inquiry sent"
	if res.Warning != nil {
		meta = map[string]any{"warning": "the property owner could not be notified"}
		msg = "inquiry saved, but the owner could not be notified"
	}
	response.Success(c, http.StatusCreated, fromInquiry(res.Inquiry), msg, meta)
}

func (h *InquiryHandler) List(c *gin.Context) {
	page, err := h.Svc.List(c.Request.Context(), c.GetString("userID"), c.Query("filter"), c.Query("page"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"filter":         page.Box,
		"items":          toInquiryDTOs(page.Items),
		"received_count": page.ReceivedCount,
		"sent_count":     page.SentCount,
	}, "inquiries", page.Pagination)
}

func (h *InquiryHandler) Detail(c *gin.Context) {
	v, err := h.Svc.Detail(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toInquiryDTO(v), "inquiry", nil)
}
