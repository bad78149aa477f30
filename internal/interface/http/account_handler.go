package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	app "github.com/oksasatya/go-realestate-listings/internal/application"
	"github.com/oksasatya/go-realestate-listings/pkg/helpers"
	"github.com/oksasatya/go-realestate-listings/pkg/response"
)

type AccountHandler struct {
	Svc     *app.AccountService
	Logger  *logrus.Logger
	Cookies *helpers.CookieManager
}

func NewAccountHandler(svc *app.AccountService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AccountHandler {
	return &AccountHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type resetInitRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func tokenMeta(pair app.TokenPair) map[string]any {
	return map[string]any{"access_expires_at": pair.AccessTokenExpiry, "refresh_expires_at": pair.RefreshTokenExpiry}
}

func (h *AccountHandler) Register(c *gin.Context) {
	var req app.RegisterInput
	if !bindJSON(c, &req) {
		return
	}
	acc, pair, err := h.Svc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusCreated, toUserDTO(acc), "registered", tokenMeta(pair))
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}
	acc, pair, err := h.Svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, toUserDTO(acc), "login successful", tokenMeta(pair))
}

func (h *AccountHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie(helpers.RefreshCookie)
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed", tokenMeta(pair))
}

func (h *AccountHandler) Logout(c *gin.Context) {
	h.Svc.Logout(c.Request.Context(), c.GetString("userID"))
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

func (h *AccountHandler) GetProfile(c *gin.Context) {
	ov, err := h.Svc.GetProfile(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user":                      toUserDTO(ov.Account),
		"properties":                toPropertyDTOs(ov.Properties),
		"unread_received_inquiries": toInquiryDTOs(ov.UnreadReceived),
		"sent_inquiries":            toInquiryDTOs(ov.Sent),
	}, "profile", nil)
}

func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	var req app.UpdateProfileInput
	if !bindJSON(c, &req) {
		return
	}
	acc, err := h.Svc.UpdateProfile(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserDTO(acc), "profile updated", nil)
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	if err := h.Svc.DeleteAccount(c.Request.Context(), c.GetString("userID")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"deleted": true}, "account deleted", nil)
}

// ResetInit always answers 200 so that registered addresses cannot be probed.
func (h *AccountHandler) ResetInit(c *gin.Context) {
	var req resetInitRequest
	if !bindJSON(c, &req) {
		return
	}
	meta := app.ResetRequestMeta{IP: c.GetString("real_ip"), UserAgent: c.Request.UserAgent()}
	if err := h.Svc.RequestPasswordReset(c.Request.Context(), req.Email, meta); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, map[string]any{"sent": true}, "if the email is registered, a reset link has been sent", nil)
}

func (h *AccountHandler) ResetConfirm(c *gin.Context) {
	var req app.ResetPasswordInput
	if !bindJSON(c, &req) {
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), req); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"reset": true}, "password updated", nil)
}
