package handler

import (
	"net/http"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	refreshCookie     = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
)

type requestCodeBody struct {
	Phone string `json:"phone" binding:"required,max=32"`
}

type verifyCodeBody struct {
	Phone string `json:"phone" binding:"required,max=32"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// refreshBody lets non-browser clients pass the refresh token in the body instead of the cookie.
type refreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token,omitempty"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int          `json:"expires_in"`
	User         *models.User `json:"user,omitempty"`
	IsNewUser    bool         `json:"is_new_user"`
}

// RequestCode sends an SMS code to the phone.
func (h *Handler) RequestCode(c *gin.Context) {
	var body requestCodeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, bindError(err))
		return
	}

	resp, err := h.Auth.RequestCode(c.Request.Context(), body.Phone)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VerifyCode signs the user in and sets the refresh cookie.
func (h *Handler) VerifyCode(c *gin.Context) {
	var body verifyCodeBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, bindError(err))
		return
	}

	session, err := h.Auth.VerifyCode(c.Request.Context(), body.Phone, body.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	h.setRefreshCookie(c, session.RefreshToken, int(h.Auth.Tokens().RefreshTTL().Seconds()))
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(h.Auth.Tokens().AccessTTL().Seconds()),
		User:         session.User,
		IsNewUser:    session.IsNewUser,
	})
}

// Refresh issues a new access token from the refresh cookie (or body).
func (h *Handler) Refresh(c *gin.Context) {
	token := h.refreshToken(c)
	if token == "" {
		respondError(c, apperrors.ErrUnauthorized.WithMessage("Refresh token missing"))
		return
	}

	access, err := h.Auth.Refresh(c.Request.Context(), token)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: access,
		TokenType:   "bearer",
		ExpiresIn:   int(h.Auth.Tokens().AccessTTL().Seconds()),
	})
}

// Logout revokes the refresh token and clears the cookie.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), h.refreshToken(c)); err != nil {
		respondError(c, err)
		return
	}
	h.setRefreshCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *Handler) refreshToken(c *gin.Context) string {
	if token, err := c.Cookie(refreshCookie); err == nil && token != "" {
		return token
	}
	var body refreshBody
	if c.Request.ContentLength > 0 && c.ShouldBindJSON(&body) == nil {
		return body.RefreshToken
	}
	return ""
}

func (h *Handler) setRefreshCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(refreshCookie, value, maxAge, refreshCookiePath, "", h.SecureCookies, true)
}
