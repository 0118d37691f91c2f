// Package handler exposes the services over HTTP (gin) and WebSocket.
package handler

import (
	"strconv"

	"skillswap/backend/internal/admin"
	"skillswap/backend/internal/ads"
	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/auth"
	"skillswap/backend/internal/chat"
	"skillswap/backend/internal/chathub"
	"skillswap/backend/internal/deal"
	"skillswap/backend/internal/gamification"
	"skillswap/backend/internal/telegram"
	"skillswap/backend/internal/users"

	"github.com/gin-gonic/gin"
)

// Handler містить посилання на всі сервіси
type Handler struct {
	Auth         *auth.Service
	Users        *users.Service
	Ads          *ads.Service
	Chats        *chat.Service
	Deals        *deal.Service
	Gamification *gamification.Service
	Admin        *admin.Service
	Telegram     *telegram.Notifier
	Relay        *chathub.Relay

	// SecureCookies marks the refresh cookie Secure (off in debug mode).
	SecureCookies bool
}

// currentUserID returns the id set by AuthMiddleware.
func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// uintParam parses a numeric path parameter; notFound is returned for anything non-numeric.
func uintParam(c *gin.Context, name string, notFound error) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, notFound
	}
	return uint(v), nil
}

// intQuery reads an optional integer query parameter.
func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.ErrValidation.WithDetails(map[string]string{name: "must be an integer"})
	}
	return v, nil
}

// pageQuery is the shared pagination query string.
type pageQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}
