package handler

import (
	"net/http"

	"skillswap/backend/internal/telegram"

	"github.com/gin-gonic/gin"
)

func (h *Handler) TelegramSubscribe(c *gin.Context) {
	var req telegram.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	sub, err := h.Telegram.Subscribe(c.Request.Context(), currentUserID(c), req.ChatID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) TelegramUnsubscribe(c *gin.Context) {
	if err := h.Telegram.Unsubscribe(c.Request.Context(), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed"})
}

func (h *Handler) TelegramStatus(c *gin.Context) {
	st, err := h.Telegram.Status(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (h *Handler) TelegramBotInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.Telegram.BotInfo())
}

func (h *Handler) TelegramTestNotification(c *gin.Context) {
	if err := h.Telegram.SendTest(c.Request.Context(), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Test notification sent"})
}

func (h *Handler) TelegramSubscriptions(c *gin.Context) {
	subs, err := h.Telegram.Subscriptions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}
