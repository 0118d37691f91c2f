package handler

import (
	"net/http"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/chat"
	"skillswap/backend/internal/config"

	"github.com/gin-gonic/gin"
)

type sendMessageBody struct {
	Text string `json:"text" binding:"required,max=4000"`
}

// RespondToAd opens a chat with the ad author: 201 for a new chat, 200 when reused.
func (h *Handler) RespondToAd(c *gin.Context) {
	userID := currentUserID(c)
	created, isNew, err := h.Chats.Respond(c.Request.Context(), c.Param("ad_id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if isNew {
		status = http.StatusCreated
	}
	c.JSON(status, chat.NewDetail(created, userID))
}

func (h *Handler) ListChats(c *gin.Context) {
	chats, err := h.Chats.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chats)
}

func (h *Handler) GetChat(c *gin.Context) {
	chatID, err := uintParam(c, "chat_id", apperrors.ErrChatNotFound)
	if err != nil {
		respondError(c, err)
		return
	}

	userID := currentUserID(c)
	found, err := h.Chats.Member(c.Request.Context(), chatID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chat.NewDetail(found, userID))
}

func (h *Handler) ListMessages(c *gin.Context) {
	chatID, err := uintParam(c, "chat_id", apperrors.ErrChatNotFound)
	if err != nil {
		respondError(c, err)
		return
	}
	limit, err := intQuery(c, "limit", config.DefaultMessagesLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		respondError(c, err)
		return
	}

	msgs, err := h.Chats.Messages(c.Request.Context(), chatID, currentUserID(c), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// SendMessage is the REST fallback for clients without a socket; the message is broadcast to every connection.
func (h *Handler) SendMessage(c *gin.Context) {
	chatID, err := uintParam(c, "chat_id", apperrors.ErrChatNotFound)
	if err != nil {
		respondError(c, err)
		return
	}
	var body sendMessageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, bindError(err))
		return
	}

	msg, err := h.Chats.Send(c.Request.Context(), chatID, currentUserID(c), body.Text, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) MarkRead(c *gin.Context) {
	chatID, err := uintParam(c, "chat_id", apperrors.ErrChatNotFound)
	if err != nil {
		respondError(c, err)
		return
	}

	n, err := h.Chats.MarkRead(c.Request.Context(), chatID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked_read": n})
}
