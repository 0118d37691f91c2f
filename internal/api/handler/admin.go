package handler

import (
	"context"
	"net/http"

	"skillswap/backend/internal/admin"
	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/config"

	"github.com/gin-gonic/gin"
)

type dealsQuery struct {
	Status   string `form:"status" binding:"max=16"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type announceBody struct {
	Text string `json:"text" binding:"required,min=1,max=3000"`
}

// actionReason reads the optional {"reason"} body of moderation endpoints.
func actionReason(c *gin.Context) (string, error) {
	if c.Request.ContentLength == 0 {
		return "", nil
	}
	var req admin.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return "", bindError(err)
	}
	return req.Reason, nil
}

func (h *Handler) AdminUsers(c *gin.Context) {
	var q admin.UsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}

	page, err := h.Admin.Users(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) AdminBanUser(c *gin.Context) {
	h.moderateUser(c, h.Admin.Ban, "User banned")
}

func (h *Handler) AdminUnbanUser(c *gin.Context) {
	h.moderateUser(c, h.Admin.Unban, "User unbanned")
}

func (h *Handler) moderateUser(c *gin.Context, action func(ctx context.Context, adminID, userID, reason string) error, message string) {
	reason, err := actionReason(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := action(c.Request.Context(), currentUserID(c), c.Param("user_id"), reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func (h *Handler) AdminAds(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}

	page, err := h.Admin.Ads(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) AdminDeleteAd(c *gin.Context) {
	reason, err := actionReason(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Admin.DeleteAd(c.Request.Context(), currentUserID(c), c.Param("ad_id"), reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ad deleted"})
}

func (h *Handler) AdminChats(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}

	page, err := h.Admin.Chats(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) AdminChatMessages(c *gin.Context) {
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

	msgs, err := h.Admin.ChatMessages(c.Request.Context(), chatID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, msgs)
}

func (h *Handler) AdminDeleteChat(c *gin.Context) {
	chatID, err := uintParam(c, "chat_id", apperrors.ErrChatNotFound)
	if err != nil {
		respondError(c, err)
		return
	}
	reason, err := actionReason(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := h.Admin.DeleteChat(c.Request.Context(), currentUserID(c), chatID, reason); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Chat deleted"})
}

func (h *Handler) AdminDeals(c *gin.Context) {
	var q dealsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}

	page, err := h.Admin.Deals(c.Request.Context(), q.Status, q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) AdminCancelDeal(c *gin.Context) {
	dealID, err := uintParam(c, "deal_id", apperrors.ErrDealNotFound)
	if err != nil {
		respondError(c, err)
		return
	}
	reason, err := actionReason(c)
	if err != nil {
		respondError(c, err)
		return
	}

	d, err := h.Admin.CancelDeal(c.Request.Context(), currentUserID(c), dealID, reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d.Out())
}

func (h *Handler) AdminLogs(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}

	page, err := h.Admin.Logs(c.Request.Context(), q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) AdminStats(c *gin.Context) {
	stats, err := h.Admin.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AdminAnnounce broadcasts a Telegram message to every subscriber.
func (h *Handler) AdminAnnounce(c *gin.Context) {
	var body announceBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, bindError(err))
		return
	}

	sent, err := h.Admin.Announce(c.Request.Context(), currentUserID(c), body.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}
