package handler

import (
	"net/http"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type statusBody struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"max=500"`
}

// ProposeDeal creates the chat's deal on first use and stores the terms.
func (h *Handler) ProposeDeal(c *gin.Context) {
	chatID, err := uintParam(c, "chat_id", apperrors.ErrChatNotFound)
	if err != nil {
		respondError(c, err)
		return
	}
	var terms models.DealTerms
	if err := c.ShouldBindJSON(&terms); err != nil {
		respondError(c, bindError(err))
		return
	}

	d, err := h.Deals.Propose(c.Request.Context(), chatID, currentUserID(c), terms)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d.Out())
}

func (h *Handler) UpdateDealStatus(c *gin.Context) {
	chatID, err := uintParam(c, "chat_id", apperrors.ErrDealNotFound)
	if err != nil {
		respondError(c, err)
		return
	}
	var body statusBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, bindError(err))
		return
	}

	d, err := h.Deals.UpdateStatus(c.Request.Context(), chatID, currentUserID(c), body.Status, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d.Out())
}

func (h *Handler) GetChatDeal(c *gin.Context) {
	chatID, err := uintParam(c, "chat_id", apperrors.ErrDealNotFound)
	if err != nil {
		respondError(c, err)
		return
	}

	d, err := h.Deals.GetByChatID(c.Request.Context(), chatID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d.Out())
}

func (h *Handler) MyDeals(c *gin.Context) {
	deals, err := h.Deals.ListMine(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(deals, func(d models.Deal, _ int) models.DealOut { return d.Out() }))
}

func (h *Handler) DealLogs(c *gin.Context) {
	dealID, err := uintParam(c, "deal_id", apperrors.ErrDealNotFound)
	if err != nil {
		respondError(c, err)
		return
	}

	logs, err := h.Deals.Logs(c.Request.Context(), dealID, currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lo.Map(logs, func(l models.DealStatusLog, _ int) models.DealStatusLogOut { return l.Out() }))
}
