package handler

import (
	"net/http"

	"skillswap/backend/internal/ads"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateAd(c *gin.Context) {
	var req ads.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	ad, err := h.Ads.Create(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ad)
}

// ListAds is public: filters, search and pagination come from the query string.
func (h *Handler) ListAds(c *gin.Context) {
	var q ads.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}

	page, err := h.Ads.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) MyAds(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, bindError(err))
		return
	}

	page, err := h.Ads.Mine(c.Request.Context(), currentUserID(c), q.Page, q.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) GetAd(c *gin.Context) {
	ad, err := h.Ads.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ad)
}

func (h *Handler) UpdateAd(c *gin.Context) {
	var req ads.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	ad, err := h.Ads.Update(c.Request.Context(), c.Param("id"), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ad)
}

func (h *Handler) DeleteAd(c *gin.Context) {
	if err := h.Ads.Delete(c.Request.Context(), c.Param("id"), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
