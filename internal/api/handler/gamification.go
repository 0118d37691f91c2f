package handler

import (
	"net/http"

	"skillswap/backend/internal/config"
	"skillswap/backend/internal/gamification"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GamificationProfile(c *gin.Context) {
	h.profile(c, c.Param("user_id"))
}

func (h *Handler) MyGamificationProfile(c *gin.Context) {
	h.profile(c, currentUserID(c))
}

func (h *Handler) profile(c *gin.Context, userID string) {
	p, err := h.Gamification.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Leaderboard(c *gin.Context) {
	limit, err := intQuery(c, "limit", config.DefaultLeaderboardLimit)
	if err != nil {
		respondError(c, err)
		return
	}

	entries, err := h.Gamification.Leaderboard(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) ListBadges(c *gin.Context) {
	badges, err := h.Gamification.Badges(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, badges)
}

func (h *Handler) SubmitReview(c *gin.Context) {
	var req gamification.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, bindError(err))
		return
	}

	review, err := h.Gamification.SubmitReview(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review.Out())
}

func (h *Handler) UserReviews(c *gin.Context) {
	reviews, err := h.Gamification.Reviews(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}

func (h *Handler) LevelProgress(c *gin.Context) {
	progress, err := h.Gamification.LevelProgress(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}
