package handler

import (
	"net/http"

	"skillswap/backend/internal/users"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetMe(c *gin.Context) {
	user, err := h.Users.Me(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateMe(c *gin.Context) {
	var upd users.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		respondError(c, bindError(err))
		return
	}

	profile, err := h.Users.UpdateProfile(c.Request.Context(), currentUserID(c), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.Users.Public(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
