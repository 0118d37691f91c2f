package handler

import (
	"net/http"
	"strings"

	"skillswap/backend/internal/apperrors"
	"skillswap/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(header[len(prefix):]), true
}

// AuthMiddleware перевіряє access token і кладе userID та role в контекст.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respondError(c, apperrors.ErrUnauthorized)
			return
		}

		user, err := h.Auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			respondError(c, err)
			return
		}

		c.Set(ctxUserID, user.ID)
		c.Set(ctxRole, user.Role)
		c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get(ctxRole)
		if role != models.RoleAdmin {
			log.WithField("user", currentUserID(c)).Warn("WARN: admin endpoint denied")
			respondError(c, apperrors.ErrAdminRequired)
			return
		}
		c.Next()
	}
}

// CORSMiddleware allows credentialed requests from the configured origins.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && lo.Contains(origins, origin) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			h.Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// respondError writes err as {"error", "message", "details"} and aborts the chain.
func respondError(c *gin.Context, err error) {
	appErr := apperrors.From(err)
	status := apperrors.HTTPStatus(appErr)
	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("ERROR: request failed")
	}
	c.AbortWithStatusJSON(status, appErr)
}
