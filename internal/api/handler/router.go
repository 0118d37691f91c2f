package handler

import (
	"net/http"

	"skillswap/backend/internal/logger"

	"github.com/gin-gonic/gin"
)

// NewRouter registers every route of the API on a fresh gin engine.
func NewRouter(h *Handler, allowedOrigins []string) (*gin.Engine, error) {
	if err := RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(gin.Recovery(), logger.GinLogger(), CORSMiddleware(allowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// WebSocket: токен передається в query, тому без AuthMiddleware
	r.GET("/ws/chat/:chat_id", h.ServeChatSocket)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.POST("/request-code", h.RequestCode)
	authGroup.POST("/verify-code", h.VerifyCode)
	authGroup.POST("/refresh", h.Refresh)
	authGroup.POST("/logout", h.Logout)

	// Публічні роути
	api.GET("/ads", h.ListAds)
	api.GET("/gamification/badges", h.ListBadges)
	api.GET("/gamification/leaderboard", h.Leaderboard)
	api.GET("/telegram/bot-info", h.TelegramBotInfo)

	protected := api.Group("")
	protected.Use(h.AuthMiddleware())

	usersGroup := protected.Group("/users")
	usersGroup.GET("/me", h.GetMe)
	usersGroup.PATCH("/me", h.UpdateMe)
	usersGroup.GET("/:id", h.GetUser)

	adsGroup := protected.Group("/ads")
	adsGroup.POST("", h.CreateAd)
	adsGroup.GET("/my", h.MyAds)
	adsGroup.GET("/:id", h.GetAd)
	adsGroup.PATCH("/:id", h.UpdateAd)
	adsGroup.DELETE("/:id", h.DeleteAd)

	chats := protected.Group("/chats")
	chats.POST("/respond/:ad_id", h.RespondToAd)
	chats.GET("", h.ListChats)
	chats.GET("/:chat_id", h.GetChat)
	chats.GET("/:chat_id/messages", h.ListMessages)
	chats.POST("/:chat_id/messages", h.SendMessage)
	chats.POST("/:chat_id/read", h.MarkRead)

	deals := protected.Group("/deals")
	deals.POST("/chats/:chat_id/propose", h.ProposeDeal)
	deals.PATCH("/chats/:chat_id/status", h.UpdateDealStatus)
	deals.GET("/chats/:chat_id", h.GetChatDeal)
	deals.GET("/my", h.MyDeals)
	deals.GET("/:deal_id/logs", h.DealLogs)

	gam := protected.Group("/gamification")
	gam.GET("/profile/:user_id", h.GamificationProfile)
	gam.GET("/me", h.MyGamificationProfile)
	gam.POST("/reviews", h.SubmitReview)
	gam.GET("/reviews/:user_id", h.UserReviews)
	gam.GET("/level-progress", h.LevelProgress)

	tg := protected.Group("/telegram")
	tg.POST("/subscribe", h.TelegramSubscribe)
	tg.DELETE("/unsubscribe", h.TelegramUnsubscribe)
	tg.GET("/status", h.TelegramStatus)
	tg.POST("/test-notification", h.TelegramTestNotification)
	tg.GET("/admin/subscriptions", AdminMiddleware(), h.TelegramSubscriptions)

	adm := protected.Group("/admin")
	adm.Use(AdminMiddleware())
	adm.GET("/users", h.AdminUsers)
	adm.POST("/users/:user_id/ban", h.AdminBanUser)
	adm.POST("/users/:user_id/unban", h.AdminUnbanUser)
	adm.GET("/ads", h.AdminAds)
	adm.DELETE("/ads/:ad_id", h.AdminDeleteAd)
	adm.GET("/chats", h.AdminChats)
	adm.GET("/chats/:chat_id/messages", h.AdminChatMessages)
	adm.DELETE("/chats/:chat_id", h.AdminDeleteChat)
	adm.GET("/deals", h.AdminDeals)
	adm.POST("/deals/:deal_id/cancel", h.AdminCancelDeal)
	adm.GET("/logs", h.AdminLogs)
	adm.GET("/stats", h.AdminStats)
	adm.POST("/announce", h.AdminAnnounce)

	return r, nil
}
