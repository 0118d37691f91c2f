package config

import "time"

const (
	// Ads
	MaxAdsPerUser   = 20
	DefaultPageSize = 20
	MaxPageSize     = 100

	// Chat
	DefaultMessagesLimit = 50
	MaxMessagesLimit     = 200
	MaxMessageLength     = 4000

	// Reputation & experience
	ExchangeReputationReward = 10
	ExchangeExperienceReward = 10
	ReviewReputationFactor   = 2
	ExperiencePerLevel       = 100

	// Badge thresholds
	PopularExchanges        = 10
	MentorExchanges         = 25
	ExpertExchanges         = 50
	TopRatedAverage         = 4.8
	TopRatedMinRatings      = 5
	CategoryExpertExchanges = 10

	// Leaderboard
	DefaultLeaderboardLimit = 50
	MaxLeaderboardLimit     = 100

	// Telegram
	TelegramSubscriptionTTL = 30 * 24 * time.Hour
)
