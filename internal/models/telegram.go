package models

import "time"

// TelegramSubscription links an account to the Telegram chat that receives its notifications.
// Stored in Redis as JSON.
type TelegramSubscription struct {
	UserID       string    `json:"user_id"`
	ChatID       int64     `json:"chat_id"`
	SubscribedAt time.Time `json:"subscribed_at"`
}
