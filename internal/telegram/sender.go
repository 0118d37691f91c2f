// Package telegram delivers SkillSwap notifications through a Telegram bot
// and answers the bot's few commands.
package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// Sender is the part of *tgbotapi.BotAPI used for outgoing messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// NewBotAPI authorizes the bot. It returns nil without error when token is empty,
// which disables Telegram entirely.
func NewBotAPI(token string) (*tgbotapi.BotAPI, error) {
	if token == "" {
		log.Warn("WARN: TELEGRAM_BOT_TOKEN is empty, Telegram notifications are disabled")
		return nil, nil
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	bot.Debug = false
	log.Printf("✅ Authorized on account %s", bot.Self.UserName)
	return bot, nil
}

func markdownMessage(chatID int64, text string) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return msg
}

// escape makes user supplied text safe inside a Markdown message.
func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}
