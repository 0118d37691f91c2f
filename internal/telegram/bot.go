package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// BotService is the long-polling loop of the notification bot.
type BotService struct {
	BotAPI   *tgbotapi.BotAPI
	Commands *CommandHandler
}

func NewBotService(bot *tgbotapi.BotAPI, commands *CommandHandler) *BotService {
	return &BotService{BotAPI: bot, Commands: commands}
}

// Run receives updates until ctx is canceled.
func (s *BotService) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message"}
	updates := s.BotAPI.GetUpdatesChan(u)

	log.Println("🚀 Telegram bot is running...")
	for {
		select {
		case <-ctx.Done():
			s.BotAPI.StopReceivingUpdates()
			log.Println("Telegram bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			s.Commands.HandleUpdate(update)
		}
	}
}
