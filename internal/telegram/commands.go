package telegram

import (
	"skillswap/backend/internal/localization"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// CommandHandler answers bot commands. The bot never receives chat content,
// it only tells users the chat id to paste into the website.
type CommandHandler struct {
	sender    Sender
	localizer *localization.Localizer
}

func NewCommandHandler(sender Sender, localizer *localization.Localizer) *CommandHandler {
	return &CommandHandler{sender: sender, localizer: localizer}
}

// HandleUpdate processes one update. Updates without a message are ignored.
func (h *CommandHandler) HandleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil {
		return
	}

	lang := localization.DefaultLanguage
	if msg.From != nil {
		lang = h.localizer.Language(msg.From.LanguageCode)
	}
	chatID := msg.Chat.ID

	var text string
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			text = h.localizer.Format(lang, "welcome", chatID)
		case "help":
			text = h.localizer.GetString(lang, "help")
		case "id", "chatid":
			text = h.localizer.Format(lang, "chat_id", chatID)
		default:
			text = h.localizer.GetString(lang, "unknown_command")
		}
	} else {
		text = h.localizer.GetString(lang, "not_a_command")
	}

	if _, err := h.sender.Send(markdownMessage(chatID, text)); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("ERROR: failed to answer bot command")
	}
}
