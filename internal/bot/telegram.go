package bot

import (
	"context"
	"log"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramBot long-polls for updates and answers commands.
type TelegramBot struct {
	api      *tgbotapi.BotAPI
	commands *Commands
}

func NewTelegramBot(api *tgbotapi.BotAPI, commands *Commands) *TelegramBot {
	return &TelegramBot{api: api, commands: commands}
}

func (b *TelegramBot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	log.Printf("Telegram bot @%s polling for updates", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			chatID := update.Message.Chat.ID
			reply := b.commands.Handle(ctx, strconv.FormatInt(chatID, 10), update.Message.Command(), update.Message.CommandArguments())

			msg := tgbotapi.NewMessage(chatID, reply)
			msg.DisableWebPagePreview = true
			if _, err := b.api.Send(msg); err != nil {
				log.Printf("Telegram reply to %d failed: %v", chatID, err)
			}
		}
	}
}
