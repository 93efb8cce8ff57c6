package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender delivers a text message on one chat channel.
type Sender interface {
	// Connected reports whether the channel session is usable right now.
	Connected(ctx context.Context) bool
	Send(ctx context.Context, recipient, text string) error
}

type TelegramSender struct {
	api *tgbotapi.BotAPI
}

func NewTelegramSender(api *tgbotapi.BotAPI) *TelegramSender {
	return &TelegramSender{api: api}
}

func (s *TelegramSender) Connected(ctx context.Context) bool {
	return s != nil && s.api != nil
}

// Send accepts a numeric chat id or a public @username.
func (s *TelegramSender) Send(ctx context.Context, recipient, text string) error {
	recipient = strings.TrimSpace(recipient)
	var msg tgbotapi.MessageConfig
	if id, err := strconv.ParseInt(recipient, 10, 64); err == nil {
		msg = tgbotapi.NewMessage(id, text)
	} else {
		msg = tgbotapi.NewMessageToChannel("@"+strings.TrimPrefix(recipient, "@"), text)
	}
	msg.DisableWebPagePreview = true

	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send to %s: %w", recipient, err)
	}
	return nil
}

type Gateway interface {
	Connected(ctx context.Context) (bool, error)
	Send(ctx context.Context, phone, message string) error
}

type WhatsAppSender struct {
	gw Gateway
}

func NewWhatsAppSender(gw Gateway) *WhatsAppSender {
	return &WhatsAppSender{gw: gw}
}

func (s *WhatsAppSender) Connected(ctx context.Context) bool {
	if s == nil || s.gw == nil {
		return false
	}
	ok, err := s.gw.Connected(ctx)
	return err == nil && ok
}

func (s *WhatsAppSender) Send(ctx context.Context, recipient, text string) error {
	return s.gw.Send(ctx, recipient, text)
}
