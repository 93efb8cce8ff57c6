package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/bot"
	"storefront/internal/config"
	"storefront/internal/domain"
	"storefront/internal/infra/rabbitmq"
	"storefront/internal/infra/redisstore"
	"storefront/internal/infra/whatsapp"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func botCmd() *cobra.Command {
	var queue string

	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Run the chat bots and deliver queued Telegram/WhatsApp notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			st, err := buildStack(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			var api *tgbotapi.BotAPI
			if cfg.TelegramBotToken != "" {
				if api, err = tgbotapi.NewBotAPI(cfg.TelegramBotToken); err != nil {
					log.Printf("Telegram session unavailable: %v", err)
				}
			}

			senders := map[domain.ChatChannel]bot.Sender{
				domain.ChannelTelegram: bot.NewTelegramSender(api),
			}
			if cfg.WAGatewayURL != "" {
				senders[domain.ChannelWhatsApp] = bot.NewWhatsAppSender(whatsapp.NewGatewayClient(cfg.WAGatewayURL, 10*time.Second))
			} else {
				senders[domain.ChannelWhatsApp] = bot.NewWhatsAppSender(nil)
			}
			relay := bot.NewRelay(senders)

			consumer, err := rabbitmq.NewConsumer(cfg.RabbitMQURL, cfg.RabbitMQExchange, queue, relay.RoutingKeys()...)
			if err != nil {
				return err
			}
			defer consumer.Close()

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return consumer.Run(gctx, relay.Handle) })

			if api != nil && st.rdb != nil {
				sessions := redisstore.NewSessionStore(st.rdb, cfg.SessionTTL)
				tg := bot.NewTelegramBot(api, bot.NewCommands(st.orders, sessions, domain.ChannelTelegram))
				g.Go(func() error { return tg.Run(gctx) })
			} else {
				log.Println("Telegram commands disabled (no bot session or no Redis)")
			}

			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			log.Println("Bot process stopped.")
			return nil
		},
	}

	cmd.Flags().StringVar(&queue, "queue", "storefront.notify", "queue to consume chat notifications from")
	return cmd
}
