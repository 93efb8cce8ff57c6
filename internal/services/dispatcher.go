package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"storefront/internal/domain"
	"storefront/internal/infra/mail"

	"golang.org/x/sync/errgroup"
)

const dispatchTimeout = 30 * time.Second

type Notifier interface {
	Dispatch(ctx context.Context, order *domain.Order, token *domain.DownloadToken) error
}

type Mailer interface {
	Send(cfg mail.SMTPConfig, e mail.Email) error
}

type ChatNotifier interface {
	Notify(ctx context.Context, n domain.ChatNotification) error
}

// Dispatcher sends the download link on every contact channel the buyer gave.
// Channels are independent: one failing does not stop the others.
type Dispatcher struct {
	settings *SettingsService
	mailer   Mailer
	chat     ChatNotifier
}

func NewDispatcher(settings *SettingsService, mailer Mailer, chat ChatNotifier) *Dispatcher {
	return &Dispatcher{settings: settings, mailer: mailer, chat: chat}
}

var _ Notifier = (*Dispatcher)(nil)

func (d *Dispatcher) Dispatch(ctx context.Context, order *domain.Order, token *domain.DownloadToken) error {
	storeName, _ := d.settings.Get(ctx, domain.SettingStoreName)
	link := d.settings.DownloadLink(ctx, token.Token)
	text := downloadMessage(storeName, order, token, link)

	var g errgroup.Group

	if order.BuyerEmail != "" && d.mailer != nil {
		g.Go(func() error {
			cfg := d.smtpConfig(ctx)
			err := d.mailer.Send(cfg, mail.Email{
				To:       order.BuyerEmail,
				Subject:  fmt.Sprintf("[%s] Download link for %s", storeName, order.InvoiceNumber),
				TextBody: text,
			})
			if err != nil {
				log.Printf("Email notification for %s failed: %v", order.InvoiceNumber, err)
			}
			return err
		})
	}

	if d.chat != nil {
		if order.BuyerPhone != "" {
			g.Go(func() error {
				return d.notifyChat(ctx, domain.ChannelWhatsApp, order.BuyerPhone, order, text)
			})
		}
		if order.BuyerChat != "" {
			g.Go(func() error {
				return d.notifyChat(ctx, domain.ChannelTelegram, order.BuyerChat, order, text)
			})
		}
	}

	return g.Wait()
}

func (d *Dispatcher) notifyChat(ctx context.Context, ch domain.ChatChannel, recipient string, order *domain.Order, text string) error {
	err := d.chat.Notify(ctx, domain.ChatNotification{
		Channel:       ch,
		Recipient:     recipient,
		InvoiceNumber: order.InvoiceNumber,
		Text:          text,
	})
	if err != nil {
		log.Printf("%s notification for %s failed: %v", ch, order.InvoiceNumber, err)
	}
	return err
}

func (d *Dispatcher) smtpConfig(ctx context.Context) mail.SMTPConfig {
	get := func(key string) string {
		v, err := d.settings.Get(ctx, key)
		if err != nil {
			log.Printf("Failed to read %s: %v", key, err)
		}
		return v
	}
	port, _ := strconv.Atoi(get(domain.SettingSMTPPort))
	return mail.SMTPConfig{
		Host:     get(domain.SettingSMTPHost),
		Port:     port,
		Username: get(domain.SettingSMTPUser),
		Password: get(domain.SettingSMTPPassword),
		From:     get(domain.SettingSMTPFrom),
	}
}

func downloadMessage(storeName string, order *domain.Order, token *domain.DownloadToken, link string) string {
	return fmt.Sprintf(
		"Thank you for your purchase at %s.\n\nInvoice: %s\nProduct: %s\nTotal: Rp %d\n\nDownload: %s\nThis link is valid until %s.",
		storeName,
		order.InvoiceNumber,
		order.ProductName,
		order.TotalAmount,
		link,
		token.ExpiresAt.Format("02 Jan 2006 15:04 MST"),
	)
}

// dispatchDetached runs a dispatch outside any request lifetime.
func dispatchDetached(n Notifier, order *domain.Order, token *domain.DownloadToken) {
	ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
	defer cancel()
	if err := n.Dispatch(ctx, order, token); err != nil {
		log.Printf("Notification fan-out for %s finished with errors: %v", order.InvoiceNumber, err)
	}
}
