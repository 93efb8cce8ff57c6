package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

const tokenBytes = 32

// Download is what a successful redemption resolves to. ExternalLink wins over
// FilePath when both are set.
type Download struct {
	Token        *domain.DownloadToken
	Order        *domain.Order
	ExternalLink string
	FilePath     string
	FileName     string
}

type RecoverRequest struct {
	InvoiceNumber string
	Email         string
	Phone         string
	Chat          string
}

type TokenService struct {
	tokens     repository.TokenRepository
	orders     repository.OrderRepository
	products   repository.ProductRepository
	settings   *SettingsService
	dispatcher Notifier

	now   func() time.Time
	spawn func(func())
}

func NewTokenService(
	tokens repository.TokenRepository,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	settings *SettingsService,
	dispatcher Notifier,
) *TokenService {
	return &TokenService{
		tokens:     tokens,
		orders:     orders,
		products:   products,
		settings:   settings,
		dispatcher: dispatcher,
		now:        time.Now,
		spawn:      func(f func()) { go f() },
	}
}

func newTokenValue() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Issue mints a token for a paid order. The expiry is fixed at issue time from
// the download_expiry_minutes setting.
func (s *TokenService) Issue(ctx context.Context, order *domain.Order) (*domain.DownloadToken, error) {
	if order == nil || !order.IsPaid() {
		return nil, ErrOrderNotPaid
	}

	value, err := newTokenValue()
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	minutes := s.settings.GetInt(ctx, domain.SettingDownloadExpiryMinutes, domain.DefaultDownloadExpiryMinutes)
	now := s.now()

	tok := &domain.DownloadToken{
		Token:         value,
		InvoiceNumber: order.InvoiceNumber,
		ProductID:     order.ProductID,
		CreatedAt:     now,
		ExpiresAt:     now.Add(time.Duration(minutes) * time.Minute),
	}
	if err := s.tokens.Create(ctx, tok); err != nil {
		return nil, fmt.Errorf("failed to save token: %w", err)
	}
	return tok, nil
}

// Redeem validates a token and resolves what to serve. Unknown and expired
// tokens both return ErrTokenExpired. The caller records the download with
// RecordDownload once it has something to serve.
func (s *TokenService) Redeem(ctx context.Context, value string) (*Download, error) {
	if value == "" {
		return nil, ErrTokenExpired
	}

	tok, err := s.tokens.FindByToken(ctx, value)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if tok == nil || tok.Expired(now) {
		return nil, ErrTokenExpired
	}

	order, err := s.orders.FindByInvoice(ctx, tok.InvoiceNumber)
	if err != nil {
		return nil, err
	}
	if order == nil || !order.IsPaid() {
		return nil, ErrTokenForbidden
	}

	prod, err := s.products.FindByID(ctx, tok.ProductID)
	if err != nil {
		return nil, err
	}
	if prod == nil {
		return nil, ErrProductNotFound
	}

	return &Download{
		Token:        tok,
		Order:        order,
		ExternalLink: prod.ExternalLink,
		FilePath:     prod.FilePath,
		FileName:     prod.Name,
	}, nil
}

// RecordDownload bumps the token's download count and marks it used. A
// failure is logged and does not block the download.
func (s *TokenService) RecordDownload(ctx context.Context, dl *Download) {
	if err := s.tokens.RecordDownload(ctx, dl.Token.Token, s.now()); err != nil {
		log.Printf("Failed to record download for %s: %v", dl.Token.InvoiceNumber, err)
	}
}

// Recover issues an additional token for a paid order once the requester has
// shown one of the contacts given at checkout, then re-sends the link.
func (s *TokenService) Recover(ctx context.Context, req RecoverRequest) (*domain.DownloadToken, error) {
	contact, err := SanitizeContact(req.Email, req.Phone, req.Chat)
	if err != nil {
		return nil, err
	}
	if contact.Empty() {
		return nil, ErrContactRequired
	}

	order, err := s.orders.FindByInvoice(ctx, req.InvoiceNumber)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if !order.HasContact(contact.Email, contact.Phone, contact.Chat) {
		return nil, ErrContactMismatch
	}

	tok, err := s.Issue(ctx, order)
	if err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		s.spawn(func() { dispatchDetached(s.dispatcher, order, tok) })
	}
	return tok, nil
}

func (s *TokenService) DownloadLink(ctx context.Context, tok *domain.DownloadToken) string {
	return s.settings.DownloadLink(ctx, tok.Token)
}
