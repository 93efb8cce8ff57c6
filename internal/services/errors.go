package services

import "errors"

var (
	ErrOrderNotFound       = errors.New("order not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductUnavailable  = errors.New("product is inactive or out of stock")
	ErrContactRequired     = errors.New("at least one contact (email, phone or chat) is required")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrUniqueCodeExhausted = errors.New("could not find a free payment amount, try again later")
	ErrUnauthorized        = errors.New("invalid api key")
	ErrWebhookKeyMissing   = errors.New("webhook api key is not configured")
	ErrOrderNotPaid        = errors.New("order is not paid")
	ErrTokenExpired        = errors.New("download link is invalid or expired")
	ErrTokenForbidden      = errors.New("download is not allowed for this order")
	ErrContactMismatch     = errors.New("contact does not match the order")
	ErrInvalidSettingKey   = errors.New("setting key must not be empty")
)
