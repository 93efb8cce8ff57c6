package repository

import (
	"context"
	"errors"
	"time"

	"storefront/internal/domain"
)

var (
	ErrDuplicateInvoice = errors.New("invoice number already exists")
	ErrNotFound         = errors.New("record not found")
)

// PaidTransition reports what a MarkPaid call changed.
type PaidTransition struct {
	// Won is false when the order was no longer pending, i.e. another delivery
	// already moved it to paid.
	Won bool
	// StockDecremented is false when the product was already at zero stock or
	// the decrement failed.
	StockDecremented bool
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByInvoice(ctx context.Context, invoice string) (*domain.Order, error)
	FindPendingByAmount(ctx context.Context, amount int64) (*domain.Order, error)
	ExistsPendingAmount(ctx context.Context, amount int64, since time.Time) (bool, error)
	MarkPaid(ctx context.Context, order *domain.Order, paidAt time.Time) (PaidTransition, error)
	DeletePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
	LastInvoiceWithPrefix(ctx context.Context, prefix string) (string, error)
}
