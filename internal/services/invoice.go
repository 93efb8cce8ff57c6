package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"storefront/internal/repository"
)

const invoicePrefix = "INV"

// InvoiceSequencer returns the next sequence number for a day (YYYYMMDD).
type InvoiceSequencer interface {
	Next(ctx context.Context, day string) (int64, error)
}

// SharedSequencer is a sequencer shared between processes. Resync raises its
// counter for day to at least floor.
type SharedSequencer interface {
	InvoiceSequencer
	Resync(ctx context.Context, day string, floor int64) error
}

func FormatInvoice(day string, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", invoicePrefix, day, seq)
}

// dbSequencer derives the next number from the highest invoice stored for the
// day. Two concurrent checkouts can draw the same number; the unique index
// turns that into ErrDuplicateInvoice.
type dbSequencer struct {
	orders repository.OrderRepository
}

func (s dbSequencer) Next(ctx context.Context, day string) (int64, error) {
	prefix := fmt.Sprintf("%s-%s-", invoicePrefix, day)
	last, err := s.orders.LastInvoiceWithPrefix(ctx, prefix)
	if err != nil {
		return 0, err
	}
	if last == "" {
		return 1, nil
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(last, prefix), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable invoice number %q: %w", last, err)
	}
	return n + 1, nil
}
