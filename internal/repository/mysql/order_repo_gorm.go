package mysql

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) Create(ctx context.Context, order *domain.Order) error {
	result := r.db.WithContext(ctx).Create(order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %s", repository.ErrDuplicateInvoice, order.InvoiceNumber)
		}
		log.Printf("Database save error: %v", result.Error)
		return result.Error
	}

	if order.ID == 0 {
		log.Printf("WARNING: Order saved but ID is still 0. Rows affected: %d", result.RowsAffected)
		return errors.New("failed to assign order ID")
	}

	log.Printf("Order %s saved with ID %d", order.InvoiceNumber, order.ID)
	return nil
}

func (r *orderRepo) FindByInvoice(ctx context.Context, invoice string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Where("invoice_number = ?", invoice).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindByInvoice error: %v", err)
		return nil, err
	}
	return &o, nil
}

// FindPendingByAmount returns the most recently created pending order whose
// total equals amount exactly, or nil when there is none.
func (r *orderRepo) FindPendingByAmount(ctx context.Context, amount int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Where("total_amount = ? AND status = ?", amount, domain.StatusPending).
		Order("created_at DESC").
		Order("id DESC").
		First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindPendingByAmount error: %v", err)
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) ExistsPendingAmount(ctx context.Context, amount int64, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("total_amount = ? AND status = ? AND created_at >= ?", amount, domain.StatusPending, since).
		Count(&count).Error
	if err != nil {
		log.Printf("ExistsPendingAmount error: %v", err)
		return false, err
	}
	return count > 0, nil
}

// MarkPaid moves the order from pending to paid and decrements the product
// stock in one transaction. The status predicate is the only guard against a
// second delivery for the same amount. The stock decrement runs in a savepoint
// so its failure never undoes the paid transition.
func (r *orderRepo) MarkPaid(ctx context.Context, order *domain.Order, paidAt time.Time) (repository.PaidTransition, error) {
	var out repository.PaidTransition

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Order{}).
			Where("id = ? AND status = ?", order.ID, domain.StatusPending).
			Updates(map[string]any{"status": domain.StatusPaid, "paid_at": paidAt})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		out.Won = true

		if err := tx.Transaction(func(stx *gorm.DB) error {
			res := stx.Model(&domain.Product{}).
				Where("id = ? AND stock > 0", order.ProductID).
				UpdateColumn("stock", gorm.Expr("stock - 1"))
			if res.Error != nil {
				return res.Error
			}
			out.StockDecremented = res.RowsAffected == 1
			return nil
		}); err != nil {
			log.Printf("MarkPaid: stock decrement for product %d failed: %v", order.ProductID, err)
		}
		return nil
	})
	if err != nil {
		log.Printf("MarkPaid error for %s: %v", order.InvoiceNumber, err)
		return repository.PaidTransition{}, err
	}

	if out.Won {
		order.Status = domain.StatusPaid
		order.PaidAt = &paidAt
	}
	return out, nil
}

// DeletePendingBefore removes abandoned pending orders. Paid orders are never
// touched regardless of age.
func (r *orderRepo) DeletePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.StatusPending, cutoff).
		Delete(&domain.Order{})
	if res.Error != nil {
		log.Printf("DeletePendingBefore error: %v", res.Error)
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *orderRepo) LastInvoiceWithPrefix(ctx context.Context, prefix string) (string, error) {
	var invoices []string
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("invoice_number LIKE ?", prefix+"%").
		Order("invoice_number DESC").
		Limit(1).
		Pluck("invoice_number", &invoices).Error
	if err != nil {
		log.Printf("LastInvoiceWithPrefix error: %v", err)
		return "", err
	}
	if len(invoices) == 0 {
		return "", nil
	}
	return invoices[0], nil
}
