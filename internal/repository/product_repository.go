package repository

import (
	"context"

	"storefront/internal/domain"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (*domain.Product, error)
	Save(ctx context.Context, product *domain.Product) error
}
