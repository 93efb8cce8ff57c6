package repository

import (
	"context"

	"storefront/internal/domain"
)

type SettingsRepository interface {
	// Get returns "" and no error for a missing key.
	Get(ctx context.Context, key string) (string, error)
	All(ctx context.Context) ([]domain.Setting, error)
	Upsert(ctx context.Context, key, value string) error
	SeedDefaults(ctx context.Context, defaults map[string]string) error
}
