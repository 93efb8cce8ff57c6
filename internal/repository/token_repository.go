package repository

import (
	"context"
	"time"

	"storefront/internal/domain"
)

type TokenRepository interface {
	Create(ctx context.Context, token *domain.DownloadToken) error
	FindByToken(ctx context.Context, token string) (*domain.DownloadToken, error)
	RecordDownload(ctx context.Context, token string, at time.Time) error
}
