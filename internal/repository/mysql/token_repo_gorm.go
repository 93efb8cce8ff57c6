package mysql

import (
	"context"
	"errors"
	"log"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"gorm.io/gorm"
)

type tokenRepo struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) repository.TokenRepository {
	return &tokenRepo{db: db}
}

func (r *tokenRepo) Create(ctx context.Context, token *domain.DownloadToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		log.Printf("Token save error: %v", err)
		return err
	}
	return nil
}

func (r *tokenRepo) FindByToken(ctx context.Context, token string) (*domain.DownloadToken, error) {
	var t domain.DownloadToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("FindByToken error: %v", err)
		return nil, err
	}
	return &t, nil
}

func (r *tokenRepo) RecordDownload(ctx context.Context, token string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.DownloadToken{}).
		Where("token = ?", token).
		Updates(map[string]any{
			"download_count":   gorm.Expr("download_count + 1"),
			"last_download_at": at,
			"is_used":          true,
		})
	if res.Error != nil {
		log.Printf("RecordDownload error: %v", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
