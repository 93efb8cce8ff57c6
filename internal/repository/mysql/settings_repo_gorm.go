package mysql

import (
	"context"
	"errors"
	"log"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type settingsRepo struct {
	db *gorm.DB
}

func NewSettingsRepository(db *gorm.DB) repository.SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) Get(ctx context.Context, key string) (string, error) {
	var s domain.Setting
	if err := r.db.WithContext(ctx).Where("`key` = ?", key).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		log.Printf("Settings get %q error: %v", key, err)
		return "", err
	}
	return s.Value, nil
}

func (r *settingsRepo) All(ctx context.Context) ([]domain.Setting, error) {
	var out []domain.Setting
	if err := r.db.WithContext(ctx).Order("`key`").Find(&out).Error; err != nil {
		log.Printf("Settings list error: %v", err)
		return nil, err
	}
	return out, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, key, value string) error {
	s := domain.Setting{Key: key, Value: value, UpdatedAt: time.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&s).Error
	if err != nil {
		log.Printf("Settings upsert %q error: %v", key, err)
		return err
	}
	return nil
}

func (r *settingsRepo) SeedDefaults(ctx context.Context, defaults map[string]string) error {
	if len(defaults) == 0 {
		return nil
	}
	now := time.Now()
	rows := make([]domain.Setting, 0, len(defaults))
	for k, v := range defaults {
		rows = append(rows, domain.Setting{Key: k, Value: v, UpdatedAt: now})
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
	if err != nil {
		log.Printf("Settings seed error: %v", err)
		return err
	}
	return nil
}
