package services

import (
	"context"
	"log"
	"strconv"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/repository"
)

// SettingsService reads straight through to the store on every call; there is
// no in-process cache to invalidate.
type SettingsService struct {
	repo repository.SettingsRepository
}

func NewSettingsService(repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

func (s *SettingsService) Get(ctx context.Context, key string) (string, error) {
	return s.repo.Get(ctx, key)
}

// GetInt returns def when the key is missing, unreadable or not a positive
// integer.
func (s *SettingsService) GetInt(ctx context.Context, key string, def int) int {
	v, err := s.repo.Get(ctx, key)
	if err != nil {
		log.Printf("Settings: failed to read %s, using %d: %v", key, def, err)
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrInvalidSettingKey
	}
	return s.repo.Upsert(ctx, key, value)
}

func (s *SettingsService) All(ctx context.Context) ([]domain.Setting, error) {
	return s.repo.All(ctx)
}

func (s *SettingsService) SeedDefaults(ctx context.Context) error {
	return s.repo.SeedDefaults(ctx, domain.DefaultSettings)
}

func (s *SettingsService) DownloadLink(ctx context.Context, token string) string {
	base, err := s.repo.Get(ctx, domain.SettingBaseURL)
	if err != nil {
		log.Printf("Settings: failed to read %s: %v", domain.SettingBaseURL, err)
	}
	return strings.TrimRight(base, "/") + "/download/" + token
}
