package mocks

import (
	"context"
	"time"

	"storefront/internal/domain"
	"storefront/internal/infra/mail"
	"storefront/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockProductRepository struct {
	mock.Mock
}

type MockTokenRepository struct {
	mock.Mock
}

type MockSettingsRepository struct {
	mock.Mock
}

type MockQRISGenerator struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

type MockSequencer struct {
	mock.Mock
}

type MockNotifier struct {
	mock.Mock
}

type MockMailer struct {
	mock.Mock
}

type MockChatNotifier struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, message any) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

func (m *MockQRISGenerator) Generate(ctx context.Context, baseString string, amount int64) (string, error) {
	args := m.Called(ctx, baseString, amount)
	return args.String(0), args.Error(1)
}

func (m *MockSequencer) Next(ctx context.Context, day string) (int64, error) {
	args := m.Called(ctx, day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSequencer) Resync(ctx context.Context, day string, floor int64) error {
	args := m.Called(ctx, day, floor)
	return args.Error(0)
}

func (m *MockNotifier) Dispatch(ctx context.Context, order *domain.Order, token *domain.DownloadToken) error {
	args := m.Called(ctx, order, token)
	return args.Error(0)
}

func (m *MockMailer) Send(cfg mail.SMTPConfig, e mail.Email) error {
	args := m.Called(cfg, e)
	return args.Error(0)
}

func (m *MockChatNotifier) Notify(ctx context.Context, n domain.ChatNotification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByInvoice(ctx context.Context, invoice string) (*domain.Order, error) {
	args := m.Called(ctx, invoice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) FindPendingByAmount(ctx context.Context, amount int64) (*domain.Order, error) {
	args := m.Called(ctx, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepository) ExistsPendingAmount(ctx context.Context, amount int64, since time.Time) (bool, error) {
	args := m.Called(ctx, amount, since)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, order *domain.Order, paidAt time.Time) (repository.PaidTransition, error) {
	args := m.Called(ctx, order, paidAt)
	return args.Get(0).(repository.PaidTransition), args.Error(1)
}

func (m *MockOrderRepository) DeletePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOrderRepository) LastInvoiceWithPrefix(ctx context.Context, prefix string) (string, error) {
	args := m.Called(ctx, prefix)
	return args.String(0), args.Error(1)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uint64) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockTokenRepository) Create(ctx context.Context, token *domain.DownloadToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) FindByToken(ctx context.Context, token string) (*domain.DownloadToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DownloadToken), args.Error(1)
}

func (m *MockTokenRepository) RecordDownload(ctx context.Context, token string, at time.Time) error {
	args := m.Called(ctx, token, at)
	return args.Error(0)
}

func (m *MockSettingsRepository) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockSettingsRepository) All(ctx context.Context) ([]domain.Setting, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Setting), args.Error(1)
}

func (m *MockSettingsRepository) Upsert(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockSettingsRepository) SeedDefaults(ctx context.Context, defaults map[string]string) error {
	args := m.Called(ctx, defaults)
	return args.Error(0)
}

// StubSettings answers Get from a fixed map; missing keys return "".
func StubSettings(values map[string]string) *MockSettingsRepository {
	m := new(MockSettingsRepository)
	for k, v := range values {
		m.On("Get", mock.Anything, k).Return(v, nil).Maybe()
	}
	m.On("Get", mock.Anything, mock.Anything).Return("", nil).Maybe()
	return m
}
