package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/mocks"
	"storefront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

type orderDeps struct {
	orders    *mocks.MockOrderRepository
	products  *mocks.MockProductRepository
	qris      *mocks.MockQRISGenerator
	publisher *mocks.MockPublisher
	sequencer *mocks.MockSequencer
}

func newTestOrderService(settings map[string]string, opts OrderOptions, codes ...int64) (*OrderService, orderDeps) {
	d := orderDeps{
		orders:    new(mocks.MockOrderRepository),
		products:  new(mocks.MockProductRepository),
		qris:      new(mocks.MockQRISGenerator),
		publisher: new(mocks.MockPublisher),
		sequencer: new(mocks.MockSequencer),
	}
	svc := NewOrderService(d.orders, d.products, NewSettingsService(mocks.StubSettings(settings)), d.qris, d.publisher, opts)
	svc.SetSequencer(d.sequencer)
	svc.now = func() time.Time { return fixedNow }
	svc.spawn = func(f func()) { f() }

	i := 0
	svc.uniqueCode = func(max int64) int64 {
		if len(codes) == 0 {
			return TestUniqueCode
		}
		c := codes[i%len(codes)]
		i++
		return c
	}
	return svc, d
}

func TestOrderService_CreateOrder(t *testing.T) {
	qrisSettings := map[string]string{domain.SettingQRISBaseString: "000201STATIC"}

	tests := []struct {
		name        string
		req         CheckoutRequest
		settings    map[string]string
		setupMocks  func(d orderDeps)
		expectedErr error
		check       func(t *testing.T, o *domain.Order)
	}{
		{
			name:     "successful order creation",
			req:      CheckoutRequest{ProductID: TestProductID, Email: " Buyer@Example.com "},
			settings: qrisSettings,
			setupMocks: func(d orderDeps) {
				d.products.On("FindByID", mock.Anything, TestProductID).Return(CreateMockProduct(TestProductID, TestProductName, TestProductPrice, TestProductStock), nil)
				d.sequencer.On("Next", mock.Anything, "20261019").Return(int64(7), nil)
				d.orders.On("ExistsPendingAmount", mock.Anything, int64(50123), fixedNow.Add(-time.Hour)).Return(false, nil)
				d.qris.On("Generate", mock.Anything, "000201STATIC", int64(50123)).Return("000201DYNAMIC", nil)
				d.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil).Run(func(args mock.Arguments) {
					args.Get(1).(*domain.Order).ID = 1
				})
				d.publisher.On("Publish", mock.Anything, "order.created", mock.AnythingOfType("domain.OrderCreatedEvent")).Return(nil)
			},
			check: func(t *testing.T, o *domain.Order) {
				assert.Equal(t, "INV-20261019-0007", o.InvoiceNumber)
				assert.Equal(t, TestProductPrice, o.ProductPrice)
				assert.Equal(t, TestUniqueCode, o.UniqueCode)
				assert.Equal(t, int64(50123), o.TotalAmount)
				assert.Equal(t, "buyer@example.com", o.BuyerEmail)
				assert.Equal(t, domain.StatusPending, o.Status)
				assert.Equal(t, "000201DYNAMIC", o.QRISString)
				assert.Equal(t, fixedNow, o.CreatedAt)
			},
		},
		{
			name:     "qris service failure falls back to static string",
			req:      CheckoutRequest{ProductID: TestProductID, Phone: "0812 3456 789"},
			settings: qrisSettings,
			setupMocks: func(d orderDeps) {
				d.products.On("FindByID", mock.Anything, TestProductID).Return(CreateMockProduct(TestProductID, TestProductName, TestProductPrice, TestProductStock), nil)
				d.sequencer.On("Next", mock.Anything, "20261019").Return(int64(1), nil)
				d.orders.On("ExistsPendingAmount", mock.Anything, int64(50123), mock.Anything).Return(false, nil)
				d.qris.On("Generate", mock.Anything, "000201STATIC", int64(50123)).Return("", errors.New("connection refused"))
				d.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
				d.publisher.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil)
			},
			check: func(t *testing.T, o *domain.Order) {
				assert.Equal(t, "000201STATIC", o.QRISString)
				assert.Equal(t, "08123456789", o.BuyerPhone)
			},
		},
		{
			name: "sequencer failure falls back to database",
			req:  CheckoutRequest{ProductID: TestProductID, Chat: "@buyer"},
			setupMocks: func(d orderDeps) {
				d.products.On("FindByID", mock.Anything, TestProductID).Return(CreateMockProduct(TestProductID, TestProductName, TestProductPrice, TestProductStock), nil)
				d.sequencer.On("Next", mock.Anything, "20261019").Return(int64(0), errors.New("redis down"))
				d.orders.On("LastInvoiceWithPrefix", mock.Anything, "INV-20261019-").Return("INV-20261019-0010", nil)
				d.orders.On("ExistsPendingAmount", mock.Anything, int64(50123), mock.Anything).Return(false, nil)
				d.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
				d.publisher.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil)
			},
			check: func(t *testing.T, o *domain.Order) {
				assert.Equal(t, "INV-20261019-0011", o.InvoiceNumber)
				assert.Equal(t, "buyer", o.BuyerChat)
				assert.Empty(t, o.QRISString)
			},
		},
		{
			name:        "no contact",
			req:         CheckoutRequest{ProductID: TestProductID, Email: "  ", Chat: "@"},
			setupMocks:  func(d orderDeps) {},
			expectedErr: ErrContactRequired,
		},
		{
			name:        "invalid email",
			req:         CheckoutRequest{ProductID: TestProductID, Email: "not-an-email"},
			setupMocks:  func(d orderDeps) {},
			expectedErr: ErrInvalidEmail,
		},
		{
			name: "product not found",
			req:  CheckoutRequest{ProductID: 999, Email: TestBuyerEmail},
			setupMocks: func(d orderDeps) {
				d.products.On("FindByID", mock.Anything, uint64(999)).Return(nil, nil)
			},
			expectedErr: ErrProductNotFound,
		},
		{
			name: "product out of stock",
			req:  CheckoutRequest{ProductID: TestProductID, Email: TestBuyerEmail},
			setupMocks: func(d orderDeps) {
				d.products.On("FindByID", mock.Anything, TestProductID).Return(CreateMockProduct(TestProductID, TestProductName, TestProductPrice, 0), nil)
			},
			expectedErr: ErrProductUnavailable,
		},
		{
			name: "product inactive",
			req:  CheckoutRequest{ProductID: TestProductID, Email: TestBuyerEmail},
			setupMocks: func(d orderDeps) {
				p := CreateMockProduct(TestProductID, TestProductName, TestProductPrice, TestProductStock)
				p.IsActive = false
				d.products.On("FindByID", mock.Anything, TestProductID).Return(p, nil)
			},
			expectedErr: ErrProductUnavailable,
		},
		{
			name: "duplicate invoice after resync is a hard failure",
			req:  CheckoutRequest{ProductID: TestProductID, Email: TestBuyerEmail},
			setupMocks: func(d orderDeps) {
				d.products.On("FindByID", mock.Anything, TestProductID).Return(CreateMockProduct(TestProductID, TestProductName, TestProductPrice, TestProductStock), nil)
				d.sequencer.On("Next", mock.Anything, "20261019").Return(int64(1), nil)
				d.orders.On("ExistsPendingAmount", mock.Anything, int64(50123), mock.Anything).Return(false, nil)
				d.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).
					Return(fmt.Errorf("%w: INV-20261019-0001", repository.ErrDuplicateInvoice))
				d.orders.On("LastInvoiceWithPrefix", mock.Anything, "INV-20261019-").Return("INV-20261019-0001", nil)
				d.sequencer.On("Resync", mock.Anything, "20261019", int64(1)).Return(nil)
			},
			expectedErr: repository.ErrDuplicateInvoice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, d := newTestOrderService(tt.settings, DefaultOrderOptions())
			tt.setupMocks(d)

			result, err := svc.CreateOrder(context.Background(), tt.req)

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				require.NotNil(t, result)
				assert.Equal(t, result.ProductPrice+result.UniqueCode, result.TotalAmount)
				tt.check(t, result)
			}

			d.products.AssertExpectations(t)
			d.orders.AssertExpectations(t)
			d.sequencer.AssertExpectations(t)
			d.qris.AssertExpectations(t)
			d.publisher.AssertExpectations(t)
		})
	}
}

func TestOrderService_UniqueCodeWindow(t *testing.T) {
	t.Run("redraws on collision", func(t *testing.T) {
		svc, d := newTestOrderService(nil, DefaultOrderOptions(), 123, 456)
		d.products.On("FindByID", mock.Anything, TestProductID).Return(CreateMockProduct(TestProductID, TestProductName, TestProductPrice, TestProductStock), nil)
		d.sequencer.On("Next", mock.Anything, "20261019").Return(int64(1), nil)
		d.orders.On("ExistsPendingAmount", mock.Anything, int64(50123), mock.Anything).Return(true, nil).Once()
		d.orders.On("ExistsPendingAmount", mock.Anything, int64(50456), mock.Anything).Return(false, nil).Once()
		d.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
		d.publisher.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil)

		o, err := svc.CreateOrder(context.Background(), CheckoutRequest{ProductID: TestProductID, Email: TestBuyerEmail})
		require.NoError(t, err)
		assert.Equal(t, int64(456), o.UniqueCode)
		assert.Equal(t, int64(50456), o.TotalAmount)
		d.orders.AssertExpectations(t)
	})

	t.Run("gives up after configured attempts", func(t *testing.T) {
		opts := DefaultOrderOptions()
		opts.UniqueCodeAttempts = 3
		svc, d := newTestOrderService(nil, opts, 123)
		d.products.On("FindByID", mock.Anything, TestProductID).Return(CreateMockProduct(TestProductID, TestProductName, TestProductPrice, TestProductStock), nil)
		d.sequencer.On("Next", mock.Anything, "20261019").Return(int64(1), nil)
		d.orders.On("ExistsPendingAmount", mock.Anything, int64(50123), mock.Anything).Return(true, nil).Times(3)

		o, err := svc.CreateOrder(context.Background(), CheckoutRequest{ProductID: TestProductID, Email: TestBuyerEmail})
		assert.ErrorIs(t, err, ErrUniqueCodeExhausted)
		assert.Nil(t, o)
		d.orders.AssertExpectations(t)
		d.orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("check disabled skips the lookup", func(t *testing.T) {
		opts := DefaultOrderOptions()
		opts.UniqueCodeCheck = false
		svc, d := newTestOrderService(nil, opts)
		d.products.On("FindByID", mock.Anything, TestProductID).Return(CreateMockProduct(TestProductID, TestProductName, TestProductPrice, TestProductStock), nil)
		d.sequencer.On("Next", mock.Anything, "20261019").Return(int64(1), nil)
		d.orders.On("Create", mock.Anything, mock.AnythingOfType("*domain.Order")).Return(nil)
		d.publisher.On("Publish", mock.Anything, "order.created", mock.Anything).Return(nil)

		_, err := svc.CreateOrder(context.Background(), CheckoutRequest{ProductID: TestProductID, Email: TestBuyerEmail})
		require.NoError(t, err)
		d.orders.AssertNotCalled(t, "ExistsPendingAmount", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestOrderService_UniqueCodeRange(t *testing.T) {
	svc := NewOrderService(nil, nil, nil, nil, nil, OrderOptions{UniqueCodeMax: 999, UniqueCodeCheck: false})
	for i := 0; i < 1000; i++ {
		code, err := svc.pickUniqueCode(context.Background(), TestProductPrice, fixedNow)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, code, int64(1))
		assert.LessOrEqual(t, code, int64(999))
	}
}

func TestOrderService_GetOrder(t *testing.T) {
	svc, d := newTestOrderService(nil, DefaultOrderOptions())
	d.orders.On("FindByInvoice", mock.Anything, TestInvoice).Return(CreateMockOrder(TestInvoice, TestProductID, TestProductPrice, TestUniqueCode, domain.StatusPending), nil)
	d.orders.On("FindByInvoice", mock.Anything, "INV-MISSING").Return(nil, nil)

	o, err := svc.GetOrder(context.Background(), TestInvoice)
	require.NoError(t, err)
	assert.Equal(t, TestInvoice, o.InvoiceNumber)

	_, err = svc.GetOrder(context.Background(), "INV-MISSING")
	assert.Equal(t, ErrOrderNotFound, err)
}

func TestOrderService_SweepAbandoned(t *testing.T) {
	svc, d := newTestOrderService(nil, DefaultOrderOptions())
	d.orders.On("DeletePendingBefore", mock.Anything, fixedNow.Add(-time.Hour)).Return(int64(3), nil).Once()
	d.orders.On("DeletePendingBefore", mock.Anything, fixedNow.Add(-time.Hour)).Return(int64(0), errors.New("database error")).Once()

	n, err := svc.SweepAbandoned(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = svc.SweepAbandoned(context.Background())
	assert.ErrorContains(t, err, "database error")
	d.orders.AssertExpectations(t)
}
