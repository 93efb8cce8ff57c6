package bot

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"storefront/internal/domain"
	rabbit "storefront/internal/infra/rabbitmq"
	"storefront/internal/infra/redisstore"
	"storefront/internal/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Connected(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *mockSender) Send(ctx context.Context, recipient, text string) error {
	return m.Called(ctx, recipient, text).Error(0)
}

type mockOrders struct {
	mock.Mock
}

func (m *mockOrders) CreateOrder(ctx context.Context, req services.CheckoutRequest) (*domain.Order, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrders) GetOrder(ctx context.Context, invoice string) (*domain.Order, error) {
	args := m.Called(ctx, invoice)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Connected(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockGateway) Send(ctx context.Context, phone, message string) error {
	return m.Called(ctx, phone, message).Error(0)
}

func notificationMessage(t *testing.T, n domain.ChatNotification) rabbit.Message {
	t.Helper()
	body, err := rabbit.NewMessage(n.Channel.RoutingKey(), n)
	require.NoError(t, err)
	var msg rabbit.Message
	require.NoError(t, json.Unmarshal(body, &msg))
	return msg
}

func TestRelay_Handle(t *testing.T) {
	n := domain.ChatNotification{Channel: domain.ChannelWhatsApp, Recipient: "08123", InvoiceNumber: "INV-1", Text: "link"}

	tests := []struct {
		name       string
		setupMocks func(s *mockSender)
		wantErr    bool
	}{
		{
			name: "delivers when connected",
			setupMocks: func(s *mockSender) {
				s.On("Connected", mock.Anything).Return(true)
				s.On("Send", mock.Anything, "08123", "link").Return(nil)
			},
		},
		{
			name: "skips when disconnected",
			setupMocks: func(s *mockSender) {
				s.On("Connected", mock.Anything).Return(false)
			},
		},
		{
			name: "send failure is reported",
			setupMocks: func(s *mockSender) {
				s.On("Connected", mock.Anything).Return(true)
				s.On("Send", mock.Anything, "08123", "link").Return(errors.New("boom"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := new(mockSender)
			tt.setupMocks(s)
			r := NewRelay(map[domain.ChatChannel]Sender{domain.ChannelWhatsApp: s})

			err := r.Handle(context.Background(), notificationMessage(t, n))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			s.AssertExpectations(t)
		})
	}
}

func TestRelay_UnknownChannel(t *testing.T) {
	r := NewRelay(map[domain.ChatChannel]Sender{})
	err := r.Handle(context.Background(), notificationMessage(t, domain.ChatNotification{Channel: domain.ChannelTelegram}))
	assert.Error(t, err)
}

func TestRelay_RoutingKeys(t *testing.T) {
	r := NewRelay(map[domain.ChatChannel]Sender{
		domain.ChannelTelegram: new(mockSender),
		domain.ChannelWhatsApp: new(mockSender),
	})
	assert.ElementsMatch(t, []string{"notify.telegram", "notify.whatsapp"}, r.RoutingKeys())
}

func TestWhatsAppSender_Connected(t *testing.T) {
	gw := new(mockGateway)
	gw.On("Connected", mock.Anything).Return(false, errors.New("unreachable")).Once()
	gw.On("Connected", mock.Anything).Return(true, nil).Once()

	s := NewWhatsAppSender(gw)
	assert.False(t, s.Connected(context.Background()))
	assert.True(t, s.Connected(context.Background()))

	var nilSender *WhatsAppSender
	assert.False(t, nilSender.Connected(context.Background()))
}

func newSessionStore(t *testing.T) *redisstore.SessionStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return redisstore.NewSessionStore(rdb, 30*time.Minute)
}

func TestCommands_BuyThenStatus(t *testing.T) {
	ctx := context.Background()
	orders := new(mockOrders)
	sessions := newSessionStore(t)
	cmds := NewCommands(orders, sessions, domain.ChannelTelegram)

	order := &domain.Order{
		InvoiceNumber: "INV-20261019-0003",
		ProductName:   "Ebook",
		TotalAmount:   50042,
		UniqueCode:    42,
		QRISString:    "000201QR",
		Status:        domain.StatusPending,
	}
	orders.On("CreateOrder", mock.Anything, services.CheckoutRequest{ProductID: 7, Chat: "555"}).Return(order, nil)
	orders.On("GetOrder", mock.Anything, "INV-20261019-0003").Return(order, nil).Once()

	reply := cmds.Handle(ctx, "555", "buy", " 7 ")
	assert.Contains(t, reply, "INV-20261019-0003")
	assert.Contains(t, reply, "Rp 50042")
	assert.Contains(t, reply, "000201QR")

	sess, err := sessions.Get(ctx, "telegram", "555")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "INV-20261019-0003", sess.InvoiceNumber)
	assert.Equal(t, uint64(7), sess.ProductID)

	assert.Contains(t, cmds.Handle(ctx, "555", "status", ""), "waiting for a payment of exactly Rp 50042")

	paid := *order
	paid.Status = domain.StatusPaid
	orders.On("GetOrder", mock.Anything, "INV-20261019-0003").Return(&paid, nil).Once()
	assert.Contains(t, cmds.Handle(ctx, "555", "status", ""), "is paid")

	orders.On("GetOrder", mock.Anything, "INV-20261019-0003").Return(nil, services.ErrOrderNotFound).Once()
	assert.Contains(t, cmds.Handle(ctx, "555", "status", ""), "has expired")

	orders.AssertExpectations(t)
}

func TestCommands_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		command    string
		args       string
		setupMocks func(o *mockOrders)
		want       string
	}{
		{name: "missing argument", command: "buy", args: "", setupMocks: func(o *mockOrders) {}, want: "Usage"},
		{name: "non numeric argument", command: "buy", args: "abc", setupMocks: func(o *mockOrders) {}, want: "Usage"},
		{
			name: "unknown product", command: "buy", args: "9",
			setupMocks: func(o *mockOrders) {
				o.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, services.ErrProductNotFound)
			},
			want: "does not exist",
		},
		{
			name: "unavailable product", command: "buy", args: "9",
			setupMocks: func(o *mockOrders) {
				o.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, services.ErrProductUnavailable)
			},
			want: "unavailable",
		},
		{name: "status without session", command: "status", setupMocks: func(o *mockOrders) {}, want: "No active order"},
		{name: "unknown command", command: "start", setupMocks: func(o *mockOrders) {}, want: "/buy <product_id>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orders := new(mockOrders)
			tt.setupMocks(orders)
			cmds := NewCommands(orders, newSessionStore(t), domain.ChannelTelegram)

			assert.Contains(t, cmds.Handle(ctx, "1", tt.command, tt.args), tt.want)
			orders.AssertExpectations(t)
		})
	}
}
