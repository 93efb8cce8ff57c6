package mysql

import (
	"testing"
	"time"

	"storefront/internal/domain"
	infra "storefront/internal/infra/mysql"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, infra.Migrate(db))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, price, stock int64) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: "E-book", Price: price, Stock: stock, IsActive: true}
	require.NoError(t, db.Create(p).Error)
	return p
}

func seedOrder(t *testing.T, db *gorm.DB, invoice string, productID uint64, total int64, status domain.OrderStatus, createdAt time.Time) *domain.Order {
	t.Helper()
	o := &domain.Order{
		InvoiceNumber: invoice,
		ProductID:     productID,
		ProductName:   "E-book",
		ProductPrice:  total - 123,
		UniqueCode:    123,
		TotalAmount:   total,
		BuyerEmail:    "buyer@example.com",
		Status:        status,
		CreatedAt:     createdAt,
	}
	require.NoError(t, db.Create(o).Error)
	return o
}
