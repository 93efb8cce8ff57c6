package services

import (
	"time"

	"storefront/internal/domain"
)

func CreateMockOrder(invoice string, productID uint64, price, code int64, status domain.OrderStatus) *domain.Order {
	return &domain.Order{
		ID:            1,
		InvoiceNumber: invoice,
		ProductID:     productID,
		ProductName:   TestProductName,
		ProductPrice:  price,
		UniqueCode:    code,
		TotalAmount:   price + code,
		BuyerEmail:    TestBuyerEmail,
		Status:        status,
		PaymentMethod: domain.PaymentMethodQRIS,
		CreatedAt:     time.Now(),
	}
}

func CreateMockProduct(id uint64, name string, price int64, stock int64) *domain.Product {
	return &domain.Product{
		ID:       id,
		Name:     name,
		Price:    price,
		Stock:    stock,
		IsActive: true,
		FilePath: "files/ebook.pdf",
	}
}

const (
	TestProductID    = uint64(1)
	TestInvoice      = "INV-20261019-0001"
	TestProductName  = "Test Product"
	TestProductPrice = int64(50000)
	TestUniqueCode   = int64(123)
	TestProductStock = int64(5)
	TestBuyerEmail   = "buyer@example.com"
)
