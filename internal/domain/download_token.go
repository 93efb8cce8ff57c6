package domain

import "time"

// DownloadToken grants time-limited access to a paid order's file. IsUsed is
// informational: a token can be redeemed any number of times until ExpiresAt.
type DownloadToken struct {
	ID             uint64     `json:"-" gorm:"primaryKey;autoIncrement"`
	Token          string     `json:"token" gorm:"size:64;not null;uniqueIndex"`
	InvoiceNumber  string     `json:"invoiceNumber" gorm:"size:32;not null;index"`
	ProductID      uint64     `json:"productId" gorm:"not null"`
	CreatedAt      time.Time  `json:"createdAt"`
	ExpiresAt      time.Time  `json:"expiresAt" gorm:"not null"`
	IsUsed         bool       `json:"isUsed" gorm:"not null;default:false"`
	DownloadCount  int64      `json:"downloadCount" gorm:"not null;default:0"`
	LastDownloadAt *time.Time `json:"lastDownloadAt,omitempty"`
}

func (t *DownloadToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
