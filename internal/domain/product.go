package domain

import "time"

type Product struct {
	ID           uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Description  string    `json:"description" gorm:"type:text"`
	Price        int64     `json:"price" gorm:"not null"`
	Stock        int64     `json:"stock" gorm:"not null;default:0"`
	IsActive     bool      `json:"isActive" gorm:"not null"`
	FilePath     string    `json:"-" gorm:"size:512"`
	ExternalLink string    `json:"-" gorm:"size:1024"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (p *Product) Available() bool {
	return p.IsActive && p.Stock > 0
}
