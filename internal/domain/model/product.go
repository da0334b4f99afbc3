package model

import (
	"github.com/shopspring/decimal"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

type VariantStatus string

const (
	VariantStatusActive   VariantStatus = "active"
	VariantStatusInactive VariantStatus = "inactive"
)

type Product struct {
	ProductID   uint             `gorm:"primaryKey"`
	Code        string           `gorm:"not null;type:varchar(100);unique"`
	Name        string           `gorm:"not null;type:varchar(100)"`
	Category    string           `gorm:"not null;type:varchar(50)"`
	Description string           `gorm:"type:text"`
	Status      ProductStatus    `gorm:"not null;type:varchar(20);default:active"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	BaseModel
}

// ProductVariant 可販售單位（同商品的尺寸/顏色組合）
// StockQuantity 只允許 Stock Ledger 透過條件式 update 變動，不可為負
type ProductVariant struct {
	VariantID     uint            `gorm:"primaryKey"`
	ProductID     uint            `gorm:"not null;index"`
	SKU           string          `gorm:"not null;type:varchar(100);unique"`
	Size          string          `gorm:"type:varchar(20)"`
	Color         string          `gorm:"type:varchar(50)"`
	Price         decimal.Decimal `gorm:"not null;type:decimal(10,2)"`
	StockQuantity int             `gorm:"not null;default:0"`
	Status        VariantStatus   `gorm:"not null;type:varchar(20);default:active"`
	Product       Product         `gorm:"foreignKey:ProductID;references:ProductID"`
	BaseModel
}
