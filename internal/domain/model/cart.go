package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart 每個 user 一個，結帳成功後清空 items（cart 本身保留）
type Cart struct {
	CartID uint       `gorm:"primaryKey"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	Items  []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	BaseModel
}

type CartItem struct {
	CartItemID uint           `gorm:"primaryKey"`
	CartID     uint           `gorm:"not null;index"`
	VariantID  uint           `gorm:"not null;index"`
	Quantity   int            `gorm:"not null"`
	Variant    ProductVariant `gorm:"foreignKey:VariantID;references:VariantID"`
	BaseModel
}

// CartSnapshot 帶現價的購物車視圖，結帳與顯示共用
type CartSnapshot struct {
	CartID     uint               `json:"cart_id"`
	UserID     uuid.UUID          `json:"user_id"`
	Items      []CartSnapshotItem `json:"items"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
	TotalItems int                `json:"total_items"`
}

type CartSnapshotItem struct {
	CartItemID  uint            `json:"cart_item_id"`
	VariantID   uint            `json:"variant_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ItemTotal   decimal.Decimal `json:"item_total"`
	InStock     bool            `json:"in_stock"`
	Available   int             `json:"available"`
}

// CartValidation 結帳前檢查結果
type CartValidation struct {
	Valid  bool        `json:"valid"`
	Issues []CartIssue `json:"issues"`
}

type CartIssue struct {
	VariantID   uint   `json:"variant_id"`
	ProductName string `json:"product_name"`
	Reason      string `json:"reason"`
	Available   int    `json:"available"`
}
