package model

import (
	"time"

	"github.com/google/uuid"
)

type MovementType string

const (
	MovementTypeIn     MovementType = "in"
	MovementTypeOut    MovementType = "out"
	MovementTypeAdjust MovementType = "adjust"
)

// 異動來源
const (
	StockRefOrder        = "order"
	StockRefOrderCancel  = "order_cancel"
	StockRefManualAdjust = "manual_adjust"
)

// StockMovement 庫存異動稽核紀錄，append-only
// 不變式: 同一 variant 依建立順序累加帶號數量，可還原出現在的 StockQuantity
type StockMovement struct {
	MovementID    uint         `gorm:"primaryKey"`
	VariantID     uint         `gorm:"not null;index"`
	MovementType  MovementType `gorm:"not null;type:varchar(10)"`
	Quantity      int          `gorm:"not null"`
	ReferenceType string       `gorm:"not null;type:varchar(50)"`
	ReferenceID   *uint
	Note          string    `gorm:"type:varchar(500)"`
	CreatedBy     uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime"`
}

// StockAdjustResult 管理端校正庫存的結果
type StockAdjustResult struct {
	VariantID        uint `json:"variant_id"`
	PreviousQuantity int  `json:"previous_quantity"`
	NewQuantity      int  `json:"new_quantity"`
	Difference       int  `json:"difference"`
}
