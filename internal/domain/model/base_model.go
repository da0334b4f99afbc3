package model

import (
	"time"

	"gorm.io/gorm"
)

// 所有可變實體共用的欄位
// 刪除一律走軟刪除，實體狀態另以各自的 status enum 表示
type BaseModel struct {
	CreatedAt time.Time      `gorm:"not null;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
