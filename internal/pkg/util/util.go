package util

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// GenerateOrderCode 產生訂單編號 ORD + yymmdd + 4碼亂數
// 唯一性由 orders.order_code unique constraint 兜底
func GenerateOrderCode() string {
	now := time.Now()
	return fmt.Sprintf("ORD%s%04d", now.Format("060102"), rand.Intn(10000))
}

// NormalizePhoneNumber 統一轉成 +84 格式
func NormalizePhoneNumber(phone string) string {
	if phone == "" {
		return phone
	}

	normalized := strings.NewReplacer(" ", "", "-", "").Replace(phone)

	switch {
	case strings.HasPrefix(normalized, "+84"):
		return normalized
	case strings.HasPrefix(normalized, "84"):
		return "+" + normalized
	case strings.HasPrefix(normalized, "0"):
		return "+84" + normalized[1:]
	default:
		return "+84" + normalized
	}
}
