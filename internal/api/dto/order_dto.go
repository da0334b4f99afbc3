package dto

import (
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/shopspring/decimal"
)

type CreateOrderDTO struct {
	ShippingName    string          `json:"shipping_name"`
	ShippingPhone   string          `json:"shipping_phone"`
	ShippingAddress string          `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method,omitempty"`
	ShippingFee     decimal.Decimal `json:"shipping_fee"`
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	Notes           string          `json:"notes,omitempty"`
	PromotionCode   string          `json:"promotion_code,omitempty"`
}

type UpdateOrderStatusDTO struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

type CancelOrderDTO struct {
	Reason string `json:"reason"`
}

type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

func NewPagination(total int64, page, limit int) Pagination {
	totalPages := total / int64(limit)
	if total%int64(limit) != 0 {
		totalPages++
	}
	return Pagination{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

type OrderListResponse struct {
	Orders     []model.Order `json:"orders"`
	Pagination Pagination    `json:"pagination"`
}
