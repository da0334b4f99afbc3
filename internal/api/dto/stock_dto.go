package dto

import (
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
)

type AdjustStockDTO struct {
	NewQuantity int    `json:"new_quantity"`
	Reason      string `json:"reason"`
}

type MovementListResponse struct {
	Movements  []model.StockMovement `json:"movements"`
	Pagination Pagination            `json:"pagination"`
}

type ProductListResponse struct {
	Products   []model.Product `json:"products"`
	Pagination Pagination      `json:"pagination"`
}
