package dto

type AddToCartDTO struct {
	VariantID uint `json:"variant_id"`
	Quantity  int  `json:"quantity"`
}

type UpdateCartItemDTO struct {
	Quantity int `json:"quantity"`
}
