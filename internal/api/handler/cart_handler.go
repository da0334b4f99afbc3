package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/ordercenter/internal/api/dto"
	"github.com/RoyceAzure/lab/ordercenter/internal/service"
	"github.com/RoyceAzure/rj/api"
	er "github.com/RoyceAzure/rj/util/rj_error"
)

type CartHandler struct {
	cartService service.ICartService
}

func NewCartHandler(cartService service.ICartService) *CartHandler {
	if cartService == nil {
		panic("cartService cannot be nil")
	}
	return &CartHandler{cartService: cartService}
}

// GET /cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	snapshot, err := h.cartService.GetCart(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, snapshot, nil)
}

// GET /cart/validate
func (h *CartHandler) Validate(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	validation, err := h.cartService.Validate(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, validation, nil)
}

// POST /cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	var addDTO dto.AddToCartDTO
	if err := json.NewDecoder(r.Body).Decode(&addDTO); err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	snapshot, err := h.cartService.AddToCart(r.Context(), userID, addDTO.VariantID, addDTO.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, snapshot, nil)
}

// PUT /cart/items/{cartItemId}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	cartItemID, err := parseUintParam(r, "cartItemId")
	if err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	var updateDTO dto.UpdateCartItemDTO
	if err := json.NewDecoder(r.Body).Decode(&updateDTO); err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	snapshot, err := h.cartService.UpdateItem(r.Context(), userID, cartItemID, updateDTO.Quantity)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, snapshot, nil)
}

// DELETE /cart/items/{cartItemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	cartItemID, err := parseUintParam(r, "cartItemId")
	if err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	snapshot, err := h.cartService.RemoveItem(r.Context(), userID, cartItemID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, snapshot, nil)
}

// DELETE /cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	if err := h.cartService.Clear(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, nil, nil)
}
