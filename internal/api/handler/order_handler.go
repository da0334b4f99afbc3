package handler

import (
	"encoding/json"
	"net/http"

	"github.com/RoyceAzure/lab/ordercenter/internal/api/dto"
	"github.com/RoyceAzure/lab/ordercenter/internal/domain/model"
	"github.com/RoyceAzure/lab/ordercenter/internal/service"
	"github.com/RoyceAzure/lab/ordercenter/internal/util"
	"github.com/RoyceAzure/rj/api"
	er "github.com/RoyceAzure/rj/util/rj_error"
	"github.com/google/uuid"
)

type OrderHandler struct {
	orderService service.IOrderService
}

func NewOrderHandler(orderService service.IOrderService) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{orderService: orderService}
}

// POST /orders
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	var createDTO dto.CreateOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&createDTO); err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}
	if createDTO.ShippingName == "" || createDTO.ShippingPhone == "" || createDTO.ShippingAddress == "" {
		api.ErrorJSON(w, int(er.InvalidArgumentCode), er.New(er.InvalidArgumentCode, "shipping info is required"), er.ErrStrMap[er.InvalidArgumentCode])
		return
	}

	order, err := h.orderService.CreateOrder(r.Context(), userID, model.CreateOrderParams{
		ShippingName:    createDTO.ShippingName,
		ShippingPhone:   createDTO.ShippingPhone,
		ShippingAddress: createDTO.ShippingAddress,
		PaymentMethod:   model.PaymentMethod(createDTO.PaymentMethod),
		ShippingFee:     createDTO.ShippingFee,
		DiscountAmount:  createDTO.DiscountAmount,
		Notes:           createDTO.Notes,
		PromotionCode:   createDTO.PromotionCode,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, order, nil)
}

// GET /orders
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	page, pageSize := parsePaging(r)
	status := model.OrderStatus(r.URL.Query().Get("status"))

	orders, total, err := h.orderService.GetOrdersByUserID(r.Context(), userID, status, page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.OrderListResponse{
		Orders:     orders,
		Pagination: dto.NewPagination(total, page, pageSize),
	}, nil)
}

// GET /orders/{orderId}
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	orderID, err := parseUintParam(r, "orderId")
	if err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	order, err := h.orderService.GetOrderByID(r.Context(), orderID, &userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, order, nil)
}

// PUT /orders/{orderId}/cancel
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	orderID, err := parseUintParam(r, "orderId")
	if err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	var cancelDTO dto.CancelOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&cancelDTO); err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	order, err := h.orderService.CancelOrder(r.Context(), orderID, userID, cancelDTO.Reason)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, order, nil)
}

// GET /staff/orders
func (h *OrderHandler) StaffList(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePaging(r)
	status := model.OrderStatus(r.URL.Query().Get("status"))

	orders, total, err := h.orderService.GetAllOrders(r.Context(), status, page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.OrderListResponse{
		Orders:     orders,
		Pagination: dto.NewPagination(total, page, pageSize),
	}, nil)
}

// PUT /staff/orders/{orderId}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext[uuid.UUID](r.Context())
	if payload == nil {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	orderID, err := parseUintParam(r, "orderId")
	if err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	var updateDTO dto.UpdateOrderStatusDTO
	if err := json.NewDecoder(r.Body).Decode(&updateDTO); err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	order, err := h.orderService.UpdateOrderStatus(r.Context(), orderID,
		model.OrderStatus(updateDTO.Status), payload.UserId, updateDTO.Notes)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, order, nil)
}

// GET /staff/orders/{orderId}/history
func (h *OrderHandler) StatusHistory(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseUintParam(r, "orderId")
	if err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	histories, err := h.orderService.GetStatusHistory(r.Context(), orderID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, histories, nil)
}
