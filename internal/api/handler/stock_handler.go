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
	"github.com/rs/zerolog"
)

type StockHandler struct {
	stockService   service.IStockService
	productService service.IProductService
	logger         *zerolog.Logger
}

func NewStockHandler(stockService service.IStockService, productService service.IProductService, logger *zerolog.Logger) *StockHandler {
	if stockService == nil || productService == nil {
		panic("stockService and productService cannot be nil")
	}
	return &StockHandler{
		stockService:   stockService,
		productService: productService,
		logger:         logger,
	}
}

// PUT /admin/stock/{variantId}
func (h *StockHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	payload := util.GetTokenPayloadFromContext[uuid.UUID](r.Context())
	if payload == nil {
		api.ErrorJSON(w, int(er.UnauthenticatedCode), nil, er.ErrStrMap[er.UnauthenticatedCode])
		return
	}

	variantID, err := parseUintParam(r, "variantId")
	if err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	var adjustDTO dto.AdjustStockDTO
	if err := json.NewDecoder(r.Body).Decode(&adjustDTO); err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}
	if adjustDTO.Reason == "" {
		api.ErrorJSON(w, int(er.InvalidArgumentCode), er.New(er.InvalidArgumentCode, "reason is required"), er.ErrStrMap[er.InvalidArgumentCode])
		return
	}

	result, err := h.stockService.Adjust(r.Context(), variantID, adjustDTO.NewQuantity, adjustDTO.Reason, payload.UserId)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 庫存變了，商品詳情快取要作廢，失敗只記log不影響回應
	if cerr := h.productService.InvalidateByVariant(r.Context(), variantID); cerr != nil {
		h.logger.Warn().Err(cerr).Uint("variant_id", variantID).Msg("invalidate product cache failed")
	}

	api.SuccessJSON(w, result, nil)
}

// GET /admin/stock/{variantId}/movements
func (h *StockHandler) Movements(w http.ResponseWriter, r *http.Request) {
	variantID, err := parseUintParam(r, "variantId")
	if err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	page, pageSize := parsePaging(r)
	movementType := model.MovementType(r.URL.Query().Get("type"))

	movements, total, err := h.stockService.GetHistory(r.Context(), variantID, movementType, page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.MovementListResponse{
		Movements:  movements,
		Pagination: dto.NewPagination(total, page, pageSize),
	}, nil)
}
