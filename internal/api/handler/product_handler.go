package handler

import (
	"net/http"

	"github.com/RoyceAzure/lab/ordercenter/internal/api/dto"
	"github.com/RoyceAzure/lab/ordercenter/internal/service"
	"github.com/RoyceAzure/rj/api"
	er "github.com/RoyceAzure/rj/util/rj_error"
)

type ProductHandler struct {
	productService service.IProductService
}

func NewProductHandler(productService service.IProductService) *ProductHandler {
	if productService == nil {
		panic("productService cannot be nil")
	}
	return &ProductHandler{productService: productService}
}

// GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePaging(r)

	products, total, err := h.productService.GetProducts(r.Context(), page, pageSize)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, dto.ProductListResponse{
		Products:   products,
		Pagination: dto.NewPagination(total, page, pageSize),
	}, nil)
}

// GET /products/{productId}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	productID, err := parseUintParam(r, "productId")
	if err != nil {
		api.ErrorJSON(w, int(er.BadRequestCode), nil, er.ErrStrMap[er.BadRequestCode])
		return
	}

	product, err := h.productService.GetProductByID(r.Context(), productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	api.SuccessJSON(w, product, nil)
}
