package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/ordercenter/internal/constants"
	"github.com/RoyceAzure/lab/ordercenter/internal/service"
	"github.com/RoyceAzure/lab/ordercenter/internal/util"
	"github.com/RoyceAzure/rj/api"
	er "github.com/RoyceAzure/rj/util/rj_error"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// 業務錯誤與http狀態的對照集中在這裡，handler只要丟進來
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrVariantNotFound),
		errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCartItemNotFound),
		errors.Is(err, service.ErrUserNotFound):
		api.ErrorJSON(w, int(er.NotFoundCode), er.New(er.NotFoundCode, err.Error()), er.ErrStrMap[er.NotFoundCode])
	case errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidStatusTransition),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrOrderNotCancellable),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrNegativeFinalAmount),
		errors.Is(err, service.ErrVariantNotAvailable):
		api.ErrorJSON(w, int(er.BadRequestCode), er.New(er.BadRequestCode, err.Error()), er.ErrStrMap[er.BadRequestCode])
	default:
		api.ErrorJSON(w, int(er.InternalErrorCode), err, er.ErrStrMap[er.InternalErrorCode])
	}
}

func getUserID(r *http.Request) (uuid.UUID, bool) {
	payload := util.GetTokenPayloadFromContext[uuid.UUID](r.Context())
	if payload == nil {
		return uuid.Nil, false
	}
	return payload.UserId, true
}

func parseUintParam(r *http.Request, name string) (uint, error) {
	value, err := strconv.ParseUint(chi.URLParam(r, name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

func parsePaging(r *http.Request) (page, pageSize int) {
	page = constants.DefaultPaging
	pageSize = constants.DefaultPagingSize

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		pageSize = v
	}
	if pageSize > constants.MaxPagingSize {
		pageSize = constants.MaxPagingSize
	}
	return page, pageSize
}
