package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/onlinestore/onlinestore/internal/platform/httpx"
	"github.com/onlinestore/onlinestore/internal/shared"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
	}
}

type listResponse struct {
	Orders []SalesOrderWithDetails `json:"orders"`
	Page   shared.Page             `json:"page"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := httpx.PageParams(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	req := ListSalesOrdersRequest{Limit: limit, Offset: offset}

	q := r.URL.Query()
	if raw := q.Get("customer_id"); raw != "" {
		id, err := httpx.Int64Param(raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}
		req.CustomerID = &id
	}
	if raw := q.Get("status"); raw != "" {
		status := SalesOrderStatus(strings.ToUpper(raw))
		if !status.Valid() {
			httpx.Error(w, http.StatusBadRequest, "Bad Request")
			return
		}
		req.Status = &status
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Bad Request")
		return
	}

	orders, page, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list sales orders failed", slog.Any("error", err), slog.String("request_id", middleware.GetReqID(r.Context())))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Orders: orders, Page: page})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.Int64Param(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	so, err := h.service.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			h.logger.Error("get sales order failed", slog.Any("error", err), slog.Int64("id", id))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, so)
}
