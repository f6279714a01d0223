package handler

import (
	"log/slog"
	"net/http"

	"workmarket/internal/httputil"
	"workmarket/internal/service"
)

// OrderHandler exposes order lifecycle endpoints.
type OrderHandler struct {
	orders          *service.OrderService
	defaultPageSize int
	logger          *slog.Logger
}

func NewOrderHandler(orders *service.OrderService, defaultPageSize int, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, defaultPageSize: defaultPageSize, logger: logger}
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "missing caller identity")
		return
	}

	var req service.CreateOrderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orders.CreateOrder(r.Context(), userID, req)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusCreated, order)
}

// GetOrder handles GET /api/orders/{id}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, order)
}

// ListApprovedOrders handles GET /api/orders
func (h *OrderHandler) ListApprovedOrders(w http.ResponseWriter, r *http.Request) {
	offset := httputil.QueryInt(r, "offset", 0)
	limit := httputil.QueryInt(r, "limit", h.defaultPageSize)

	orders, err := h.orders.GetApprovedOrders(r.Context(), offset, limit)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, orders)
}

// ListPendingOrders handles GET /api/orders/pending
func (h *OrderHandler) ListPendingOrders(w http.ResponseWriter, r *http.Request) {
	offset := httputil.QueryInt(r, "offset", 0)
	limit := httputil.QueryInt(r, "limit", h.defaultPageSize)

	orders, err := h.orders.GetPendingOrders(r.Context(), offset, limit)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, orders)
}

// ListMyOrders handles GET /api/orders/mine
func (h *OrderHandler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusBadRequest, "missing caller identity")
		return
	}
	offset := httputil.QueryInt(r, "offset", 0)
	limit := httputil.QueryInt(r, "limit", h.defaultPageSize)

	orders, err := h.orders.GetOrdersByClientUser(r.Context(), userID, offset, limit)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, orders)
}

// UpdateOrder handles PATCH /api/orders/{id}
func (h *OrderHandler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateOrderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orders.UpdateOrder(r.Context(), r.PathValue("id"), req)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, order)
}

// ApproveOrder handles POST /api/orders/{id}/approve
func (h *OrderHandler) ApproveOrder(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateOrderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orders.ApproveOrder(r.Context(), r.PathValue("id"), req)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, order)
}

type orderStatusUpdate struct {
	OrderStatus         string `json:"order_status,omitempty"`
	OrderCompleteStatus string `json:"order_complete_status,omitempty"`
}

// UpdateOrderStatus handles PATCH /api/orders/{id}/status
func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusUpdate
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	order, err := h.orders.UpdateOrderStatus(r.Context(), r.PathValue("id"), req.OrderStatus, req.OrderCompleteStatus)
	if err != nil {
		respondDomainError(w, h.logger, err)
		return
	}
	httputil.RespondJSON(w, http.StatusOK, order)
}
