package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/mdaffar/marketledger/internal/adapter/http/dto"
	"github.com/mdaffar/marketledger/internal/domain"
	"github.com/mdaffar/marketledger/internal/usecase"
)

// OrderService defines the order book behavior needed by OrderHandler.
type OrderService interface {
	PlaceOrder(ctx context.Context, input usecase.PlaceOrderInput) (*domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	MarkCompleted(ctx context.Context, orderID int64) error
	Cancel(ctx context.Context, orderID int64) error
	OrdersByBuyer(ctx context.Context, buyerID int64) ([]*domain.Order, error)
	OrdersBySeller(ctx context.Context, sellerID int64) ([]*domain.Order, error)
	OrdersByStatus(ctx context.Context, userID int64, status domain.OrderStatus, asBuyer bool) ([]*domain.Order, error)
}

// PaymentService defines the payment behavior needed by OrderHandler.
type PaymentService interface {
	Pay(ctx context.Context, input usecase.PayInput) error
}

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	orderUC   OrderService
	paymentUC PaymentService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderUC OrderService, paymentUC PaymentService) *OrderHandler {
	return &OrderHandler{orderUC: orderUC, paymentUC: paymentUC}
}

// Create places a new order through checkout: the item's current name and
// price are snapshotted into the order.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	order, err := h.orderUC.PlaceOrder(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to place order", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.OrderFromDomain(order))
}

// Get retrieves an order by id.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID", err.Error())
		return
	}

	order, err := h.orderUC.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get order", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.OrderFromDomain(order))
}

// List lists orders for a buyer or a seller, optionally filtered by status.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	buyerID, hasBuyer := parseInt64Query(r, "buyer_id")
	sellerID, hasSeller := parseInt64Query(r, "seller_id")
	if hasBuyer == hasSeller {
		writeError(w, http.StatusBadRequest, "exactly one of buyer_id or seller_id is required", "")
		return
	}

	var (
		orders []*domain.Order
		err    error
	)
	if rawStatus := r.URL.Query().Get("status"); rawStatus != "" {
		status, parseErr := domain.ParseOrderStatus(rawStatus)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid status", parseErr.Error())
			return
		}
		if hasBuyer {
			orders, err = h.orderUC.OrdersByStatus(r.Context(), buyerID, status, true)
		} else {
			orders, err = h.orderUC.OrdersByStatus(r.Context(), sellerID, status, false)
		}
	} else if hasBuyer {
		orders, err = h.orderUC.OrdersByBuyer(r.Context(), buyerID)
	} else {
		orders, err = h.orderUC.OrdersBySeller(r.Context(), sellerID)
	}
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list orders", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.OrdersFromDomain(orders))
}

// Pay settles a pending order: buyer is debited, seller is credited, stock is
// decremented and the order moves to PAID, all atomically.
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID", err.Error())
		return
	}

	var req dto.PayOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.paymentUC.Pay(r.Context(), req.ToUseCaseInput(id)); err != nil {
		writeError(w, mapDomainError(err), "payment failed", err.Error())
		return
	}

	h.respondWithOrder(w, r, id)
}

// Complete marks a paid order as completed.
func (h *OrderHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orderUC.MarkCompleted)
}

// Cancel cancels a pending order.
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.orderUC.Cancel)
}

func (h *OrderHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, int64) error) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid order ID", err.Error())
		return
	}

	if err := op(r.Context(), id); err != nil {
		writeError(w, mapDomainError(err), "failed to update order", err.Error())
		return
	}

	h.respondWithOrder(w, r, id)
}

func (h *OrderHandler) respondWithOrder(w http.ResponseWriter, r *http.Request, id int64) {
	order, err := h.orderUC.GetOrder(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get order", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, dto.OrderFromDomain(order))
}
