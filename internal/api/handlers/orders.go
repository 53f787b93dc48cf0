// Package handlers implements the REST endpoint handlers.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mhenders/ibdash/internal/orders"
	"github.com/mhenders/ibdash/internal/reconcile"
	"github.com/mhenders/ibdash/pkg/logger"
)

// OrdersHandler handles order lifecycle API endpoints
type OrdersHandler struct {
	engine *reconcile.Engine
	store  *orders.Store
	logger *logger.Logger
}

// NewOrdersHandler creates a new orders handler
func NewOrdersHandler(engine *reconcile.Engine, store *orders.Store, log *logger.Logger) *OrdersHandler {
	return &OrdersHandler{
		engine: engine,
		store:  store,
		logger: log,
	}
}

// List returns the working order set in display order
// GET /api/orders
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"orders":  h.store.Pending(),
		"polling": h.engine.PollerActive(),
	})
}

// ListFilled returns the filled order collection
// GET /api/orders/filled
func (h *OrdersHandler) ListFilled(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"orders": h.store.Filled(),
	})
}

// Refresh reloads both collections from the gateway
// POST /api/orders/refresh
func (h *OrdersHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Refresh(r.Context()); err != nil {
		h.respondOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"orders":  h.store.Pending(),
		"polling": h.engine.PollerActive(),
	})
}

// Execute submits a pending order for execution
// POST /api/orders/{id}/execute
func (h *OrdersHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	updated, err := h.engine.ExecuteOrder(r.Context(), id)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"order":   updated,
		"polling": h.engine.PollerActive(),
	})
}

// Cancel requests cancellation of an order
// POST /api/orders/{id}/cancel
func (h *OrdersHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	updated, err := h.engine.CancelOrder(r.Context(), id)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"order":   updated,
		"polling": h.engine.PollerActive(),
	})
}

// UpdateQuantityRequest is the quantity edit payload
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateQuantity changes the quantity of a pending order
// PATCH /api/orders/{id}/quantity
func (h *OrdersHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := orderID(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.engine.UpdateQuantity(r.Context(), id, req.Quantity)
	if err != nil {
		if orders.IsValidation(err) {
			// Echo the stored quantity so the client can restore the field
			quantity := 0
			if o, found := h.store.Find(id); found {
				quantity = o.Quantity
			}
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"error":    err.Error(),
				"quantity": quantity,
			})
			return
		}
		if orders.IsGateway(err) {
			// The local edit was applied and stands; hand it back with the
			// error so the client can show the divergence.
			h.logger.WithError(err).Error("Gateway rejected quantity update")
			respondJSON(w, http.StatusBadGateway, map[string]interface{}{
				"error": err.Error(),
				"order": updated,
			})
			return
		}
		h.respondOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"order": updated,
	})
}

// respondOrderError maps engine errors onto HTTP statuses.
func (h *OrdersHandler) respondOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		respondError(w, http.StatusNotFound, "Order not found")
	case orders.IsValidation(err):
		respondError(w, http.StatusBadRequest, err.Error())
	case orders.IsGateway(err):
		h.logger.WithError(err).Error("Gateway operation failed")
		respondError(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.WithError(err).Error("Order operation failed")
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// orderID extracts the numeric order id from the route.
func orderID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid order id")
		return 0, false
	}
	return id, true
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
