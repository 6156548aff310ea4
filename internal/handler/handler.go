// Package handler exposes the POS HTTP API. Endpoints are plain net/http
// handlers registered with method+pattern routes; all business logic lives in
// the domain packages.
package handler

import (
	"net/http"

	"github.com/avelara/comanda/internal/domain/catalog"
	"github.com/avelara/comanda/internal/domain/order"
	"github.com/avelara/comanda/internal/domain/table"
)

// Handler serves the POS API, delegating to the order service and the catalog
// and table repositories.
type Handler struct {
	orders  *order.Service
	catalog catalog.Repository
	tables  table.Repository
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(orders *order.Service, cat catalog.Repository, tables table.Repository) *Handler {
	return &Handler{
		orders:  orders,
		catalog: cat,
		tables:  tables,
	}
}

// Routes registers every API endpoint on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/orders", h.createOrder)
	mux.HandleFunc("GET /api/orders", h.listOrders)
	mux.HandleFunc("GET /api/orders/{id}", h.getOrder)
	mux.HandleFunc("DELETE /api/orders/{id}", h.cancelOrder)

	mux.HandleFunc("POST /api/orders/{id}/items", h.addItems)
	mux.HandleFunc("PATCH /api/orders/{id}/items/{itemID}", h.updateItem)
	mux.HandleFunc("DELETE /api/orders/{id}/items/{itemID}", h.removeItem)

	mux.HandleFunc("POST /api/orders/{id}/dispatch", h.dispatchOrder)
	mux.HandleFunc("POST /api/orders/{id}/ready", h.markReady)
	mux.HandleFunc("POST /api/orders/{id}/handoff", h.handoffOrder)
	mux.HandleFunc("POST /api/orders/{id}/validate", h.validatePayment)
	mux.HandleFunc("POST /api/orders/{id}/promotions", h.applyPromotions)
	mux.HandleFunc("POST /api/orders/{id}/finalize", h.finalizeOrder)
	mux.HandleFunc("GET /api/orders/{id}/tracker", h.trackOrder)

	mux.HandleFunc("GET /api/kitchen/tickets", h.kitchenTickets)
	mux.HandleFunc("GET /api/reports/sales", h.salesReport)
	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/tables", h.listTables)

	return mux
}
