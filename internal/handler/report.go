package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/avelara/comanda/internal/domain/order"
	"github.com/avelara/comanda/internal/domain/report"
	"github.com/avelara/comanda/internal/money"
)

type productSalesResponse struct {
	ProductID string       `json:"product_id"`
	Name      string       `json:"name"`
	Quantity  int          `json:"quantity"`
	Sales     money.Amount `json:"sales"`
}

type categorySalesResponse struct {
	CategoryID string                 `json:"category_id"`
	Name       string                 `json:"name"`
	Quantity   int                    `json:"quantity"`
	Sales      money.Amount           `json:"sales"`
	Products   []productSalesResponse `json:"products"`
}

type lowStockResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Stock    decimal.Decimal `json:"stock"`
	MinStock decimal.Decimal `json:"min_stock"`
}

type salesReportResponse struct {
	Orders        int                     `json:"orders"`
	TotalSales    money.Amount            `json:"total_sales"`
	TotalProfit   money.Amount            `json:"total_profit"`
	AverageTicket decimal.Decimal         `json:"average_ticket"`
	PerCategory   []categorySalesResponse `json:"per_category"`
	LowStock      []lowStockResponse      `json:"low_stock"`
}

// salesReport aggregates finalized orders in the optional from/to window
// (RFC 3339 timestamps, from inclusive, to exclusive).
func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	f := order.ListFilter{Status: order.StatusFinalized}

	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid from timestamp")
			return
		}
		f.FinalizedFrom = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid to timestamp")
			return
		}
		f.FinalizedTo = &t
	}

	ctx := r.Context()
	orders, err := h.orders.List(ctx, f)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	products, err := h.catalog.ListProducts(ctx)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	ingredients, err := h.catalog.ListIngredients(ctx)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	s := report.Aggregate(orders, products, categories, ingredients)

	resp := salesReportResponse{
		Orders:        s.Orders,
		TotalSales:    s.TotalSales,
		TotalProfit:   s.TotalProfit,
		AverageTicket: s.AverageTicket,
		PerCategory:   make([]categorySalesResponse, len(s.PerCategory)),
		LowStock:      make([]lowStockResponse, len(s.LowStock)),
	}
	for i, cs := range s.PerCategory {
		cr := categorySalesResponse{
			CategoryID: cs.CategoryID,
			Name:       cs.Name,
			Quantity:   cs.Quantity,
			Sales:      cs.Sales,
			Products:   make([]productSalesResponse, len(cs.Products)),
		}
		for j, ps := range cs.Products {
			cr.Products[j] = productSalesResponse(ps)
		}
		resp.PerCategory[i] = cr
	}
	for i, ing := range s.LowStock {
		resp.LowStock[i] = lowStockResponse{
			ID:       ing.ID,
			Name:     ing.Name,
			Stock:    ing.Stock,
			MinStock: ing.MinStock,
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
