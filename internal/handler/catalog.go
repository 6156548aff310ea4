package handler

import (
	"net/http"

	"github.com/avelara/comanda/internal/money"
)

type productResponse struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Price       money.Amount `json:"price"`
	CategoryID  string       `json:"category_id"`
	Ingredients []string     `json:"ingredients,omitempty"`
}

// listProducts returns the menu. Product cost is an internal figure and is
// never exposed here.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]productResponse, len(products))
	for i, p := range products {
		out[i] = productResponse{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price,
			CategoryID:  p.CategoryID,
			Ingredients: p.Ingredients,
		}
	}
	respondJSON(w, http.StatusOK, out)
}
