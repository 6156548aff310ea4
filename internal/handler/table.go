package handler

import "net/http"

type tableResponse struct {
	ID      string `json:"id"`
	Number  int    `json:"number"`
	Seats   int    `json:"seats"`
	Busy    bool   `json:"busy"`
	OrderID string `json:"order_id,omitempty"`
}

func (h *Handler) listTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.tables.List(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]tableResponse, len(tables))
	for i, t := range tables {
		out[i] = tableResponse{
			ID:      t.ID,
			Number:  t.Number,
			Seats:   t.Seats,
			Busy:    t.Busy,
			OrderID: t.OrderID,
		}
	}
	respondJSON(w, http.StatusOK, out)
}
