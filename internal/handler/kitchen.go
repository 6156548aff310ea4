package handler

import (
	"net/http"
	"time"

	"github.com/avelara/comanda/internal/domain/order"
)

type ticketResponse struct {
	OrderID     string             `json:"order_id"`
	Kind        string             `json:"kind"`
	TableID     string             `json:"table_id,omitempty"`
	SentAt      time.Time          `json:"sent_at"`
	Lines       []order.TicketLine `json:"lines"`
	Urgency     string             `json:"urgency"`
	PendingLeft int                `json:"pending_left"`
}

func (h *Handler) kitchenTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.orders.KitchenTickets(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]ticketResponse, len(tickets))
	for i, t := range tickets {
		out[i] = ticketResponse{
			OrderID:     t.OrderID,
			Kind:        string(t.Kind),
			TableID:     t.TableID,
			SentAt:      t.Ticket.SentAt,
			Lines:       t.Ticket.Lines,
			Urgency:     string(t.Urgency),
			PendingLeft: t.PendingLeft,
		}
	}
	respondJSON(w, http.StatusOK, out)
}
