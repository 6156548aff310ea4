package order

import (
	"sort"
	"time"
)

// PendingItems returns the items not yet committed to the kitchen, in
// insertion order.
func (o *Order) PendingItems() []Item {
	var out []Item
	for _, it := range o.Items {
		if it.SendState == SendPending {
			out = append(out, it)
		}
	}
	return out
}

// SentItems returns the items already committed to the kitchen, in insertion
// order.
func (o *Order) SentItems() []Item {
	var out []Item
	for _, it := range o.Items {
		if it.SendState == SendSent {
			out = append(out, it)
		}
	}
	return out
}

// TicketLine is one printed line on a kitchen ticket.
type TicketLine struct {
	ProductID           string   `json:"product_id"`
	Name                string   `json:"name"`
	Quantity            int      `json:"quantity"`
	Comment             string   `json:"comment,omitempty"`
	ExcludedIngredients []string `json:"excluded_ingredients,omitempty"`
}

// Ticket groups the items that were dispatched together, identified by their
// shared sentAt stamp.
type Ticket struct {
	SentAt time.Time
	Lines  []TicketLine
}

// Tickets renders the sent items as kitchen tickets, one per dispatch batch,
// oldest first. Within a ticket, uncommented lines for the same product are
// merged and their quantities summed; a commented item always prints as its
// own line so the note is never lost in a merge.
func (o *Order) Tickets() []Ticket {
	batches := make(map[time.Time][]Item)
	for _, it := range o.Items {
		if it.SendState != SendSent || it.SentAt == nil {
			continue
		}
		batches[*it.SentAt] = append(batches[*it.SentAt], it)
	}

	tickets := make([]Ticket, 0, len(batches))
	for sentAt, items := range batches {
		tickets = append(tickets, Ticket{SentAt: sentAt, Lines: buildLines(items)})
	}
	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].SentAt.Before(tickets[j].SentAt)
	})
	return tickets
}

// buildLines merges uncommented items by product, preserving first-seen
// order, and appends commented items unmerged.
func buildLines(items []Item) []TicketLine {
	var lines []TicketLine
	merged := make(map[string]int) // product id -> index into lines

	for _, it := range items {
		if it.Comment != "" {
			lines = append(lines, TicketLine{
				ProductID:           it.ProductID,
				Name:                it.Name,
				Quantity:            it.Quantity,
				Comment:             it.Comment,
				ExcludedIngredients: it.ExcludedIngredients,
			})
			continue
		}
		if idx, ok := merged[it.ProductID]; ok {
			lines[idx].Quantity += it.Quantity
			continue
		}
		merged[it.ProductID] = len(lines)
		lines = append(lines, TicketLine{
			ProductID:           it.ProductID,
			Name:                it.Name,
			Quantity:            it.Quantity,
			ExcludedIngredients: it.ExcludedIngredients,
		})
	}
	return lines
}
