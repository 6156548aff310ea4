package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/go-faster/errors"

	"github.com/avelara/comanda/internal/domain/order"
	"github.com/avelara/comanda/internal/domain/promotion"
	"github.com/avelara/comanda/internal/money"
)

type itemRequest struct {
	ProductID           string   `json:"product_id"`
	Quantity            int      `json:"quantity"`
	Comment             string   `json:"comment"`
	ExcludedIngredients []string `json:"excluded_ingredients"`
}

type createOrderRequest struct {
	Kind        order.Kind        `json:"kind"`
	TableID     string            `json:"table_id"`
	PartySize   int               `json:"party_size"`
	Client      *order.ClientInfo `json:"client"`
	ShippingFee money.Amount      `json:"shipping_fee"`
	Items       []itemRequest     `json:"items"`
}

type orderResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	TableID   string `json:"table_id,omitempty"`
	PartySize int    `json:"party_size,omitempty"`

	Status        string `json:"status"`
	KitchenStatus string `json:"kitchen_status"`

	Items []order.Item `json:"items"`

	CreatedAt       time.Time  `json:"created_at"`
	SentToKitchenAt *time.Time `json:"sent_to_kitchen_at,omitempty"`
	ReadyAt         *time.Time `json:"ready_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`

	Subtotal      money.Amount        `json:"subtotal"`
	TotalDiscount money.Amount        `json:"total_discount"`
	Total         money.Amount        `json:"total"`
	ShippingFee   money.Amount        `json:"shipping_fee"`
	// EffectiveShippingFee is the fee actually charged: zero while a
	// free-shipping promotion is applied, the base fee otherwise.
	EffectiveShippingFee money.Amount        `json:"effective_shipping_fee"`
	Promotions           []promotion.Applied `json:"promotions,omitempty"`

	Client *order.ClientInfo `json:"client,omitempty"`

	PaymentMethod     string        `json:"payment_method,omitempty"`
	PaymentReceiptURL string        `json:"payment_receipt_url,omitempty"`
	Profit            *money.Amount `json:"profit,omitempty"`
}

func toOrderResponse(o *order.Order) orderResponse {
	return orderResponse{
		ID:              o.ID,
		Kind:            string(o.Kind),
		TableID:         o.TableID,
		PartySize:       o.PartySize,
		Status:          string(o.Status),
		KitchenStatus:   string(o.KitchenStatus),
		Items:           o.Items,
		CreatedAt:       o.CreatedAt,
		SentToKitchenAt: o.SentToKitchenAt,
		ReadyAt:         o.ReadyAt,
		CompletedAt:     o.CompletedAt,
		Subtotal:             o.Subtotal,
		TotalDiscount:        o.TotalDiscount,
		Total:                o.Total,
		ShippingFee:          o.ShippingFee,
		EffectiveShippingFee: o.EffectiveShipping(),
		Promotions:           o.Promotions,
		Client:          o.Client,

		PaymentMethod:     o.PaymentMethod,
		PaymentReceiptURL: o.PaymentReceiptURL,
		Profit:            o.Profit,
	}
}

func toItemRequests(items []itemRequest) []order.ItemRequest {
	out := make([]order.ItemRequest, len(items))
	for i, it := range items {
		out[i] = order.ItemRequest{
			ProductID:           it.ProductID,
			Quantity:            it.Quantity,
			Comment:             it.Comment,
			ExcludedIngredients: it.ExcludedIngredients,
		}
	}
	return out
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.Create(r.Context(), order.CreateRequest{
		Kind:        req.Kind,
		TableID:     req.TableID,
		PartySize:   req.PartySize,
		Client:      req.Client,
		ShippingFee: req.ShippingFee,
		Items:       toItemRequests(req.Items),
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := order.ListFilter{
		Status:        order.Status(q.Get("status")),
		KitchenStatus: order.KitchenStatus(q.Get("kitchen_status")),
		Kind:          order.Kind(q.Get("kind")),
	}

	list, err := h.orders.List(r.Context(), f)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	out := make([]orderResponse, len(list))
	for i := range list {
		out[i] = toOrderResponse(&list[i])
	}
	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.orders.Cancel(r.Context(), r.PathValue("id")); err != nil {
		respondDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) addItems(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []itemRequest `json:"items"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.AddItems(r.Context(), r.PathValue("id"), toItemRequests(req.Items))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity *int    `json:"quantity"`
		Comment  *string `json:"comment"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.UpdateItem(r.Context(), r.PathValue("id"), r.PathValue("itemID"), order.ItemUpdate{
		Quantity: req.Quantity,
		Comment:  req.Comment,
	})
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.RemoveItem(r.Context(), r.PathValue("id"), r.PathValue("itemID"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) dispatchOrder(w http.ResponseWriter, r *http.Request) {
	// The body is optional: no body (or no item_ids) dispatches every
	// pending item.
	var req struct {
		ItemIDs []string `json:"item_ids"`
	}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.Dispatch(r.Context(), r.PathValue("id"), req.ItemIDs)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) markReady(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.MarkReady(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handoffOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Handoff(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) validatePayment(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.ValidatePayment(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) applyPromotions(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Codes []string `json:"codes"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.ApplyPromoCodes(r.Context(), r.PathValue("id"), req.Codes)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) finalizeOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PaymentMethod string `json:"payment_method"`
		ReceiptURL    string `json:"receipt_url"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	o, err := h.orders.Finalize(r.Context(), r.PathValue("id"), req.PaymentMethod, req.ReceiptURL)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) trackOrder(w http.ResponseWriter, r *http.Request) {
	view, err := h.orders.Track(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}

	resp := struct {
		OrderID string `json:"order_id"`
		Step    *int   `json:"step"`
		Urgency string `json:"urgency"`
	}{
		OrderID: view.OrderID,
		Urgency: string(view.Urgency),
	}
	if view.HasStep {
		resp.Step = &view.Step
	}
	respondJSON(w, http.StatusOK, resp)
}
