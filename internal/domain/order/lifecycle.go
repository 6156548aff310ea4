package order

import (
	"time"

	"github.com/avelara/comanda/internal/domain/promotion"
	"github.com/avelara/comanda/internal/money"
)

// The lifecycle operations below are deterministic over an explicit order
// snapshot: given the same receiver state and arguments (including the
// caller-supplied clock value) they always produce the same result. They
// mutate the receiver in place and never touch persistence.
//
// Reachable states, in forward order:
//
//	(pending_validation, not_sent)   takeaway only
//	(in_progress, not_sent)
//	(in_progress, received)
//	(in_progress, ready)
//	(in_progress, served|delivered)
//	(finalized, served|delivered)

// CreateParams holds the input for creating an order.
type CreateParams struct {
	ID          string
	Kind        Kind
	TableID     string
	PartySize   int
	Client      *ClientInfo
	ShippingFee money.Amount
	Items       []Item
}

// Create builds a new order in its kind's initial state. Dine-in orders
// start at (in_progress, not_sent); takeaway orders start at
// (pending_validation, not_sent) and require ValidatePayment before dispatch.
func Create(p CreateParams, now time.Time) (*Order, error) {
	switch p.Kind {
	case KindDineIn:
		if p.TableID == "" {
			return nil, &InvalidInputError{Reason: "dine-in order requires a table"}
		}
	case KindTakeaway:
		if p.Client == nil || p.Client.Name == "" || p.Client.Phone == "" || p.Client.Address == "" {
			return nil, &InvalidInputError{Reason: "takeaway order requires client name, phone and address"}
		}
	default:
		return nil, &InvalidInputError{Reason: "unknown order kind"}
	}
	if p.PartySize < 0 {
		return nil, &InvalidInputError{Reason: "party size must be positive"}
	}
	// Zero means the caller left party size unset.
	if p.PartySize == 0 {
		p.PartySize = 1
	}

	status := StatusInProgress
	if p.Kind == KindTakeaway {
		status = StatusPendingValidation
	}

	o := &Order{
		ID:            p.ID,
		Kind:          p.Kind,
		TableID:       p.TableID,
		PartySize:     p.PartySize,
		Status:        status,
		KitchenStatus: KitchenNotSent,
		Client:        p.Client,
		ShippingFee:   p.ShippingFee,
		CreatedAt:     now,
	}

	if err := o.AddItems(p.Items); err != nil {
		return nil, err
	}
	return o, nil
}

// AddItems appends items in pending state. Legal in any state except
// finalized.
func (o *Order) AddItems(items []Item) error {
	if o.Status == StatusFinalized {
		return ErrOrderClosed
	}
	for _, it := range items {
		if it.Quantity < 1 {
			return &InvalidInputError{Reason: "item quantity must be at least 1"}
		}
		it.SendState = SendPending
		it.SentAt = nil
		o.Items = append(o.Items, it)
	}
	o.recalculate()
	return nil
}

// ItemUpdate carries the mutable fields of a pending item. Nil fields are
// left unchanged.
type ItemUpdate struct {
	Quantity *int
	Comment  *string
}

// UpdateItem edits a pending item. A sent item is a kitchen commitment and
// can no longer be changed.
func (o *Order) UpdateItem(itemID string, upd ItemUpdate) error {
	if o.Status == StatusFinalized {
		return ErrOrderClosed
	}
	it := o.item(itemID)
	if it == nil {
		return &ItemNotFoundError{ItemID: itemID}
	}
	if it.SendState == SendSent {
		return &ItemLockedError{ItemID: itemID}
	}
	if upd.Quantity != nil {
		if *upd.Quantity < 1 {
			return &InvalidInputError{Reason: "item quantity must be at least 1"}
		}
		it.Quantity = *upd.Quantity
	}
	if upd.Comment != nil {
		it.Comment = *upd.Comment
	}
	o.recalculate()
	return nil
}

// RemoveItem deletes a pending item. Sent items are never deleted.
func (o *Order) RemoveItem(itemID string) error {
	if o.Status == StatusFinalized {
		return ErrOrderClosed
	}
	for i := range o.Items {
		if o.Items[i].ID != itemID {
			continue
		}
		if o.Items[i].SendState == SendSent {
			return &ItemLockedError{ItemID: itemID}
		}
		o.Items = append(o.Items[:i], o.Items[i+1:]...)
		o.recalculate()
		return nil
	}
	return &ItemNotFoundError{ItemID: itemID}
}

// Dispatch moves the selected pending items (or all of them when itemIDs is
// empty) to sent, stamping a shared sentAt that groups them into one kitchen
// ticket. The first dispatch advances the kitchen status to received and
// stamps SentToKitchenAt; later dispatches append to the ticket ledger
// without resetting the timer.
//
// Dispatching with nothing pending is a deliberate no-op rather than an
// error: two waiters racing to send the same items is a harmless, common
// occurrence.
func (o *Order) Dispatch(itemIDs []string, now time.Time) error {
	if o.Status == StatusFinalized {
		return ErrOrderClosed
	}
	if o.Status == StatusPendingValidation {
		return &IllegalTransitionError{Op: "dispatch", Status: o.Status, KitchenStatus: o.KitchenStatus}
	}

	selected := func(it *Item) bool {
		if it.SendState != SendPending {
			return false
		}
		if len(itemIDs) == 0 {
			return true
		}
		for _, id := range itemIDs {
			if it.ID == id {
				return true
			}
		}
		return false
	}

	sent := 0
	for i := range o.Items {
		if !selected(&o.Items[i]) {
			continue
		}
		ts := now
		o.Items[i].SendState = SendSent
		o.Items[i].SentAt = &ts
		sent++
	}
	if sent == 0 {
		return nil
	}

	if o.KitchenStatus == KitchenNotSent {
		o.KitchenStatus = KitchenReceived
		ts := now
		o.SentToKitchenAt = &ts
	}
	return nil
}

// MarkReady advances received → ready and stamps ReadyAt.
func (o *Order) MarkReady(now time.Time) error {
	if o.KitchenStatus != KitchenReceived {
		return &IllegalTransitionError{Op: "mark ready", Status: o.Status, KitchenStatus: o.KitchenStatus}
	}
	o.KitchenStatus = KitchenReady
	ts := now
	o.ReadyAt = &ts
	return nil
}

// Handoff advances ready → served (dine-in) or delivered (takeaway) and
// stamps CompletedAt.
func (o *Order) Handoff(now time.Time) error {
	if o.KitchenStatus != KitchenReady {
		return &IllegalTransitionError{Op: "handoff", Status: o.Status, KitchenStatus: o.KitchenStatus}
	}
	if o.Kind == KindTakeaway {
		o.KitchenStatus = KitchenDelivered
	} else {
		o.KitchenStatus = KitchenServed
	}
	ts := now
	o.CompletedAt = &ts
	return nil
}

// ValidatePayment accepts a takeaway order's payment proof, advancing
// pending_validation → in_progress.
func (o *Order) ValidatePayment() error {
	if o.Kind != KindTakeaway || o.Status != StatusPendingValidation {
		return &IllegalTransitionError{Op: "validate", Status: o.Status, KitchenStatus: o.KitchenStatus}
	}
	o.Status = StatusInProgress
	return nil
}

// ApplyPromotions recomputes the applied-promotion snapshots, total discount
// and total from the current item set. It is a pure function of the current
// items and the given promotions; callers must re-invoke it after any item
// mutation. The base ShippingFee is never written: swapping or removing a
// free-shipping promotion restores the fee via EffectiveShipping.
func (o *Order) ApplyPromotions(promos []promotion.Promotion) error {
	if o.Status == StatusFinalized {
		return ErrOrderClosed
	}
	res := promotion.Compute(o.itemsSubtotal(), o.ShippingFee, promos)
	o.Subtotal = o.itemsSubtotal()
	o.Promotions = res.Applied
	o.TotalDiscount = res.TotalDiscount
	o.Total = res.Total
	return nil
}

// EffectiveShipping returns the shipping fee the customer actually pays:
// zero while a free-shipping promotion is applied, the base fee otherwise.
func (o *Order) EffectiveShipping() money.Amount {
	for i := range o.Promotions {
		if o.Promotions[i].Type == promotion.TypeFreeShipping {
			return 0
		}
	}
	return o.ShippingFee
}

// Finalize locks the order's monetary fields. Legal only from
// (in_progress, served|delivered). Profit is computed by the caller from the
// item cost basis and attached afterwards.
func (o *Order) Finalize(paymentMethod, receiptURL string, now time.Time) error {
	if o.Status == StatusFinalized {
		return &IllegalTransitionError{Op: "finalize", Status: o.Status, KitchenStatus: o.KitchenStatus}
	}
	if o.Status != StatusInProgress || !o.KitchenStatus.Completed() {
		return &IllegalTransitionError{Op: "finalize", Status: o.Status, KitchenStatus: o.KitchenStatus}
	}
	if paymentMethod == "" {
		return &InvalidInputError{Reason: "payment method is required"}
	}
	o.Status = StatusFinalized
	o.PaymentMethod = paymentMethod
	o.PaymentReceiptURL = receiptURL
	if o.CompletedAt == nil {
		ts := now
		o.CompletedAt = &ts
	}
	return nil
}

// Cancellable reports whether the order may still be discarded: once any
// item is sent, the order is a durable commitment with no cancellation path.
func (o *Order) Cancellable() bool {
	if o.Status == StatusFinalized {
		return false
	}
	for i := range o.Items {
		if o.Items[i].SendState == SendSent {
			return false
		}
	}
	return true
}

// itemsSubtotal sums unit price times quantity over all items.
func (o *Order) itemsSubtotal() money.Amount {
	var sum money.Amount
	for i := range o.Items {
		sum += o.Items[i].UnitPrice.Mul(o.Items[i].Quantity)
	}
	return sum
}

// recalculate refreshes the subtotal/total after an item mutation. Applied
// promotions become stale at this point; the caller re-applies them via
// ApplyPromotions, which restores the discount chain.
func (o *Order) recalculate() {
	o.Subtotal = o.itemsSubtotal()
	o.Total = (o.Subtotal - o.TotalDiscount).FloorZero()
}
