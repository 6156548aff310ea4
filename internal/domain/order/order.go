// Package order implements the order lifecycle engine: the dual
// order/kitchen status model, per-item send states, promotion application
// and the derived urgency and progress views.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"

	"github.com/avelara/comanda/internal/domain/promotion"
	"github.com/avelara/comanda/internal/money"
)

// Kind distinguishes dine-in from take-away orders.
type Kind string

const (
	KindDineIn   Kind = "dine_in"
	KindTakeaway Kind = "takeaway"
)

// Status is the financial/administrative order status.
type Status string

const (
	// StatusPendingValidation applies only to takeaway orders awaiting
	// manual payment-proof validation.
	StatusPendingValidation Status = "pending_validation"
	StatusInProgress        Status = "in_progress"
	StatusFinalized         Status = "finalized"
)

// KitchenStatus tracks the order's progress through the kitchen.
type KitchenStatus string

const (
	KitchenNotSent   KitchenStatus = "not_sent"
	KitchenReceived  KitchenStatus = "received"
	KitchenReady     KitchenStatus = "ready"
	KitchenServed    KitchenStatus = "served"    // dine-in hand-off
	KitchenDelivered KitchenStatus = "delivered" // takeaway hand-off
)

// rank orders kitchen statuses for monotonicity checks. served and delivered
// share a rank: they are the two kind-dependent spellings of hand-off.
func (k KitchenStatus) rank() int {
	switch k {
	case KitchenNotSent:
		return 0
	case KitchenReceived:
		return 1
	case KitchenReady:
		return 2
	case KitchenServed, KitchenDelivered:
		return 3
	default:
		return -1
	}
}

// Completed reports whether the kitchen status denotes hand-off completion.
func (k KitchenStatus) Completed() bool {
	return k == KitchenServed || k == KitchenDelivered
}

// SendState tracks whether a line item has been committed to the kitchen.
type SendState string

const (
	SendPending SendState = "pending"
	SendSent    SendState = "sent"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when a referenced order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrOrderClosed is returned when mutating a finalized order.
	ErrOrderClosed = errors.New("order is finalized")
)

// InvalidInputError indicates malformed or missing required fields at creation.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// IllegalTransitionError indicates an attempted state change that violates
// the lifecycle state machine.
type IllegalTransitionError struct {
	Op            string
	Status        Status
	KitchenStatus KitchenStatus
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition %s from (%s, %s)", e.Op, e.Status, e.KitchenStatus)
}

// ItemLockedError indicates an attempted mutation of an item already sent to
// the kitchen.
type ItemLockedError struct {
	ItemID string
}

func (e *ItemLockedError) Error() string {
	return fmt.Sprintf("item %s is already sent to the kitchen", e.ItemID)
}

// ItemNotFoundError indicates an operation referencing a nonexistent item.
type ItemNotFoundError struct {
	ItemID string
}

func (e *ItemNotFoundError) Error() string {
	return fmt.Sprintf("item %s not found", e.ItemID)
}

// ClientInfo identifies the customer on a takeaway order.
type ClientInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Item is a line within an order.
type Item struct {
	ID                  string       `json:"id"`
	ProductID           string       `json:"product_id"`
	Name                string       `json:"name"`
	UnitPrice           money.Amount `json:"unit_price"`
	Quantity            int          `json:"quantity"`
	ExcludedIngredients []string     `json:"excluded_ingredients,omitempty"`
	Comment             string       `json:"comment,omitempty"`
	SendState           SendState    `json:"send_state"`
	SentAt              *time.Time   `json:"sent_at,omitempty"`
}

// Order is the aggregate root. It exclusively owns its items and applied
// promotion snapshots.
type Order struct {
	ID        string
	Kind      Kind
	TableID   string
	PartySize int

	Status        Status
	KitchenStatus KitchenStatus

	Items []Item

	CreatedAt       time.Time
	SentToKitchenAt *time.Time
	ReadyAt         *time.Time
	CompletedAt     *time.Time

	Subtotal      money.Amount
	TotalDiscount money.Amount
	Total         money.Amount
	ShippingFee   money.Amount
	Promotions    []promotion.Applied

	Client *ClientInfo

	PaymentMethod     string
	PaymentReceiptURL string
	Profit            *money.Amount
}

// Repository defines persistence operations for orders. Implementations must
// provide read-after-write consistency for a single order row; the lifecycle
// relies on row-level read-modify-write to avoid lost updates.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f ListFilter) ([]Order, error)
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, id string) error
}

// ListFilter narrows Repository.List results. Zero values match everything.
type ListFilter struct {
	Status        Status
	KitchenStatus KitchenStatus
	Kind          Kind
	// FinalizedFrom/FinalizedTo bound CompletedAt for reporting queries.
	FinalizedFrom *time.Time
	FinalizedTo   *time.Time
}

// item returns a pointer to the item with the given id, or nil.
func (o *Order) item(id string) *Item {
	for i := range o.Items {
		if o.Items[i].ID == id {
			return &o.Items[i]
		}
	}
	return nil
}
