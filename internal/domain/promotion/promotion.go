package promotion

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/avelara/comanda/internal/money"
)

// Type enumerates the supported promotion discount strategies.
type Type string

const (
	// TypePercentage discounts a percentage of the order subtotal.
	TypePercentage Type = "percentage"
	// TypeFixedAmount discounts a fixed amount, capped at the subtotal.
	TypeFixedAmount Type = "fixed_amount"
	// TypeFreeShipping zeroes the order's shipping fee. It does not
	// participate in the percentage/fixed discount stack.
	TypeFreeShipping Type = "free_shipping"
)

var (
	// ErrInvalidCode is returned when a promo code is not found or inactive.
	ErrInvalidCode = errors.New("invalid promo code")
	// ErrExpired is returned when a promotion is outside its valid window.
	ErrExpired = errors.New("promotion expired")
)

// Promotion is a discount rule evaluated against an order.
type Promotion struct {
	ID    string
	Name  string
	Type  Type
	// Value is the percentage for TypePercentage, or the display-unit
	// amount for TypeFixedAmount. Unused for TypeFreeShipping.
	Value      decimal.Decimal
	Code       string
	ValidFrom  *time.Time
	ValidUntil *time.Time
	Active     bool
	// Visuals holds display-only presentation data (badge colour, banner
	// text). Opaque to discount computation.
	Visuals json.RawMessage
}

// Applied is an immutable snapshot of a promotion at the moment it was
// evaluated against an order. Discount records the actual (clamped) amount
// subtracted, so the snapshots always sum to the order's total discount.
type Applied struct {
	PromotionID string          `json:"promotion_id"`
	Name        string          `json:"name"`
	Type        Type            `json:"type"`
	Code        string          `json:"code,omitempty"`
	Discount    money.Amount    `json:"discount"`
	Visuals     json.RawMessage `json:"visuals,omitempty"`
}

// Repository provides promotion lookup.
type Repository interface {
	ListActive(ctx context.Context) ([]Promotion, error)
	FindByCode(ctx context.Context, code string) (*Promotion, error)
}

// ValidAt reports whether the promotion is active at the given instant.
func (p *Promotion) ValidAt(now time.Time) bool {
	if !p.Active {
		return false
	}
	if p.ValidFrom != nil && now.Before(*p.ValidFrom) {
		return false
	}
	if p.ValidUntil != nil && now.After(*p.ValidUntil) {
		return false
	}
	return true
}
