package promotion

import (
	"github.com/avelara/comanda/internal/money"
)

// Result holds the outcome of evaluating a promotion stack against a subtotal.
type Result struct {
	Applied       []Applied
	TotalDiscount money.Amount
	Total         money.Amount
	ShippingFee   money.Amount
}

// Compute evaluates the given promotions against a subtotal and shipping fee.
//
// Promotions apply in the order given. Percentage and fixed-amount discounts
// stack additively, each computed against the original subtotal rather than a
// cascading discounted one. The cumulative discount never drives the total
// below zero: when the cap is hit, the affected snapshot records the clamped
// amount actually subtracted, keeping sum(Applied[].Discount) == TotalDiscount.
// Free-shipping promotions zero the shipping fee and record no stack discount.
//
// Compute is a pure function: identical inputs always yield identical results.
func Compute(subtotal, shipping money.Amount, promos []Promotion) Result {
	res := Result{
		Applied:     make([]Applied, 0, len(promos)),
		ShippingFee: shipping,
	}

	remaining := subtotal
	for _, p := range promos {
		var discount money.Amount

		switch p.Type {
		case TypePercentage:
			discount = subtotal.Percent(p.Value)
		case TypeFixedAmount:
			discount = money.FromDecimal(p.Value)
		case TypeFreeShipping:
			res.ShippingFee = 0
		}

		discount = money.Min(discount.FloorZero(), remaining)
		remaining -= discount
		res.TotalDiscount += discount

		res.Applied = append(res.Applied, Applied{
			PromotionID: p.ID,
			Name:        p.Name,
			Type:        p.Type,
			Code:        p.Code,
			Discount:    discount,
			Visuals:     p.Visuals,
		})
	}

	res.Total = (subtotal - res.TotalDiscount).FloorZero()
	return res
}
