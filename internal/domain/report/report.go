// Package report folds finalized orders into the sales figures shown on the
// dashboard.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/avelara/comanda/internal/domain/catalog"
	"github.com/avelara/comanda/internal/domain/order"
	"github.com/avelara/comanda/internal/money"
)

// ProductSales aggregates one product's sold quantity and revenue.
type ProductSales struct {
	ProductID string
	Name      string
	Quantity  int
	Sales     money.Amount
}

// CategorySales aggregates a category's products, sorted by quantity
// descending.
type CategorySales struct {
	CategoryID string
	Name       string
	Quantity   int
	Sales      money.Amount
	Products   []ProductSales
}

// Summary is the dashboard fold over a set of finalized orders.
type Summary struct {
	Orders        int
	TotalSales    money.Amount
	TotalProfit   money.Amount
	AverageTicket decimal.Decimal
	PerCategory   []CategorySales
	LowStock      []catalog.Ingredient
}

// Aggregate folds the given orders into a Summary, grouping item sales by
// product and category through the catalog lookup and collecting low-stock
// ingredients. Orders that are not finalized are skipped: open orders have
// no locked totals yet.
func Aggregate(orders []order.Order, products []catalog.Product, categories []catalog.Category, ingredients []catalog.Ingredient) Summary {
	productCategory := make(map[string]string, len(products))
	for _, p := range products {
		productCategory[p.ID] = p.CategoryID
	}
	categoryName := make(map[string]string, len(categories))
	for _, c := range categories {
		categoryName[c.ID] = c.Name
	}

	type key struct{ category, product string }
	perProduct := make(map[key]*ProductSales)

	var s Summary
	for i := range orders {
		o := &orders[i]
		if o.Status != order.StatusFinalized {
			continue
		}
		s.Orders++
		s.TotalSales += o.Total
		if o.Profit != nil {
			s.TotalProfit += *o.Profit
		}

		for _, it := range o.Items {
			k := key{category: productCategory[it.ProductID], product: it.ProductID}
			ps, ok := perProduct[k]
			if !ok {
				ps = &ProductSales{ProductID: it.ProductID, Name: it.Name}
				perProduct[k] = ps
			}
			ps.Quantity += it.Quantity
			ps.Sales += it.UnitPrice.Mul(it.Quantity)
		}
	}

	if s.Orders > 0 {
		s.AverageTicket = s.TotalSales.Decimal().
			Div(decimal.NewFromInt(int64(s.Orders))).Round(2)
	}

	byCategory := make(map[string]*CategorySales)
	for k, ps := range perProduct {
		cs, ok := byCategory[k.category]
		if !ok {
			cs = &CategorySales{CategoryID: k.category, Name: categoryName[k.category]}
			byCategory[k.category] = cs
		}
		cs.Quantity += ps.Quantity
		cs.Sales += ps.Sales
		cs.Products = append(cs.Products, *ps)
	}

	for _, cs := range byCategory {
		sort.Slice(cs.Products, func(i, j int) bool {
			if cs.Products[i].Quantity != cs.Products[j].Quantity {
				return cs.Products[i].Quantity > cs.Products[j].Quantity
			}
			return cs.Products[i].ProductID < cs.Products[j].ProductID
		})
		s.PerCategory = append(s.PerCategory, *cs)
	}
	sort.Slice(s.PerCategory, func(i, j int) bool {
		if s.PerCategory[i].Quantity != s.PerCategory[j].Quantity {
			return s.PerCategory[i].Quantity > s.PerCategory[j].Quantity
		}
		return s.PerCategory[i].CategoryID < s.PerCategory[j].CategoryID
	})

	for _, ing := range ingredients {
		if ing.LowStock() {
			s.LowStock = append(s.LowStock, ing)
		}
	}

	return s
}
