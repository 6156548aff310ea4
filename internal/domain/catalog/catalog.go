// Package catalog holds the read models for products, categories and
// ingredients. The order core only consumes these through the Repository
// interfaces; it never mutates catalog data.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/avelara/comanda/internal/money"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product is a menu item available for ordering.
type Product struct {
	ID         string
	Name       string
	Price      money.Amount
	Cost       money.Amount
	CategoryID string
	// Ingredients lists ingredient IDs a customer may ask to exclude.
	Ingredients []string
}

// Category groups products for menu display and sales reporting.
type Category struct {
	ID   string
	Name string
}

// Ingredient is a stock-tracked kitchen ingredient. Stock and MinStock are
// in the ingredient's own unit (grams, pieces), so they carry fractions.
type Ingredient struct {
	ID       string
	Name     string
	Stock    decimal.Decimal
	MinStock decimal.Decimal
}

// LowStock reports whether the ingredient is at or below its minimum level.
func (i Ingredient) LowStock() bool {
	return i.Stock.LessThanOrEqual(i.MinStock)
}

// Repository defines read operations for the catalog.
type Repository interface {
	ListProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetProducts(ctx context.Context, ids []string) ([]Product, error)
	ListCategories(ctx context.Context) ([]Category, error)
	ListIngredients(ctx context.Context) ([]Ingredient, error)
}
