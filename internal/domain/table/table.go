// Package table holds the dining table read model and the intent interface
// the order lifecycle uses to signal occupancy changes. The order core never
// reads table state to make lifecycle decisions.
package table

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrNotFound is returned when a referenced table does not exist.
var ErrNotFound = errors.New("table not found")

// Table is a physical dining table.
type Table struct {
	ID      string
	Number  int
	Seats   int
	Busy    bool
	OrderID string
}

// Manager receives occupancy intents from the order lifecycle.
type Manager interface {
	Occupy(ctx context.Context, tableID, orderID string) error
	Free(ctx context.Context, tableID string) error
}

// Repository provides table lookups for the floor view.
type Repository interface {
	Manager
	List(ctx context.Context) ([]Table, error)
	Get(ctx context.Context, id string) (*Table, error)
}
