package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelara/comanda/internal/domain/table"
)

const (
	tableColumns = `id, number, seats, busy, order_id`

	listTablesSQL = `SELECT ` + tableColumns + ` FROM tables ORDER BY number`

	getTableByIDSQL = `SELECT ` + tableColumns + ` FROM tables WHERE id = $1`

	occupyTableSQL = `UPDATE tables SET busy = TRUE, order_id = $2 WHERE id = $1`

	freeTableSQL = `UPDATE tables SET busy = FALSE, order_id = NULL WHERE id = $1`
)

var _ table.Repository = (*TableRepository)(nil)

// TableRepository implements table.Repository backed by PostgreSQL.
type TableRepository struct {
	pool *pgxpool.Pool
}

// NewTableRepository returns a TableRepository that uses the given pool.
func NewTableRepository(pool *pgxpool.Pool) *TableRepository {
	return &TableRepository{pool: pool}
}

// List returns all tables ordered by table number.
func (r *TableRepository) List(ctx context.Context) ([]table.Table, error) {
	rows, err := r.pool.Query(ctx, listTablesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	return pgx.CollectRows(rows, scanTable)
}

// Get returns a single table by its identifier.
func (r *TableRepository) Get(ctx context.Context, id string) (*table.Table, error) {
	rows, err := r.pool.Query(ctx, getTableByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting table %q: %w", id, err)
	}

	t, err := pgx.CollectExactlyOneRow(rows, scanTable)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, table.ErrNotFound
		}
		return nil, fmt.Errorf("getting table %q: %w", id, err)
	}
	return &t, nil
}

// Occupy marks the table busy and links it to the occupying order.
func (r *TableRepository) Occupy(ctx context.Context, tableID, orderID string) error {
	tag, err := r.pool.Exec(ctx, occupyTableSQL, tableID, orderID)
	if err != nil {
		return fmt.Errorf("occupying table %q: %w", tableID, err)
	}
	if tag.RowsAffected() == 0 {
		return table.ErrNotFound
	}
	return nil
}

// Free releases the table.
func (r *TableRepository) Free(ctx context.Context, tableID string) error {
	tag, err := r.pool.Exec(ctx, freeTableSQL, tableID)
	if err != nil {
		return fmt.Errorf("freeing table %q: %w", tableID, err)
	}
	if tag.RowsAffected() == 0 {
		return table.ErrNotFound
	}
	return nil
}

func scanTable(row pgx.CollectableRow) (table.Table, error) {
	var (
		t       table.Table
		orderID *string
	)
	err := row.Scan(&t.ID, &t.Number, &t.Seats, &t.Busy, &orderID)
	if orderID != nil {
		t.OrderID = *orderID
	}
	return t, err
}
