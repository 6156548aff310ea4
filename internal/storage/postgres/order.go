package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelara/comanda/internal/domain/order"
	"github.com/avelara/comanda/internal/money"
)

const (
	orderColumns = `id, kind, table_id, party_size, status, kitchen_status, items,
		created_at, sent_to_kitchen_at, ready_at, completed_at,
		subtotal, total_discount, total, shipping_fee, promotions,
		client, payment_method, payment_receipt_url, profit`

	createOrderSQL = `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	updateOrderSQL = `UPDATE orders SET
		status = $2, kitchen_status = $3, items = $4,
		sent_to_kitchen_at = $5, ready_at = $6, completed_at = $7,
		subtotal = $8, total_discount = $9, total = $10, shipping_fee = $11,
		promotions = $12, payment_method = $13, payment_receipt_url = $14, profit = $15
		WHERE id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists a new order. Items, promotion snapshots and client info are
// serialized to JSON for storage in JSONB columns.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	items, promos, client, err := marshalOrderJSON(o)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, createOrderSQL,
		o.ID, o.Kind, nullableString(o.TableID), o.PartySize, o.Status, o.KitchenStatus, items,
		o.CreatedAt, o.SentToKitchenAt, o.ReadyAt, o.CompletedAt,
		int64(o.Subtotal), int64(o.TotalDiscount), int64(o.Total), int64(o.ShippingFee), promos,
		client, nullableString(o.PaymentMethod), nullableString(o.PaymentReceiptURL), nullableAmount(o.Profit),
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	return nil
}

// GetByID returns the order with the given ID, or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// List returns orders matching the filter, oldest first.
func (r *OrderRepository) List(ctx context.Context, f order.ListFilter) ([]order.Order, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.KitchenStatus != "" {
		add("kitchen_status = $%d", f.KitchenStatus)
	}
	if f.Kind != "" {
		add("kind = $%d", f.Kind)
	}
	if f.FinalizedFrom != nil {
		add("completed_at >= $%d", *f.FinalizedFrom)
	}
	if f.FinalizedTo != nil {
		add("completed_at < $%d", *f.FinalizedTo)
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// Update rewrites the mutable columns of the order row.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	items, promos, _, err := marshalOrderJSON(o)
	if err != nil {
		return err
	}

	tag, err := r.pool.Exec(ctx, updateOrderSQL,
		o.ID, o.Status, o.KitchenStatus, items,
		o.SentToKitchenAt, o.ReadyAt, o.CompletedAt,
		int64(o.Subtotal), int64(o.TotalDiscount), int64(o.Total), int64(o.ShippingFee),
		promos, nullableString(o.PaymentMethod), nullableString(o.PaymentReceiptURL), nullableAmount(o.Profit),
	)
	if err != nil {
		return fmt.Errorf("updating order %q: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// Delete removes the order row.
func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deleteOrderSQL, id)
	if err != nil {
		return fmt.Errorf("deleting order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func marshalOrderJSON(o *order.Order) (items, promos, client []byte, err error) {
	items, err = json.Marshal(o.Items)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshaling order items: %w", err)
	}
	promos, err = json.Marshal(o.Promotions)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("marshaling order promotions: %w", err)
	}
	if o.Client != nil {
		client, err = json.Marshal(o.Client)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("marshaling order client: %w", err)
		}
	}
	return items, promos, client, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o          order.Order
		tableID    *string
		items      []byte
		promos     []byte
		client     []byte
		subtotal   int64
		discount   int64
		total      int64
		shipping   int64
		payMethod  *string
		receiptURL *string
		profit     *int64
	)
	err := row.Scan(
		&o.ID, &o.Kind, &tableID, &o.PartySize, &o.Status, &o.KitchenStatus, &items,
		&o.CreatedAt, &o.SentToKitchenAt, &o.ReadyAt, &o.CompletedAt,
		&subtotal, &discount, &total, &shipping, &promos,
		&client, &payMethod, &receiptURL, &profit,
	)
	if err != nil {
		return o, err
	}

	if tableID != nil {
		o.TableID = *tableID
	}
	o.Subtotal = money.Amount(subtotal)
	o.TotalDiscount = money.Amount(discount)
	o.Total = money.Amount(total)
	o.ShippingFee = money.Amount(shipping)
	if payMethod != nil {
		o.PaymentMethod = *payMethod
	}
	if receiptURL != nil {
		o.PaymentReceiptURL = *receiptURL
	}
	if profit != nil {
		p := money.Amount(*profit)
		o.Profit = &p
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return o, fmt.Errorf("unmarshaling order items: %w", err)
	}
	if len(promos) > 0 {
		if err := json.Unmarshal(promos, &o.Promotions); err != nil {
			return o, fmt.Errorf("unmarshaling order promotions: %w", err)
		}
	}
	if len(client) > 0 {
		o.Client = new(order.ClientInfo)
		if err := json.Unmarshal(client, o.Client); err != nil {
			return o, fmt.Errorf("unmarshaling order client: %w", err)
		}
	}

	// Keep CompletedAt-derived timestamps in UTC like the rest of the app.
	normalizeOrderTimes(&o)
	return o, nil
}

func normalizeOrderTimes(o *order.Order) {
	o.CreatedAt = o.CreatedAt.UTC()
	for _, t := range []**time.Time{&o.SentToKitchenAt, &o.ReadyAt, &o.CompletedAt} {
		if *t != nil {
			u := (*t).UTC()
			*t = &u
		}
	}
	for i := range o.Items {
		if o.Items[i].SentAt != nil {
			u := o.Items[i].SentAt.UTC()
			o.Items[i].SentAt = &u
		}
	}
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableAmount(a *money.Amount) *int64 {
	if a == nil {
		return nil
	}
	v := int64(*a)
	return &v
}
