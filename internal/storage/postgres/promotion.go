package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelara/comanda/internal/domain/promotion"
)

const (
	promotionColumns = `id, name, type, value, code, valid_from, valid_until, active, visuals`

	listActivePromotionsSQL = `SELECT ` + promotionColumns + `
		FROM promotions WHERE active = TRUE ORDER BY id`

	getPromotionByCodeSQL = `SELECT ` + promotionColumns + `
		FROM promotions WHERE UPPER(code) = UPPER($1) AND active = TRUE`
)

var _ promotion.Repository = (*PromotionRepository)(nil)

// PromotionRepository implements promotion.Repository backed by PostgreSQL.
type PromotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository returns a PromotionRepository that uses the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// ListActive returns every active promotion ordered by ID.
func (r *PromotionRepository) ListActive(ctx context.Context) ([]promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, listActivePromotionsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing promotions: %w", err)
	}
	return pgx.CollectRows(rows, scanPromotion)
}

// FindByCode looks up an active promotion by its code (case-insensitive).
// Returns promotion.ErrInvalidCode when no matching active promotion exists.
func (r *PromotionRepository) FindByCode(ctx context.Context, code string) (*promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, getPromotionByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding promotion by code %q: %w", code, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPromotion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promotion.ErrInvalidCode
		}
		return nil, fmt.Errorf("finding promotion by code %q: %w", code, err)
	}
	return &p, nil
}

func scanPromotion(row pgx.CollectableRow) (promotion.Promotion, error) {
	var (
		p       promotion.Promotion
		code    *string
		visuals []byte
	)
	err := row.Scan(
		&p.ID, &p.Name, &p.Type, &p.Value, &code,
		&p.ValidFrom, &p.ValidUntil, &p.Active, &visuals,
	)
	if code != nil {
		p.Code = *code
	}
	p.Visuals = visuals
	return p, err
}
