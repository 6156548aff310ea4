package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avelara/comanda/internal/domain/catalog"
	"github.com/avelara/comanda/internal/money"
)

const (
	productColumns = `id, name, price, cost, category_id, ingredients`

	listProductsSQL = `SELECT ` + productColumns + ` FROM products ORDER BY id`

	getProductByIDSQL = `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	getProductsByIDsSQL = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1)`

	listCategoriesSQL = `SELECT id, name FROM categories ORDER BY id`

	listIngredientsSQL = `SELECT id, name, stock, min_stock FROM ingredients ORDER BY id`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListProducts returns all products ordered by ID.
func (r *CatalogRepository) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetProduct returns a single product by its identifier.
func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetProducts returns products matching any of the given IDs.
func (r *CatalogRepository) GetProducts(ctx context.Context, ids []string) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// ListCategories returns all categories ordered by ID.
func (r *CatalogRepository) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Category, error) {
		var c catalog.Category
		err := row.Scan(&c.ID, &c.Name)
		return c, err
	})
}

// ListIngredients returns all stock-tracked ingredients ordered by ID.
func (r *CatalogRepository) ListIngredients(ctx context.Context) ([]catalog.Ingredient, error) {
	rows, err := r.pool.Query(ctx, listIngredientsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing ingredients: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Ingredient, error) {
		var i catalog.Ingredient
		err := row.Scan(&i.ID, &i.Name, &i.Stock, &i.MinStock)
		return i, err
	})
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p     catalog.Product
		price int64
		cost  int64
	)
	err := row.Scan(&p.ID, &p.Name, &price, &cost, &p.CategoryID, &p.Ingredients)
	p.Price = money.Amount(price)
	p.Cost = money.Amount(cost)
	return p, err
}
