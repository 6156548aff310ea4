package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/avelara/comanda/internal/storage/postgres"
)

// menuJSON is the seed file layout: the full catalog plus the floor plan.
type menuJSON struct {
	Categories []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"categories"`
	Products []struct {
		ID          string   `json:"id"`
		Name        string   `json:"name"`
		Price       int64    `json:"price"`
		Cost        int64    `json:"cost"`
		CategoryID  string   `json:"category_id"`
		Ingredients []string `json:"ingredients"`
	} `json:"products"`
	Ingredients []struct {
		ID       string          `json:"id"`
		Name     string          `json:"name"`
		Stock    decimal.Decimal `json:"stock"`
		MinStock decimal.Decimal `json:"min_stock"`
	} `json:"ingredients"`
	Tables []struct {
		ID     string `json:"id"`
		Number int    `json:"number"`
		Seats  int    `json:"seats"`
	} `json:"tables"`
	Promotions []struct {
		ID      string          `json:"id"`
		Name    string          `json:"name"`
		Type    string          `json:"type"`
		Value   decimal.Decimal `json:"value"`
		Code    string          `json:"code"`
		Visuals json.RawMessage `json:"visuals"`
	} `json:"promotions"`
}

func main() {
	var (
		databaseURL  string
		menuFile     string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&menuFile, "menu-file", "db/seed/menu.json", "path to menu JSON file")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or COMANDA_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or COMANDA_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("COMANDA_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or COMANDA_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("COMANDA_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, menuFile, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, menuFile, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	menu, err := readMenu(menuFile)
	if err != nil {
		return errors.Wrap(err, "read menu")
	}

	if err := seedMenu(ctx, pool, menu); err != nil {
		return errors.Wrap(err, "seed menu")
	}

	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func readMenu(path string) (*menuJSON, error) {
	slog.Info("reading menu file", slog.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read menu file")
	}

	var menu menuJSON
	if err := json.Unmarshal(data, &menu); err != nil {
		return nil, errors.Wrap(err, "parse menu JSON")
	}
	return &menu, nil
}

func seedMenu(ctx context.Context, pool *pgxpool.Pool, menu *menuJSON) error {
	slog.Info("upserting categories", slog.Int("count", len(menu.Categories)))
	for _, c := range menu.Categories {
		_, err := pool.Exec(ctx, `INSERT INTO categories (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
			c.ID, c.Name)
		if err != nil {
			return errors.Wrapf(err, "upsert category %s", c.ID)
		}
	}

	slog.Info("upserting products", slog.Int("count", len(menu.Products)))
	for _, p := range menu.Products {
		_, err := pool.Exec(ctx, `INSERT INTO products (id, name, price, cost, category_id, ingredients)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, price = EXCLUDED.price, cost = EXCLUDED.cost,
				category_id = EXCLUDED.category_id, ingredients = EXCLUDED.ingredients`,
			p.ID, p.Name, p.Price, p.Cost, p.CategoryID, p.Ingredients)
		if err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
	}

	slog.Info("upserting ingredients", slog.Int("count", len(menu.Ingredients)))
	for _, i := range menu.Ingredients {
		_, err := pool.Exec(ctx, `INSERT INTO ingredients (id, name, stock, min_stock)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, stock = EXCLUDED.stock, min_stock = EXCLUDED.min_stock`,
			i.ID, i.Name, i.Stock, i.MinStock)
		if err != nil {
			return errors.Wrapf(err, "upsert ingredient %s", i.ID)
		}
	}

	slog.Info("upserting tables", slog.Int("count", len(menu.Tables)))
	for _, t := range menu.Tables {
		_, err := pool.Exec(ctx, `INSERT INTO tables (id, number, seats)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET number = EXCLUDED.number, seats = EXCLUDED.seats`,
			t.ID, t.Number, t.Seats)
		if err != nil {
			return errors.Wrapf(err, "upsert table %s", t.ID)
		}
	}

	slog.Info("upserting promotions", slog.Int("count", len(menu.Promotions)))
	for _, p := range menu.Promotions {
		_, err := pool.Exec(ctx, `INSERT INTO promotions (id, name, type, value, code, active, visuals)
			VALUES ($1, $2, $3, $4, $5, TRUE, $6)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, type = EXCLUDED.type, value = EXCLUDED.value,
				code = EXCLUDED.code, visuals = EXCLUDED.visuals`,
			p.ID, p.Name, p.Type, p.Value, nullable(p.Code), []byte(p.Visuals))
		if err != nil {
			return errors.Wrapf(err, "upsert promotion %s", p.ID)
		}
	}

	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding default API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	_, err := pool.Exec(ctx, `INSERT INTO api_keys (id, key_hash, name, scopes, active)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (id) DO UPDATE SET key_hash = EXCLUDED.key_hash`,
		"default", keyHash, "Default terminal key", []string{"orders"})
	if err != nil {
		return errors.Wrap(err, "upsert default API key")
	}

	slog.Info("upserted API key", slog.String("id", "default"))
	return nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
