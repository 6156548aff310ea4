package auth

import "context"

// APIKeyInfo holds the identity and permission data for a validated API key.
// Keys are provisioned by cmd/seed-db; only the peppered HMAC-SHA256 hash is
// stored, never the raw key.
type APIKeyInfo struct {
	ID      string
	KeyHash string
	Name    string
	Scopes  []string
}

// Repository provides lookup of API keys by their HMAC hash.
type Repository interface {
	FindByHash(ctx context.Context, hash string) (*APIKeyInfo, error)
}
