package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/regiq/regiq/internal/errors"
	"github.com/regiq/regiq/internal/store"
)

// Repository looks up and manages API keys in the database.
type Repository struct {
	db store.Database
}

func NewRepository(db store.Database) *Repository {
	return &Repository{db: db}
}

type APIKeyRecord struct {
	APIKeyID string
	Label    string
}

// LookupAPIKey verifies a raw API key against the stored hash and returns
// its metadata.
func (r *Repository) LookupAPIKey(ctx context.Context, rawKey string) (*APIKeyRecord, error) {
	if r == nil || r.db == nil || !r.db.IsConfigured() {
		return nil, errors.New("db not configured")
	}
	_, id, secret, ok := ParseAPIKey(rawKey)
	if !ok {
		return nil, apperrors.ErrUnauthorized
	}
	row := r.db.QueryRow(ctx, `
		SELECT key_prefix, label, key_hash
		FROM api_keys
		WHERE key_prefix = $1 AND status = 'active'
	`, id)
	var (
		keyID string
		label string
		hash  []byte
	)
	if err := row.Scan(&keyID, &label, &hash); err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(secret)); err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	return &APIKeyRecord{APIKeyID: keyID, Label: label}, nil
}

// CreateAPIKey inserts a new key and returns the raw key, shown once.
func (r *Repository) CreateAPIKey(ctx context.Context, label string, env string) (rawKey string, keyID string, err error) {
	if r == nil || r.db == nil || !r.db.IsConfigured() {
		return "", "", errors.New("db not configured")
	}
	id, raw, hash, err := GenerateAPIKey(env)
	if err != nil {
		return "", "", err
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO api_keys (id, label, key_prefix, key_hash, status)
		VALUES (gen_random_uuid(), $1, $2, $3, 'active')
	`, label, id, hash)
	if err != nil {
		return "", "", err
	}
	return raw, id, nil
}

// RevokeAPIKey marks a key as revoked
func (r *Repository) RevokeAPIKey(ctx context.Context, keyID string) error {
	if r == nil || r.db == nil || !r.db.IsConfigured() {
		return errors.New("db not configured")
	}
	_, err := r.db.Exec(ctx, `UPDATE api_keys SET status = 'revoked' WHERE key_prefix = $1`, keyID)
	return err
}
