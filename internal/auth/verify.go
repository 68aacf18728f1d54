package auth

import (
	"context"

	apperrors "github.com/regiq/regiq/internal/errors"
)

// Verifier validates raw API keys. Satisfied by *Repository.
type Verifier interface {
	LookupAPIKey(ctx context.Context, rawKey string) (*APIKeyRecord, error)
}

// VerifyAPIKey validates a raw key and returns the caller's principal.
func VerifyAPIKey(ctx context.Context, v Verifier, rawKey string) (*Principal, error) {
	if rawKey == "" {
		return nil, apperrors.ErrUnauthorized
	}
	rec, err := v.LookupAPIKey(ctx, rawKey)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	return &Principal{APIKeyID: rec.APIKeyID, Label: rec.Label}, nil
}
