package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/audeasy/audeasy/internal/database"
	"golang.org/x/crypto/bcrypt"
)

// Repository provides DB-backed API key management
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// APIKeyRecord is the stored metadata for a verified key
type APIKeyRecord struct {
	AccountID  string
	APIKeyID   string
	PlanCode   string
	ClientType string
}

// LookupAPIKey verifies a raw API key against its stored hash and returns
// the key's account metadata.
func (r *Repository) LookupAPIKey(ctx context.Context, rawKey string) (*APIKeyRecord, error) {
	if r == nil || r.db == nil || !r.db.IsConfigured() {
		return nil, pgx.ErrNoRows
	}
	_, id, secret, ok := ParseAPIKey(rawKey)
	if !ok {
		return nil, errors.New("invalid key format")
	}

	row := r.db.QueryRow(ctx, `
		SELECT k.id, k.account_id, k.key_hash, k.client_type,
		       COALESCE(s.plan_code, 'lite') AS plan_code
		FROM api_keys k
		LEFT JOIN subscriptions s ON s.account_id = k.account_id AND s.status IN ('active','trialing')
		WHERE k.key_prefix = $1 AND k.status = 'active'
	`, id)

	var (
		keyID      string
		accountID  string
		hash       []byte
		clientType string
		planCode   string
	)
	scan, ok := row.(interface{ Scan(dest ...any) error })
	if !ok {
		return nil, errors.New("invalid row")
	}
	if err := scan.Scan(&keyID, &accountID, &hash, &clientType, &planCode); err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(secret)); err != nil {
		return nil, errors.New("invalid api key")
	}
	return &APIKeyRecord{
		AccountID:  accountID,
		APIKeyID:   keyID,
		PlanCode:   planCode,
		ClientType: clientType,
	}, nil
}

// CreateAPIKey inserts a new key and returns the raw key. The raw key is
// only available here; afterwards just the hash exists.
func (r *Repository) CreateAPIKey(ctx context.Context, accountID, clientType, label, env string) (rawKey string, keyID string, err error) {
	if r == nil || r.db == nil || !r.db.IsConfigured() {
		return "", "", errors.New("db not configured")
	}
	id, raw, hash, err := GenerateAPIKey(env)
	if err != nil {
		return "", "", err
	}
	err = r.db.Exec(ctx, `
		INSERT INTO api_keys(id, account_id, label, key_prefix, key_hash, client_type, status)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, 'active')
	`, accountID, label, id, hash, clientType)
	if err != nil {
		return "", "", err
	}
	return raw, id, nil
}

// ListAPIKeyIDsByAccount returns key_prefix (id) list for an account
func (r *Repository) ListAPIKeyIDsByAccount(ctx context.Context, accountID string) ([]string, error) {
	if r == nil || r.db == nil || !r.db.IsConfigured() {
		return nil, errors.New("db not configured")
	}
	rows, err := r.db.Query(ctx, "SELECT key_prefix FROM api_keys WHERE account_id=$1 AND status='active'", accountID)
	if err != nil {
		return nil, err
	}
	s, ok := rows.(pgx.Rows)
	if !ok {
		return nil, errors.New("invalid rows")
	}
	defer s.Close()
	var ids []string
	for s.Next() {
		var id string
		if err := s.Scan(&id); err == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// RevokeAPIKey marks a key as revoked
func (r *Repository) RevokeAPIKey(ctx context.Context, keyID string) error {
	if r == nil || r.db == nil || !r.db.IsConfigured() {
		return errors.New("db not configured")
	}
	return r.db.Exec(ctx, `UPDATE api_keys SET status='revoked' WHERE key_prefix=$1`, keyID)
}
