package auth

import (
	"context"
	"net/http"

	"github.com/audeasy/audeasy/internal/database"
	apperrors "github.com/audeasy/audeasy/internal/errors"
)

// VerifyAPIKey resolves a raw key into a Principal. With a configured
// database the key is checked against stored hashes; without one a
// permissive dev principal is issued so local setups work keyless.
func VerifyAPIKey(r *http.Request, key string, clientType string) (*Principal, error) {
	if key == "" {
		return nil, apperrors.ErrUnauthorized
	}
	if clientType != "agent" && clientType != "human" && clientType != "" {
		return nil, apperrors.ErrUnauthorized
	}

	ctx := r.Context()
	if db := DBFromContext(ctx); db != nil && db.IsConfigured() {
		rec, err := NewRepository(db).LookupAPIKey(ctx, key)
		if err != nil {
			return nil, apperrors.ErrUnauthorized
		}
		return &Principal{
			AccountID:  rec.AccountID,
			APIKeyID:   rec.APIKeyID,
			PlanCode:   rec.PlanCode,
			ClientType: rec.ClientType,
		}, nil
	}

	return &Principal{
		AccountID:  "acc_dev",
		APIKeyID:   "key_dev",
		PlanCode:   "lite",
		ClientType: clientType,
	}, nil
}

type dbKey struct{}

// WithDB attaches the database to request context for auth lookups
func WithDB(ctx context.Context, db *database.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DBFromContext returns the database attached by WithDB, or nil
func DBFromContext(ctx context.Context) *database.DB {
	v := ctx.Value(dbKey{})
	if v == nil {
		return nil
	}
	db, _ := v.(*database.DB)
	return db
}
