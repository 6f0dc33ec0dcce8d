// Package interfaces defines service contracts for Sonagi
package interfaces

import (
	"context"

	"github.com/purunsolnp/sonagi-stock/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	InternalStore() InternalStore
	UserDataStore() UserDataStore
	QuotaStore() QuotaStore

	// Lifecycle
	Close() error
}

// InternalStore manages user accounts and system-level KV.
type InternalStore interface {
	// User accounts
	GetUser(ctx context.Context, userID string) (*models.InternalUser, error)
	GetUserByEmail(ctx context.Context, email string) (*models.InternalUser, error)
	SaveUser(ctx context.Context, user *models.InternalUser) error
	DeleteUser(ctx context.Context, userID string) error
	ListUsers(ctx context.Context) ([]string, error)

	// System key-value (non-user-scoped)
	GetSystemKV(ctx context.Context, key string) (string, error)
	SetSystemKV(ctx context.Context, key, value string) error

	Close() error
}

// UserDataStore manages all user domain data via generic records.
// Get returns models.ErrNotFound when the record does not exist.
type UserDataStore interface {
	Get(ctx context.Context, userID, subject, key string) (*models.UserRecord, error)
	Put(ctx context.Context, record *models.UserRecord) error
	Delete(ctx context.Context, userID, subject, key string) error
	List(ctx context.Context, userID, subject string) ([]*models.UserRecord, error)
	Query(ctx context.Context, userID, subject string, opts QueryOptions) ([]*models.UserRecord, error)
	DeleteBySubject(ctx context.Context, subject string) (int, error)
	Close() error
}

// QueryOptions configures query behavior for UserDataStore.
type QueryOptions struct {
	Limit   int
	OrderBy string // "datetime_desc" (default), "datetime_asc"
}

// QuotaStore persists per-user usage counters. Increment must be atomic at
// the store so two concurrent calls never lose an update.
type QuotaStore interface {
	// Get returns the record as seen in period. A record stored under an
	// older period reads with zero usage. Missing records return models.ErrNotFound.
	Get(ctx context.Context, userID, period string) (*models.QuotaRecord, error)

	// Create stores rec unless a record already exists for the user.
	Create(ctx context.Context, rec *models.QuotaRecord) error

	// Increment adds one to usage in period, rolling a stale counter over first.
	Increment(ctx context.Context, userID, period string) (*models.QuotaRecord, error)

	// ResetUsage zeroes usage for period.
	ResetUsage(ctx context.Context, userID, period string) error

	// SetLimit changes the limit and enabled flag without touching usage.
	SetLimit(ctx context.Context, userID string, limit int, enabled bool) error

	// ListUsers returns every user id holding a quota record.
	ListUsers(ctx context.Context) ([]string, error)
}
