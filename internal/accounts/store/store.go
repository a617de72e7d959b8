package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrTokenCollision is returned when a verification or reset token
	// fingerprint is already held by another account.
	ErrTokenCollision = errors.New("store: token collision")
)

// Store is the root data access interface implemented by the sqlite and
// postgres drivers. Repositories hang off it so that the same calls work
// inside and outside a transaction.
type Store interface {
	Accounts() Accounts
	Bootstrap() Bootstrap

	ApplyMigrations() error

	// Tx starts a read/write transaction. The caller MUST call Commit or
	// Rollback on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error
	Ping(ctx context.Context) error
}

// Tx is a transaction-scoped Store.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Accounts interface {
	GetAccountByID(ctx context.Context, id string) (domain.Account, error)

	// GetAccountByEmail expects a normalised email.
	GetAccountByEmail(ctx context.Context, email string) (domain.Account, error)

	// GetUnverifiedAccountByVerificationToken matches only accounts that have
	// not been verified yet.
	GetUnverifiedAccountByVerificationToken(ctx context.Context, tokenHash string) (domain.Account, error)

	// GetAccountByResetToken returns the holder of a reset token regardless of
	// expiry; callers decide whether it is still usable.
	GetAccountByResetToken(ctx context.Context, tokenHash string) (domain.Account, error)

	// ListAccounts returns every account, oldest first.
	ListAccounts(ctx context.Context) ([]domain.Account, error)

	// CreateAccount inserts a. A duplicate email yields ErrAlreadyExists and
	// a duplicate token fingerprint ErrTokenCollision.
	CreateAccount(ctx context.Context, a domain.Account) error

	// UpdateAccount replaces every mutable column of the account with a.ID.
	UpdateAccount(ctx context.Context, a domain.Account) error

	DeleteAccount(ctx context.Context, id string) error

	// ClearExpiredResetTokens nulls reset tokens whose expiry is at or
	// before now and returns how many accounts were touched.
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// Bootstrap guards the one-off promotion of the very first account.
type Bootstrap interface {
	// ClaimFirstAccount records accountID as the first account. It returns
	// true for exactly one caller over the life of the database. Claim it in
	// the same transaction as the account insert so a failed insert releases
	// the claim.
	ClaimFirstAccount(ctx context.Context, accountID string, at time.Time) (bool, error)
}
