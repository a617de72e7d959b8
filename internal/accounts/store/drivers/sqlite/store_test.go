package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func ptr[T any](v T) *T { return &v }

func newAccount(email string, created time.Time) domain.Account {
	return domain.Account{
		ID:           idx.NewAt(created).String(),
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		Profile:      domain.Profile{Title: "Mx", FirstName: "Test", LastName: "User"},
		Role:         domain.RoleUser,
		AcceptTerms:  true,
		DateCreated:  created.UTC().Truncate(time.Millisecond),
	}
}

func TestAccounts_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := newAccount("a@example.com", time.Now())
	a.VerificationToken = ptr("verify-fp")
	require.NoError(t, s.Accounts().CreateAccount(ctx, a))

	got, err := s.Accounts().GetAccountByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, a.Email, got.Email)
	require.Equal(t, a.Profile, got.Profile)
	require.Equal(t, domain.RoleUser, got.Role)
	require.True(t, got.AcceptTerms)
	require.False(t, got.IsVerified)
	require.Equal(t, "verify-fp", *got.VerificationToken)
	require.Nil(t, got.ResetToken)
	require.Nil(t, got.DateUpdated)
	require.True(t, a.DateCreated.Equal(got.DateCreated))

	byEmail, err := s.Accounts().GetAccountByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	require.Equal(t, a.ID, byEmail.ID)

	_, err = s.Accounts().GetAccountByEmail(ctx, "missing@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccounts_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := newAccount("dup@example.com", time.Now())
	a.VerificationToken = ptr("same-fp")
	require.NoError(t, s.Accounts().CreateAccount(ctx, a))

	b := newAccount("dup@example.com", time.Now())
	require.ErrorIs(t, s.Accounts().CreateAccount(ctx, b), store.ErrAlreadyExists)

	c := newAccount("other@example.com", time.Now())
	c.VerificationToken = ptr("same-fp")
	require.ErrorIs(t, s.Accounts().CreateAccount(ctx, c), store.ErrTokenCollision)

	// Multiple accounts without tokens are fine.
	d := newAccount("d@example.com", time.Now())
	e := newAccount("e@example.com", time.Now())
	require.NoError(t, s.Accounts().CreateAccount(ctx, d))
	require.NoError(t, s.Accounts().CreateAccount(ctx, e))

	e.Email = "d@example.com"
	require.ErrorIs(t, s.Accounts().UpdateAccount(ctx, e), store.ErrAlreadyExists)
}

func TestAccounts_VerificationLookupIgnoresVerified(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := newAccount("v@example.com", time.Now())
	a.VerificationToken = ptr("fp")
	require.NoError(t, s.Accounts().CreateAccount(ctx, a))

	got, err := s.Accounts().GetUnverifiedAccountByVerificationToken(ctx, "fp")
	require.NoError(t, err)
	require.Equal(t, a.ID, got.ID)

	got.IsVerified = true
	require.NoError(t, s.Accounts().UpdateAccount(ctx, got))

	_, err = s.Accounts().GetUnverifiedAccountByVerificationToken(ctx, "fp")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccounts_ListOldestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	emails := []string{"third@example.com", "first@example.com", "second@example.com"}
	offsets := []time.Duration{2 * time.Hour, 0, time.Hour}
	for i, email := range emails {
		require.NoError(t, s.Accounts().CreateAccount(ctx, newAccount(email, base.Add(offsets[i]))))
	}

	list, err := s.Accounts().ListAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, "first@example.com", list[0].Email)
	require.Equal(t, "second@example.com", list[1].Email)
	require.Equal(t, "third@example.com", list[2].Email)
}

func TestAccounts_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	a := newAccount("u@example.com", time.Now())
	require.NoError(t, s.Accounts().CreateAccount(ctx, a))

	now := time.Now().UTC().Truncate(time.Millisecond)
	next := a.Apply(domain.AccountPatch{Bio: ptr("hello"), Role: ptr(domain.RoleAdmin)}, now)
	require.NoError(t, s.Accounts().UpdateAccount(ctx, next))

	got, err := s.Accounts().GetAccountByID(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "hello", got.Bio)
	require.Equal(t, domain.RoleAdmin, got.Role)
	require.NotNil(t, got.DateUpdated)
	require.True(t, now.Equal(*got.DateUpdated))

	missing := newAccount("nobody@example.com", time.Now())
	require.ErrorIs(t, s.Accounts().UpdateAccount(ctx, missing), store.ErrNotFound)

	require.NoError(t, s.Accounts().DeleteAccount(ctx, a.ID))
	require.ErrorIs(t, s.Accounts().DeleteAccount(ctx, a.ID), store.ErrNotFound)
	_, err = s.Accounts().GetAccountByID(ctx, a.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAccounts_ClearExpiredResetTokens(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now().UTC()

	expired := newAccount("expired@example.com", now)
	expired.ResetToken = ptr("old")
	expired.ResetTokenExpiry = ptr(now.Add(-time.Minute))

	live := newAccount("live@example.com", now)
	live.ResetToken = ptr("new")
	live.ResetTokenExpiry = ptr(now.Add(time.Hour))

	require.NoError(t, s.Accounts().CreateAccount(ctx, expired))
	require.NoError(t, s.Accounts().CreateAccount(ctx, live))

	n, err := s.Accounts().ClearExpiredResetTokens(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = s.Accounts().GetAccountByResetToken(ctx, "old")
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.Accounts().GetAccountByResetToken(ctx, "new")
	require.NoError(t, err)
	require.Equal(t, live.ID, got.ID)
	require.NotNil(t, got.ResetTokenExpiry)
}

func TestBootstrap_ClaimedOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	now := time.Now()

	ok, err := s.Bootstrap().ClaimFirstAccount(ctx, "first", now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.Bootstrap().ClaimFirstAccount(ctx, "second", now)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestWithTx_RollbackReleasesBootstrap(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(tx store.Tx) error {
		ok, err := tx.Bootstrap().ClaimFirstAccount(ctx, "rolled-back", time.Now())
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, tx.Accounts().CreateAccount(ctx, newAccount("tx@example.com", time.Now())))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.Accounts().GetAccountByEmail(ctx, "tx@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	ok, err := s.Bootstrap().ClaimFirstAccount(ctx, "committed", time.Now())
	require.NoError(t, err)
	require.True(t, ok)
}

func TestTx_NestedNotSupported(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		return tx.WithTx(ctx, func(store.Tx) error { return nil })
	})
	require.Error(t, err)
}
