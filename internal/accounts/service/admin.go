package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

func parseID(id string) (string, error) {
	parsed, err := idx.Parse(id)
	if err != nil {
		return "", ErrInvalidID
	}
	return parsed.String(), nil
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrConflict
	default:
		return err
	}
}

// GetAccounts lists every account, oldest first.
func (s *AccountService) GetAccounts(ctx context.Context) ([]domain.PublicAccount, error) {
	accounts, err := s.Store.Accounts().ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	out := make([]domain.PublicAccount, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, a.Public())
	}
	return out, nil
}

func (s *AccountService) GetAccountByID(ctx context.Context, id string) (domain.PublicAccount, error) {
	id, err := parseID(id)
	if err != nil {
		return domain.PublicAccount{}, err
	}

	acct, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		return domain.PublicAccount{}, mapStoreErr(err)
	}
	return acct.Public(), nil
}

// Create adds a pre-verified account with the requested role.
func (s *AccountService) Create(ctx context.Context, in domain.NewAccount) (domain.PublicAccount, error) {
	email := domain.NormalizeEmail(in.Email)

	_, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		return domain.PublicAccount{}, ErrConflict
	case !errors.Is(err, store.ErrNotFound):
		return domain.PublicAccount{}, fmt.Errorf("lookup account: %w", err)
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return domain.PublicAccount{}, domain.ErrInvalidRole
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.PublicAccount{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	acct := domain.Account{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		Profile:      in.Profile,
		PasswordHash: hash,
		Role:         role,
		IsVerified:   true,
		DateCreated:  now,
	}
	if err := s.Store.Accounts().CreateAccount(ctx, acct); err != nil {
		return domain.PublicAccount{}, mapStoreErr(err)
	}

	slogx.FromContext(ctx).Info("account created",
		slog.String("account_id", acct.ID),
		slog.String("role", role.String()),
	)
	return acct.Public(), nil
}

// Update merges patch into the account. Authorisation of the caller,
// including who may change roles, happens before this is called.
func (s *AccountService) Update(ctx context.Context, id string, patch domain.AccountPatch) (domain.PublicAccount, error) {
	id, err := parseID(id)
	if err != nil {
		return domain.PublicAccount{}, err
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return domain.PublicAccount{}, domain.ErrInvalidRole
	}

	var hash string
	if patch.Password != nil {
		if hash, err = cryptox.HashPassword(*patch.Password); err != nil {
			return domain.PublicAccount{}, fmt.Errorf("hash password: %w", err)
		}
	}

	var next domain.Account
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Accounts().GetAccountByID(ctx, id)
		if err != nil {
			return err
		}

		if patch.Email != nil {
			email := domain.NormalizeEmail(*patch.Email)
			if email != existing.Email {
				other, err := tx.Accounts().GetAccountByEmail(ctx, email)
				switch {
				case err == nil && other.ID != existing.ID:
					return ErrConflict
				case err != nil && !errors.Is(err, store.ErrNotFound):
					return err
				}
			}
		}

		next = existing.Apply(patch, s.now())
		if hash != "" {
			next.PasswordHash = hash
		}
		return tx.Accounts().UpdateAccount(ctx, next)
	})
	if err != nil {
		return domain.PublicAccount{}, mapStoreErr(err)
	}

	slogx.FromContext(ctx).Info("account updated", slog.String("account_id", id))
	return next.Public(), nil
}

func (s *AccountService) Delete(ctx context.Context, id string) error {
	id, err := parseID(id)
	if err != nil {
		return err
	}
	if err := s.Store.Accounts().DeleteAccount(ctx, id); err != nil {
		return mapStoreErr(err)
	}

	slogx.FromContext(ctx).Info("account deleted", slog.String("account_id", id))
	return nil
}

// ResolveRole returns the current role of the account with id.
func (s *AccountService) ResolveRole(ctx context.Context, id string) (domain.Role, error) {
	id, err := parseID(id)
	if err != nil {
		return "", ErrNotFound
	}
	acct, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if err != nil {
		return "", mapStoreErr(err)
	}
	return acct.Role, nil
}
