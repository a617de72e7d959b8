package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/idx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"
)

const (
	DefaultResetTTL = 24 * time.Hour

	// tokenAttempts bounds retries when a freshly generated token collides
	// with one already stored.
	tokenAttempts = 3
)

type AccountService struct {
	Store    store.Store
	Notifier Notifier
	Tokens   TokenIssuer
	Now      func() time.Time
	ResetTTL time.Duration
}

func NewAccountService(s store.Store, n Notifier, tokens TokenIssuer) *AccountService {
	return &AccountService{
		Store:    s,
		Notifier: n,
		Tokens:   tokens,
		Now:      time.Now,
		ResetTTL: DefaultResetTTL,
	}
}

func (s *AccountService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func (s *AccountService) resetTTL() time.Duration {
	if s.ResetTTL <= 0 {
		return DefaultResetTTL
	}
	return s.ResetTTL
}

// newToken returns a raw token for the email and its stored fingerprint.
func newToken() (raw, fingerprint string, err error) {
	raw, err = cryptox.GenerateHexToken(cryptox.TokenSize320)
	if err != nil {
		return "", "", err
	}
	return raw, cryptox.FingerprintToken(raw), nil
}

// Register creates an unverified account and emails a verification token.
// An email that is already registered gets a notice instead, and the caller
// sees the same nil result either way.
func (s *AccountService) Register(ctx context.Context, reg domain.Registration, origin string) error {
	l := slogx.FromContext(ctx)
	email := domain.NormalizeEmail(reg.Email)

	_, err := s.Store.Accounts().GetAccountByEmail(ctx, email)
	switch {
	case err == nil:
		s.alreadyRegistered(ctx, email, origin)
		return nil
	case !errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("lookup account: %w", err)
	}

	hash, err := cryptox.HashPassword(reg.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var (
		acct  domain.Account
		token string
	)
	for range tokenAttempts {
		var fingerprint string
		token, fingerprint, err = newToken()
		if err != nil {
			return fmt.Errorf("generate verification token: %w", err)
		}

		now := s.now()
		acct = domain.Account{
			ID:                idx.NewAt(now).String(),
			Email:             email,
			Profile:           reg.Profile,
			PasswordHash:      hash,
			Role:              domain.RoleUser,
			AcceptTerms:       reg.AcceptTerms,
			VerificationToken: &fingerprint,
			DateCreated:       now,
		}

		err = s.Store.WithTx(ctx, func(tx store.Tx) error {
			first, err := tx.Bootstrap().ClaimFirstAccount(ctx, acct.ID, now)
			if err != nil {
				return fmt.Errorf("claim bootstrap: %w", err)
			}
			if first {
				acct.Role = domain.RoleAdmin
			}
			return tx.Accounts().CreateAccount(ctx, acct)
		})
		if !errors.Is(err, store.ErrTokenCollision) {
			break
		}
		l.Warn("verification token collision, retrying")
	}

	switch {
	case errors.Is(err, store.ErrAlreadyExists):
		// Lost a race with a concurrent registration for the same email.
		s.alreadyRegistered(ctx, email, origin)
		return nil
	case err != nil:
		return fmt.Errorf("create account: %w", err)
	}

	l.Info("account registered", slog.String("account_id", acct.ID), slog.String("role", acct.Role.String()))

	if err := s.Notifier.SendVerification(ctx, email, token, origin); err != nil {
		l.Error("failed to send verification email", slog.String("account_id", acct.ID), slog.Any("err", err))
	}
	return nil
}

func (s *AccountService) alreadyRegistered(ctx context.Context, email, origin string) {
	if err := s.Notifier.SendAlreadyRegistered(ctx, email, origin); err != nil {
		slogx.FromContext(ctx).Error("failed to send already registered email", slog.Any("err", err))
	}
}

// VerifyEmail marks the holder of token as verified. The token is single use.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) error {
	fingerprint := cryptox.FingerprintToken(token)

	var id string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		acct, err := tx.Accounts().GetUnverifiedAccountByVerificationToken(ctx, fingerprint)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		now := s.now()
		acct.IsVerified = true
		acct.VerificationToken = nil
		acct.DateUpdated = &now
		id = acct.ID
		return tx.Accounts().UpdateAccount(ctx, acct)
	})
	if err != nil {
		return fmt.Errorf("verify email: %w", err)
	}

	slogx.FromContext(ctx).Info("email verified", slog.String("account_id", id))
	return nil
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// burnPasswordCheck spends the same work as a real verification so unknown
// emails cannot be told apart by response time.
func burnPasswordCheck(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = cryptox.HashPassword("accounts-timing-equaliser")
	})
	_ = cryptox.VerifyPassword(password, dummyHash)
}

// Authenticate returns nil, nil when the credentials do not match a verified
// account.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	l := slogx.FromContext(ctx)

	acct, err := s.Store.Accounts().GetAccountByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		burnPasswordCheck(password)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	if err := cryptox.VerifyPassword(password, acct.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Warn("stored password hash is unusable", slog.String("account_id", acct.ID), slog.Any("err", err))
		}
		return nil, nil
	}
	if !acct.IsVerified {
		return nil, nil
	}

	now := s.now()
	if cryptox.NeedsRehash(acct.PasswordHash) {
		s.upgradeHash(ctx, acct, password, now)
	}

	token, claims, err := s.Tokens.Issue(acct.ID, now)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	l.Info("account authenticated", slog.String("account_id", acct.ID))
	return &domain.AuthResult{
		Account:   acct.Public(),
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// upgradeHash replaces a legacy bcrypt hash. Failure leaves the old hash in
// place and is only logged.
func (s *AccountService) upgradeHash(ctx context.Context, acct domain.Account, password string, now time.Time) {
	l := slogx.FromContext(ctx)

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		l.Error("failed to rehash legacy password", slog.String("account_id", acct.ID), slog.Any("err", err))
		return
	}
	acct.PasswordHash = hash
	acct.DateUpdated = &now
	if err := s.Store.Accounts().UpdateAccount(ctx, acct); err != nil {
		l.Error("failed to store upgraded password hash", slog.String("account_id", acct.ID), slog.Any("err", err))
		return
	}
	l.Info("upgraded legacy password hash", slog.String("account_id", acct.ID))
}

// ForgotPassword issues a reset token valid for ResetTTL. Unknown emails
// succeed silently.
func (s *AccountService) ForgotPassword(ctx context.Context, email, origin string) error {
	l := slogx.FromContext(ctx)

	acct, err := s.Store.Accounts().GetAccountByEmail(ctx, domain.NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup account: %w", err)
	}

	var token string
	for range tokenAttempts {
		var fingerprint string
		token, fingerprint, err = newToken()
		if err != nil {
			return fmt.Errorf("generate reset token: %w", err)
		}

		now := s.now()
		expiry := now.Add(s.resetTTL())
		acct.ResetToken = &fingerprint
		acct.ResetTokenExpiry = &expiry
		acct.DateUpdated = &now

		err = s.Store.Accounts().UpdateAccount(ctx, acct)
		if !errors.Is(err, store.ErrTokenCollision) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	l.Info("password reset requested", slog.String("account_id", acct.ID))

	if err := s.Notifier.SendPasswordReset(ctx, acct.Email, token, origin); err != nil {
		l.Error("failed to send password reset email", slog.String("account_id", acct.ID), slog.Any("err", err))
	}
	return nil
}

func (s *AccountService) lookupResetToken(ctx context.Context, accounts store.Accounts, token string) (domain.Account, error) {
	acct, err := accounts.GetAccountByResetToken(ctx, cryptox.FingerprintToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, ErrInvalidToken
	}
	if err != nil {
		return domain.Account{}, err
	}
	if !acct.ResetPending(s.now()) {
		return domain.Account{}, ErrInvalidToken
	}
	return acct, nil
}

// ValidateResetToken reports ErrInvalidToken unless token is an unexpired
// reset token.
func (s *AccountService) ValidateResetToken(ctx context.Context, token string) error {
	_, err := s.lookupResetToken(ctx, s.Store.Accounts(), token)
	return err
}

// ResetPassword sets a new password for the holder of token. Completing a
// reset also proves ownership of the email, so the account becomes verified.
func (s *AccountService) ResetPassword(ctx context.Context, token, password string) error {
	if _, err := s.lookupResetToken(ctx, s.Store.Accounts(), token); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	var id string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		acct, err := s.lookupResetToken(ctx, tx.Accounts(), token)
		if err != nil {
			return err
		}

		now := s.now()
		acct.PasswordHash = hash
		acct.IsVerified = true
		acct.VerificationToken = nil
		acct.ResetToken = nil
		acct.ResetTokenExpiry = nil
		acct.DateUpdated = &now
		id = acct.ID
		return tx.Accounts().UpdateAccount(ctx, acct)
	})
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}

	slogx.FromContext(ctx).Info("password reset", slog.String("account_id", id))
	return nil
}
