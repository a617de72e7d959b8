package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

// Notifier sends the account lifecycle emails. Implementations may deliver
// asynchronously; the service only logs returned errors.
type Notifier interface {
	SendVerification(ctx context.Context, to, token, origin string) error
	SendAlreadyRegistered(ctx context.Context, to, origin string) error
	SendPasswordReset(ctx context.Context, to, token, origin string) error
}

// TokenIssuer mints bearer tokens for authenticated accounts.
type TokenIssuer interface {
	Issue(accountID string, now time.Time) (string, jwtx.Claims, error)
}
