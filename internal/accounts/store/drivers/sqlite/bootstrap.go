package sqlite

import (
	"context"
	"time"
)

type bootstrapRepo struct {
	db dbtx
}

func (r *bootstrapRepo) ClaimFirstAccount(ctx context.Context, accountID string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO bootstrap (id, account_id, claimed_at) VALUES (1, ?, ?)
		ON CONFLICT (id) DO NOTHING`,
		accountID, at.UTC(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
