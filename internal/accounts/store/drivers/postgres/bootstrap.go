package postgres

import (
	"context"
	"time"
)

type bootstrapRepo struct {
	db dbtx
}

func (r *bootstrapRepo) ClaimFirstAccount(ctx context.Context, accountID string, at time.Time) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO bootstrap (id, account_id, claimed_at) VALUES (1, $1, $2)
		ON CONFLICT (id) DO NOTHING`,
		accountID, at,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
