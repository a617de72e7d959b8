package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/jackc/pgx/v5"
)

const accountColumns = `id, email, password_hash, title, first_name, last_name,
	location, bio, website, image_url, role, accept_terms, verification_token,
	is_verified, reset_token, reset_token_expiry, date_created, date_updated`

type accountsRepo struct {
	db dbtx
}

func scanAccount(row pgx.Row) (domain.Account, error) {
	var (
		a    domain.Account
		role string
	)
	err := row.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Title, &a.FirstName, &a.LastName,
		&a.Location, &a.Bio, &a.Website, &a.ImageURL, &role, &a.AcceptTerms,
		&a.VerificationToken, &a.IsVerified, &a.ResetToken, &a.ResetTokenExpiry,
		&a.DateCreated, &a.DateUpdated,
	)
	if err != nil {
		return domain.Account{}, err
	}
	a.Role = domain.Role(role)
	a.DateCreated = a.DateCreated.UTC()
	return a, nil
}

func (r *accountsRepo) getOne(ctx context.Context, where string, arg any) (domain.Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where, arg))
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getOne(ctx, `id = $1`, id)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getOne(ctx, `email = $1`, email)
}

func (r *accountsRepo) GetUnverifiedAccountByVerificationToken(ctx context.Context, tokenHash string) (domain.Account, error) {
	return r.getOne(ctx, `verification_token = $1 AND NOT is_verified`, tokenHash)
}

func (r *accountsRepo) GetAccountByResetToken(ctx context.Context, tokenHash string) (domain.Account, error) {
	return r.getOne(ctx, `reset_token = $1`, tokenHash)
}

func (r *accountsRepo) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY date_created, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *accountsRepo) CreateAccount(ctx context.Context, a domain.Account) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		a.ID, a.Email, a.PasswordHash, a.Title, a.FirstName, a.LastName,
		a.Location, a.Bio, a.Website, a.ImageURL, string(a.Role), a.AcceptTerms,
		a.VerificationToken, a.IsVerified, a.ResetToken, a.ResetTokenExpiry,
		a.DateCreated, a.DateUpdated,
	)
	return mapWriteErr(err)
}

func (r *accountsRepo) UpdateAccount(ctx context.Context, a domain.Account) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts SET
			email = $2, password_hash = $3, title = $4, first_name = $5, last_name = $6,
			location = $7, bio = $8, website = $9, image_url = $10, role = $11,
			accept_terms = $12, verification_token = $13, is_verified = $14,
			reset_token = $15, reset_token_expiry = $16, date_updated = $17
		WHERE id = $1`,
		a.ID, a.Email, a.PasswordHash, a.Title, a.FirstName, a.LastName,
		a.Location, a.Bio, a.Website, a.ImageURL, string(a.Role),
		a.AcceptTerms, a.VerificationToken, a.IsVerified,
		a.ResetToken, a.ResetTokenExpiry, a.DateUpdated,
	)
	if err != nil {
		return mapWriteErr(err)
	}
	if tag.RowsAffected() == 0 {
		return mapNotFound(pgx.ErrNoRows)
	}
	return nil
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return mapNotFound(pgx.ErrNoRows)
	}
	return nil
}

func (r *accountsRepo) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE accounts SET reset_token = NULL, reset_token_expiry = NULL
		WHERE reset_token_expiry IS NOT NULL AND reset_token_expiry <= $1`,
		now,
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
