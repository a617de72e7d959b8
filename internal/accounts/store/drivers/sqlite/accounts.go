package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
)

const accountColumns = `id, email, password_hash, title, first_name, last_name,
	location, bio, website, image_url, role, accept_terms, verification_token,
	is_verified, reset_token, reset_token_expiry, date_created, date_updated`

type accountsRepo struct {
	db dbtx
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		a            domain.Account
		role         string
		verification sql.NullString
		reset        sql.NullString
		expiry       sql.NullTime
		updated      sql.NullTime
	)
	err := row.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Title, &a.FirstName, &a.LastName,
		&a.Location, &a.Bio, &a.Website, &a.ImageURL, &role, &a.AcceptTerms,
		&verification, &a.IsVerified, &reset, &expiry, &a.DateCreated, &updated,
	)
	if err != nil {
		return domain.Account{}, err
	}

	a.Role = domain.Role(role)
	a.VerificationToken = mapNullStringPtr(verification)
	a.ResetToken = mapNullStringPtr(reset)
	a.ResetTokenExpiry = mapNullTimePtr(expiry)
	a.DateCreated = a.DateCreated.UTC()
	a.DateUpdated = mapNullTimePtr(updated)
	return a, nil
}

func (r *accountsRepo) getOne(ctx context.Context, where string, arg any) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+accountColumns+` FROM accounts WHERE `+where, arg)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) GetAccountByID(ctx context.Context, id string) (domain.Account, error) {
	return r.getOne(ctx, `id = ?`, id)
}

func (r *accountsRepo) GetAccountByEmail(ctx context.Context, email string) (domain.Account, error) {
	return r.getOne(ctx, `email = ?`, email)
}

func (r *accountsRepo) GetUnverifiedAccountByVerificationToken(ctx context.Context, tokenHash string) (domain.Account, error) {
	return r.getOne(ctx, `verification_token = ? AND is_verified = 0`, tokenHash)
}

func (r *accountsRepo) GetAccountByResetToken(ctx context.Context, tokenHash string) (domain.Account, error) {
	return r.getOne(ctx, `reset_token = ?`, tokenHash)
}

func (r *accountsRepo) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+accountColumns+` FROM accounts ORDER BY date_created, id`)
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
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Email, a.PasswordHash, a.Title, a.FirstName, a.LastName,
		a.Location, a.Bio, a.Website, a.ImageURL, string(a.Role), a.AcceptTerms,
		mapOptionalString(a.VerificationToken), a.IsVerified,
		mapOptionalString(a.ResetToken), mapOptionalTime(a.ResetTokenExpiry),
		a.DateCreated.UTC(), mapOptionalTime(a.DateUpdated),
	)
	return mapWriteErr(err)
}

func (r *accountsRepo) UpdateAccount(ctx context.Context, a domain.Account) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET
			email = ?, password_hash = ?, title = ?, first_name = ?, last_name = ?,
			location = ?, bio = ?, website = ?, image_url = ?, role = ?,
			accept_terms = ?, verification_token = ?, is_verified = ?,
			reset_token = ?, reset_token_expiry = ?, date_updated = ?
		WHERE id = ?`,
		a.Email, a.PasswordHash, a.Title, a.FirstName, a.LastName,
		a.Location, a.Bio, a.Website, a.ImageURL, string(a.Role),
		a.AcceptTerms, mapOptionalString(a.VerificationToken), a.IsVerified,
		mapOptionalString(a.ResetToken), mapOptionalTime(a.ResetTokenExpiry),
		mapOptionalTime(a.DateUpdated),
		a.ID,
	)
	if err != nil {
		return mapWriteErr(err)
	}
	return mapNotFound(requireOneRow(res))
}

func (r *accountsRepo) DeleteAccount(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return mapNotFound(requireOneRow(res))
}

func (r *accountsRepo) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE accounts SET reset_token = NULL, reset_token_expiry = NULL
		WHERE reset_token_expiry IS NOT NULL AND reset_token_expiry <= ?`,
		now.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
