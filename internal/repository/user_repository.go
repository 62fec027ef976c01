package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"marketplace/api/internal/models"
)

const userColumns = `id, username, email, password_hash, first_name, last_name, role, email_validated, deleted,
	password_reset_token_hash, password_reset_expires_at, created_at, last_login_at,
	street, city, postal_code, country`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user models.User) error {
	const query = `
		INSERT INTO users (
			id, username, email, password_hash, first_name, last_name, role, email_validated, deleted, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, FALSE, NOW()
		)
	`

	_, err := r.db.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Role,
		user.EmailValidated,
	)
	return Classify("create user", err)
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.queryOne(ctx, "find user by username", query, username)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return r.queryOne(ctx, "find user by email", query, email)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.queryOne(ctx, "get user", query, id)
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE users SET last_login_at = $2 WHERE id = $1`
	return r.execOne(ctx, "update last login", query, id, at)
}

func (r *UserRepository) SetPasswordResetToken(ctx context.Context, id string, tokenHash string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET password_reset_token_hash = $2, password_reset_expires_at = $3
		WHERE id = $1
	`
	return r.execOne(ctx, "set password reset token", query, id, tokenHash, expiresAt)
}

func (r *UserRepository) ResetPassword(ctx context.Context, tokenHash string, passwordHash string, now time.Time) (models.User, error) {
	const query = `
		UPDATE users
		SET password_hash = $2,
		    password_reset_token_hash = NULL,
		    password_reset_expires_at = NULL
		WHERE password_reset_token_hash = $1
		  AND password_reset_expires_at > $3
		  AND NOT deleted
		RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, tokenHash, passwordHash, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrResetTokenInvalid
		}
		return models.User{}, Classify("reset password", err)
	}
	return user, nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	const query = `UPDATE users SET password_hash = $2 WHERE id = $1`
	return r.execOne(ctx, "update password", query, id, passwordHash)
}

// MarkEmailValidated flips the flag only when it is still false.
func (r *UserRepository) MarkEmailValidated(ctx context.Context, id string) error {
	const query = `UPDATE users SET email_validated = TRUE WHERE id = $1 AND NOT email_validated`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return Classify("mark email validated", err)
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrEmailAlreadyValidated
	}
	return nil
}

func (r *UserRepository) UpdateAddress(ctx context.Context, id string, address models.Address) error {
	const query = `
		UPDATE users
		SET street = $2, city = $3, postal_code = $4, country = $5
		WHERE id = $1
	`
	return r.execOne(ctx, "update address", query, id, address.Street, address.City, address.PostalCode, address.Country)
}

func (r *UserRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	const query = `
		UPDATE users
		SET password_reset_token_hash = NULL, password_reset_expires_at = NULL
		WHERE password_reset_expires_at IS NOT NULL AND password_reset_expires_at <= $1
	`
	cmd, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, Classify("clear expired reset tokens", err)
	}
	return cmd.RowsAffected(), nil
}

func (r *UserRepository) queryOne(ctx context.Context, op string, query string, args ...any) (models.User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, Classify(op, err)
	}
	return user, nil
}

func (r *UserRepository) execOne(ctx context.Context, op string, query string, args ...any) error {
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return Classify(op, err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.EmailValidated,
		&user.Deleted,
		&user.PasswordResetTokenHash,
		&user.PasswordResetExpiresAt,
		&user.CreatedAt,
		&user.LastLoginAt,
		&user.Address.Street,
		&user.Address.City,
		&user.Address.PostalCode,
		&user.Address.Country,
	)
	return user, err
}
