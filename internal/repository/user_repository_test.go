package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/api/internal/models"
)

var userCols = []string{
	"id", "username", "email", "password_hash", "first_name", "last_name", "role", "email_validated", "deleted",
	"password_reset_token_hash", "password_reset_expires_at", "created_at", "last_login_at",
	"street", "city", "postal_code", "country",
}

func userRow(rows *pgxmock.Rows, id string, tokenHash *string, expires *time.Time) *pgxmock.Rows {
	return rows.AddRow(
		id, "alice", "alice@example.com", "$argon2id$digest", "Alice", "Martin", models.UserRoleSeller, true, false,
		tokenHash, expires, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), nil,
		"1 Main St", "Montreal", "H2X 1Y4", "CA",
	)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "matches case-insensitively",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`WHERE lower\(email\) = lower\(\$1\)`).
					WithArgs("Alice@Example.com").
					WillReturnRows(userRow(pgxmock.NewRows(userCols), "u-1", nil, nil))
			},
		},
		{
			name: "unknown email",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`WHERE lower\(email\) = lower\(\$1\)`).
					WithArgs("Alice@Example.com").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			user, err := NewUserRepository(mock).FindByEmail(context.Background(), "Alice@Example.com")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "u-1", user.ID)
				assert.Equal(t, models.UserRoleSeller, user.Role)
				assert.Equal(t, "Montreal", user.Address.City)
				assert.Nil(t, user.LastLoginAt)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_ResetPassword(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("consumes a live token", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SET password_hash = \$2`).
			WithArgs("token-hash", "new-digest", now).
			WillReturnRows(userRow(pgxmock.NewRows(userCols), "u-1", nil, nil))

		user, err := NewUserRepository(mock).ResetPassword(context.Background(), "token-hash", "new-digest", now)
		require.NoError(t, err)
		assert.Equal(t, "u-1", user.ID)
		assert.Nil(t, user.PasswordResetTokenHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no matching token", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`SET password_hash = \$2`).
			WithArgs("token-hash", "new-digest", now).
			WillReturnError(pgx.ErrNoRows)

		_, err = NewUserRepository(mock).ResetPassword(context.Background(), "token-hash", "new-digest", now)
		assert.ErrorIs(t, err, ErrResetTokenInvalid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_MarkEmailValidated(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   error
	}{
		{
			name: "flips flag",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`SET email_validated = TRUE`).
					WithArgs("u-1").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "already validated",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`SET email_validated = TRUE`).
					WithArgs("u-1").
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				mock.ExpectQuery(`FROM users WHERE id = \$1`).
					WithArgs("u-1").
					WillReturnRows(userRow(pgxmock.NewRows(userCols), "u-1", nil, nil))
			},
			wantErr: ErrEmailAlreadyValidated,
		},
		{
			name: "unknown user",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`SET email_validated = TRUE`).
					WithArgs("u-1").
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
				mock.ExpectQuery(`FROM users WHERE id = \$1`).
					WithArgs("u-1").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()
			tt.setupMock(mock)

			err = NewUserRepository(mock).MarkEmailValidated(context.Background(), "u-1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUserRepository_UpdatePasswordUnknownUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`UPDATE users SET password_hash = \$2 WHERE id = \$1`).
		WithArgs("ghost", "digest").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = NewUserRepository(mock).UpdatePassword(context.Background(), "ghost", "digest")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_ClearExpiredResetTokens(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectExec(`password_reset_expires_at <= \$1`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	n, err := NewUserRepository(mock).ClearExpiredResetTokens(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	mock.ExpectExec(`password_reset_expires_at <= \$1`).
		WithArgs(now).
		WillReturnError(errors.New("deadlock detected"))
	_, err = NewUserRepository(mock).ClearExpiredResetTokens(context.Background(), now)
	assert.Equal(t, KindUnknown, KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
