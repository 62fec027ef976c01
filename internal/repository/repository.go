package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"marketplace/api/internal/models"
)

// DBTX is the subset of *pgxpool.Pool used by the repositories.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetPasswordResetToken(ctx context.Context, id string, tokenHash string, expiresAt time.Time) error
	// ResetPassword consumes a reset token: the password is replaced and the
	// token cleared only if the hash matches an unexpired token.
	ResetPassword(ctx context.Context, tokenHash string, passwordHash string, now time.Time) (models.User, error)
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
	MarkEmailValidated(ctx context.Context, id string) error
	UpdateAddress(ctx context.Context, id string, address models.Address) error
	ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

// NewSession is what a caller supplies; the store allocates the id and
// creation time.
type NewSession struct {
	UserID           string
	RefreshTokenHash []byte
	IPAddress        string
	UserAgent        string
	ExpiresAt        time.Time
}

// SessionStore is append-only: sessions are created once and afterwards only
// logged out or have their refresh token rotated. Delete always fails.
type SessionStore interface {
	Create(ctx context.Context, session NewSession) (models.Session, error)
	FindByID(ctx context.Context, id string) (models.Session, error)
	FindActiveByRefreshHash(ctx context.Context, refreshHash []byte, now time.Time) (models.Session, error)
	RotateRefreshToken(ctx context.Context, id string, oldHash []byte, newHash []byte, now time.Time) (models.Session, error)
	MarkLoggedOut(ctx context.Context, id string, at time.Time) (models.Session, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string) ([]models.Session, error)
}

type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
}

type CompanyStore interface {
	FindByOwner(ctx context.Context, ownerID string) (models.Company, error)
}
