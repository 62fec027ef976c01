package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"marketplace/api/internal/ids"
	"marketplace/api/internal/models"
)

const sessionColumns = `id, user_id, refresh_token_hash, ip_address, user_agent, created_at, expires_at, logged_out_at`

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, input NewSession) (models.Session, error) {
	const query = `
		INSERT INTO user_sessions (
			id, user_id, refresh_token_hash, ip_address, user_agent, created_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, NOW(), $6
		)
		RETURNING ` + sessionColumns

	row := r.db.QueryRow(ctx, query,
		ids.New(),
		input.UserID,
		input.RefreshTokenHash,
		input.IPAddress,
		input.UserAgent,
		input.ExpiresAt,
	)
	session, err := scanSession(row)
	if err != nil {
		return models.Session{}, Classify("create session", err)
	}
	return session, nil
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (models.Session, error) {
	const query = `SELECT ` + sessionColumns + ` FROM user_sessions WHERE id = $1`

	session, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, Classify("find session", err)
	}
	return session, nil
}

func (r *SessionRepository) FindActiveByRefreshHash(ctx context.Context, refreshHash []byte, now time.Time) (models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM user_sessions
		WHERE refresh_token_hash = $1
		  AND logged_out_at IS NULL
		  AND expires_at > $2
	`

	session, err := scanSession(r.db.QueryRow(ctx, query, refreshHash, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, Classify("find session by refresh token", err)
	}
	return session, nil
}

// RotateRefreshToken swaps the refresh token hash only while the stored hash
// still equals oldHash, so two concurrent refreshes with the same token
// cannot both succeed.
func (r *SessionRepository) RotateRefreshToken(ctx context.Context, id string, oldHash []byte, newHash []byte, now time.Time) (models.Session, error) {
	const query = `
		UPDATE user_sessions
		SET refresh_token_hash = $3
		WHERE id = $1
		  AND refresh_token_hash = $2
		  AND logged_out_at IS NULL
		  AND expires_at > $4
		RETURNING ` + sessionColumns

	session, err := scanSession(r.db.QueryRow(ctx, query, id, oldHash, newHash, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrRefreshTokenStale
		}
		return models.Session{}, Classify("rotate refresh token", err)
	}
	return session, nil
}

// MarkLoggedOut stamps logged_out_at once; later calls return the record unchanged.
func (r *SessionRepository) MarkLoggedOut(ctx context.Context, id string, at time.Time) (models.Session, error) {
	const query = `
		UPDATE user_sessions
		SET logged_out_at = COALESCE(logged_out_at, $2)
		WHERE id = $1
		RETURNING ` + sessionColumns

	session, err := scanSession(r.db.QueryRow(ctx, query, id, at))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Session{}, ErrSessionNotFound
		}
		return models.Session{}, Classify("mark session logged out", err)
	}
	return session, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	return ErrSessionDeletionNotAllowed
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID string) ([]models.Session, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM user_sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, Classify("list sessions", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, Classify("scan session", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, Classify("list sessions", err)
	}
	return sessions, nil
}

func scanSession(row pgx.Row) (models.Session, error) {
	var session models.Session
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.RefreshTokenHash,
		&session.IPAddress,
		&session.UserAgent,
		&session.CreatedAt,
		&session.ExpiresAt,
		&session.LoggedOutAt,
	)
	return session, err
}
