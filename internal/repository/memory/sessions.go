// Package memory provides process-local stores used for local runs without
// postgres and as the fixed category dataset served when the catalog
// database is unreachable.
package memory

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"marketplace/api/internal/ids"
	"marketplace/api/internal/models"
	"marketplace/api/internal/repository"
)

// SessionStore is an append-only arena. Records are never removed; the index
// maps a session id to its slot.
type SessionStore struct {
	mu      sync.RWMutex
	records []models.Session
	index   map[string]int
	now     func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		index: make(map[string]int),
		now:   time.Now,
	}
}

func (s *SessionStore) Create(_ context.Context, input repository.NewSession) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := models.Session{
		ID:               ids.New(),
		UserID:           input.UserID,
		RefreshTokenHash: cloneBytes(input.RefreshTokenHash),
		IPAddress:        input.IPAddress,
		UserAgent:        input.UserAgent,
		CreatedAt:        s.now(),
		ExpiresAt:        input.ExpiresAt,
	}
	s.index[session.ID] = len(s.records)
	s.records = append(s.records, session)
	return copySession(session), nil
}

func (s *SessionStore) FindByID(_ context.Context, id string) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot, ok := s.index[id]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	return copySession(s.records[slot]), nil
}

func (s *SessionStore) FindActiveByRefreshHash(_ context.Context, refreshHash []byte, now time.Time) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.records {
		if session.IsActive(now) && bytes.Equal(session.RefreshTokenHash, refreshHash) {
			return copySession(session), nil
		}
	}
	return models.Session{}, repository.ErrSessionNotFound
}

func (s *SessionStore) RotateRefreshToken(_ context.Context, id string, oldHash []byte, newHash []byte, now time.Time) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.index[id]
	if !ok {
		return models.Session{}, repository.ErrRefreshTokenStale
	}
	session := &s.records[slot]
	if !session.IsActive(now) || !bytes.Equal(session.RefreshTokenHash, oldHash) {
		return models.Session{}, repository.ErrRefreshTokenStale
	}
	session.RefreshTokenHash = cloneBytes(newHash)
	return copySession(*session), nil
}

func (s *SessionStore) MarkLoggedOut(_ context.Context, id string, at time.Time) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, ok := s.index[id]
	if !ok {
		return models.Session{}, repository.ErrSessionNotFound
	}
	session := &s.records[slot]
	if session.LoggedOutAt == nil {
		stamp := at
		session.LoggedOutAt = &stamp
	}
	return copySession(*session), nil
}

func (s *SessionStore) Delete(context.Context, string) error {
	return repository.ErrSessionDeletionNotAllowed
}

func (s *SessionStore) ListByUser(_ context.Context, userID string) ([]models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sessions []models.Session
	for _, session := range s.records {
		if session.UserID == userID {
			sessions = append(sessions, copySession(session))
		}
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// Len reports how many sessions were ever created.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func copySession(s models.Session) models.Session {
	s.RefreshTokenHash = cloneBytes(s.RefreshTokenHash)
	if s.LoggedOutAt != nil {
		at := *s.LoggedOutAt
		s.LoggedOutAt = &at
	}
	return s
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
