package memory

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"marketplace/api/internal/models"
	"marketplace/api/internal/repository"
)

var errDuplicateUser = errors.New("username or email already exists")

type UserStore struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewUserStore(users ...models.User) *UserStore {
	s := &UserStore{users: make(map[string]models.User, len(users))}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *UserStore) Create(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username || strings.EqualFold(existing.Email, user.Email) {
			return errDuplicateUser
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	s.users[user.ID] = user
	return nil
}

func (s *UserStore) FindByUsername(_ context.Context, username string) (models.User, error) {
	return s.find(func(u models.User) bool { return u.Username == username })
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	return s.find(func(u models.User) bool { return strings.EqualFold(u.Email, email) })
}

func (s *UserStore) GetByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return user, nil
}

func (s *UserStore) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	return s.update(id, func(u *models.User) {
		stamp := at
		u.LastLoginAt = &stamp
	})
}

func (s *UserStore) SetPasswordResetToken(_ context.Context, id string, tokenHash string, expiresAt time.Time) error {
	return s.update(id, func(u *models.User) {
		hash, exp := tokenHash, expiresAt
		u.PasswordResetTokenHash = &hash
		u.PasswordResetExpiresAt = &exp
	})
}

func (s *UserStore) ResetPassword(_ context.Context, tokenHash string, passwordHash string, now time.Time) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, u := range s.users {
		if u.Deleted || !u.HasActiveResetToken(now) || *u.PasswordResetTokenHash != tokenHash {
			continue
		}
		u.PasswordHash = passwordHash
		u.PasswordResetTokenHash = nil
		u.PasswordResetExpiresAt = nil
		s.users[id] = u
		return u, nil
	}
	return models.User{}, repository.ErrResetTokenInvalid
}

func (s *UserStore) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	return s.update(id, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (s *UserStore) MarkEmailValidated(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	if u.EmailValidated {
		return repository.ErrEmailAlreadyValidated
	}
	u.EmailValidated = true
	s.users[id] = u
	return nil
}

func (s *UserStore) UpdateAddress(_ context.Context, id string, address models.Address) error {
	return s.update(id, func(u *models.User) { u.Address = address })
}

func (s *UserStore) ClearExpiredResetTokens(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cleared int64
	for id, u := range s.users {
		if u.PasswordResetExpiresAt != nil && !now.Before(*u.PasswordResetExpiresAt) {
			u.PasswordResetTokenHash = nil
			u.PasswordResetExpiresAt = nil
			s.users[id] = u
			cleared++
		}
	}
	return cleared, nil
}

func (s *UserStore) find(match func(models.User) bool) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (s *UserStore) update(id string, apply func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	apply(&u)
	s.users[id] = u
	return nil
}
