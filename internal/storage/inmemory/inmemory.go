// Package inmemory is a process-local credential store with the same
// contract as the postgres repository. Data is lost on restart.
package inmemory

import (
	"context"
	"sync"
	"time"

	"jobportal/internal/models"
	"jobportal/internal/storage"
)

type record struct {
	user        models.User
	resetToken  string
	resetExpiry time.Time
	lastLoginAt time.Time
}

type Storage struct {
	mu    sync.RWMutex
	users map[string]*record
}

func New() *Storage {
	return &Storage{users: make(map[string]*record)}
}

func (s *Storage) SaveUser(_ context.Context, user models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return storage.ErrUserExists
	}

	for _, r := range s.users {
		if r.user.Email == user.Email {
			return storage.ErrEmailTaken
		}
		if r.user.PhoneNumber == user.PhoneNumber {
			return storage.ErrPhoneTaken
		}
	}

	u := user
	u.PassHash = append([]byte(nil), user.PassHash...)
	s.users[user.ID] = &record{user: u}

	return nil
}

func (s *Storage) UserByIdentifier(_ context.Context, identifier string, role models.Role) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.users {
		if (r.user.Email == identifier || r.user.PhoneNumber == identifier) && r.user.Role == role {
			return r.user, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (s *Storage) UserByID(_ context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}

	return r.user, nil
}

func (s *Storage) UserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.users {
		if r.user.Email == email {
			return r.user, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

func (s *Storage) UserByResetToken(_ context.Context, token string, now time.Time) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r := s.findReset(token, now); r != nil {
		return r.user, nil
	}

	return models.User{}, storage.ErrResetTokenNotFound
}

func (s *Storage) SetRefreshToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}

	r.user.RefreshToken = token

	return nil
}

func (s *Storage) RotateRefreshToken(_ context.Context, userID, oldToken, newToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.users[userID]
	if !ok || r.user.RefreshToken == "" || r.user.RefreshToken != oldToken {
		return storage.ErrRefreshTokenStale
	}

	r.user.RefreshToken = newToken

	return nil
}

func (s *Storage) ClearRefreshToken(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.users[userID]; ok {
		r.user.RefreshToken = ""
	}

	return nil
}

func (s *Storage) UpdateLastLogin(_ context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.users[userID]; ok {
		r.lastLoginAt = at
	}

	return nil
}

func (s *Storage) UpdatePassword(_ context.Context, userID string, passHash []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}

	r.user.PassHash = append([]byte(nil), passHash...)

	return nil
}

func (s *Storage) SetResetToken(_ context.Context, userID, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}

	r.resetToken = token
	r.resetExpiry = expiry

	return nil
}

func (s *Storage) ClearResetToken(_ context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.users[userID]; ok && r.resetToken == token {
		r.resetToken = ""
		r.resetExpiry = time.Time{}
	}

	return nil
}

func (s *Storage) ConsumeResetToken(_ context.Context, token string, passHash []byte, now time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.findReset(token, now)
	if r == nil {
		return "", storage.ErrResetTokenNotFound
	}

	r.user.PassHash = append([]byte(nil), passHash...)
	r.resetToken = ""
	r.resetExpiry = time.Time{}

	return r.user.ID, nil
}

// LastLogin reports when the user last logged in; zero if never.
func (s *Storage) LastLogin(userID string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.users[userID]; ok {
		return r.lastLoginAt
	}

	return time.Time{}
}

// ResetToken exposes the pending reset token of a user.
func (s *Storage) ResetToken(userID string) (string, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.users[userID]; ok {
		return r.resetToken, r.resetExpiry
	}

	return "", time.Time{}
}

func (s *Storage) Close() {}

// findReset must be called with mu held.
func (s *Storage) findReset(token string, now time.Time) *record {
	if token == "" {
		return nil
	}

	for _, r := range s.users {
		if r.resetToken == token && r.resetExpiry.After(now) {
			return r
		}
	}

	return nil
}
