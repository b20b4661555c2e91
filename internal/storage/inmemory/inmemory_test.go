package inmemory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"jobportal/internal/models"
	"jobportal/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) (*Storage, models.User) {
	t.Helper()

	s := New()
	u := models.User{
		ID:          "u-1",
		FullName:    "Ann Example",
		Email:       "a@x.com",
		PhoneNumber: "5550001",
		PassHash:    []byte("hash"),
		Role:        models.RoleStudent,
	}
	require.NoError(t, s.SaveUser(context.Background(), u))

	return s, u
}

func TestSaveUser_Uniqueness(t *testing.T) {
	s, u := seed(t)
	ctx := context.Background()

	dupEmail := u
	dupEmail.ID, dupEmail.PhoneNumber = "u-2", "5550002"
	assert.ErrorIs(t, s.SaveUser(ctx, dupEmail), storage.ErrEmailTaken)

	dupPhone := u
	dupPhone.ID, dupPhone.Email = "u-3", "b@x.com"
	err := s.SaveUser(ctx, dupPhone)
	assert.ErrorIs(t, err, storage.ErrPhoneTaken)
	assert.ErrorIs(t, err, storage.ErrUserExists)
}

func TestUserByIdentifier(t *testing.T) {
	s, u := seed(t)
	ctx := context.Background()

	got, err := s.UserByIdentifier(ctx, u.Email, models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = s.UserByIdentifier(ctx, u.PhoneNumber, models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.UserByIdentifier(ctx, u.Email, models.RoleRecruiter)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestRotateRefreshToken(t *testing.T) {
	s, u := seed(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.RotateRefreshToken(ctx, u.ID, "", "r1"), storage.ErrRefreshTokenStale)

	require.NoError(t, s.SetRefreshToken(ctx, u.ID, "r1"))
	require.NoError(t, s.RotateRefreshToken(ctx, u.ID, "r1", "r2"))
	assert.ErrorIs(t, s.RotateRefreshToken(ctx, u.ID, "r1", "r3"), storage.ErrRefreshTokenStale)

	got, err := s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "r2", got.RefreshToken)
}

func TestRotateRefreshToken_Concurrent(t *testing.T) {
	s, u := seed(t)
	ctx := context.Background()
	require.NoError(t, s.SetRefreshToken(ctx, u.ID, "r1"))

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)

	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if s.RotateRefreshToken(ctx, u.ID, "r1", "next") == nil {
				winners.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
}

func TestResetToken_Lifecycle(t *testing.T) {
	s, u := seed(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.SetResetToken(ctx, u.ID, "tok", now.Add(10*time.Minute)))

	got, err := s.UserByResetToken(ctx, "tok", now)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = s.UserByResetToken(ctx, "tok", now.Add(11*time.Minute))
	assert.ErrorIs(t, err, storage.ErrResetTokenNotFound)

	id, err := s.ConsumeResetToken(ctx, "tok", []byte("new"), now)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	_, err = s.ConsumeResetToken(ctx, "tok", []byte("again"), now)
	assert.ErrorIs(t, err, storage.ErrResetTokenNotFound)

	got, err = s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got.PassHash)

	tok, exp := s.ResetToken(u.ID)
	assert.Empty(t, tok)
	assert.True(t, exp.IsZero())
}

func TestClearResetToken_OnlyMatching(t *testing.T) {
	s, u := seed(t)
	ctx := context.Background()

	require.NoError(t, s.SetResetToken(ctx, u.ID, "newer", time.Now().Add(time.Minute)))
	require.NoError(t, s.ClearResetToken(ctx, u.ID, "older"))

	tok, _ := s.ResetToken(u.ID)
	assert.Equal(t, "newer", tok)

	require.NoError(t, s.ClearResetToken(ctx, u.ID, "newer"))
	tok, _ = s.ResetToken(u.ID)
	assert.Empty(t, tok)
}
