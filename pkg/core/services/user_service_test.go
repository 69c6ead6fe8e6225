package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
	"github.com/wadjakorntonsri/gift-bundle/pkg/logging"
)

func newTestUserService(t *testing.T) *UserService {
	t.Helper()
	s, err := NewUserService(newTestRepo(t), 16, logging.NewNop())
	require.NoError(t, err)
	return s
}

func TestLoginWithKakao(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	first, err := s.LoginWithKakao(ctx, &domain.KakaoProfile{ID: 7, Nickname: "jisoo"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	// Cache the principal, then change the profile.
	_, err = s.Authenticate(ctx, first.ID)
	require.NoError(t, err)

	again, err := s.LoginWithKakao(ctx, &domain.KakaoProfile{ID: 7, Nickname: "jisoo kim", ProfileImageURL: "https://k/p.png"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	u, err := s.Authenticate(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "jisoo kim", u.Nickname)
	assert.Equal(t, "https://k/p.png", u.ProfileImageURL)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	s := newTestUserService(t)
	_, err := s.Authenticate(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestWithdraw(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	u, err := s.LoginWithKakao(ctx, &domain.KakaoProfile{ID: 9, Nickname: "haneul"})
	require.NoError(t, err)
	_, err = s.Authenticate(ctx, u.ID)
	require.NoError(t, err)

	require.NoError(t, s.Withdraw(ctx, u.ID))

	_, err = s.Authenticate(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyDeletedUser)

	err = s.Withdraw(ctx, u.ID)
	assert.True(t, errors.Is(err, domain.ErrAlreadyDeletedUser))

	_, err = s.LoginWithKakao(ctx, &domain.KakaoProfile{ID: 9, Nickname: "haneul"})
	assert.ErrorIs(t, err, domain.ErrAlreadyDeletedUser)
}

func TestAuthenticateReturnsCopies(t *testing.T) {
	s := newTestUserService(t)
	ctx := context.Background()

	u, err := s.LoginWithKakao(ctx, &domain.KakaoProfile{ID: 11, Nickname: "dana"})
	require.NoError(t, err)

	a, err := s.Authenticate(ctx, u.ID)
	require.NoError(t, err)
	a.Nickname = "mutated"

	b, err := s.Authenticate(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "dana", b.Nickname)
}
