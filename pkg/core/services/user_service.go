package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/wadjakorntonsri/gift-bundle/pkg/config"
	"github.com/wadjakorntonsri/gift-bundle/pkg/core/domain"
	"github.com/wadjakorntonsri/gift-bundle/pkg/logging"
	"github.com/wadjakorntonsri/gift-bundle/pkg/ports"
)

// UserService resolves authenticated principals. Users are cached by ID;
// every write through this service evicts the entry.
type UserService struct {
	repo   ports.UserRepository
	cache  *lru.Cache
	logger logging.Logger
	now    func() time.Time
}

func NewUserService(repo ports.UserRepository, cacheSize int, logger logging.Logger) (*UserService, error) {
	if cacheSize <= 0 {
		cacheSize = config.DefaultUserCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &UserService{
		repo:   repo,
		cache:  cache,
		logger: logger.Named("users"),
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *UserService) Authenticate(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsDeleted {
		return nil, domain.ErrAlreadyDeletedUser
	}
	return user, nil
}

// LoginWithKakao finds or creates the account behind a Kakao profile.
func (s *UserService) LoginWithKakao(ctx context.Context, profile *domain.KakaoProfile) (*domain.User, error) {
	user, err := s.repo.GetUserByKakaoID(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("load user by kakao id: %w", err)
	}

	now := s.now()
	if user == nil {
		user = &domain.User{
			ID:              uuid.NewString(),
			KakaoID:         profile.ID,
			Nickname:        profile.Nickname,
			ProfileImageURL: profile.ProfileImageURL,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.repo.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		s.logger.Info("user registered", map[string]interface{}{"user_id": user.ID})
		return user, nil
	}

	if user.IsDeleted {
		return nil, domain.ErrAlreadyDeletedUser
	}

	if user.Nickname != profile.Nickname || user.ProfileImageURL != profile.ProfileImageURL {
		user.Nickname = profile.Nickname
		user.ProfileImageURL = profile.ProfileImageURL
		user.UpdatedAt = now
		if err := s.repo.UpdateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}
		s.cache.Remove(user.ID)
	}
	return user, nil
}

// Withdraw soft-deletes the account.
func (s *UserService) Withdraw(ctx context.Context, userID string) error {
	user, err := s.Authenticate(ctx, userID)
	if err != nil {
		return err
	}

	now := s.now()
	user.IsDeleted = true
	user.DeletedAt = &now
	user.UpdatedAt = now
	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.cache.Remove(userID)

	s.logger.Info("user withdrew", map[string]interface{}{"user_id": userID})
	return nil
}

func (s *UserService) get(ctx context.Context, userID string) (*domain.User, error) {
	if cached, ok := s.cache.Get(userID); ok {
		u := *cached.(*domain.User)
		return &u, nil
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	u := *user
	s.cache.Add(userID, &u)
	return user, nil
}
