package service

import (
	"context"

	"github.com/furnicove/storefront-api/internal/cache"
	"github.com/furnicove/storefront-api/internal/errors"
	"github.com/furnicove/storefront-api/internal/models"
	"github.com/furnicove/storefront-api/pkg/identity"
)

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)
}

type userService struct {
	identity identity.Client
	cache    cache.Cache
}

func NewUserService(client identity.Client, c cache.Cache) UserService {
	return &userService{identity: client, cache: c}
}

// GetProfile looks a user up at the identity provider, with a short cache
// in front so repeated admin lookups don't hammer the provider's API.
func (s *userService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {

	key := cache.Key(cache.UserProfilePrefix, userID)

	var profile models.UserProfile

	if hit, err := s.cache.Get(ctx, key, &profile); err == nil && hit {
		return &profile, nil
	}

	fetched, err := s.identity.GetUser(ctx, userID)
	if err != nil {
		return nil, errors.ThirdPartyError("Failed to fetch user profile").WithError(err)
	}

	s.cache.Set(ctx, key, fetched, 0)

	return fetched, nil
}
