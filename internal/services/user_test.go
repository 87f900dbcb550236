package service_test

import (
	"context"
	"testing"

	cachemocks "github.com/furnicove/storefront-api/internal/cache/mocks"
	"github.com/furnicove/storefront-api/internal/errors"
	"github.com/furnicove/storefront-api/internal/models"
	service "github.com/furnicove/storefront-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockIdentityClient struct {
	mock.Mock
}

func (m *mockIdentityClient) GetUser(ctx context.Context, userID string) (*models.UserProfile, error) {
	args := m.Called(ctx, userID)

	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*models.UserProfile), args.Error(1)
}

func TestGetProfile_FetchesAndCaches(t *testing.T) {
	client := new(mockIdentityClient)
	c := new(cachemocks.MockCache)
	svc := service.NewUserService(client, c)

	profile := &models.UserProfile{ID: testUserID, Email: "jordan@example.com", FirstName: "Jordan"}

	c.On("Get", mock.Anything, "user:"+testUserID, mock.Anything).Return(false, nil)
	client.On("GetUser", mock.Anything, testUserID).Return(profile, nil)
	c.On("Set", mock.Anything, "user:"+testUserID, profile, mock.Anything).Return(nil)

	got, err := svc.GetProfile(context.Background(), testUserID)

	require.NoError(t, err)
	assert.Equal(t, profile, got)

	c.AssertCalled(t, "Set", mock.Anything, "user:"+testUserID, profile, mock.Anything)
}

func TestGetProfile_CacheHitSkipsProvider(t *testing.T) {
	client := new(mockIdentityClient)
	c := new(cachemocks.MockCache)
	svc := service.NewUserService(client, c)

	c.On("Get", mock.Anything, "user:"+testUserID, mock.Anything).
		Run(func(args mock.Arguments) {
			dest := args.Get(2).(*models.UserProfile)
			dest.ID = testUserID
			dest.Email = "jordan@example.com"
		}).
		Return(true, nil)

	got, err := svc.GetProfile(context.Background(), testUserID)

	require.NoError(t, err)
	assert.Equal(t, "jordan@example.com", got.Email)

	client.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
}

func TestGetProfile_ProviderFailure(t *testing.T) {
	client := new(mockIdentityClient)
	c := new(cachemocks.MockCache)
	svc := service.NewUserService(client, c)

	c.On("Get", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)
	client.On("GetUser", mock.Anything, testUserID).Return(nil, assert.AnError)

	_, err := svc.GetProfile(context.Background(), testUserID)

	require.Error(t, err)

	appErr, ok := errors.IsAppError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeThirdPartyError, appErr.Code)
}
