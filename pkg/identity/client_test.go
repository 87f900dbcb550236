package identity_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/furnicove/storefront-api/pkg/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUser(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/users/user_2abc", r.URL.Path)
		assert.Equal(t, "Bearer sk_test_123", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "user_2abc",
			"first_name": "Jordan",
			"last_name": "Reyes",
			"image_url": "https://img.example.com/jordan.png",
			"created_at": 1714000000000,
			"email_addresses": [{"email_address": "jordan@example.com"}]
		}`))
	}))
	defer server.Close()

	client := identity.NewClient(server.URL, "sk_test_123")

	profile, err := client.GetUser(context.Background(), "user_2abc")

	require.NoError(t, err)
	assert.Equal(t, "user_2abc", profile.ID)
	assert.Equal(t, "Jordan", profile.FirstName)
	assert.Equal(t, "jordan@example.com", profile.Email)
}

func TestGetUser_NoEmailAddresses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "user_2abc", "first_name": "Jordan", "email_addresses": []}`))
	}))
	defer server.Close()

	client := identity.NewClient(server.URL, "sk_test_123")

	profile, err := client.GetUser(context.Background(), "user_2abc")

	require.NoError(t, err)
	assert.Empty(t, profile.Email)
}

func TestGetUser_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := identity.NewClient(server.URL, "sk_test_123")

	_, err := client.GetUser(context.Background(), "user_missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestGetUser_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := identity.NewClient(server.URL, "sk_test_123")

	_, err := client.GetUser(context.Background(), "user_2abc")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}
