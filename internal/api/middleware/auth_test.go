package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/furnicove/storefront-api/internal/api/middleware"
	"github.com/furnicove/storefront-api/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testJWTKey = []byte("test-signing-key")

func signedToken(t *testing.T, claims *models.Claims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testJWTKey)
	require.NoError(t, err)

	return token
}

func userClaims(role string) *models.Claims {
	return &models.Claims{
		UserID: "user_2abc",
		Email:  "jordan@example.com",
		Name:   "Jordan Reyes",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	m := middleware.NewAuthMiddleware(testJWTKey)

	var gotClaims *models.Claims

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = middleware.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, userClaims("")))
	rec := httptest.NewRecorder()

	m.Authenticate(next)(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotClaims)
	assert.Equal(t, "user_2abc", gotClaims.UserID)
	assert.False(t, gotClaims.IsAdmin())
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	m := middleware.NewAuthMiddleware(testJWTKey)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()

	m.Authenticate(next)(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	m := middleware.NewAuthMiddleware(testJWTKey)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Token abcdef")
	rec := httptest.NewRecorder()

	m.Authenticate(next)(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_WrongKey(t *testing.T) {
	m := middleware.NewAuthMiddleware(testJWTKey)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, userClaims("")).
		SignedString([]byte("some-other-key"))
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	m.Authenticate(next)(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	m := middleware.NewAuthMiddleware(testJWTKey)

	claims := userClaims("")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, claims))
	rec := httptest.NewRecorder()

	m.Authenticate(next)(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdmin_NonAdminForbidden(t *testing.T) {
	m := middleware.NewAuthMiddleware(testJWTKey)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, userClaims("")))
	rec := httptest.NewRecorder()

	m.Authenticate(m.RequireAdmin(next))(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireAdmin_AdminPasses(t *testing.T) {
	m := middleware.NewAuthMiddleware(testJWTKey)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, userClaims(models.RoleAdmin)))
	rec := httptest.NewRecorder()

	m.Authenticate(m.RequireAdmin(next))(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin_WithoutAuthenticate(t *testing.T) {
	m := middleware.NewAuthMiddleware(testJWTKey)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/orders", nil)
	rec := httptest.NewRecorder()

	m.RequireAdmin(next)(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
