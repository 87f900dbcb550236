package handlers

import (
	"net/http"
	"strconv"

	"github.com/furnicove/storefront-api/internal/api/middleware"
	"github.com/furnicove/storefront-api/internal/errors"
	"github.com/furnicove/storefront-api/internal/models"
	"github.com/furnicove/storefront-api/internal/utils/response"
	"github.com/google/uuid"
)

func claimsFromRequest(w http.ResponseWriter, r *http.Request) (*models.Claims, bool) {

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, errors.UnauthorizedError("Authentication required"))
		return nil, false
	}

	return claims, true
}

func int64PathValue(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {

	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil {
		response.Error(w, errors.BadRequestError("Invalid "+name+" in path"))
		return 0, false
	}

	return id, true
}

func uuidPathValue(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {

	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		response.Error(w, errors.BadRequestError("Invalid "+name+" in path"))
		return uuid.Nil, false
	}

	return id, true
}
