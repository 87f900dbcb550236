package handlers

import (
	"net/http"

	"github.com/furnicove/storefront-api/internal/errors"
	service "github.com/furnicove/storefront-api/internal/services"
	"github.com/furnicove/storefront-api/internal/utils/response"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(s service.UserService) *UserHandler {
	return &UserHandler{userService: s}
}

// GetUser proxies the identity provider's profile lookup for admin
// customer views.
func (h *UserHandler) GetUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		userID := r.PathValue("id")

		if userID == "" {
			response.Error(w, errors.BadRequestError("User ID is required"))
			return
		}

		profile, err := h.userService.GetProfile(r.Context(), userID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, profile)
	}
}
