package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
)

type UserHandler struct {
	users   domain.UserService
	recipes domain.RecipeService
	auth    *Authenticator
	logger  logger.Logger
}

type updateProfileRequest struct {
	FullName     *string `json:"full_name" validate:"omitempty,max=100"`
	Bio          *string `json:"bio" validate:"omitempty,max=500"`
	ProfileImage *string `json:"profile_image"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func NewUserHandler(users domain.UserService, recipes domain.RecipeService, auth *Authenticator, logger logger.Logger) *UserHandler {
	return &UserHandler{
		users:   users,
		recipes: recipes,
		auth:    auth,
		logger:  logger,
	}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context(), currentUser(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) GetUserByUsername(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByUsername(r.Context(), chi.URLParam(r, "username"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req updateProfileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.users.UpdateProfile(r.Context(), currentUser(r), domain.ProfileUpdate{
		FullName:     req.FullName,
		Bio:          req.Bio,
		ProfileImage: req.ProfileImage,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	role, err := domain.ParseRole(req.Role)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.users.UpdateRole(r.Context(), currentUser(r), chi.URLParam(r, "id"), role)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	active, err := h.users.ToggleActive(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	state := "deactivated"
	if active {
		state = "activated"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"is_active": active,
		"message":   fmt.Sprintf("User %s successfully", state),
	})
}

func (h *UserHandler) ToggleFollow(w http.ResponseWriter, r *http.Request) {
	following, err := h.users.ToggleFollow(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	message := "Unfollowed"
	if following {
		message = "Following"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"following": following, "message": message})
}

func (h *UserHandler) IsFollowing(w http.ResponseWriter, r *http.Request) {
	following, err := h.users.IsFollowing(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"following": following})
}

func (h *UserHandler) Followers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.Followers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Following(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.Following(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) SavedRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipes.SavedRecipes(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *UserHandler) Purchases(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.recipes.UserPurchases(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/users", func(r chi.Router) {
		r.Get("/{id}", h.GetUser)
		r.Get("/username/{username}", h.GetUserByUsername)
		r.Get("/{id}/followers", h.Followers)
		r.Get("/{id}/following", h.Following)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Require)
			r.Get("/", h.ListUsers)
			r.Put("/profile", h.UpdateProfile)
			r.Put("/{id}/role", h.UpdateRole)
			r.Put("/{id}/toggle-active", h.ToggleActive)
			r.Post("/{id}/follow", h.ToggleFollow)
			r.Get("/{id}/is-following", h.IsFollowing)
			r.Get("/{id}/saved-recipes", h.SavedRecipes)
			r.Get("/{id}/purchases", h.Purchases)
		})
	})
}
