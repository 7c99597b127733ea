package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cookingsecret/internal/domain"
	"cookingsecret/pkg/logger"
)

type RecipeHandler struct {
	service domain.RecipeService
	auth    *Authenticator
	logger  logger.Logger
}

type recipeRequest struct {
	Title              string               `json:"title" validate:"required,max=200"`
	Description        string               `json:"description" validate:"required"`
	Image              string               `json:"image"`
	Ingredients        []domain.Ingredient  `json:"ingredients" validate:"required,min=1,dive"`
	Steps              []domain.CookingStep `json:"steps" validate:"required,min=1,dive"`
	CookingTimeMinutes int                  `json:"cooking_time_minutes" validate:"min=0"`
	Servings           int                  `json:"servings" validate:"min=1"`
	Difficulty         string               `json:"difficulty" validate:"required,oneof=easy medium hard"`
	Category           string               `json:"category" validate:"required"`
	Tags               []string             `json:"tags"`
	IsPaid             bool                 `json:"is_paid"`
	Price              float64              `json:"price" validate:"min=0"`
}

func (req recipeRequest) input() domain.RecipeInput {
	return domain.RecipeInput{
		Title:              req.Title,
		Description:        req.Description,
		Image:              req.Image,
		Ingredients:        req.Ingredients,
		Steps:              req.Steps,
		CookingTimeMinutes: req.CookingTimeMinutes,
		Servings:           req.Servings,
		Difficulty:         req.Difficulty,
		Category:           req.Category,
		Tags:               req.Tags,
		IsPaid:             req.IsPaid,
		Price:              req.Price,
	}
}

func NewRecipeHandler(service domain.RecipeService, auth *Authenticator, logger logger.Logger) *RecipeHandler {
	return &RecipeHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

func (h *RecipeHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	recipe, err := h.service.CreateRecipe(r.Context(), currentUser(r), req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	featured, _ := strconv.ParseBool(r.URL.Query().Get("featured_only"))
	recipes, err := h.service.ListRecipes(r.Context(), domain.RecipeFilter{
		Skip:         queryInt(r, "skip", 0),
		Limit:        queryInt(r, "limit", 20),
		Category:     r.URL.Query().Get("category"),
		AuthorID:     r.URL.Query().Get("author_id"),
		FeaturedOnly: featured,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.service.GetRecipe(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	var req recipeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	recipe, err := h.service.UpdateRecipe(r.Context(), currentUser(r), chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRecipe(r.Context(), currentUser(r), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Recipe deleted successfully"})
}

func (h *RecipeHandler) SearchRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.service.SearchRecipes(r.Context(), chi.URLParam(r, "query"), queryInt(r, "limit", 20))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	liked, err := h.service.ToggleLike(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	message := "Recipe unliked"
	if liked {
		message = "Recipe liked"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"liked": liked, "message": message})
}

func (h *RecipeHandler) IsLiked(w http.ResponseWriter, r *http.Request) {
	liked, err := h.service.IsLiked(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"liked": liked})
}

func (h *RecipeHandler) ToggleSave(w http.ResponseWriter, r *http.Request) {
	saved, err := h.service.ToggleSave(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	message := "Recipe unsaved"
	if saved {
		message = "Recipe saved"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"saved": saved, "message": message})
}

func (h *RecipeHandler) IsSaved(w http.ResponseWriter, r *http.Request) {
	saved, err := h.service.IsSaved(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"saved": saved})
}

func (h *RecipeHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	created, err := h.service.PurchaseRecipe(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	message := "Already purchased"
	if created {
		message = "Recipe purchased successfully"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"purchased": true, "message": message})
}

func (h *RecipeHandler) CheckPurchased(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.CheckPurchased(r.Context(), currentUser(r), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *RecipeHandler) Feed(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.service.Feed(r.Context(), currentUser(r), queryInt(r, "skip", 0), queryInt(r, "limit", 20))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) Explore(w http.ResponseWriter, r *http.Request) {
	recipes, err := h.service.Explore(r.Context(), queryInt(r, "skip", 0), queryInt(r, "limit", 20))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

func (h *RecipeHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"categories": domain.Categories})
}

// RegisterRoutes uses full paths: the comment handler shares the
// /api/recipes prefix.
func (h *RecipeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/recipes", h.ListRecipes)
	r.Get("/api/recipes/{id}", h.GetRecipe)
	r.Get("/api/recipes/search/{query}", h.SearchRecipes)
	r.Get("/api/explore", h.Explore)
	r.Get("/api/categories", h.Categories)

	r.Group(func(r chi.Router) {
		r.Use(h.auth.Require)
		r.Post("/api/recipes", h.CreateRecipe)
		r.Put("/api/recipes/{id}", h.UpdateRecipe)
		r.Delete("/api/recipes/{id}", h.DeleteRecipe)
		r.Post("/api/recipes/{id}/like", h.ToggleLike)
		r.Get("/api/recipes/{id}/liked", h.IsLiked)
		r.Post("/api/recipes/{id}/save", h.ToggleSave)
		r.Get("/api/recipes/{id}/saved", h.IsSaved)
		r.Post("/api/recipes/{id}/purchase", h.Purchase)
		r.Get("/api/recipes/{id}/purchased", h.CheckPurchased)
		r.Get("/api/feed", h.Feed)
	})
}
