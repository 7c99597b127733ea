package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookingsecret/internal/domain"
)

func titles(recipes []*domain.Recipe) []string {
	out := make([]string, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, r.Title)
	}
	return out
}

func TestRecipeRoundTripsJSONColumns(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	author := seedUser(t, s, "ana")
	recipe := seedRecipe(t, s, author, "Soup")

	got, err := s.Repos().Recipes.FindByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, recipe.Ingredients, got.Ingredients)
	assert.Equal(t, recipe.Steps, got.Steps)
	assert.Equal(t, domain.Tags{"quick"}, got.Tags)

	missing, err := s.Repos().Recipes.FindByID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	ana := seedUser(t, s, "ana")
	bo := seedUser(t, s, "bo")

	seedRecipe(t, s, ana, "First")
	second := seedRecipe(t, s, bo, "Second")
	seedRecipe(t, s, ana, "Third")

	all, err := s.Repos().Recipes.List(ctx, domain.RecipeFilter{Limit: 20}, domain.SortNewest)
	require.NoError(t, err)
	assert.Equal(t, []string{"Third", "Second", "First"}, titles(all))

	byAna, err := s.Repos().Recipes.List(ctx, domain.RecipeFilter{Limit: 20, AuthorID: ana.ID}, domain.SortNewest)
	require.NoError(t, err)
	assert.Equal(t, []string{"Third", "First"}, titles(byAna))

	page, err := s.Repos().Recipes.List(ctx, domain.RecipeFilter{Skip: 1, Limit: 1}, domain.SortNewest)
	require.NoError(t, err)
	assert.Equal(t, []string{"Second"}, titles(page))

	none, err := s.Repos().Recipes.List(ctx, domain.RecipeFilter{Limit: 20, AuthorIDs: []string{}}, domain.SortNewest)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = toggle(t, s, domain.RelationLike, ana.ID, second.ID)
	require.NoError(t, err)

	popular, err := s.Repos().Recipes.List(ctx, domain.RecipeFilter{Limit: 20}, domain.SortPopular)
	require.NoError(t, err)
	assert.Equal(t, []string{"Second", "Third", "First"}, titles(popular))
}

func TestSearchIsCaseInsensitiveAndLiteral(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	ana := seedUser(t, s, "ana")
	seedRecipe(t, s, ana, "Tomato Soup")
	seedRecipe(t, s, ana, "100% Rye")

	got, err := s.Repos().Recipes.Search(ctx, "tomato", 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tomato Soup"}, titles(got))

	got, err = s.Repos().Recipes.Search(ctx, "QUICK", 20)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = s.Repos().Recipes.Search(ctx, "0%", 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"100% Rye"}, titles(got))
}

func TestSearchTagsMatchTagTextOnly(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	ana := seedUser(t, s, "ana")
	seedRecipe(t, s, ana, "Soup")

	mac := seedRecipe(t, s, ana, "Gratin")
	require.NoError(t, s.Repos().Recipes.UpdateContent(ctx, mac.ID, domain.RecipeInput{
		Title:       "Gratin",
		Ingredients: domain.Ingredients{},
		Steps:       domain.Steps{},
		Tags:        domain.Tags{"mac&cheese", "comfort"},
		Category:    "Dinner",
	}, now()))

	var stored string
	require.NoError(t, s.cm.DB().GetContext(ctx, &stored, "SELECT tags FROM recipes WHERE id = ?", mac.ID))
	assert.Equal(t, `["mac&cheese","comfort"]`, stored)

	got, err := s.Repos().Recipes.Search(ctx, "&", 20)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gratin"}, titles(got))

	for _, query := range []string{`"`, ",", "[", `","`} {
		got, err := s.Repos().Recipes.Search(ctx, query, 20)
		require.NoError(t, err)
		assert.Empty(t, got, query)
	}
}

func TestUpdateContentKeepsCountersAndFlags(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	ana := seedUser(t, s, "ana")
	recipe := seedRecipe(t, s, ana, "Soup")
	_, err := toggle(t, s, domain.RelationLike, ana.ID, recipe.ID)
	require.NoError(t, err)

	err = s.Repos().Recipes.UpdateContent(ctx, recipe.ID, domain.RecipeInput{
		Title:       "Better Soup",
		Ingredients: domain.Ingredients{},
		Steps:       domain.Steps{},
		Tags:        domain.Tags{},
		Category:    "Soup",
	}, now())
	require.NoError(t, err)

	got, err := s.Repos().Recipes.FindByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Better Soup", got.Title)
	assert.Equal(t, 1, got.LikesCount)
	assert.True(t, got.IsApproved)

	err = s.Repos().Recipes.UpdateContent(ctx, "missing", domain.RecipeInput{}, now())
	assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
}
