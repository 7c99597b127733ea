package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cookingsecret/internal/auth"
	"cookingsecret/internal/config"
	"cookingsecret/internal/database"
	"cookingsecret/internal/domain"
	"cookingsecret/internal/repository"
	pkgdb "cookingsecret/pkg/database"
	"cookingsecret/pkg/logger"
)

type env struct {
	store    *repository.Store
	tokens   *auth.JWTManager
	users    domain.UserService
	recipes  domain.RecipeService
	comments domain.CommentService
	identity domain.IdentityService
	audit    domain.AuditLogService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return newEnvFor(t, config.DatabaseConfig{
		Driver: "sqlite3",
		DSN:    "file::memory:?_foreign_keys=on",
	})
}

func newEnvFor(t *testing.T, dbConfig config.DatabaseConfig) *env {
	t.Helper()
	ctx := context.Background()
	log := logger.Nop()

	cm, err := pkgdb.NewConnectionManager(dbConfig, log)
	require.NoError(t, err)
	t.Cleanup(func() { cm.Close() })
	require.NoError(t, database.NewMigrationService(cm, log).RunMigrations(ctx))

	tokens, err := auth.NewJWTManager(config.SecurityConfig{JWTSecret: "test", TokenTTL: time.Hour})
	require.NoError(t, err)

	store := repository.NewStore(cm, log)
	return &env{
		store:    store,
		tokens:   tokens,
		users:    NewUserService(store, auth.NewPasswordHasher(4), tokens, log),
		recipes:  NewRecipeService(store, log),
		comments: NewCommentService(store, log),
		identity: NewIdentityService(store.Repos().Users, tokens, log),
		audit:    NewAuditLogService(store.Repos().AuditLogs, log),
	}
}

func (e *env) register(t *testing.T, username string) *domain.User {
	t.Helper()
	user, _, err := e.users.Register(context.Background(), domain.RegisterInput{
		Email:    username + "@example.com",
		Username: username,
		FullName: username,
		Password: "password1",
	})
	require.NoError(t, err)
	return user
}

func (e *env) createRecipe(t *testing.T, author *domain.User, title string, paid bool) *domain.Recipe {
	t.Helper()
	recipe, err := e.recipes.CreateRecipe(context.Background(), author, domain.RecipeInput{
		Title:       title,
		Description: "tasty",
		Ingredients: domain.Ingredients{{Name: "egg", Amount: "2"}},
		Steps:       domain.Steps{{StepNumber: 1, Instruction: "boil"}},
		Servings:    1,
		Difficulty:  "easy",
		Category:    "Breakfast",
		IsPaid:      paid,
		Price:       3.5,
	})
	require.NoError(t, err)
	return recipe
}

func (e *env) reload(t *testing.T, id string) *domain.User {
	t.Helper()
	u, err := e.users.GetUserByID(context.Background(), id)
	require.NoError(t, err)
	return u
}
