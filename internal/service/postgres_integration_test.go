//go:build integration

package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"cookingsecret/internal/config"
	"cookingsecret/internal/domain"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("cookingsecret"),
		postgres.WithUsername("cookingsecret"),
		postgres.WithPassword("cookingsecret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("postgres container could not be terminated: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

// Each driver gets its own container so the first-user-admin rule starts
// from an empty table.
func forEachPostgresDriver(t *testing.T, fn func(t *testing.T, e *env)) {
	for _, driver := range []string{"pgx", "postgres"} {
		t.Run(driver, func(t *testing.T) {
			e := newEnvFor(t, config.DatabaseConfig{
				Driver:       driver,
				DSN:          startPostgres(t),
				MaxOpenConns: 20,
				MaxIdleConns: 5,
			})
			fn(t, e)
		})
	}
}

func TestPostgresConcurrentLikesKeepCounterInStep(t *testing.T) {
	forEachPostgresDriver(t, func(t *testing.T, e *env) {
		ctx := context.Background()
		author := e.register(t, "ana")
		recipe := e.createRecipe(t, author, "Ragu", false)

		fans := make([]*domain.User, 12)
		for i := range fans {
			fans[i] = e.register(t, fmt.Sprintf("fan%02d", i))
		}

		var wg sync.WaitGroup
		errs := make(chan error, len(fans))
		for _, fan := range fans {
			wg.Add(1)
			go func(u *domain.User) {
				defer wg.Done()
				if _, err := e.recipes.ToggleLike(ctx, u, recipe.ID); err != nil {
					errs <- err
				}
			}(fan)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			require.NoError(t, err)
		}

		got, err := e.recipes.GetRecipe(ctx, recipe.ID)
		require.NoError(t, err)
		rows, err := e.store.Repos().Relations.Count(ctx, domain.RelationLike, recipe.ID)
		require.NoError(t, err)
		assert.Equal(t, len(fans), got.LikesCount)
		assert.Equal(t, rows, got.LikesCount)
	})
}

func TestPostgresConcurrentFollowsAndUnfollows(t *testing.T) {
	forEachPostgresDriver(t, func(t *testing.T, e *env) {
		ctx := context.Background()
		star := e.register(t, "star")

		followers := make([]*domain.User, 8)
		for i := range followers {
			followers[i] = e.register(t, fmt.Sprintf("follower%02d", i))
			_, err := e.users.ToggleFollow(ctx, followers[i], star.ID)
			require.NoError(t, err)
		}

		// Half unfollow while the other half follow someone else.
		var wg sync.WaitGroup
		for i, f := range followers {
			wg.Add(1)
			go func(i int, u *domain.User) {
				defer wg.Done()
				if i%2 == 0 {
					_, err := e.users.ToggleFollow(ctx, u, star.ID)
					assert.NoError(t, err)
					return
				}
				_, err := e.users.ToggleFollow(ctx, u, followers[0].ID)
				assert.NoError(t, err)
			}(i, f)
		}
		wg.Wait()

		assert.Equal(t, len(followers)/2, e.reload(t, star.ID).FollowersCount)
		assert.Equal(t, len(followers)/2, e.reload(t, followers[0].ID).FollowersCount)
		assert.Equal(t, 2, e.reload(t, followers[1].ID).FollowingCount)
		assert.Equal(t, 0, e.reload(t, followers[2].ID).FollowingCount)

		// Two users toggling a follow on each other update the same pair of
		// rows from opposite sides.
		a, b := followers[3], followers[5]
		for round := 0; round < 10; round++ {
			var pair sync.WaitGroup
			pair.Add(2)
			go func() {
				defer pair.Done()
				_, err := e.users.ToggleFollow(ctx, a, b.ID)
				assert.NoError(t, err)
			}()
			go func() {
				defer pair.Done()
				_, err := e.users.ToggleFollow(ctx, b, a.ID)
				assert.NoError(t, err)
			}()
			pair.Wait()
		}

		for _, u := range []*domain.User{a, b} {
			got := e.reload(t, u.ID)
			assert.Equal(t, 0, got.FollowersCount)
			assert.Equal(t, 2, got.FollowingCount)
		}
	})
}

func TestPostgresConcurrentDuplicateRegistration(t *testing.T) {
	forEachPostgresDriver(t, func(t *testing.T, e *env) {
		ctx := context.Background()

		const attempts = 6
		var wg sync.WaitGroup
		results := make(chan error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _, err := e.users.Register(ctx, domain.RegisterInput{
					Email:    "dup@example.com",
					Username: "dup",
					FullName: "Dup",
					Password: "password1",
				})
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		created := 0
		for err := range results {
			if err == nil {
				created++
				continue
			}
			assert.Equal(t, domain.KindConflict, domain.KindOf(err), err.Error())
		}
		assert.Equal(t, 1, created)

		dup, err := e.store.Repos().Users.FindByEmail(ctx, "dup@example.com")
		require.NoError(t, err)
		require.NotNil(t, dup)
		stats, err := e.users.AdminStats(ctx, dup)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.UsersCount)
		assert.Equal(t, 1, stats.RoleCounts[domain.RoleAdmin])
	})
}

func TestPostgresConcurrentFirstRegistrationsYieldOneAdmin(t *testing.T) {
	forEachPostgresDriver(t, func(t *testing.T, e *env) {
		ctx := context.Background()

		const signups = 6
		var wg sync.WaitGroup
		for i := 0; i < signups; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				name := fmt.Sprintf("early%02d", i)
				_, _, err := e.users.Register(ctx, domain.RegisterInput{
					Email:    name + "@example.com",
					Username: name,
					FullName: name,
					Password: "password1",
				})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		admins, err := e.store.Repos().Users.CountByRole(ctx, domain.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, 1, admins)
		total, err := e.store.Repos().Users.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, signups, total)
	})
}

func TestPostgresDeleteRecipeCascades(t *testing.T) {
	forEachPostgresDriver(t, func(t *testing.T, e *env) {
		ctx := context.Background()
		admin := e.register(t, "ana")
		author := e.register(t, "bo")
		fan := e.register(t, "cy")
		recipe := e.createRecipe(t, author, "Paella", false)

		_, err := e.recipes.ToggleLike(ctx, fan, recipe.ID)
		require.NoError(t, err)
		_, err = e.recipes.ToggleSave(ctx, fan, recipe.ID)
		require.NoError(t, err)
		_, err = e.comments.CreateComment(ctx, fan, recipe.ID, "Delicious")
		require.NoError(t, err)

		require.NoError(t, e.recipes.DeleteRecipe(ctx, admin, recipe.ID))

		_, err = e.recipes.GetRecipe(ctx, recipe.ID)
		assert.ErrorIs(t, err, domain.ErrRecipeNotFound)
		likes, err := e.store.Repos().Relations.Count(ctx, domain.RelationLike, recipe.ID)
		require.NoError(t, err)
		assert.Zero(t, likes)
		saves, err := e.store.Repos().Relations.Count(ctx, domain.RelationSave, recipe.ID)
		require.NoError(t, err)
		assert.Zero(t, saves)
		assert.Zero(t, e.reload(t, author.ID).RecipesCount)
	})
}
