package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cookingsecret/internal/api"
	"cookingsecret/internal/database"
	"cookingsecret/pkg/factory"
)

var (
	warmUpInterval time.Duration
	warmUpLimit    int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Apply pending migrations and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().DurationVar(&warmUpInterval, "warmup-interval", 0, "Re-warm the most liked recipes on this interval (0 disables)")
	serveCmd.Flags().IntVar(&warmUpLimit, "warmup-limit", 20, "Number of recipes to warm on each run")
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	appFactory, err := factory.NewFactory(ctx)
	if err != nil {
		return fmt.Errorf("application could not be initialised: %w", err)
	}

	log := appFactory.GetLogger()
	cfg := appFactory.GetConfig()

	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := appFactory.Close(closeCtx); err != nil {
			log.Error("Shutdown cleanup failed", map[string]interface{}{"error": err.Error()})
		}
	}()

	log.Info("Starting application", map[string]interface{}{"env": cfg.AppEnv})

	cm := appFactory.GetConnectionManager()
	if err := database.NewMigrationService(cm, log).RunMigrations(ctx); err != nil {
		return fmt.Errorf("migrations could not be applied: %w", err)
	}

	if warmUpInterval > 0 {
		go appFactory.GetWarmUpManager().ScheduledWarmUp(ctx, warmUpInterval, warmUpLimit)
	}

	authenticator := api.NewAuthenticator(appFactory.GetIdentityService(), log)
	users := appFactory.GetUserService()
	recipes := appFactory.GetRecipeService()
	cacheManager := appFactory.GetCacheManager()

	handler := api.NewRouter(cfg,
		api.NewHealthHandler(cm, cm.GetStats, cacheManager, appFactory.GetWorkerPool(), log),
		api.NewAuthHandler(users, authenticator, log),
		api.NewUserHandler(users, recipes, authenticator, log),
		api.NewRecipeHandler(recipes, authenticator, log),
		api.NewCommentHandler(appFactory.GetCommentService(), authenticator, log),
		api.NewChatHandler(appFactory.GetChatService(), authenticator, log),
		api.NewAdminHandler(users, appFactory.GetAuditLogService(), authenticator, log),
		api.NewCacheHandler(cacheManager, appFactory.GetWarmUpManager(), authenticator, log),
	)

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// Chat replies can take a while; leave headroom over the provider timeout.
		WriteTimeout: 2 * cfg.Server.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", map[string]interface{}{"port": cfg.Server.Port})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server", map[string]interface{}{})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Info("Server stopped", map[string]interface{}{})
	return nil
}
