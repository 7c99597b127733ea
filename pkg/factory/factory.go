package factory

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"cookingsecret/internal/auth"
	"cookingsecret/internal/chat"
	"cookingsecret/internal/concurrent"
	"cookingsecret/internal/config"
	"cookingsecret/internal/domain"
	"cookingsecret/internal/repository"
	"cookingsecret/internal/service"
	"cookingsecret/pkg/cache"
	pkgdb "cookingsecret/pkg/database"
	"cookingsecret/pkg/logger"
	"cookingsecret/pkg/tracing"
)

const (
	warmUpWorkers   = 4
	warmUpQueueSize = 256
)

type Factory interface {
	GetLogger() logger.Logger
	GetConfig() *config.Config
	GetConnectionManager() *pkgdb.ConnectionManager
	GetStore() *repository.Store
	GetCacheManager() *cache.CacheManager
	GetWorkerPool() *concurrent.WorkerPool
	GetWarmUpManager() *cache.WarmUpManager

	GetIdentityService() domain.IdentityService
	GetUserService() domain.UserService
	GetRecipeService() domain.RecipeService
	GetCommentService() domain.CommentService
	GetAuditLogService() domain.AuditLogService
	GetChatService() domain.ChatService

	// Close releases everything opened by NewFactory, in reverse order.
	Close(ctx context.Context) error
}

type AppFactory struct {
	config          *config.Config
	logger          logger.Logger
	cm              *pkgdb.ConnectionManager
	store           *repository.Store
	redisClient     *redis.Client
	cacheManager    *cache.CacheManager
	workerPool      *concurrent.WorkerPool
	warmUpManager   *cache.WarmUpManager
	tracingShutdown func(context.Context) error
	tokens          *auth.JWTManager
	passwords       *auth.PasswordHasher
	chatProvider    domain.ChatProvider
	identityService domain.IdentityService
	userService     domain.UserService
	recipeService   domain.RecipeService
	commentService  domain.CommentService
	auditLogService domain.AuditLogService
	chatService     domain.ChatService
}

// NewFactory loads configuration and opens the store, cache and tracer.
func NewFactory(ctx context.Context) (Factory, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return NewFactoryWithConfig(ctx, cfg)
}

func NewFactoryWithConfig(ctx context.Context, cfg *config.Config) (Factory, error) {
	log := logger.New(logger.LogLevel(cfg.LogLevel), cfg.AppEnv, os.Stdout)

	f := &AppFactory{config: cfg, logger: log}

	shutdown, err := tracing.Init(ctx, cfg.Tracing.ServiceName, cfg.Tracing.OTLPEndpoint)
	if err != nil {
		return nil, err
	}
	f.tracingShutdown = shutdown

	f.cm, err = pkgdb.NewConnectionManager(cfg.Database, log)
	if err != nil {
		f.Close(ctx)
		return nil, err
	}
	f.store = repository.NewStore(f.cm, log)

	if err := f.initCache(ctx); err != nil {
		f.Close(ctx)
		return nil, err
	}

	if err := f.initAuth(); err != nil {
		f.Close(ctx)
		return nil, err
	}

	f.initChat()
	f.initServices()

	f.workerPool = concurrent.NewWorkerPool(warmUpWorkers, warmUpQueueSize, log)
	f.workerPool.Start()
	f.warmUpManager = cache.NewWarmUpManager(f.workerPool, f.userService, f.recipeService, log)

	return f, nil
}

func (f *AppFactory) initCache(ctx context.Context) error {
	if !f.config.Redis.Enabled() {
		f.logger.Warn("REDIS_HOST not set, caching disabled", map[string]interface{}{})
		f.cacheManager = cache.NewCacheManager(cache.NopCache{}, f.logger)
		return nil
	}

	client, err := cache.NewRedisClient(ctx, f.config.Redis)
	if err != nil {
		return err
	}
	f.redisClient = client
	f.cacheManager = cache.NewCacheManager(cache.NewRedisCache(client, f.logger, "cookingsecret"), f.logger)
	return nil
}

func (f *AppFactory) initAuth() error {
	tokens, err := auth.NewJWTManager(f.config.Security)
	if err != nil {
		return err
	}
	f.tokens = tokens
	f.passwords = auth.NewPasswordHasher(f.config.Security.BcryptCost)
	return nil
}

func (f *AppFactory) initChat() {
	if f.config.Chat.APIKey == "" {
		f.logger.Warn("OPENAI_API_KEY not set, chat disabled", map[string]interface{}{})
		return
	}
	provider, err := chat.NewOpenAIProvider(f.config.Chat, f.logger)
	if err != nil {
		f.logger.Error("Chat provider could not be created", map[string]interface{}{"error": err.Error()})
		return
	}
	f.chatProvider = provider
}

func (f *AppFactory) initServices() {
	repos := f.store.Repos()

	f.identityService = service.NewIdentityService(repos.Users, f.tokens, f.logger)
	f.auditLogService = service.NewAuditLogService(repos.AuditLogs, f.logger)

	baseUserService := service.NewUserService(f.store, f.passwords, f.tokens, f.logger)
	f.userService = service.NewCachedUserService(baseUserService, f.cacheManager)

	baseRecipeService := service.NewRecipeService(f.store, f.logger)
	f.recipeService = service.NewCachedRecipeService(baseRecipeService, f.cacheManager)

	baseCommentService := service.NewCommentService(f.store, f.logger)
	f.commentService = service.NewCachedCommentService(baseCommentService, f.cacheManager)

	f.chatService = service.NewChatService(f.store, f.chatProvider, chat.SystemPrompt, f.logger)
}

func (f *AppFactory) Close(ctx context.Context) error {
	var firstErr error
	keep := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if f.workerPool != nil {
		f.workerPool.Stop()
	}
	if f.redisClient != nil {
		keep(f.redisClient.Close())
	}
	if f.cm != nil {
		keep(f.cm.Close())
	}
	if f.tracingShutdown != nil {
		keep(f.tracingShutdown(ctx))
	}

	if firstErr != nil {
		return fmt.Errorf("factory close: %w", firstErr)
	}
	return nil
}

func (f *AppFactory) GetLogger() logger.Logger {
	return f.logger
}

func (f *AppFactory) GetConfig() *config.Config {
	return f.config
}

func (f *AppFactory) GetConnectionManager() *pkgdb.ConnectionManager {
	return f.cm
}

func (f *AppFactory) GetStore() *repository.Store {
	return f.store
}

func (f *AppFactory) GetCacheManager() *cache.CacheManager {
	return f.cacheManager
}

func (f *AppFactory) GetWorkerPool() *concurrent.WorkerPool {
	return f.workerPool
}

func (f *AppFactory) GetWarmUpManager() *cache.WarmUpManager {
	return f.warmUpManager
}

func (f *AppFactory) GetIdentityService() domain.IdentityService {
	return f.identityService
}

func (f *AppFactory) GetUserService() domain.UserService {
	return f.userService
}

func (f *AppFactory) GetRecipeService() domain.RecipeService {
	return f.recipeService
}

func (f *AppFactory) GetCommentService() domain.CommentService {
	return f.commentService
}

func (f *AppFactory) GetAuditLogService() domain.AuditLogService {
	return f.auditLogService
}

func (f *AppFactory) GetChatService() domain.ChatService {
	return f.chatService
}
