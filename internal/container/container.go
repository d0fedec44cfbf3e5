package container

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/config"
	"github.com/oksasatya/go-auth-service/internal/application"
	"github.com/oksasatya/go-auth-service/internal/domain/repository"
	"github.com/oksasatya/go-auth-service/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-auth-service/internal/infrastructure/postgres"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
)

// Container holds the constructed components shared by the router modules.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger
	PGPool *pgxpool.Pool // nil with the memory store
	Redis  *redis.Client // nil disables rate limiting

	Hasher *helpers.BcryptHasher
	Tokens *helpers.TokenManager
	Users  repository.UserRepository
	Auth   *application.AuthService
}

// New assembles a container around an already opened store.
func New(cfg *config.Config, logger *logrus.Logger, users repository.UserRepository, rdb *redis.Client) (*Container, error) {
	hasher, err := helpers.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	tokens, err := helpers.NewTokenManager(cfg.JWTSecret, cfg.AccessTTL, cfg.ClockSkew)
	if err != nil {
		return nil, err
	}
	svc, err := application.NewAuthService(users, hasher, tokens, logger)
	if err != nil {
		return nil, err
	}
	return &Container{
		Config: cfg,
		Logger: logger,
		Redis:  rdb,
		Hasher: hasher,
		Tokens: tokens,
		Users:  users,
		Auth:   svc,
	}, nil
}

// Build opens the configured store and redis, runs migrations when enabled and wires the service.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	var (
		users repository.UserRepository
		pool  *pgxpool.Pool
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		logger.Warn("using in-memory user store; data is lost on restart")
		users = memory.NewUserRepository()
	default:
		p, err := pginfra.NewPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if cfg.RunMigrations {
			if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
				p.Close()
				return nil, err
			}
		}
		pool = p
		users = pginfra.NewUserRepository(p)
	}

	rdb := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if rdb == nil {
		logger.Info("REDIS_ADDR not set; rate limiting disabled")
	}

	c, err := New(cfg, logger, users, rdb)
	if err != nil {
		if pool != nil {
			pool.Close()
		}
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, err
	}
	c.PGPool = pool
	return c, nil
}

// Close releases the store pool and the redis client.
func (c *Container) Close() {
	if c.PGPool != nil {
		c.PGPool.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
