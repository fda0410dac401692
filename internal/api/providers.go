package api

import (
	"fmt"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/config"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/audit"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/cache"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/mutation"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/proxy"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/ratelimit"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/storage"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/store"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/tenant"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/upstream"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/gateway/vault"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/persistence"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// PROVIDERS - define here only providers that for various reasons (e.g. cyclic dependency) can't live in their corresponding packages
// or for wrapping providers that only accept sub-configs to prevent the requirements for defining providers for sub-configs.
// https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

func NewClock(t ...*testing.T) time2.Clock {
	var clock time2.Clock

	useMock := len(t) > 0 && t[0] != nil

	if useMock {
		clock = time2.NewMockClock(time.Now())
	} else {
		clock = time2.DefaultClock
	}

	return clock
}

func NoTest() []*testing.T {
	return nil
}

func NewDB(cfg config.Server) (*sqlx.DB, error) {
	if cfg.Gateway.StorageBackend != "postgresql" {
		return nil, nil
	}
	return persistence.NewDB(cfg.Database)
}

// NewVaultService creates the credential vault with the server root pepper.
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewVaultService(cfg config.Server) vault.Service {
	return vault.NewServiceWithPepper(cfg.Auth.KMSKey)
}

// NewMetadataStore creates metadata store based on configuration
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewMetadataStore(cfg config.Server, db *sqlx.DB, clock time2.Clock) (storage.MetadataStore, error) {
	switch cfg.Gateway.StorageBackend {
	case "postgresql":
		return storage.NewPostgresStore(db, clock)
	case "memory":
		return storage.NewMemoryStore(clock), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Gateway.StorageBackend)
	}
}

// NewCacheManager creates the cache manager with the configured backend
func NewCacheManager(cfg config.Server, clock time2.Clock) (*cache.Manager, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewManager(cache.NewMemoryBackend(clock)), nil
	case "sqlite":
		backend, err := cache.NewSQLiteBackend(cfg.Cache.SQLitePath, clock)
		if err != nil {
			return nil, err
		}
		return cache.NewManager(backend), nil
	case "redis":
		opts, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis URL: %w", err)
		}
		return cache.NewManager(cache.NewRedisBackend(redis.NewClient(opts))), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", cfg.Cache.Backend)
	}
}

// NewRateLimiter creates the limiter from the configured per-scope rates
func NewRateLimiter(cfg config.Server, clock time2.Clock) *ratelimit.Limiter {
	return ratelimit.New(ratelimit.Config{
		TenantPerMinute:  cfg.RateLimit.TenantPerMinute,
		LoginPerMinute:   cfg.RateLimit.LoginPerMinute,
		SignupPerMinute:  cfg.RateLimit.SignupPerMinute,
		ConsolePerMinute: cfg.RateLimit.ConsolePerMinute,
	}, clock)
}

// NewUpstreamClient creates the OrderDesk client
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewUpstreamClient(cfg config.Server, clock time2.Clock) upstream.Client {
	return upstream.NewClient(upstream.Config{
		BaseURL:        cfg.Upstream.BaseURL,
		ConnectTimeout: cfg.Upstream.ConnectTimeout,
		RequestTimeout: cfg.Upstream.RequestTimeout,
		MaxRetries:     cfg.Upstream.MaxRetries,
		RetryBaseDelay: cfg.Upstream.RetryBaseDelay,
	}, clock)
}

// NewMutationEngine creates the order mutation engine
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewMutationEngine(client upstream.Client, clock time2.Clock) mutation.Engine {
	return mutation.NewEngine(client, clock)
}

// NewAuditLogger creates the audit logger
func NewAuditLogger(metadataStore storage.MetadataStore) *audit.Logger {
	return audit.NewLogger(metadataStore)
}

// NewTenantService creates the tenant service
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewTenantService(cfg config.Server, metadataStore storage.MetadataStore, vaultService vault.Service, auditLogger *audit.Logger) tenant.Service {
	return tenant.NewService(tenant.Config{AutoProvision: cfg.Auth.AutoProvision}, metadataStore, vaultService, auditLogger)
}

// NewStoreService creates the store profile service
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewStoreService(metadataStore storage.MetadataStore, vaultService vault.Service, client upstream.Client, auditLogger *audit.Logger) store.Service {
	return store.NewService(metadataStore, vaultService, client, auditLogger)
}

// NewProxyService creates the upstream resource proxy
//
//nolint:ireturn // returning interface is intentional for abstraction
func NewProxyService(
	storeService store.Service,
	limiter *ratelimit.Limiter,
	cacheManager *cache.Manager,
	client upstream.Client,
	engine mutation.Engine,
	auditLogger *audit.Logger,
) proxy.Service {
	return proxy.NewService(storeService, limiter, cacheManager, client, engine, auditLogger)
}
