//go:build wireinject

package api

import (
	"testing"

	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/config"
	"github.com/google/wire"
	"github.com/jmoiron/sqlx"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	NewClock,
	gatewayServiceSet,
)

var gatewayServiceSet = wire.NewSet(
	NewVaultService,
	NewMetadataStore,
	NewCacheManager,
	NewRateLimiter,
	NewUpstreamClient,
	NewMutationEngine,
	NewAuditLogger,
	NewTenantService,
	NewStoreService,
	NewProxyService,
)

// InitNewServer returns a new Server instance.
func InitNewServer(
	_ config.Server,
) (*Server, error) {
	wire.Build(serviceSet, NewDB, NoTest)
	return new(Server), nil
}

// InitNewServerWithDB returns a new Server instance with the given DB instance.
// All the other components are initialized via go wire according to the configuration.
func InitNewServerWithDB(
	_ config.Server,
	_ *sqlx.DB,
	t ...*testing.T,
) (*Server, error) {
	wire.Build(serviceSet)
	return new(Server), nil
}
