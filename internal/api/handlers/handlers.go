// Package handlers 汇聚全部路由挂载函数
package handlers

import (
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/handlers/auditlogs"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/handlers/auth"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/handlers/customers"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/handlers/health"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/handlers/orders"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/handlers/products"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/handlers/stores"
	"github.com/ebabcock80/orderdesk-mcp-sub002/internal/api/handlers/tenants"
	"github.com/labstack/echo/v4"
)

// AttachAllRoutes 挂载全部路由并返回路由表
func AttachAllRoutes(s *api.Server) []*echo.Route {
	return []*echo.Route{
		// auth
		auth.PostAuthenticateRoute(s),

		// tenants
		tenants.PostCreateTenantRoute(s),

		// stores
		stores.PostRegisterStoreRoute(s),
		stores.GetListStoresRoute(s),
		stores.PostUseStoreRoute(s),
		stores.PostTestStoreRoute(s),
		stores.DeleteStoreRoute(s),

		// orders
		orders.GetOrderRoute(s),
		orders.GetListOrdersRoute(s),
		orders.PostCreateOrderRoute(s),
		orders.PutUpdateOrderRoute(s),
		orders.DeleteOrderRoute(s),
		orders.PostAddNoteRoute(s),

		// products
		products.GetProductRoute(s),
		products.GetListProductsRoute(s),
		products.PutUpdateProductRoute(s),

		// customers
		customers.GetCustomerRoute(s),
		customers.GetListCustomersRoute(s),

		// audit
		auditlogs.GetAuditLogsRoute(s),

		// management
		health.GetReadyRoute(s),
		health.GetHealthyRoute(s),
	}
}
