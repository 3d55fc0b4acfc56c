package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aurelius/mintbid/pkg/auth"
)

// Handlers bundles every endpoint group the router mounts.
type Handlers struct {
	Accounts      *AccountHandler
	Auctions      *AuctionHandler
	Catalog       *CatalogHandler
	Consignment   *ConsignmentHandler
	Orders        *OrderHandler
	Reviews       *ReviewHandler
	Metals        *MetalsHandler
	Integrations  *IntegrationHandler
	Notifications *NotificationHandler
}

// NewRouter builds the gin engine: public storefront routes, authenticated
// buyer routes, client portal routes, and the admin back office.
func NewRouter(h Handlers, signer *auth.Signer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")

	// Public storefront
	v1.POST("/auth/register", h.Accounts.Register)
	v1.POST("/auth/login", h.Accounts.Login)
	v1.POST("/auth/refresh", h.Accounts.Refresh)
	v1.GET("/products", h.Catalog.Search)
	v1.GET("/products/:id", h.Catalog.Get)
	v1.GET("/auctions", h.Auctions.List)
	v1.GET("/auctions/:id", h.Auctions.Get)
	v1.GET("/auctions/:id/bids", h.Auctions.ListBids)
	v1.GET("/sellers/:id/reviews", h.Reviews.ListForSeller)
	v1.GET("/sellers/:id/reviews/summary", h.Reviews.Summary)
	v1.GET("/metals", h.Metals.Ticker)
	v1.GET("/metals/:metal", h.Metals.Spot)

	// Authenticated buyers
	authed := v1.Group("", auth.Middleware(signer))
	authed.POST("/auth/logout", h.Accounts.Logout)
	authed.GET("/me", h.Accounts.Profile)
	authed.POST("/auctions/:id/bids", h.Auctions.PlaceBid)
	authed.POST("/checkout", h.Orders.Checkout)
	authed.GET("/orders", h.Orders.ListMine)
	authed.GET("/orders/:id", h.Orders.Get)
	authed.POST("/reviews", h.Reviews.Create)
	authed.GET("/notifications", h.Notifications.ListMine)
	authed.POST("/notifications/:id/read", h.Notifications.MarkRead)

	// Client portal (consignors)
	portal := v1.Group("/portal", auth.Middleware(signer))
	portal.POST("/submissions", h.Consignment.Submit)
	portal.GET("/submissions", h.Consignment.ListMine)
	portal.GET("/submissions/:id", h.Consignment.Get)
	portal.GET("/products", h.Catalog.ListMine)
	portal.POST("/sources", h.Consignment.CreateSource)
	portal.GET("/sources", h.Consignment.ListSources)
	portal.DELETE("/sources/:id", h.Consignment.DeleteSource)
	portal.POST("/integrations/:provider/connect", h.Integrations.Connect)
	portal.DELETE("/integrations/:provider", h.Integrations.Disconnect)
	portal.GET("/integrations", h.Integrations.List)
	portal.POST("/integrations/:provider/listings", h.Integrations.PublishListing)
	portal.POST("/integrations/:provider/listings/:listing_id/end", h.Integrations.EndListing)

	// Admin back office
	admin := v1.Group("/admin", auth.Middleware(signer), auth.RequireRole(auth.RoleAdmin))
	admin.POST("/products", h.Catalog.Create)
	admin.PUT("/products/:id", h.Catalog.Update)
	admin.POST("/auctions", h.Auctions.Create)
	admin.GET("/submissions", h.Consignment.ListQueue)
	admin.PUT("/submissions/:id/status", h.Consignment.UpdateStatus)
	admin.POST("/submissions/:id/analyze", h.Consignment.Analyze)
	admin.PUT("/orders/:id/status", h.Orders.AdvanceStatus)

	return r
}
