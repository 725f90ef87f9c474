package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-marketplace/internal/handler"
	"github.com/iliyamo/ticket-marketplace/internal/middleware"
	"github.com/iliyamo/ticket-marketplace/internal/model"
)

// Handlers groups every handler the router wires up. main builds one
// of these after constructing the repositories.
type Handlers struct {
	Users        *handler.UserHandler
	Tickets      *handler.TicketHandler
	Listings     *handler.ListingHandler
	Requests     *handler.RequestHandler
	Reviews      *handler.ReviewHandler
	Transactions *handler.TransactionHandler
}

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance. Currently it exposes only a health check
// that load balancers and monitoring can probe.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers every marketplace endpoint. Unauthenticated
// operations (register, login and the public browse endpoints) are
// mapped directly; everything else goes through JWTAuth plus a
// claim-level role gate. Handlers still load the user row and apply
// the authoritative role check there.
//
// The cache middleware is applied to the public GET endpoints only;
// pass a no-op middleware when caching is disabled.
func RegisterAPI(e *echo.Echo, h Handlers, jwtSecret string, cache echo.MiddlewareFunc) {
	sell := []string{string(model.RoleSeller), string(model.RoleBoth)}
	buy := []string{string(model.RoleBuyer), string(model.RoleBoth)}

	auth := middleware.JWTAuth(jwtSecret)

	// Account endpoints. Registration, login and the user reads are
	// public; identity only matters once a write is involved.
	e.POST("/users", h.Users.Register)
	e.POST("/users/login", h.Users.Login)
	e.GET("/users", h.Users.List, cache)
	e.GET("/users/:id", h.Users.Get, cache)

	// Tickets. Creation is seller-side, purchase is buyer-side, and the
	// browse endpoints are public and cacheable.
	e.POST("/tickets", h.Tickets.Create, auth, middleware.RequireRole(sell...))
	e.GET("/tickets", h.Tickets.List, cache)
	e.GET("/tickets/:id", h.Tickets.Get, cache)
	e.GET("/tickets/user/:id", h.Tickets.ListByUser, cache)
	e.PUT("/tickets/:id/buy", h.Tickets.Buy, auth, middleware.RequireRole(buy...))

	// Sell listings.
	e.POST("/sell-listings", h.Listings.Create, auth, middleware.RequireRole(sell...))
	e.GET("/sell-listings", h.Listings.List, cache)
	e.GET("/sell-listings/:id", h.Listings.Get, cache)

	// Buy requests. The matches endpoint is owner-only; the ownership
	// check happens inside the handler's lookup.
	e.POST("/buy-requests", h.Requests.Create, auth, middleware.RequireRole(buy...))
	e.GET("/buy-requests", h.Requests.List, cache)
	e.GET("/buy-requests/:id", h.Requests.Get, cache)
	e.GET("/buy-requests/:id/matches", h.Requests.Matches, auth, middleware.RequireRole(buy...))

	// Reviews.
	e.POST("/reviews", h.Reviews.Create, auth, middleware.RequireRole(buy...))
	e.GET("/reviews", h.Reviews.List, cache)
	e.GET("/reviews/seller/:seller_id", h.Reviews.ListBySeller, cache)

	// Transaction feed.
	e.GET("/transactions", h.Transactions.List, cache)
}
