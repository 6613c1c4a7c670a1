package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/lahray/ticket-payments/internal/handler" // import the handlers that implement business logic
)

// RegisterRoutes registers routes that do not require any middleware on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterCheckout registers the buyer-facing checkout submission and the
// provider's notification callback.  The rate limiter guards the
// anonymous submit endpoint; the callback is left unthrottled so the
// provider's retries are never rejected.
func RegisterCheckout(e *echo.Echo, ch *handler.CheckoutHandler, cb *handler.CallbackHandler, ratelimit echo.MiddlewareFunc) {
	g := e.Group("/v1/checkout")
	if ratelimit != nil {
		g.Use(ratelimit)
	}
	g.POST("", ch.Submit)

	// Provider notifications arrive here once per checkout session.
	e.POST("/v1/payments/callback", cb.Notify)
}

// RegisterDashboard registers the payment-records dashboard endpoints.
// Both are read-only GETs; the response cache middleware gives the list a
// short-lived cache so dashboard refreshes do not hammer the store.
func RegisterDashboard(e *echo.Echo, d *handler.DashboardHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/payments")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("", d.List)
	g.GET("/stats", d.Stats)
}
