// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/voyagehub/reservation-checkout/internal/handler"
)

// RegisterRoutes registers routes that need neither identity nor rate
// limiting. Currently that is only the health check used by load balancers
// and monitoring.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterReservations registers the reservation aggregate and its
// sub-resources under /v1. The identity middleware runs on the whole
// group; the summary cache wraps only the summary read.
func RegisterReservations(
	e *echo.Echo,
	res *handler.ReservationHandler,
	travelers *handler.TravelerHandler,
	rooms *handler.RoomHandler,
	checkout *handler.CheckoutHandler,
	identity echo.MiddlewareFunc,
	summaryCache echo.MiddlewareFunc,
) {
	g := e.Group("/v1/reservations", identity)

	g.POST("", res.Create)
	g.GET("/:id", res.Get)
	g.PUT("/:id", res.Update)
	g.GET("/:id/summary", res.Summary, summaryCache)
	g.POST("/:id/cancel", res.Cancel)
	g.POST("/:id/abandon", res.Abandon)

	g.GET("/:id/travelers", travelers.List)
	g.POST("/:id/travelers", travelers.Create)
	g.PUT("/:id/travelers", travelers.Reconcile)
	g.PUT("/:id/travelers/:travelerID", travelers.Update)
	g.DELETE("/:id/travelers/:travelerID", travelers.Delete)

	g.GET("/:id/rooms", rooms.List)
	g.PUT("/:id/rooms", rooms.Replace)

	g.POST("/:id/checkout", checkout.Enter)
	g.POST("/:id/advance", checkout.Advance)
}

// RegisterSync registers the order-desk synchronization endpoints. The
// enqueue routes sit behind the rate limiter because every accepted
// enqueue starts a background polling loop.
func RegisterSync(e *echo.Echo, sync *handler.SyncHandler, identity, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/reservation-sync", identity)

	g.POST("/:id/enqueue", sync.Enqueue, limiter)
	g.GET("/job/:jobID", sync.JobState)
	g.POST("/by-external-id/:tkID/enqueue", sync.ReverseEnqueue, limiter)
}
