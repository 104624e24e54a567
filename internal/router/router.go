package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/cinema-group-booking/internal/handler"
	"github.com/iliyamo/cinema-group-booking/internal/middleware"
)

// RegisterRoutes registers the liveness endpoint.  It is never cached or
// rate limited.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc) {
	e.GET("/healthz", health)
}

// RegisterCatalog registers data entry endpoints for theaters, movies,
// halls and shows.  Reads go through the response cache.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, cache *middleware.ResponseCache) {
	cached := cache.Middleware()

	// ---- Theaters ----
	e.POST("/theaters", h.CreateTheater)
	e.GET("/theaters", h.ListTheaters, cached)
	e.GET("/theaters/:id", h.GetTheater, cached)
	e.DELETE("/theaters/:id", h.DeleteTheater)

	// ---- Movies ----
	e.POST("/movies", h.CreateMovie)
	e.GET("/movies", h.ListMovies, cached)
	e.GET("/movies/:id", h.GetMovie, cached)
	e.PUT("/movies/:id", h.UpdateMovie)
	e.DELETE("/movies/:id", h.DeleteMovie)

	// ---- Halls ----
	// hall responses embed seat counts, which change with every booking;
	// the global Invalidate middleware keeps them fresh.
	e.POST("/halls", h.CreateHall)
	e.GET("/halls", h.ListHalls, cached)
	e.GET("/halls/:id", h.GetHall, cached)
	e.PUT("/halls/:id", h.UpdateHall)
	e.DELETE("/halls/:id", h.DeleteHall)

	// ---- Shows ----
	e.POST("/shows", h.CreateShow)
	e.GET("/shows", h.ListShows, cached)
	e.GET("/shows/:id", h.GetShow, cached)
	e.DELETE("/shows/:id", h.DeleteShow)
}

// RegisterBookings registers the booking endpoints.  Only POST /bookings
// is rate limited; the occupancy layout is always read live.
func RegisterBookings(e *echo.Echo, h *handler.BookingHandler, limiter *middleware.RateLimiter) {
	g := e.Group("/bookings")
	g.POST("", h.CreateBooking, limiter.Middleware())
	g.GET("/:id", h.GetBooking)
	g.GET("/shows/:id/layout", h.ShowLayout)
	e.GET("/suggestions", h.Suggestions)
}

// RegisterAnalytics registers the sales endpoints behind the response
// cache.
func RegisterAnalytics(e *echo.Echo, h *handler.AnalyticsHandler, cache *middleware.ResponseCache) {
	g := e.Group("/analytics")
	g.GET("/movies/:id", h.MovieSales, cache.Middleware())
	g.POST("/movie", h.MovieSalesBody)
}

// RegisterDev registers development helpers.  Callers only invoke it when
// APP_ENV=dev.
func RegisterDev(e *echo.Echo, h *handler.SeedHandler) {
	e.POST("/dev/seed", h.Seed)
}
