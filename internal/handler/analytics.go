package handler

import (
	"net/http"

	"github.com/iliyamo/cinema-group-booking/internal/analytics"
	"github.com/labstack/echo/v4"
)

// AnalyticsHandler serves sales figures per movie.
type AnalyticsHandler struct {
	Aggregator *analytics.Aggregator
}

// NewAnalyticsHandler constructs an AnalyticsHandler.
func NewAnalyticsHandler(agg *analytics.Aggregator) *AnalyticsHandler {
	if agg == nil {
		panic("nil aggregator passed to NewAnalyticsHandler")
	}
	return &AnalyticsHandler{Aggregator: agg}
}

// MovieSales handles GET /analytics/movies/:id?start=&end=.  Both bounds
// are inclusive and compared against the show start time.
func (h *AnalyticsHandler) MovieSales(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	start, err := parseTime("start", c.QueryParam("start"))
	if err != nil {
		return writeError(c, err)
	}
	end, err := parseTime("end", c.QueryParam("end"))
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.Aggregator.MovieSales(c.Request().Context(), id, start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// MovieSalesBody handles POST /analytics/movie with a JSON body
// {movie_id, start, end}.
func (h *AnalyticsHandler) MovieSalesBody(c echo.Context) error {
	var body struct {
		MovieID uint64 `json:"movie_id"`
		Start   string `json:"start"`
		End     string `json:"end"`
	}
	if err := bindBody(c, &body); err != nil {
		return writeError(c, err)
	}
	start, err := parseTime("start", body.Start)
	if err != nil {
		return writeError(c, err)
	}
	end, err := parseTime("end", body.End)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.Aggregator.MovieSales(c.Request().Context(), body.MovieID, start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
