package handler

import (
	"net/http"

	"github.com/iliyamo/cinema-group-booking/internal/model"
	"github.com/labstack/echo/v4"
)

// CreateShow handles POST /shows and schedules a movie in a hall.
func (h *CatalogHandler) CreateShow(c echo.Context) error {
	var body struct {
		MovieID   uint64 `json:"movie_id"`
		HallID    uint64 `json:"hall_id"`
		StartTime string `json:"start_time"`
		Price     int64  `json:"price"`
	}
	if err := bindBody(c, &body); err != nil {
		return writeError(c, err)
	}
	switch {
	case body.MovieID == 0:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "movie_id is required"})
	case body.HallID == 0:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "hall_id is required"})
	case body.Price < 0:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "price must be >= 0"})
	}
	start, err := parseTime("start_time", body.StartTime)
	if err != nil {
		return writeError(c, err)
	}
	ctx := c.Request().Context()
	if _, err := h.Store.GetMovie(ctx, body.MovieID); err != nil { // verify movie
		return writeError(c, err)
	}
	if _, err := h.Store.GetHall(ctx, body.HallID); err != nil { // verify hall
		return writeError(c, err)
	}
	show := &model.Show{MovieID: body.MovieID, HallID: body.HallID, StartTime: start, Price: body.Price}
	if err := h.Store.CreateShow(ctx, show); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, show)
}

// ListShows handles GET /shows ordered by start time, optionally
// filtered by movie_id and hall_id.
func (h *CatalogHandler) ListShows(c echo.Context) error {
	movieID, err := parseQueryID(c, "movie_id")
	if err != nil {
		return writeError(c, err)
	}
	hallID, err := parseQueryID(c, "hall_id")
	if err != nil {
		return writeError(c, err)
	}
	shows, err := h.Store.ListShows(c.Request().Context(), model.ShowFilter{MovieID: movieID, HallID: hallID})
	if err != nil {
		return writeError(c, err)
	}
	if shows == nil {
		shows = []model.Show{}
	}
	return c.JSON(http.StatusOK, shows)
}

// GetShow handles GET /shows/:id.
func (h *CatalogHandler) GetShow(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	show, err := h.Store.GetShow(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, show)
}

// DeleteShow handles DELETE /shows/:id together with its bookings.
func (h *CatalogHandler) DeleteShow(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Store.DeleteShow(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
