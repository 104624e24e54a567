package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/iliyamo/cinema-group-booking/internal/model"
	"github.com/labstack/echo/v4"
)

// showStats is the per show occupancy included in hall responses.
type showStats struct {
	ShowID    uint64    `json:"show_id"`
	MovieID   uint64    `json:"movie_id"`
	StartTime time.Time `json:"start_time"`
	Price     int64     `json:"price"`
	model.SeatStats
}

// hallView is a hall with seat counts summed over all of its shows.
type hallView struct {
	model.Hall
	SeatStats model.SeatStats `json:"seat_stats"`
	Shows     []showStats     `json:"shows"`
}

type hallBody struct {
	TheaterID uint64          `json:"theater_id"`
	Name      string          `json:"name"`
	Rows      []model.RowSpec `json:"rows"`
}

// viewHall loads every show of the hall and counts its seats.
func (h *CatalogHandler) viewHall(ctx context.Context, hall model.Hall) (hallView, error) {
	v := hallView{Hall: hall, Shows: []showStats{}}
	if v.Rows == nil {
		v.Rows = []model.HallRow{}
	}
	shows, err := h.Store.ListShows(ctx, model.ShowFilter{HallID: hall.ID})
	if err != nil {
		return v, err
	}
	for _, sh := range shows {
		seats, err := h.Store.SeatOccupancy(ctx, sh.ID)
		if err != nil {
			return v, err
		}
		st := model.CountSeats(seats)
		v.SeatStats.Empty += st.Empty
		v.SeatStats.Booked += st.Booked
		v.Shows = append(v.Shows, showStats{ShowID: sh.ID, MovieID: sh.MovieID, StartTime: sh.StartTime, Price: sh.Price, SeatStats: st})
	}
	return v, nil
}

// CreateHall handles POST /halls.  Seats are generated for every row
// with aisle flags derived from the row length.
func (h *CatalogHandler) CreateHall(c echo.Context) error {
	var body hallBody
	if err := bindBody(c, &body); err != nil {
		return writeError(c, err)
	}
	if body.TheaterID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "theater_id is required"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name is required"})
	}
	ctx := c.Request().Context()
	if _, err := h.Store.GetTheater(ctx, body.TheaterID); err != nil { // 404 before touching halls
		return writeError(c, err)
	}
	hall := &model.Hall{TheaterID: body.TheaterID, Name: name}
	if err := h.Store.CreateHall(ctx, hall, body.Rows); err != nil {
		return writeError(c, err)
	}
	v, err := h.viewHall(ctx, *hall)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// ListHalls handles GET /halls with an optional theater_id filter.
func (h *CatalogHandler) ListHalls(c echo.Context) error {
	theaterID, err := parseQueryID(c, "theater_id")
	if err != nil {
		return writeError(c, err)
	}
	ctx := c.Request().Context()
	halls, err := h.Store.ListHalls(ctx, theaterID)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]hallView, 0, len(halls))
	for _, hall := range halls {
		v, err := h.viewHall(ctx, hall)
		if err != nil {
			return writeError(c, err)
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, out)
}

// GetHall handles GET /halls/:id.
func (h *CatalogHandler) GetHall(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	ctx := c.Request().Context()
	hall, err := h.Store.GetHall(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	v, err := h.viewHall(ctx, *hall)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// UpdateHall handles PUT /halls/:id.  The name and the whole row layout
// are replaced; a hall cannot move to another theater.
func (h *CatalogHandler) UpdateHall(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	var body hallBody
	if err := bindBody(c, &body); err != nil {
		return writeError(c, err)
	}
	ctx := c.Request().Context()
	current, err := h.Store.GetHall(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	if body.TheaterID != 0 && body.TheaterID != current.TheaterID {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "hall cannot be moved to another theater"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		name = current.Name // keep the existing name
	}
	hall, err := h.Store.ReplaceHallLayout(ctx, id, name, body.Rows)
	if err != nil {
		return writeError(c, err)
	}
	v, err := h.viewHall(ctx, *hall)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// DeleteHall handles DELETE /halls/:id.
func (h *CatalogHandler) DeleteHall(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Store.DeleteHall(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
