package handler

import (
	"net/http"
	"time"

	"github.com/iliyamo/cinema-group-booking/internal/model"
	"github.com/labstack/echo/v4"
)

// SeedHandler loads a small fixture for local development.  It is only
// routed when APP_ENV=dev.
type SeedHandler struct {
	Store Store
	Now   func() time.Time
}

// NewSeedHandler constructs a SeedHandler using the wall clock.
func NewSeedHandler(store Store) *SeedHandler {
	return &SeedHandler{Store: store, Now: time.Now}
}

// Seed handles POST /dev/seed.  It creates one theater, one hall with
// rows of 10, 8 and 12 seats, one movie and two shows starting three and
// six hours from now.  Running it twice yields 409 because the names are
// already taken.
func (h *SeedHandler) Seed(c echo.Context) error {
	ctx := c.Request().Context()
	city, address := "Jabalpur", "Main Road"
	th := &model.Theater{Name: "Galaxy Cinema", City: &city, Address: &address}
	if err := h.Store.CreateTheater(ctx, th); err != nil {
		return writeError(c, err)
	}
	hall := &model.Hall{TheaterID: th.ID, Name: "Hall 1"}
	rows := []model.RowSpec{{RowNumber: 1, SeatCount: 10}, {RowNumber: 2, SeatCount: 8}, {RowNumber: 3, SeatCount: 12}}
	if err := h.Store.CreateHall(ctx, hall, rows); err != nil {
		return writeError(c, err)
	}
	lang, duration := "English", 169
	m := &model.Movie{Title: "Interstellar", Language: &lang, DurationMin: &duration}
	if err := h.Store.CreateMovie(ctx, m); err != nil {
		return writeError(c, err)
	}
	now := h.Now().UTC().Truncate(time.Second)
	showIDs := make([]uint64, 0, 2)
	for _, offset := range []time.Duration{3 * time.Hour, 6 * time.Hour} {
		sh := &model.Show{MovieID: m.ID, HallID: hall.ID, StartTime: now.Add(offset), Price: 250}
		if err := h.Store.CreateShow(ctx, sh); err != nil {
			return writeError(c, err)
		}
		showIDs = append(showIDs, sh.ID)
	}
	return c.JSON(http.StatusCreated, map[string]any{
		"status":     "seeded",
		"theater_id": th.ID,
		"hall_id":    hall.ID,
		"movie_id":   m.ID,
		"show_ids":   showIDs,
	})
}
