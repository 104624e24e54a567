package handler // handler defines the http handlers of the booking service

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/cinema-group-booking/internal/apperror"
	"github.com/iliyamo/cinema-group-booking/internal/model"
	"github.com/labstack/echo/v4"
)

// TheaterStore persists theaters.
type TheaterStore interface {
	CreateTheater(ctx context.Context, t *model.Theater) error
	GetTheater(ctx context.Context, id uint64) (*model.Theater, error)
	ListTheaters(ctx context.Context) ([]model.Theater, error)
	DeleteTheater(ctx context.Context, id uint64) error
}

// MovieStore persists movies.
type MovieStore interface {
	CreateMovie(ctx context.Context, m *model.Movie) error
	GetMovie(ctx context.Context, id uint64) (*model.Movie, error)
	ListMovies(ctx context.Context) ([]model.Movie, error)
	UpdateMovie(ctx context.Context, m *model.Movie) error
	DeleteMovie(ctx context.Context, id uint64) error
}

// HallStore persists halls together with their rows and seats.
type HallStore interface {
	CreateHall(ctx context.Context, h *model.Hall, rows []model.RowSpec) error
	GetHall(ctx context.Context, id uint64) (*model.Hall, error)
	ListHalls(ctx context.Context, theaterID uint64) ([]model.Hall, error)
	ReplaceHallLayout(ctx context.Context, hallID uint64, name string, rows []model.RowSpec) (*model.Hall, error)
	DeleteHall(ctx context.Context, id uint64) error
}

// ShowStore persists shows.
type ShowStore interface {
	CreateShow(ctx context.Context, s *model.Show) error
	GetShow(ctx context.Context, id uint64) (*model.Show, error)
	ListShows(ctx context.Context, f model.ShowFilter) ([]model.Show, error)
	DeleteShow(ctx context.Context, id uint64) error
}

// OccupancyReader returns the occupancy snapshot of a show.
type OccupancyReader interface {
	SeatOccupancy(ctx context.Context, showID uint64) ([]model.SeatStatus, error)
}

// BookingReader loads committed bookings.
type BookingReader interface {
	GetBooking(ctx context.Context, id uint64) (*model.Booking, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Store is the full set of store operations the handlers use.  Both the
// MySQL repository store and the in-memory store satisfy it.
type Store interface {
	TheaterStore
	MovieStore
	HallStore
	ShowStore
	OccupancyReader
	BookingReader
	Pinger
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64) // parse the path segment
	if err != nil || id == 0 {
		return 0, apperror.NewInvalid("handler.parseID", "invalid "+name)
	}
	return id, nil
}

// parseQueryID reads an optional numeric query parameter.  A missing
// parameter yields zero.
func parseQueryID(c echo.Context, name string) (uint64, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, apperror.NewInvalid("handler.parseQueryID", "invalid "+name)
	}
	return id, nil
}

// timeLayouts are the accepted formats for timestamps in query strings
// and request bodies.  Values without a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseTime parses a timestamp in any of timeLayouts.
func parseTime(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, apperror.NewInvalid("handler.parseTime", field+" is required")
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperror.NewInvalid("handler.parseTime", "invalid "+field+" format")
}

// statusOf maps an error kind to its HTTP status.
func statusOf(err error) int {
	switch apperror.KindOf(err) {
	case apperror.NotFound:
		return http.StatusNotFound
	case apperror.Invalid:
		return http.StatusBadRequest
	case apperror.ConstraintViolation, apperror.ReservationConflict:
		return http.StatusConflict
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"error": message}.  Internal errors are
// logged and hidden from the client.
func writeError(c echo.Context, err error) error {
	status := statusOf(err)
	var ae *apperror.Error
	msg := http.StatusText(status)
	switch {
	case status >= http.StatusInternalServerError:
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Path(), err)
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	case errors.As(err, &ae) && ae.Msg != "":
		msg = ae.Msg
	case errors.As(err, &ae) && ae.Kind == apperror.NotFound && ae.Entity != "":
		msg = ae.Entity + " not found"
	}
	return c.JSON(status, map[string]string{"error": msg})
}

// bindBody decodes the JSON body or reports an Invalid error.
func bindBody(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return apperror.NewInvalid("handler.bindBody", "invalid request body")
	}
	return nil
}

// optionalString trims s and returns nil when it is empty.
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
