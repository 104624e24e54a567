package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/cinema-group-booking/internal/allocation"
	"github.com/iliyamo/cinema-group-booking/internal/apperror"
	"github.com/iliyamo/cinema-group-booking/internal/model"
	"github.com/labstack/echo/v4"
)

// BookingHandler exposes the group booking flow over HTTP.
type BookingHandler struct {
	Booker   *allocation.Booker // Booker plans and commits bookings
	Layout   OccupancyReader    // Layout serves raw occupancy snapshots
	Bookings BookingReader      // Bookings loads committed bookings
	Timeout  time.Duration      // Timeout bounds one booking request; zero disables it
}

// NewBookingHandler constructs a BookingHandler and panics if any
// dependency is nil.
func NewBookingHandler(booker *allocation.Booker, layout OccupancyReader, bookings BookingReader, timeout time.Duration) *BookingHandler {
	if booker == nil || layout == nil || bookings == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Booker: booker, Layout: layout, Bookings: bookings, Timeout: timeout}
}

type bookingBody struct {
	MovieID   uint64 `json:"movie_id"`
	HallID    uint64 `json:"hall_id"`
	StartTime string `json:"start_time"`
	GroupSize int    `json:"group_size"`
	GroupName string `json:"group_name"`
}

type bookingSuccess struct {
	Status    string          `json:"status"`
	Booking   *model.Booking  `json:"booking"`
	SeatStats model.SeatStats `json:"seat_stats"`
}

type bookingFailure struct {
	Status       string             `json:"status"`
	Reason       string             `json:"reason"`
	Alternatives []model.Suggestion `json:"alternatives"`
}

func (h *BookingHandler) requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	if h.Timeout <= 0 {
		return context.WithCancel(c.Request().Context())
	}
	return context.WithTimeout(c.Request().Context(), h.Timeout)
}

// CreateBooking handles POST /bookings.  A booked group yields 201; a
// request that cannot be seated yields 200 with alternative shows, or
// 409 when no show of the movie can seat the group together.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var body bookingBody
	if err := bindBody(c, &body); err != nil {
		return writeError(c, err)
	}
	start, err := parseTime("start_time", body.StartTime)
	if err != nil {
		return writeError(c, err)
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	res, err := h.Booker.Book(ctx, allocation.Request{
		MovieID:   body.MovieID,
		HallID:    body.HallID,
		StartTime: start,
		GroupSize: body.GroupSize,
		GroupName: body.GroupName,
	})
	if err != nil {
		return writeError(c, err)
	}
	if res.Status == allocation.StatusSuccess {
		return c.JSON(http.StatusCreated, bookingSuccess{Status: res.Status, Booking: res.Booking, SeatStats: res.SeatStats})
	}
	out := bookingFailure{Status: res.Status, Reason: res.Reason, Alternatives: res.Alternatives}
	if len(out.Alternatives) == 0 {
		out.Alternatives = []model.Suggestion{}
		out.Reason = "No contiguous seats available in any show"
		return c.JSON(http.StatusConflict, out)
	}
	return c.JSON(http.StatusOK, out)
}

// GetBooking handles GET /bookings/:id.
func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	b, err := h.Bookings.GetBooking(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// ShowLayout handles GET /bookings/shows/:id/layout and returns every
// seat of the show's hall with its booked flag.
func (h *BookingHandler) ShowLayout(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return writeError(c, err)
	}
	seats, err := h.Layout.SeatOccupancy(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if seats == nil {
		seats = []model.SeatStatus{}
	}
	return c.JSON(http.StatusOK, seats)
}

// Suggestions handles GET /suggestions.  It lists other shows of the
// movie that can seat the group together without booking anything.
func (h *BookingHandler) Suggestions(c echo.Context) error {
	const op = "handler.Suggestions"
	movieID, err := parseQueryID(c, "movie_id")
	if err != nil {
		return writeError(c, err)
	}
	hallID, err := parseQueryID(c, "hall_id")
	if err != nil {
		return writeError(c, err)
	}
	start, err := parseTime("start_time", c.QueryParam("start_time"))
	if err != nil {
		return writeError(c, err)
	}
	size, err := strconv.Atoi(strings.TrimSpace(c.QueryParam("group_size")))
	if err != nil {
		return writeError(c, apperror.NewInvalid(op, "group_size must be a number"))
	}
	ctx, cancel := h.requestContext(c)
	defer cancel()

	alts, err := h.Booker.Suggestions(ctx, allocation.Request{MovieID: movieID, HallID: hallID, StartTime: start, GroupSize: size})
	if err != nil {
		return writeError(c, err)
	}
	if alts == nil {
		alts = []model.Suggestion{}
	}
	return c.JSON(http.StatusOK, map[string]any{"alternatives": alts})
}
