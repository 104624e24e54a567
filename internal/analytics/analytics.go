// Package analytics aggregates ticket sales per movie.
package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/cinema-group-booking/internal/apperror"
	"github.com/iliyamo/cinema-group-booking/internal/model"
)

// Source lists the bookings of a movie's shows starting within
// [from, to], bounds inclusive.
type Source interface {
	ListBookingsForMovie(ctx context.Context, movieID uint64, from, to time.Time) ([]model.Booking, error)
}

// Aggregator computes MovieSales from a Source.
type Aggregator struct {
	src Source
}

// NewAggregator constructs an Aggregator.
func NewAggregator(src Source) *Aggregator {
	return &Aggregator{src: src}
}

// MovieSales returns the number of seats sold and the gross revenue for
// shows of the movie starting within [start, end].  A window with no
// bookings yields zero values.
func (a *Aggregator) MovieSales(ctx context.Context, movieID uint64, start, end time.Time) (model.MovieSales, error) {
	const op = "analytics.MovieSales"
	if movieID == 0 {
		return model.MovieSales{}, apperror.NewInvalid(op, "movie_id is required")
	}
	if start.After(end) {
		return model.MovieSales{}, apperror.NewInvalid(op, "start must not be after end")
	}
	bookings, err := a.src.ListBookingsForMovie(ctx, movieID, start, end)
	if err != nil {
		return model.MovieSales{}, fmt.Errorf("movie sales for movie %d: %w", movieID, err)
	}
	out := model.MovieSales{MovieID: movieID}
	for _, b := range bookings {
		out.TicketsSold += int64(len(b.SeatIDs))
		out.GMV += b.TotalPrice
	}
	return out, nil
}
