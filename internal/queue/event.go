// Package queue carries booking events over RabbitMQ: the publisher used
// by the HTTP server and the consumer run by the worker.
package queue

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/cinema-group-booking/internal/model"
)

// BookingConfirmedEvent is published once per committed booking.  It
// carries enough for consumers to log or notify without querying the
// database.
type BookingConfirmedEvent struct {
	EventID     string    `json:"event_id"`
	BookingID   uint64    `json:"booking_id"`
	ShowID      uint64    `json:"show_id"`
	MovieID     uint64    `json:"movie_id"`
	HallID      uint64    `json:"hall_id"`
	GroupName   string    `json:"group_name"`
	SeatIDs     []uint64  `json:"seat_ids"`
	TotalPrice  int64     `json:"total_price"`
	StartTime   time.Time `json:"start_time"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// NewBookingConfirmed builds the event for booking b of show.
func NewBookingConfirmed(b model.Booking, show model.Show) BookingConfirmedEvent {
	confirmed := b.CreatedAt
	if confirmed.IsZero() {
		confirmed = time.Now()
	}
	return BookingConfirmedEvent{
		EventID:     uuid.NewString(),
		BookingID:   b.ID,
		ShowID:      show.ID,
		MovieID:     show.MovieID,
		HallID:      show.HallID,
		GroupName:   b.GroupName,
		SeatIDs:     append([]uint64(nil), b.SeatIDs...),
		TotalPrice:  b.TotalPrice,
		StartTime:   show.StartTime.UTC(),
		ConfirmedAt: confirmed.UTC(),
	}
}

// LogLine renders the event as one line of logs/booking.log.
func (ev BookingConfirmedEvent) LogLine() string {
	seats := make([]string, 0, len(ev.SeatIDs))
	for _, id := range ev.SeatIDs {
		seats = append(seats, fmt.Sprint(id))
	}
	return fmt.Sprintf("[%s] Booking confirmed | booking_id=%d | event_id=%s | show_id=%d | movie_id=%d | hall_id=%d | group=%q | starts=%s | total=%d | seats=[%s]\n",
		ev.ConfirmedAt.Format(time.RFC3339), ev.BookingID, ev.EventID, ev.ShowID, ev.MovieID, ev.HallID,
		ev.GroupName, ev.StartTime.Format(time.RFC3339), ev.TotalPrice, strings.Join(seats, ","))
}
