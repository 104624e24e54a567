package model

import "time"

// Booking records a group reservation for one show.  It owns one
// BookingSeat per seat and is never modified after it is committed.
// TotalPrice always equals the show price multiplied by len(SeatIDs).
type Booking struct {
	ID         uint64    `json:"booking_id"`  // bookings.id
	ShowID     uint64    `json:"show_id"`     // bookings.show_id
	GroupName  string    `json:"group_name"`  // bookings.group_name
	TotalPrice int64     `json:"total_price"` // bookings.total_price
	SeatIDs    []uint64  `json:"seat_ids"`
	CreatedAt  time.Time `json:"created_at"` // bookings.created_at
}

// BookingSeat links a booking to a seat of its show.  The pair
// (ShowID, SeatID) is unique across all bookings.
type BookingSeat struct {
	ID        uint64 // booking_seats.id
	BookingID uint64 // booking_seats.booking_id
	ShowID    uint64 // booking_seats.show_id
	SeatID    uint64 // booking_seats.seat_id
}

// Suggestion is an alternative show of the same movie that can seat the
// whole group together.  Block holds the seat ids of the first block found.
type Suggestion struct {
	ShowID    uint64    `json:"show_id"`
	HallID    uint64    `json:"hall_id"`
	HallName  string    `json:"hall_name"`
	StartTime time.Time `json:"start_time"`
	Block     []uint64  `json:"contiguous_block"`
}

// MovieSales is the analytics result for a movie over a time window.
type MovieSales struct {
	MovieID     uint64 `json:"movie_id"`
	TicketsSold int64  `json:"tickets_sold"`
	GMV         int64  `json:"gmv"`
}
