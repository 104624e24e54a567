package repository

import (
	"context"
	"database/sql"
)

// Store bundles every MySQL repository behind one value so it can be
// handed to the allocation engine, the analytics aggregator and the
// handlers alike.
type Store struct {
	*TheaterRepo
	*MovieRepo
	*HallRepo
	*SeatRepo
	*ShowRepo
	*BookingRepo

	conn *sql.DB
}

// NewStore builds a Store over db.
func NewStore(db *sql.DB) *Store {
	return &Store{
		TheaterRepo: NewTheaterRepo(db),
		MovieRepo:   NewMovieRepo(db),
		HallRepo:    NewHallRepo(db),
		SeatRepo:    NewSeatRepo(db),
		ShowRepo:    NewShowRepo(db),
		BookingRepo: NewBookingRepo(db),
		conn:        db,
	}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error { return s.conn.PingContext(ctx) }
