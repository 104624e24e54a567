package model

import "time"

// Show represents a scheduled screening of a movie in a hall.  A hall can
// only host one show per start time.  Price is the flat per-seat price.
//
// Fields:
//
//	ID        – primary key identifier.
//	MovieID   – movie being screened.
//	HallID    – hall where the show takes place.
//	StartTime – when the show begins (UTC).
//	Price     – price of a single seat.
type Show struct {
	ID        uint64    `json:"id"`         // shows.id
	MovieID   uint64    `json:"movie_id"`   // shows.movie_id
	HallID    uint64    `json:"hall_id"`    // shows.hall_id
	StartTime time.Time `json:"start_time"` // shows.start_time
	Price     int64     `json:"price"`      // shows.price
}

// ShowSummary is a show joined with its hall name.  It is what the
// planner walks when looking for alternative screenings.
type ShowSummary struct {
	ShowID    uint64    `json:"show_id"`
	HallID    uint64    `json:"hall_id"`
	HallName  string    `json:"hall_name"`
	StartTime time.Time `json:"start_time"`
	Price     int64     `json:"price"`
}

// ShowFilter narrows show listings.  Zero values mean "any".
type ShowFilter struct {
	MovieID uint64
	HallID  uint64
}
