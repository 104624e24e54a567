package model

// Seat describes a physical seat in a hall row.  The aisle flag is
// informational; aisle seats are bookable like any other seat.
type Seat struct {
	ID         uint64 `json:"id"`          // seats.id
	RowID      uint64 `json:"row_id"`      // seats.row_id
	SeatNumber int    `json:"seat_number"` // seats.seat_number (1-based, dense per row)
	IsAisle    bool   `json:"is_aisle"`    // seats.is_aisle
}

// SeatStatus is one entry of an occupancy snapshot: a seat of the show's
// hall joined with whether it is booked for that show.  Values are
// immutable records and are passed by value.
type SeatStatus struct {
	SeatID     uint64 `json:"seat_id"`
	RowNumber  int    `json:"row_number"`
	SeatNumber int    `json:"seat_number"`
	IsAisle    bool   `json:"is_aisle"`
	IsBooked   bool   `json:"is_booked"`
}
