package model

// Hall represents an individual screening hall within a theater.  The
// seat layout is described by an ordered list of rows, each with its own
// seat count.  Hall names are unique per theater.
//
// Fields:
//
//	ID        – primary key identifier.
//	TheaterID – theater that contains the hall.
//	Name      – hall name, unique within the theater.
//	Rows      – rows ordered by row number.
type Hall struct {
	ID        uint64    `json:"id"`         // halls.id
	TheaterID uint64    `json:"theater_id"` // halls.theater_id
	Name      string    `json:"name"`       // halls.name
	Rows      []HallRow `json:"rows"`
}

// HallRow is one row of seats in a hall.  RowNumber is 1-based and unique
// within the hall; seats in the row are numbered 1..SeatCount with no gaps.
type HallRow struct {
	ID        uint64 `json:"id"`         // hall_rows.id
	HallID    uint64 `json:"hall_id"`    // hall_rows.hall_id
	RowNumber int    `json:"row_number"` // hall_rows.row_num
	SeatCount int    `json:"seat_count"` // hall_rows.seat_count
}

// SeatStats counts free and booked seats, either for one show or summed
// over every show of a hall.
type SeatStats struct {
	Empty  int `json:"empty"`
	Booked int `json:"booked"`
}

// CountSeats derives SeatStats from an occupancy snapshot.
func CountSeats(seats []SeatStatus) SeatStats {
	var st SeatStats
	for _, s := range seats {
		if s.IsBooked {
			st.Booked++
		} else {
			st.Empty++
		}
	}
	return st
}
