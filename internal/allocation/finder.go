// Package allocation implements the seat allocation engine: finding a
// contiguous block of free seats in a row, planning a show, committing
// the plan with a bounded optimistic retry and suggesting alternative
// shows when the requested one cannot seat the group together.
package allocation

import (
	"sort"

	"github.com/iliyamo/cinema-group-booking/internal/model"
)

// FindBlock returns the seat ids of the first run of k free seats with
// consecutive seat numbers in row.  The row is scanned in ascending seat
// number.  A booked seat empties the running window; a gap in the seat
// numbering restarts the window at the current seat.  The input slice is
// not modified.
//
// It reports false when k < 1, when the row has fewer than k seats, or
// when no such run exists.
func FindBlock(row []model.SeatStatus, k int) ([]uint64, bool) {
	if k < 1 || len(row) < k {
		return nil, false
	}

	seats := make([]model.SeatStatus, len(row))
	copy(seats, row)
	sort.SliceStable(seats, func(i, j int) bool { return seats[i].SeatNumber < seats[j].SeatNumber })

	window := make([]uint64, 0, k)
	prev := 0
	for i, s := range seats {
		if s.IsBooked {
			window = window[:0]
			prev = s.SeatNumber
			continue
		}
		if i > 0 && s.SeatNumber != prev+1 {
			window = window[:0]
		}
		window = append(window, s.SeatID)
		prev = s.SeatNumber
		if len(window) == k {
			out := make([]uint64, k)
			copy(out, window)
			return out, true
		}
	}
	return nil, false
}
