package model

// MinSeatsPerRow is the smallest row a hall may declare.  Rows shorter
// than this cannot carry the two inner aisles.
const MinSeatsPerRow = 6

// AislePositions returns the seat numbers flagged as aisle seats in a row
// of n seats: both row ends plus two inner aisles splitting the row into
// roughly equal thirds.  Each inner aisle is a pair of adjacent seats.
func AislePositions(n int) map[int]bool {
	cut1 := n / 3
	if cut1 < 2 {
		cut1 = 2
	}
	cut2 := 2 * n / 3
	if cut2 < cut1+2 {
		cut2 = cut1 + 2
	}
	out := map[int]bool{1: true, n: true}
	for _, p := range []int{cut1, cut1 + 1, cut2, cut2 + 1} {
		if p >= 1 && p <= n {
			out[p] = true
		}
	}
	return out
}

// RowSeats generates the seats of a row with seatCount seats, numbered
// 1..seatCount.  RowID is left zero for the caller to fill.
func RowSeats(seatCount int) []Seat {
	aisles := AislePositions(seatCount)
	seats := make([]Seat, 0, seatCount)
	for n := 1; n <= seatCount; n++ {
		seats = append(seats, Seat{SeatNumber: n, IsAisle: aisles[n]})
	}
	return seats
}

// RowSpec is the client supplied description of one row.
type RowSpec struct {
	RowNumber int `json:"row_number"`
	SeatCount int `json:"seat_count"`
}

// ValidateRows checks a hall layout: at least one row, positive and
// distinct row numbers, at least MinSeatsPerRow seats each.  It returns a
// client facing message, or "" when the layout is valid.
func ValidateRows(rows []RowSpec) string {
	if len(rows) == 0 {
		return "hall must have at least one row"
	}
	seen := make(map[int]bool, len(rows))
	for _, r := range rows {
		if r.RowNumber < 1 {
			return "row_number must be >= 1"
		}
		if r.SeatCount < MinSeatsPerRow {
			return "seat_count must be >= 6"
		}
		if seen[r.RowNumber] {
			return "row numbers must be unique within a hall"
		}
		seen[r.RowNumber] = true
	}
	return ""
}
