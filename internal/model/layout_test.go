package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAislePositions(t *testing.T) {
	cases := []struct {
		n    int
		want []int
	}{
		{6, []int{1, 2, 3, 4, 5, 6}},
		{8, []int{1, 2, 3, 5, 6, 8}},
		{10, []int{1, 3, 4, 6, 7, 10}},
		{12, []int{1, 4, 5, 8, 9, 12}},
	}
	for _, tc := range cases {
		got := AislePositions(tc.n)
		assert.Len(t, got, len(tc.want), "n=%d", tc.n)
		for _, p := range tc.want {
			assert.True(t, got[p], "n=%d seat %d should be an aisle", tc.n, p)
		}
	}
}

func TestRowSeatsAreDense(t *testing.T) {
	seats := RowSeats(10)
	assert.Len(t, seats, 10)
	for i, s := range seats {
		assert.Equal(t, i+1, s.SeatNumber)
	}
	assert.True(t, seats[0].IsAisle)
	assert.False(t, seats[1].IsAisle)
	assert.True(t, seats[9].IsAisle)
}

func TestValidateRows(t *testing.T) {
	assert.Equal(t, "", ValidateRows([]RowSpec{{1, 10}, {2, 6}}))
	assert.NotEqual(t, "", ValidateRows(nil))
	assert.NotEqual(t, "", ValidateRows([]RowSpec{{0, 10}}))
	assert.NotEqual(t, "", ValidateRows([]RowSpec{{1, 5}}))
	assert.NotEqual(t, "", ValidateRows([]RowSpec{{1, 8}, {1, 9}}))
}

func TestCountSeats(t *testing.T) {
	st := CountSeats([]SeatStatus{{IsBooked: true}, {}, {}, {IsBooked: true}, {}})
	assert.Equal(t, SeatStats{Empty: 3, Booked: 2}, st)
}
