package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/cinema-group-booking/internal/apperror"
	"github.com/iliyamo/cinema-group-booking/internal/model"
)

// SeatRepo generates seats and reads per-show occupancy.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

// InsertRowSeatsTx inserts seats 1..seatCount of a row in a single
// statement, flagging aisle seats.
func (r *SeatRepo) InsertRowSeatsTx(ctx context.Context, tx *sql.Tx, rowID uint64, seatCount int) error {
	seats := model.RowSeats(seatCount)
	if len(seats) == 0 {
		return nil
	}
	var q strings.Builder
	q.WriteString(`INSERT INTO seats (row_id, seat_number, is_aisle) VALUES `)
	args := make([]any, 0, len(seats)*3)
	for i, s := range seats {
		if i > 0 {
			q.WriteString(",")
		}
		q.WriteString("(?, ?, ?)")
		args = append(args, rowID, s.SeatNumber, s.IsAisle)
	}
	_, err := tx.ExecContext(ctx, q.String(), args...)
	return err
}

const occupancyQuery = `SELECT s.id, r.row_num, s.seat_number, s.is_aisle, bs.id IS NOT NULL AS is_booked
FROM shows sh
JOIN hall_rows r ON r.hall_id = sh.hall_id
JOIN seats s ON s.row_id = r.id
LEFT JOIN booking_seats bs ON bs.show_id = sh.id AND bs.seat_id = s.id
WHERE sh.id = ?
ORDER BY r.row_num, s.seat_number`

// SeatOccupancy returns every seat of the show's hall flagged with its
// booking state for the show, ordered by row number then seat number.
func (r *SeatRepo) SeatOccupancy(ctx context.Context, showID uint64) ([]model.SeatStatus, error) {
	const op = "repository.SeatOccupancy"
	rows, err := r.db.QueryContext(ctx, occupancyQuery, showID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []model.SeatStatus
	for rows.Next() {
		var st model.SeatStatus
		if err := rows.Scan(&st.SeatID, &st.RowNumber, &st.SeatNumber, &st.IsAisle, &st.IsBooked); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(out) == 0 {
		// halls always have seats, so an empty snapshot means no such show
		var one int
		err := r.db.QueryRowContext(ctx, `SELECT 1 FROM shows WHERE id = ?`, showID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound(op, "show", showID)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}
	return out, nil
}
