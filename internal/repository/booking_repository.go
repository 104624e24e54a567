package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/cinema-group-booking/internal/apperror"
	"github.com/iliyamo/cinema-group-booking/internal/model"
)

// BookingRepo commits and reads group bookings.  The booking_seats
// unique key (show_id, seat_id) is the only serialisation point between
// competing bookings; no row locks are taken.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CommitBooking creates a booking and one booking_seats row per seat in
// a single transaction.  total_price is the show price times the seat
// count.  If any seat is already booked for the show the transaction is
// rolled back and a ReservationConflict is returned.
func (r *BookingRepo) CommitBooking(ctx context.Context, showID uint64, seatIDs []uint64, groupName string) (*model.Booking, error) {
	const op = "repository.CommitBooking"
	if len(seatIDs) == 0 {
		return nil, apperror.NewInvalid(op, "no seats to book")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin: %w", op, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	price, err := showPrice(ctx, tx, op, showID)
	if err != nil {
		return nil, err
	}

	b := &model.Booking{
		ShowID:     showID,
		GroupName:  groupName,
		TotalPrice: price * int64(len(seatIDs)),
		SeatIDs:    append([]uint64(nil), seatIDs...),
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO bookings (show_id, group_name, total_price) VALUES (?, ?, ?)`,
		showID, groupName, b.TotalPrice)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	b.ID = uint64(id)

	if err := insertBookingSeatsTx(ctx, tx, b.ID, showID, seatIDs); err != nil {
		if isDuplicate(err) {
			return nil, apperror.NewConflict(op, showID, seatIDs, err)
		}
		if isMissingParent(err) {
			return nil, &apperror.Error{Kind: apperror.NotFound, Op: op, Entity: "seat", ShowID: showID, SeatIDs: seatIDs, Err: err}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.QueryRowContext(ctx, `SELECT created_at FROM bookings WHERE id = ?`, b.ID).Scan(&b.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		if isDuplicate(err) {
			return nil, apperror.NewConflict(op, showID, seatIDs, err)
		}
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}
	committed = true
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}

// insertBookingSeatsTx inserts all booking_seats rows in one statement.
func insertBookingSeatsTx(ctx context.Context, tx *sql.Tx, bookingID, showID uint64, seatIDs []uint64) error {
	var q strings.Builder
	q.WriteString(`INSERT INTO booking_seats (booking_id, show_id, seat_id) VALUES `)
	args := make([]any, 0, len(seatIDs)*3)
	for i, sid := range seatIDs {
		if i > 0 {
			q.WriteString(",")
		}
		q.WriteString("(?, ?, ?)")
		args = append(args, bookingID, showID, sid)
	}
	_, err := tx.ExecContext(ctx, q.String(), args...)
	return err
}

// GetBooking returns a booking with its seat ids in booking order.
func (r *BookingRepo) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	const op = "repository.GetBooking"
	var b model.Booking
	err := r.db.QueryRowContext(ctx,
		`SELECT id, show_id, group_name, total_price, created_at FROM bookings WHERE id = ?`, id).
		Scan(&b.ID, &b.ShowID, &b.GroupName, &b.TotalPrice, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound(op, "booking", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	b.CreatedAt = b.CreatedAt.UTC()

	rows, err := r.db.QueryContext(ctx, `SELECT seat_id FROM booking_seats WHERE booking_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()
	b.SeatIDs = make([]uint64, 0)
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		b.SeatIDs = append(b.SeatIDs, sid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &b, nil
}

// ListBookingsForMovie returns the bookings of the movie's shows that
// start within [from, to], bounds inclusive, with their seat ids.
func (r *BookingRepo) ListBookingsForMovie(ctx context.Context, movieID uint64, from, to time.Time) ([]model.Booking, error) {
	const op = "repository.ListBookingsForMovie"
	const q = `SELECT b.id, b.show_id, b.group_name, b.total_price, b.created_at, bs.seat_id
	           FROM bookings b
	           JOIN shows s ON s.id = b.show_id
	           JOIN booking_seats bs ON bs.booking_id = b.id
	           WHERE s.movie_id = ? AND s.start_time >= ? AND s.start_time <= ?
	           ORDER BY b.id, bs.id`
	rows, err := r.db.QueryContext(ctx, q, movieID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.Booking, 0)
	for rows.Next() {
		var (
			b      model.Booking
			seatID uint64
		)
		if err := rows.Scan(&b.ID, &b.ShowID, &b.GroupName, &b.TotalPrice, &b.CreatedAt, &seatID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if n := len(out); n > 0 && out[n-1].ID == b.ID {
			out[n-1].SeatIDs = append(out[n-1].SeatIDs, seatID)
			continue
		}
		b.SeatIDs = []uint64{seatID}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}
