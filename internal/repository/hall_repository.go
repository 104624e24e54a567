package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/iliyamo/cinema-group-booking/internal/apperror"
	"github.com/iliyamo/cinema-group-booking/internal/model"
)

// HallRepo stores halls together with their rows.  Seats are generated
// from the row seat counts by SeatRepo inside the same transaction.
type HallRepo struct {
	db    *sql.DB
	seats *SeatRepo
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db, seats: NewSeatRepo(db)}
}

// CreateHall inserts the hall, its rows and every seat of every row in
// one transaction.  h.ID and h.Rows are filled on success.
func (r *HallRepo) CreateHall(ctx context.Context, h *model.Hall, rows []model.RowSpec) error {
	const op = "repository.CreateHall"
	if msg := model.ValidateRows(rows); msg != "" {
		return apperror.NewInvalid(op, msg)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `INSERT INTO halls (theater_id, name) VALUES (?, ?)`, h.TheaterID, h.Name)
	if err != nil {
		switch {
		case isDuplicate(err):
			return apperror.NewDuplicate(op, "hall", "hall name already exists in this theater", err)
		case isMissingParent(err):
			return apperror.NewNotFound(op, "theater", h.TheaterID)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	h.ID = uint64(id)

	built, err := r.insertRowsTx(ctx, tx, h.ID, rows)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	committed = true
	h.Rows = built
	return nil
}

// insertRowsTx inserts rows in ascending row number and generates their
// seats.
func (r *HallRepo) insertRowsTx(ctx context.Context, tx *sql.Tx, hallID uint64, specs []model.RowSpec) ([]model.HallRow, error) {
	sorted := append([]model.RowSpec(nil), specs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RowNumber < sorted[j].RowNumber })

	out := make([]model.HallRow, 0, len(sorted))
	for _, spec := range sorted {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO hall_rows (hall_id, row_num, seat_count) VALUES (?, ?, ?)`,
			hallID, spec.RowNumber, spec.SeatCount)
		if err != nil {
			return nil, err
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		if err := r.seats.InsertRowSeatsTx(ctx, tx, uint64(rowID), spec.SeatCount); err != nil {
			return nil, err
		}
		out = append(out, model.HallRow{ID: uint64(rowID), HallID: hallID, RowNumber: spec.RowNumber, SeatCount: spec.SeatCount})
	}
	return out, nil
}

// GetHall returns the hall with its rows ordered by row number.
func (r *HallRepo) GetHall(ctx context.Context, id uint64) (*model.Hall, error) {
	const op = "repository.GetHall"
	var h model.Hall
	err := r.db.QueryRowContext(ctx, `SELECT id, theater_id, name FROM halls WHERE id = ?`, id).
		Scan(&h.ID, &h.TheaterID, &h.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound(op, "hall", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	rows, err := r.rowsOf(ctx, []uint64{id})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	h.Rows = rows[id]
	return &h, nil
}

// ListHalls returns halls with their rows.  A zero theaterID lists every
// hall.
func (r *HallRepo) ListHalls(ctx context.Context, theaterID uint64) ([]model.Hall, error) {
	const op = "repository.ListHalls"
	q := `SELECT id, theater_id, name FROM halls`
	var args []any
	if theaterID != 0 {
		q += ` WHERE theater_id = ?`
		args = append(args, theaterID)
	}
	q += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.Hall, 0)
	var ids []uint64
	for rows.Next() {
		var h model.Hall
		if err := rows.Scan(&h.ID, &h.TheaterID, &h.Name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, h)
		ids = append(ids, h.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(ids) == 0 {
		return out, nil
	}
	byHall, err := r.rowsOf(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range out {
		out[i].Rows = byHall[out[i].ID]
	}
	return out, nil
}

// rowsOf loads the rows of the given halls keyed by hall id.
func (r *HallRepo) rowsOf(ctx context.Context, hallIDs []uint64) (map[uint64][]model.HallRow, error) {
	q := `SELECT id, hall_id, row_num, seat_count FROM hall_rows WHERE hall_id IN (` + placeholders(len(hallIDs)) + `) ORDER BY hall_id, row_num`
	args := make([]any, 0, len(hallIDs))
	for _, id := range hallIDs {
		args = append(args, id)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uint64][]model.HallRow, len(hallIDs))
	for rows.Next() {
		var hr model.HallRow
		if err := rows.Scan(&hr.ID, &hr.HallID, &hr.RowNumber, &hr.SeatCount); err != nil {
			return nil, err
		}
		out[hr.HallID] = append(out[hr.HallID], hr)
	}
	return out, rows.Err()
}

// ReplaceHallLayout renames the hall and rebuilds its rows and seats in
// one transaction.  It refuses while any booking references a show of
// the hall, since dropping seats would orphan those bookings.
func (r *HallRepo) ReplaceHallLayout(ctx context.Context, hallID uint64, name string, rows []model.RowSpec) (*model.Hall, error) {
	const op = "repository.ReplaceHallLayout"
	if msg := model.ValidateRows(rows); msg != "" {
		return nil, apperror.NewInvalid(op, msg)
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

	var h model.Hall
	err = tx.QueryRowContext(ctx, `SELECT id, theater_id, name FROM halls WHERE id = ? FOR UPDATE`, hallID).
		Scan(&h.ID, &h.TheaterID, &h.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound(op, "hall", hallID)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var booked int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings b JOIN shows s ON s.id = b.show_id WHERE s.hall_id = ?`, hallID).
		Scan(&booked)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if booked > 0 {
		return nil, apperror.NewDuplicate(op, "hall", "hall layout cannot change while bookings exist", nil)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE halls SET name = ? WHERE id = ?`, name, hallID); err != nil {
		if isDuplicate(err) {
			return nil, apperror.NewDuplicate(op, "hall", "hall name already exists in this theater", err)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	// seats go with their rows through ON DELETE CASCADE
	if _, err := tx.ExecContext(ctx, `DELETE FROM hall_rows WHERE hall_id = ?`, hallID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	built, err := r.insertRowsTx(ctx, tx, hallID, rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}
	committed = true
	h.Name = name
	h.Rows = built
	return &h, nil
}

// DeleteHall removes a hall with its rows, seats, shows and bookings.
func (r *HallRepo) DeleteHall(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, "repository.DeleteHall", "halls", "hall", id)
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, 0, 2*n)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ',')
		}
		b = append(b, '?')
	}
	return string(b)
}
