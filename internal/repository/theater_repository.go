package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-group-booking/internal/apperror"
	"github.com/iliyamo/cinema-group-booking/internal/model"
)

// TheaterRepo provides CRUD on the theaters table.
type TheaterRepo struct {
	db *sql.DB
}

// NewTheaterRepo constructs a TheaterRepo with the given DB handle.
func NewTheaterRepo(db *sql.DB) *TheaterRepo {
	return &TheaterRepo{db: db}
}

// CreateTheater inserts a theater and reads the row back so CreatedAt is
// set.  A duplicate name yields a ConstraintViolation.
func (r *TheaterRepo) CreateTheater(ctx context.Context, t *model.Theater) error {
	const op = "repository.CreateTheater"
	const qInsert = `INSERT INTO theaters (name, city, address) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, t.Name, nullString(t.City), nullString(t.Address))
	if err != nil {
		if isDuplicate(err) {
			return apperror.NewDuplicate(op, "theater", "theater name already exists", err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	got, err := r.GetTheater(ctx, uint64(id))
	if err != nil {
		return err
	}
	*t = *got
	return nil
}

const theaterColumns = `id, name, city, address, created_at`

func scanTheater(row interface{ Scan(...any) error }) (*model.Theater, error) {
	var (
		t             model.Theater
		city, address sql.NullString
	)
	if err := row.Scan(&t.ID, &t.Name, &city, &address, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.City = stringPtr(city)
	t.Address = stringPtr(address)
	return &t, nil
}

// GetTheater returns the theater with id, or a NotFound error.
func (r *TheaterRepo) GetTheater(ctx context.Context, id uint64) (*model.Theater, error) {
	const op = "repository.GetTheater"
	t, err := scanTheater(r.db.QueryRowContext(ctx, `SELECT `+theaterColumns+` FROM theaters WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound(op, "theater", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return t, nil
}

// ListTheaters returns every theater ordered by id.
func (r *TheaterRepo) ListTheaters(ctx context.Context) ([]model.Theater, error) {
	const op = "repository.ListTheaters"
	rows, err := r.db.QueryContext(ctx, `SELECT `+theaterColumns+` FROM theaters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.Theater, 0)
	for rows.Next() {
		t, err := scanTheater(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// DeleteTheater removes a theater.  Halls, shows and bookings go with it
// through ON DELETE CASCADE.
func (r *TheaterRepo) DeleteTheater(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, "repository.DeleteTheater", "theaters", "theater", id)
}

// deleteByID deletes one row of table and reports NotFound when nothing
// matched.
func deleteByID(ctx context.Context, db *sql.DB, op, table, entity string, id uint64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperror.NewNotFound(op, entity, id)
	}
	return nil
}
