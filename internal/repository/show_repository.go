package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/cinema-group-booking/internal/apperror"
	"github.com/iliyamo/cinema-group-booking/internal/model"
)

// ShowRepo provides data access for shows.  Start times are stored as
// UTC DATETIME values with second precision.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

const showColumns = `id, movie_id, hall_id, start_time, price`

func scanShow(row interface{ Scan(...any) error }) (*model.Show, error) {
	var s model.Show
	if err := row.Scan(&s.ID, &s.MovieID, &s.HallID, &s.StartTime, &s.Price); err != nil {
		return nil, err
	}
	s.StartTime = s.StartTime.UTC()
	return &s, nil
}

func storedTime(t time.Time) time.Time { return t.UTC().Truncate(time.Second) }

// CreateShow schedules a show.  A hall hosts at most one show per start
// time; a second one yields a ConstraintViolation.
func (r *ShowRepo) CreateShow(ctx context.Context, s *model.Show) error {
	const op = "repository.CreateShow"
	s.StartTime = storedTime(s.StartTime)
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO shows (movie_id, hall_id, start_time, price) VALUES (?, ?, ?, ?)`,
		s.MovieID, s.HallID, s.StartTime, s.Price)
	if err != nil {
		switch {
		case isDuplicate(err):
			return apperror.NewDuplicate(op, "show", "a show already exists in this hall at this time", err)
		case isMissingParent(err):
			return &apperror.Error{Kind: apperror.NotFound, Op: op, Entity: "movie or hall", Err: err}
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.ID = uint64(id)
	return nil
}

// GetShow returns the show with id, or a NotFound error.
func (r *ShowRepo) GetShow(ctx context.Context, id uint64) (*model.Show, error) {
	const op = "repository.GetShow"
	s, err := scanShow(r.db.QueryRowContext(ctx, `SELECT `+showColumns+` FROM shows WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound(op, "show", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// FindShow looks a show up by movie, hall and start time.
func (r *ShowRepo) FindShow(ctx context.Context, movieID, hallID uint64, start time.Time) (*model.Show, error) {
	const op = "repository.FindShow"
	s, err := scanShow(r.db.QueryRowContext(ctx,
		`SELECT `+showColumns+` FROM shows WHERE movie_id = ? AND hall_id = ? AND start_time = ?`,
		movieID, hallID, storedTime(start)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &apperror.Error{Kind: apperror.NotFound, Op: op, Entity: "show", Msg: "no show for movie, hall and start time"}
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

// ListShows returns shows matching f ordered by start time.
func (r *ShowRepo) ListShows(ctx context.Context, f model.ShowFilter) ([]model.Show, error) {
	const op = "repository.ListShows"
	q := `SELECT ` + showColumns + ` FROM shows WHERE 1 = 1`
	var args []any
	if f.MovieID != 0 {
		q += ` AND movie_id = ?`
		args = append(args, f.MovieID)
	}
	if f.HallID != 0 {
		q += ` AND hall_id = ?`
		args = append(args, f.HallID)
	}
	q += ` ORDER BY start_time, id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.Show, 0)
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// ListShowsForMovie returns the movie's shows other than excludeShowID,
// joined with their hall names and ordered by start time.
func (r *ShowRepo) ListShowsForMovie(ctx context.Context, movieID, excludeShowID uint64) ([]model.ShowSummary, error) {
	const op = "repository.ListShowsForMovie"
	const q = `SELECT s.id, s.hall_id, h.name, s.start_time, s.price
	           FROM shows s
	           JOIN halls h ON h.id = s.hall_id
	           WHERE s.movie_id = ? AND s.id <> ?
	           ORDER BY s.start_time, s.id`
	rows, err := r.db.QueryContext(ctx, q, movieID, excludeShowID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.ShowSummary, 0)
	for rows.Next() {
		var s model.ShowSummary
		if err := rows.Scan(&s.ShowID, &s.HallID, &s.HallName, &s.StartTime, &s.Price); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		s.StartTime = s.StartTime.UTC()
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// ShowPrice returns the per-seat price of a show.
func (r *ShowRepo) ShowPrice(ctx context.Context, showID uint64) (int64, error) {
	return showPrice(ctx, r.db, "repository.ShowPrice", showID)
}

func showPrice(ctx context.Context, q rowQuerier, op string, showID uint64) (int64, error) {
	var price int64
	err := q.QueryRowContext(ctx, `SELECT price FROM shows WHERE id = ?`, showID).Scan(&price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, apperror.NewNotFound(op, "show", showID)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return price, nil
}

// DeleteShow removes a show and its bookings.
func (r *ShowRepo) DeleteShow(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, "repository.DeleteShow", "shows", "show", id)
}
