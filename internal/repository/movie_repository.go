package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/cinema-group-booking/internal/apperror"
	"github.com/iliyamo/cinema-group-booking/internal/model"
)

// MovieRepo provides CRUD on the movies table.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo constructs a MovieRepo.
func NewMovieRepo(db *sql.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

const movieColumns = `id, title, language, duration_min, created_at`

func scanMovie(row interface{ Scan(...any) error }) (*model.Movie, error) {
	var (
		m        model.Movie
		language sql.NullString
		duration sql.NullInt64
	)
	if err := row.Scan(&m.ID, &m.Title, &language, &duration, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Language = stringPtr(language)
	m.DurationMin = intPtr(duration)
	return &m, nil
}

// CreateMovie inserts a movie.  Titles are unique.
func (r *MovieRepo) CreateMovie(ctx context.Context, m *model.Movie) error {
	const op = "repository.CreateMovie"
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO movies (title, language, duration_min) VALUES (?, ?, ?)`,
		m.Title, nullString(m.Language), nullInt(m.DurationMin))
	if err != nil {
		if isDuplicate(err) {
			return apperror.NewDuplicate(op, "movie", "movie title already exists", err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	got, err := r.GetMovie(ctx, uint64(id))
	if err != nil {
		return err
	}
	*m = *got
	return nil
}

// GetMovie returns the movie with id, or a NotFound error.
func (r *MovieRepo) GetMovie(ctx context.Context, id uint64) (*model.Movie, error) {
	const op = "repository.GetMovie"
	m, err := scanMovie(r.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NewNotFound(op, "movie", id)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

// ListMovies returns every movie ordered by id.
func (r *MovieRepo) ListMovies(ctx context.Context) ([]model.Movie, error) {
	const op = "repository.ListMovies"
	rows, err := r.db.QueryContext(ctx, `SELECT `+movieColumns+` FROM movies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]model.Movie, 0)
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return out, nil
}

// UpdateMovie overwrites title, language and duration of an existing
// movie.
func (r *MovieRepo) UpdateMovie(ctx context.Context, m *model.Movie) error {
	const op = "repository.UpdateMovie"
	if _, err := r.GetMovie(ctx, m.ID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE movies SET title = ?, language = ?, duration_min = ? WHERE id = ?`,
		m.Title, nullString(m.Language), nullInt(m.DurationMin), m.ID)
	if err != nil {
		if isDuplicate(err) {
			return apperror.NewDuplicate(op, "movie", "movie title already exists", err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	got, err := r.GetMovie(ctx, m.ID)
	if err != nil {
		return err
	}
	*m = *got
	return nil
}

// DeleteMovie removes a movie together with its shows and bookings.
func (r *MovieRepo) DeleteMovie(ctx context.Context, id uint64) error {
	return deleteByID(ctx, r.db, "repository.DeleteMovie", "movies", "movie", id)
}
