package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-group-booking/internal/apperror"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestCommitBookingSuccess(t *testing.T) {
	db, mock := newMock(t)
	created := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT price FROM shows WHERE id = ?`)).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow(250))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookings (show_id, group_name, total_price) VALUES (?, ?, ?)`)).
		WithArgs(uint64(7), "team", int64(750)).
		WillReturnResult(sqlmock.NewResult(41, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO booking_seats (booking_id, show_id, seat_id) VALUES (?, ?, ?),(?, ?, ?),(?, ?, ?)`)).
		WithArgs(uint64(41), uint64(7), uint64(5), uint64(41), uint64(7), uint64(6), uint64(41), uint64(7), uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT created_at FROM bookings WHERE id = ?`)).
		WithArgs(uint64(41)).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))
	mock.ExpectCommit()

	b, err := NewBookingRepo(db).CommitBooking(context.Background(), 7, []uint64{5, 6, 7}, "team")
	require.NoError(t, err)
	assert.Equal(t, uint64(41), b.ID)
	assert.Equal(t, int64(750), b.TotalPrice)
	assert.Equal(t, []uint64{5, 6, 7}, b.SeatIDs)
	assert.Equal(t, created, b.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitBookingDuplicateSeatRollsBack(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT price FROM shows WHERE id = ?`)).
		WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow(100))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO bookings`)).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO booking_seats`)).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '7-5' for key 'uq_seat_once_per_show'"})
	mock.ExpectRollback()

	_, err := NewBookingRepo(db).CommitBooking(context.Background(), 7, []uint64{5, 6}, "team")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.ReservationConflict))

	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, uint64(7), ae.ShowID)
	assert.Equal(t, []uint64{5, 6}, ae.SeatIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitBookingUnknownShow(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT price FROM shows WHERE id = ?`)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := NewBookingRepo(db).CommitBooking(context.Background(), 99, []uint64{1}, "x")
	assert.True(t, apperror.Is(err, apperror.NotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShowPrice(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT price FROM shows WHERE id = ?`)).
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"price"}).AddRow(250))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT price FROM shows WHERE id = ?`)).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	repo := NewShowRepo(db)
	price, err := repo.ShowPrice(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(250), price)

	_, err = repo.ShowPrice(context.Background(), 99)
	assert.True(t, apperror.Is(err, apperror.NotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommitBookingRejectsEmptySeatList(t *testing.T) {
	db, mock := newMock(t)
	_, err := NewBookingRepo(db).CommitBooking(context.Background(), 1, nil, "x")
	assert.True(t, apperror.Is(err, apperror.Invalid))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBookingsForMovieGroupsSeats(t *testing.T) {
	db, mock := newMock(t)
	from := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	at := from.Add(time.Hour)

	mock.ExpectQuery(`SELECT b.id, b.show_id, b.group_name, b.total_price, b.created_at, bs.seat_id`).
		WithArgs(uint64(3), from, to).
		WillReturnRows(sqlmock.NewRows([]string{"id", "show_id", "group_name", "total_price", "created_at", "seat_id"}).
			AddRow(1, 10, "a", 500, at, 11).
			AddRow(1, 10, "a", 500, at, 12).
			AddRow(2, 10, "b", 250, at, 13))

	got, err := NewBookingRepo(db).ListBookingsForMovie(context.Background(), 3, from, to)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []uint64{11, 12}, got[0].SeatIDs)
	assert.Equal(t, []uint64{13}, got[1].SeatIDs)
	assert.Equal(t, int64(250), got[1].TotalPrice)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBookingNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`SELECT id, show_id, group_name, total_price, created_at FROM bookings`).
		WithArgs(uint64(5)).
		WillReturnError(sql.ErrNoRows)

	_, err := NewBookingRepo(db).GetBooking(context.Background(), 5)
	assert.True(t, apperror.Is(err, apperror.NotFound))
}
