package database

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-group-booking/internal/config"
)

func TestDSN(t *testing.T) {
	cfg := config.DB{User: "app", Pass: "secret", Host: "db", Port: "3306", Name: "cinema"}
	assert.Equal(t, "app:secret@tcp(db:3306)/cinema?charset=utf8mb4&parseTime=true&loc=UTC", DSN(cfg))

	cfg.Pass = ""
	assert.Equal(t, "app@tcp(db:3306)/cinema?charset=utf8mb4&parseTime=true&loc=UTC", DSN(cfg))
}

func TestMigrateRunsEveryStatement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	for _, table := range []string{"theaters", "movies", "halls", "hall_rows", "seats", "shows", "bookings", "booking_seats"} {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS " + table + " ")).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS theaters").WillReturnError(errors.New("denied"))

	err = Migrate(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "statement 1")
}
