package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-group-booking/internal/apperror"
	"github.com/iliyamo/cinema-group-booking/internal/model"
)

type fixture struct {
	store *Store
	movie model.Movie
	hall  model.Hall
	show  model.Show
}

func newFixture(t *testing.T, rows ...model.RowSpec) fixture {
	t.Helper()
	ctx := context.Background()
	s := New()
	th := model.Theater{Name: "Odeon"}
	require.NoError(t, s.CreateTheater(ctx, &th))
	mv := model.Movie{Title: "Arrival"}
	require.NoError(t, s.CreateMovie(ctx, &mv))
	h := model.Hall{TheaterID: th.ID, Name: "Hall 1"}
	require.NoError(t, s.CreateHall(ctx, &h, rows))
	sh := model.Show{MovieID: mv.ID, HallID: h.ID, StartTime: time.Date(2030, 1, 1, 18, 0, 0, 0, time.UTC), Price: 250}
	require.NoError(t, s.CreateShow(ctx, &sh))
	return fixture{store: s, movie: mv, hall: h, show: sh}
}

func TestCreateHallGeneratesSeats(t *testing.T) {
	f := newFixture(t, model.RowSpec{RowNumber: 2, SeatCount: 8}, model.RowSpec{RowNumber: 1, SeatCount: 10})
	require.Len(t, f.hall.Rows, 2)
	assert.Equal(t, 1, f.hall.Rows[0].RowNumber)

	seats, err := f.store.SeatOccupancy(context.Background(), f.show.ID)
	require.NoError(t, err)
	require.Len(t, seats, 18)
	assert.Equal(t, 1, seats[0].RowNumber)
	assert.Equal(t, 1, seats[0].SeatNumber)
	assert.True(t, seats[0].IsAisle)
	assert.Equal(t, 2, seats[17].RowNumber)
	assert.Equal(t, 8, seats[17].SeatNumber)
}

func TestUniquenessRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.RowSpec{RowNumber: 1, SeatCount: 6})

	err := f.store.CreateTheater(ctx, &model.Theater{Name: "odeon"})
	assert.True(t, apperror.Is(err, apperror.ConstraintViolation))

	err = f.store.CreateMovie(ctx, &model.Movie{Title: "Arrival"})
	assert.True(t, apperror.Is(err, apperror.ConstraintViolation))

	err = f.store.CreateHall(ctx, &model.Hall{TheaterID: f.hall.TheaterID, Name: "Hall 1"}, []model.RowSpec{{RowNumber: 1, SeatCount: 6}})
	assert.True(t, apperror.Is(err, apperror.ConstraintViolation))

	dup := model.Show{MovieID: f.movie.ID, HallID: f.hall.ID, StartTime: f.show.StartTime, Price: 100}
	err = f.store.CreateShow(ctx, &dup)
	assert.True(t, apperror.Is(err, apperror.ConstraintViolation))

	err = f.store.CreateShow(ctx, &model.Show{MovieID: 999, HallID: f.hall.ID, StartTime: time.Now()})
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestCommitBookingClaimsSeats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.RowSpec{RowNumber: 1, SeatCount: 8})
	seats, err := f.store.SeatOccupancy(ctx, f.show.ID)
	require.NoError(t, err)

	ids := []uint64{seats[2].SeatID, seats[3].SeatID, seats[4].SeatID}
	b, err := f.store.CommitBooking(ctx, f.show.ID, ids, "friends")
	require.NoError(t, err)
	assert.Equal(t, int64(750), b.TotalPrice)
	assert.Equal(t, ids, b.SeatIDs)

	after, err := f.store.SeatOccupancy(ctx, f.show.ID)
	require.NoError(t, err)
	for i, s := range after {
		assert.Equal(t, i >= 2 && i <= 4, s.IsBooked, "seat %d", s.SeatNumber)
	}
	assert.Equal(t, model.SeatStats{Empty: 5, Booked: 3}, model.CountSeats(after))

	got, err := f.store.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "friends", got.GroupName)
}

func TestCommitBookingConflictLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.RowSpec{RowNumber: 1, SeatCount: 8})
	seats, _ := f.store.SeatOccupancy(ctx, f.show.ID)

	_, err := f.store.CommitBooking(ctx, f.show.ID, []uint64{seats[0].SeatID, seats[1].SeatID}, "a")
	require.NoError(t, err)

	_, err = f.store.CommitBooking(ctx, f.show.ID, []uint64{seats[1].SeatID, seats[2].SeatID}, "b")
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.ReservationConflict))

	after, _ := f.store.SeatOccupancy(ctx, f.show.ID)
	assert.False(t, after[2].IsBooked, "seat 3 must not be claimed by the failed booking")
	assert.Equal(t, 2, model.CountSeats(after).Booked)
}

func TestConcurrentCommitsOneWinnerPerSeat(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.RowSpec{RowNumber: 1, SeatCount: 8})
	seats, _ := f.store.SeatOccupancy(ctx, f.show.ID)
	contested := []uint64{seats[3].SeatID, seats[4].SeatID}

	const workers = 16
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.store.CommitBooking(ctx, f.show.ID, contested, "g"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			} else {
				assert.True(t, apperror.Is(err, apperror.ReservationConflict))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestReplaceHallLayout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.RowSpec{RowNumber: 1, SeatCount: 8})

	h, err := f.store.ReplaceHallLayout(ctx, f.hall.ID, "Hall A", []model.RowSpec{{RowNumber: 1, SeatCount: 6}, {RowNumber: 2, SeatCount: 7}})
	require.NoError(t, err)
	assert.Equal(t, "Hall A", h.Name)
	seats, _ := f.store.SeatOccupancy(ctx, f.show.ID)
	assert.Len(t, seats, 13)

	_, err = f.store.CommitBooking(ctx, f.show.ID, []uint64{seats[0].SeatID}, "x")
	require.NoError(t, err)
	_, err = f.store.ReplaceHallLayout(ctx, f.hall.ID, "Hall A", []model.RowSpec{{RowNumber: 1, SeatCount: 9}})
	assert.True(t, apperror.Is(err, apperror.ConstraintViolation))

	_, err = f.store.ReplaceHallLayout(ctx, f.hall.ID, "Hall A", []model.RowSpec{{RowNumber: 1, SeatCount: 3}})
	assert.True(t, apperror.Is(err, apperror.Invalid))
}

func TestDeleteCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.RowSpec{RowNumber: 1, SeatCount: 6})
	seats, _ := f.store.SeatOccupancy(ctx, f.show.ID)
	b, err := f.store.CommitBooking(ctx, f.show.ID, []uint64{seats[0].SeatID}, "x")
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteTheater(ctx, f.hall.TheaterID))
	_, err = f.store.GetHall(ctx, f.hall.ID)
	assert.True(t, apperror.Is(err, apperror.NotFound))
	_, err = f.store.GetShow(ctx, f.show.ID)
	assert.True(t, apperror.Is(err, apperror.NotFound))
	_, err = f.store.GetBooking(ctx, b.ID)
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestListShowsForMovieOrderedByStart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.RowSpec{RowNumber: 1, SeatCount: 6})
	late := model.Show{MovieID: f.movie.ID, HallID: f.hall.ID, StartTime: f.show.StartTime.Add(6 * time.Hour), Price: 250}
	early := model.Show{MovieID: f.movie.ID, HallID: f.hall.ID, StartTime: f.show.StartTime.Add(-3 * time.Hour), Price: 250}
	require.NoError(t, f.store.CreateShow(ctx, &late))
	require.NoError(t, f.store.CreateShow(ctx, &early))

	got, err := f.store.ListShowsForMovie(ctx, f.movie.ID, f.show.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, early.ID, got[0].ShowID)
	assert.Equal(t, late.ID, got[1].ShowID)
	assert.Equal(t, "Hall 1", got[0].HallName)

	found, err := f.store.FindShow(ctx, f.movie.ID, f.hall.ID, late.StartTime)
	require.NoError(t, err)
	assert.Equal(t, late.ID, found.ID)

	_, err = f.store.FindShow(ctx, f.movie.ID+1, f.hall.ID, late.StartTime)
	assert.True(t, apperror.Is(err, apperror.NotFound))
}

func TestShowPriceMatchesBookingTotal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, model.RowSpec{RowNumber: 1, SeatCount: 6})

	price, err := f.store.ShowPrice(ctx, f.show.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(250), price)

	seats, err := f.store.SeatOccupancy(ctx, f.show.ID)
	require.NoError(t, err)
	b, err := f.store.CommitBooking(ctx, f.show.ID, []uint64{seats[0].SeatID, seats[1].SeatID}, "pair")
	require.NoError(t, err)
	assert.Equal(t, price*2, b.TotalPrice)

	_, err = f.store.ShowPrice(ctx, f.show.ID+100)
	assert.True(t, apperror.Is(err, apperror.NotFound))
}
