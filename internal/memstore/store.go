// Package memstore is an in-process implementation of the booking store.
// It enforces the same uniqueness rules as the MySQL schema, including
// the (show, seat) index that serialises competing bookings, and is used
// for development runs (STORAGE_DRIVER=memory) and tests.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/cinema-group-booking/internal/apperror"
	"github.com/iliyamo/cinema-group-booking/internal/model"
)

type seatKey struct {
	showID uint64
	seatID uint64
}

type showSlot struct {
	hallID uint64
	start  int64
}

// Store holds all entities in maps guarded by one mutex.  Every method
// runs under the lock, so each call observes and produces a consistent
// state.
type Store struct {
	mu sync.RWMutex

	nextID uint64
	now    func() time.Time

	theaters map[uint64]model.Theater
	movies   map[uint64]model.Movie
	halls    map[uint64]model.Hall
	rows     map[uint64]model.HallRow
	seats    map[uint64]model.Seat
	shows    map[uint64]model.Show
	bookings map[uint64]model.Booking

	// bookedSeats maps (show, seat) to the owning booking id.
	bookedSeats map[seatKey]uint64
	slots       map[showSlot]uint64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		now:         func() time.Time { return time.Now().UTC() },
		theaters:    make(map[uint64]model.Theater),
		movies:      make(map[uint64]model.Movie),
		halls:       make(map[uint64]model.Hall),
		rows:        make(map[uint64]model.HallRow),
		seats:       make(map[uint64]model.Seat),
		shows:       make(map[uint64]model.Show),
		bookings:    make(map[uint64]model.Booking),
		bookedSeats: make(map[seatKey]uint64),
		slots:       make(map[showSlot]uint64),
	}
}

func (s *Store) id() uint64 {
	s.nextID++
	return s.nextID
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// ---- theaters ----

// CreateTheater stores t and assigns its ID.  Names are unique
// case-insensitively.
func (s *Store) CreateTheater(ctx context.Context, t *model.Theater) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ex := range s.theaters {
		if strings.EqualFold(ex.Name, t.Name) {
			return apperror.NewDuplicate("memstore.CreateTheater", "theater", "theater name already exists", nil)
		}
	}
	t.ID = s.id()
	t.CreatedAt = s.now()
	s.theaters[t.ID] = *t
	return nil
}

// GetTheater returns the theater with the given id.
func (s *Store) GetTheater(ctx context.Context, id uint64) (*model.Theater, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.theaters[id]
	if !ok {
		return nil, apperror.NewNotFound("memstore.GetTheater", "theater", id)
	}
	return &t, nil
}

// ListTheaters returns all theaters ordered by id.
func (s *Store) ListTheaters(ctx context.Context) ([]model.Theater, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Theater, 0, len(s.theaters))
	for _, t := range s.theaters {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteTheater removes a theater with its halls, shows and bookings.
func (s *Store) DeleteTheater(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.theaters[id]; !ok {
		return apperror.NewNotFound("memstore.DeleteTheater", "theater", id)
	}
	for hid, h := range s.halls {
		if h.TheaterID == id {
			s.deleteHallLocked(hid)
		}
	}
	delete(s.theaters, id)
	return nil
}

// ---- movies ----

// CreateMovie stores m and assigns its ID.
func (s *Store) CreateMovie(ctx context.Context, m *model.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.titleTaken(m.Title, 0) {
		return apperror.NewDuplicate("memstore.CreateMovie", "movie", "movie title already exists", nil)
	}
	m.ID = s.id()
	m.CreatedAt = s.now()
	s.movies[m.ID] = *m
	return nil
}

func (s *Store) titleTaken(title string, except uint64) bool {
	for _, ex := range s.movies {
		if ex.ID != except && strings.EqualFold(ex.Title, title) {
			return true
		}
	}
	return false
}

// GetMovie returns the movie with the given id.
func (s *Store) GetMovie(ctx context.Context, id uint64) (*model.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.movies[id]
	if !ok {
		return nil, apperror.NewNotFound("memstore.GetMovie", "movie", id)
	}
	return &m, nil
}

// ListMovies returns all movies ordered by id.
func (s *Store) ListMovies(ctx context.Context) ([]model.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// UpdateMovie replaces a movie, keeping its creation time.
func (s *Store) UpdateMovie(ctx context.Context, m *model.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ex, ok := s.movies[m.ID]
	if !ok {
		return apperror.NewNotFound("memstore.UpdateMovie", "movie", m.ID)
	}
	if s.titleTaken(m.Title, m.ID) {
		return apperror.NewDuplicate("memstore.UpdateMovie", "movie", "movie title already exists", nil)
	}
	m.CreatedAt = ex.CreatedAt
	s.movies[m.ID] = *m
	return nil
}

// DeleteMovie removes a movie and every show of it.
func (s *Store) DeleteMovie(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.movies[id]; !ok {
		return apperror.NewNotFound("memstore.DeleteMovie", "movie", id)
	}
	for sid, sh := range s.shows {
		if sh.MovieID == id {
			s.deleteShowLocked(sid)
		}
	}
	delete(s.movies, id)
	return nil
}

// ---- halls ----

// CreateHall stores the hall with its rows and generates the seats of
// every row.  h.ID and h.Rows are filled on success.
func (s *Store) CreateHall(ctx context.Context, h *model.Hall, rows []model.RowSpec) error {
	const op = "memstore.CreateHall"
	if msg := model.ValidateRows(rows); msg != "" {
		return apperror.NewInvalid(op, msg)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.theaters[h.TheaterID]; !ok {
		return apperror.NewNotFound(op, "theater", h.TheaterID)
	}
	if s.hallNameTaken(h.TheaterID, h.Name, 0) {
		return apperror.NewDuplicate(op, "hall", "hall name already exists in this theater", nil)
	}
	h.ID = s.id()
	h.Rows = s.buildRowsLocked(h.ID, rows)
	s.halls[h.ID] = model.Hall{ID: h.ID, TheaterID: h.TheaterID, Name: h.Name}
	return nil
}

func (s *Store) hallNameTaken(theaterID uint64, name string, except uint64) bool {
	for _, ex := range s.halls {
		if ex.ID != except && ex.TheaterID == theaterID && strings.EqualFold(ex.Name, name) {
			return true
		}
	}
	return false
}

func (s *Store) buildRowsLocked(hallID uint64, specs []model.RowSpec) []model.HallRow {
	sorted := append([]model.RowSpec(nil), specs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].RowNumber < sorted[j].RowNumber })
	out := make([]model.HallRow, 0, len(sorted))
	for _, spec := range sorted {
		row := model.HallRow{ID: s.id(), HallID: hallID, RowNumber: spec.RowNumber, SeatCount: spec.SeatCount}
		s.rows[row.ID] = row
		for _, seat := range model.RowSeats(spec.SeatCount) {
			seat.ID = s.id()
			seat.RowID = row.ID
			s.seats[seat.ID] = seat
		}
		out = append(out, row)
	}
	return out
}

func (s *Store) hallRowsLocked(hallID uint64) []model.HallRow {
	var out []model.HallRow
	for _, r := range s.rows {
		if r.HallID == hallID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RowNumber < out[j].RowNumber })
	return out
}

// GetHall returns a hall with its rows.
func (s *Store) GetHall(ctx context.Context, id uint64) (*model.Hall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.halls[id]
	if !ok {
		return nil, apperror.NewNotFound("memstore.GetHall", "hall", id)
	}
	h.Rows = s.hallRowsLocked(id)
	return &h, nil
}

// ListHalls lists halls with their rows.  theaterID 0 lists every hall.
func (s *Store) ListHalls(ctx context.Context, theaterID uint64) ([]model.Hall, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Hall, 0, len(s.halls))
	for _, h := range s.halls {
		if theaterID != 0 && h.TheaterID != theaterID {
			continue
		}
		h.Rows = s.hallRowsLocked(h.ID)
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ReplaceHallLayout renames the hall and rebuilds its rows and seats.  It
// refuses while any booking exists for a show in the hall.
func (s *Store) ReplaceHallLayout(ctx context.Context, hallID uint64, name string, rows []model.RowSpec) (*model.Hall, error) {
	const op = "memstore.ReplaceHallLayout"
	if msg := model.ValidateRows(rows); msg != "" {
		return nil, apperror.NewInvalid(op, msg)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.halls[hallID]
	if !ok {
		return nil, apperror.NewNotFound(op, "hall", hallID)
	}
	if s.hallNameTaken(h.TheaterID, name, hallID) {
		return nil, apperror.NewDuplicate(op, "hall", "hall name already exists in this theater", nil)
	}
	for _, b := range s.bookings {
		if sh, ok := s.shows[b.ShowID]; ok && sh.HallID == hallID {
			return nil, apperror.NewDuplicate(op, "hall", "hall layout cannot change while bookings exist", nil)
		}
	}
	for _, r := range s.hallRowsLocked(hallID) {
		s.deleteRowLocked(r.ID)
	}
	h.Name = name
	s.halls[hallID] = h
	h.Rows = s.buildRowsLocked(hallID, rows)
	return &h, nil
}

// DeleteHall removes a hall, its seats and its shows.
func (s *Store) DeleteHall(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.halls[id]; !ok {
		return apperror.NewNotFound("memstore.DeleteHall", "hall", id)
	}
	s.deleteHallLocked(id)
	return nil
}

func (s *Store) deleteHallLocked(id uint64) {
	for sid, sh := range s.shows {
		if sh.HallID == id {
			s.deleteShowLocked(sid)
		}
	}
	for _, r := range s.hallRowsLocked(id) {
		s.deleteRowLocked(r.ID)
	}
	delete(s.halls, id)
}

func (s *Store) deleteRowLocked(rowID uint64) {
	for sid, seat := range s.seats {
		if seat.RowID == rowID {
			delete(s.seats, sid)
		}
	}
	delete(s.rows, rowID)
}

// ---- shows ----

// CreateShow schedules sh.  A hall hosts at most one show per start
// time.
func (s *Store) CreateShow(ctx context.Context, sh *model.Show) error {
	const op = "memstore.CreateShow"
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.movies[sh.MovieID]; !ok {
		return apperror.NewNotFound(op, "movie", sh.MovieID)
	}
	if _, ok := s.halls[sh.HallID]; !ok {
		return apperror.NewNotFound(op, "hall", sh.HallID)
	}
	sh.StartTime = sh.StartTime.UTC()
	slot := showSlot{hallID: sh.HallID, start: sh.StartTime.Unix()}
	if _, taken := s.slots[slot]; taken {
		return apperror.NewDuplicate(op, "show", "a show already exists in this hall at this time", nil)
	}
	sh.ID = s.id()
	s.shows[sh.ID] = *sh
	s.slots[slot] = sh.ID
	return nil
}

// GetShow returns the show with the given id.
func (s *Store) GetShow(ctx context.Context, id uint64) (*model.Show, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shows[id]
	if !ok {
		return nil, apperror.NewNotFound("memstore.GetShow", "show", id)
	}
	return &sh, nil
}

// FindShow looks up a show by movie, hall and start time.
func (s *Store) FindShow(ctx context.Context, movieID, hallID uint64, start time.Time) (*model.Show, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.slots[showSlot{hallID: hallID, start: start.UTC().Unix()}]; ok {
		if sh := s.shows[id]; sh.MovieID == movieID {
			return &sh, nil
		}
	}
	return nil, &apperror.Error{Kind: apperror.NotFound, Op: "memstore.FindShow", Entity: "show", Msg: "no show for movie, hall and start time"}
}

// ListShows lists shows matching f ordered by start time.
func (s *Store) ListShows(ctx context.Context, f model.ShowFilter) ([]model.Show, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Show, 0)
	for _, sh := range s.shows {
		if f.MovieID != 0 && sh.MovieID != f.MovieID {
			continue
		}
		if f.HallID != 0 && sh.HallID != f.HallID {
			continue
		}
		out = append(out, sh)
	}
	sortShows(out)
	return out, nil
}

func sortShows(shows []model.Show) {
	sort.Slice(shows, func(i, j int) bool {
		if !shows[i].StartTime.Equal(shows[j].StartTime) {
			return shows[i].StartTime.Before(shows[j].StartTime)
		}
		return shows[i].ID < shows[j].ID
	})
}

// ListShowsForMovie lists the movie's shows other than excludeShowID,
// ordered by start time.
func (s *Store) ListShowsForMovie(ctx context.Context, movieID, excludeShowID uint64) ([]model.ShowSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var shows []model.Show
	for _, sh := range s.shows {
		if sh.MovieID == movieID && sh.ID != excludeShowID {
			shows = append(shows, sh)
		}
	}
	sortShows(shows)
	out := make([]model.ShowSummary, 0, len(shows))
	for _, sh := range shows {
		out = append(out, model.ShowSummary{
			ShowID:    sh.ID,
			HallID:    sh.HallID,
			HallName:  s.halls[sh.HallID].Name,
			StartTime: sh.StartTime,
			Price:     sh.Price,
		})
	}
	return out, nil
}

// ShowPrice returns the per-seat price of a show.
func (s *Store) ShowPrice(ctx context.Context, showID uint64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shows[showID]
	if !ok {
		return 0, apperror.NewNotFound("memstore.ShowPrice", "show", showID)
	}
	return sh.Price, nil
}

// DeleteShow removes a show and its bookings.
func (s *Store) DeleteShow(ctx context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shows[id]; !ok {
		return apperror.NewNotFound("memstore.DeleteShow", "show", id)
	}
	s.deleteShowLocked(id)
	return nil
}

func (s *Store) deleteShowLocked(id uint64) {
	sh := s.shows[id]
	for bid, b := range s.bookings {
		if b.ShowID == id {
			for _, seatID := range b.SeatIDs {
				delete(s.bookedSeats, seatKey{showID: id, seatID: seatID})
			}
			delete(s.bookings, bid)
		}
	}
	delete(s.slots, showSlot{hallID: sh.HallID, start: sh.StartTime.Unix()})
	delete(s.shows, id)
}

// ---- occupancy and bookings ----

// SeatOccupancy returns the hall's seats for the show ordered by row
// number then seat number, each flagged with its booking state.
func (s *Store) SeatOccupancy(ctx context.Context, showID uint64) ([]model.SeatStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shows[showID]
	if !ok {
		return nil, apperror.NewNotFound("memstore.SeatOccupancy", "show", showID)
	}
	var out []model.SeatStatus
	for _, seat := range s.seats {
		row := s.rows[seat.RowID]
		if row.HallID != sh.HallID {
			continue
		}
		_, booked := s.bookedSeats[seatKey{showID: showID, seatID: seat.ID}]
		out = append(out, model.SeatStatus{
			SeatID:     seat.ID,
			RowNumber:  row.RowNumber,
			SeatNumber: seat.SeatNumber,
			IsAisle:    seat.IsAisle,
			IsBooked:   booked,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RowNumber != out[j].RowNumber {
			return out[i].RowNumber < out[j].RowNumber
		}
		return out[i].SeatNumber < out[j].SeatNumber
	})
	return out, nil
}

// CommitBooking creates the booking and claims every seat, or changes
// nothing.  A seat already claimed for the show yields a
// ReservationConflict.
func (s *Store) CommitBooking(ctx context.Context, showID uint64, seatIDs []uint64, groupName string) (*model.Booking, error) {
	const op = "memstore.CommitBooking"
	if len(seatIDs) == 0 {
		return nil, apperror.NewInvalid(op, "no seats to book")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shows[showID]
	if !ok {
		return nil, apperror.NewNotFound(op, "show", showID)
	}
	seen := make(map[uint64]bool, len(seatIDs))
	for _, id := range seatIDs {
		seat, ok := s.seats[id]
		if !ok || s.rows[seat.RowID].HallID != sh.HallID {
			return nil, apperror.NewNotFound(op, "seat", id)
		}
		if _, taken := s.bookedSeats[seatKey{showID: showID, seatID: id}]; taken || seen[id] {
			return nil, apperror.NewConflict(op, showID, seatIDs, nil)
		}
		seen[id] = true
	}

	b := model.Booking{
		ID:         s.id(),
		ShowID:     showID,
		GroupName:  groupName,
		TotalPrice: sh.Price * int64(len(seatIDs)),
		SeatIDs:    append([]uint64(nil), seatIDs...),
		CreatedAt:  s.now(),
	}
	for _, id := range seatIDs {
		s.bookedSeats[seatKey{showID: showID, seatID: id}] = b.ID
	}
	s.bookings[b.ID] = b
	return &b, nil
}

// GetBooking returns a booking with its seat ids.
func (s *Store) GetBooking(ctx context.Context, id uint64) (*model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bookings[id]
	if !ok {
		return nil, apperror.NewNotFound("memstore.GetBooking", "booking", id)
	}
	b.SeatIDs = append([]uint64(nil), b.SeatIDs...)
	return &b, nil
}

// ListBookingsForMovie returns the bookings of every show of the movie
// starting within [from, to], both ends inclusive.
func (s *Store) ListBookingsForMovie(ctx context.Context, movieID uint64, from, to time.Time) ([]model.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Booking, 0)
	for _, b := range s.bookings {
		sh, ok := s.shows[b.ShowID]
		if !ok || sh.MovieID != movieID {
			continue
		}
		if sh.StartTime.Before(from) || sh.StartTime.After(to) {
			continue
		}
		b.SeatIDs = append([]uint64(nil), b.SeatIDs...)
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
