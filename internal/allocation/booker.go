package allocation

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/cinema-group-booking/internal/apperror"
	"github.com/iliyamo/cinema-group-booking/internal/model"
)

// Committer persists a booking atomically.  A seat already booked for
// the show must surface as a ReservationConflict error and leave the
// store unchanged.
type Committer interface {
	CommitBooking(ctx context.Context, showID uint64, seatIDs []uint64, groupName string) (*model.Booking, error)
}

// Publisher announces confirmed bookings.  Delivery is best effort.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, b model.Booking, show model.Show) error
}

// DefaultMaxAttempts allows one automatic replan after a commit conflict.
const DefaultMaxAttempts = 2

// DefaultGroupName is used when a request carries no group name.
const DefaultGroupName = "group"

// Status values of a booking Result.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Reasons reported with a failed Result.
const (
	ReasonNoContiguous = "No contiguous seats in selected show"
	ReasonConflict     = "Seats were taken by a concurrent booking"
)

// Request is a group booking request.  The show is identified by movie,
// hall and start time.
type Request struct {
	MovieID   uint64
	HallID    uint64
	StartTime time.Time
	GroupSize int
	GroupName string
}

// Result is the outcome of Book.  On success Booking and SeatStats are
// set; on failure Reason and Alternatives are set.  Alternatives may be
// empty, which means no show of the movie can seat the group together.
type Result struct {
	Status       string
	Booking      *model.Booking
	SeatStats    model.SeatStats
	Reason       string
	Alternatives []model.Suggestion
}

// Booker runs the booking flow: plan, commit, replan on conflict within
// maxAttempts, then fall back to suggestions.  Concurrent Book calls are
// serialised only by the store's uniqueness on (show, seat).
type Booker struct {
	planner     *Planner
	catalog     ShowCatalog
	layout      LayoutProvider
	committer   Committer
	publisher   Publisher
	maxAttempts int
}

// NewBooker constructs a Booker.  publisher may be nil.  maxAttempts
// below 1 is replaced by DefaultMaxAttempts.
func NewBooker(planner *Planner, catalog ShowCatalog, layout LayoutProvider, committer Committer, publisher Publisher, maxAttempts int) *Booker {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Booker{
		planner:     planner,
		catalog:     catalog,
		layout:      layout,
		committer:   committer,
		publisher:   publisher,
		maxAttempts: maxAttempts,
	}
}

// Validate checks the shape of a request before any store access.
func (r Request) Validate() error {
	const op = "allocation.Book"
	switch {
	case r.MovieID == 0:
		return apperror.NewInvalid(op, "movie_id is required")
	case r.HallID == 0:
		return apperror.NewInvalid(op, "hall_id is required")
	case r.StartTime.IsZero():
		return apperror.NewInvalid(op, "start_time is required")
	case r.GroupSize < 1:
		return apperror.NewInvalid(op, "group_size must be >= 1")
	}
	return nil
}

// Book seats the group in the requested show when a contiguous block is
// available, otherwise returns a failed Result listing alternative
// shows.  Errors are returned only for invalid input, a missing show or
// store failures.
func (b *Booker) Book(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	groupName := strings.TrimSpace(req.GroupName)
	if groupName == "" {
		groupName = DefaultGroupName
	}

	show, err := b.catalog.FindShow(ctx, req.MovieID, req.HallID, req.StartTime)
	if err != nil {
		return Result{}, err
	}

	reason := ReasonNoContiguous
	for attempt := 1; attempt <= b.maxAttempts; attempt++ {
		block, err := b.planner.PlanShow(ctx, show.ID, req.GroupSize)
		if apperror.Is(err, apperror.NoContiguousBlock) {
			break
		}
		if err != nil {
			return Result{}, err
		}

		booking, err := b.committer.CommitBooking(ctx, show.ID, block, groupName)
		if apperror.Is(err, apperror.ReservationConflict) {
			log.Printf("booking: conflict on show %d attempt %d/%d: %v", show.ID, attempt, b.maxAttempts, err)
			reason = ReasonConflict
			continue
		}
		if err != nil {
			return Result{}, err
		}
		return b.succeed(ctx, *show, booking)
	}

	alts, err := b.planner.Suggest(ctx, *show, req.GroupSize)
	if err != nil {
		return Result{}, err
	}
	return Result{Status: StatusFailed, Reason: reason, Alternatives: alts}, nil
}

// Suggestions returns alternatives for a request without attempting a
// booking.
func (b *Booker) Suggestions(ctx context.Context, req Request) ([]model.Suggestion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	show, err := b.catalog.FindShow(ctx, req.MovieID, req.HallID, req.StartTime)
	if err != nil {
		return nil, err
	}
	return b.planner.Suggest(ctx, *show, req.GroupSize)
}

func (b *Booker) succeed(ctx context.Context, show model.Show, booking *model.Booking) (Result, error) {
	res := Result{Status: StatusSuccess, Booking: booking}
	// The booking is already committed; a failed stats read only leaves
	// the counts empty.
	if seats, err := b.layout.SeatOccupancy(ctx, show.ID); err != nil {
		log.Printf("booking: seat stats for show %d: %v", show.ID, err)
	} else {
		res.SeatStats = model.CountSeats(seats)
	}
	if b.publisher != nil {
		if err := b.publisher.PublishBookingConfirmed(ctx, *booking, show); err != nil {
			log.Printf("booking: publish booking.confirmed for booking %d failed: %v", booking.ID, err)
		}
	}
	return res, nil
}
