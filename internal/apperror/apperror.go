// Package apperror defines the error kinds shared by the allocation engine,
// the stores and the HTTP layer.  Each error carries its kind plus the ids
// needed by a caller to decide between retrying and giving up.
package apperror

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an Error.
type Kind string

const (
	// NotFound is a lookup miss for a theater, hall, movie, show or booking.
	NotFound Kind = "not_found"
	// NoContiguousBlock means no row of a show can seat the group together.
	// It is a normal planning outcome and triggers the alternative search.
	NoContiguousBlock Kind = "no_contiguous_block"
	// ReservationConflict means another booking claimed one of the chosen
	// seats between the snapshot and the commit.
	ReservationConflict Kind = "reservation_conflict"
	// ConstraintViolation is a duplicate identity at creation time
	// (theater name, movie title, hall name, show slot, row number).
	ConstraintViolation Kind = "constraint_violation"
	// Invalid marks input rejected before reaching the store.
	Invalid Kind = "invalid"
)

// Error is the structured error returned across package boundaries.
type Error struct {
	Kind    Kind
	Op      string   // operation that failed, e.g. "repository.CommitBooking"
	Entity  string   // entity involved, e.g. "show"
	ID      uint64   // id of Entity when known
	ShowID  uint64   // show involved in a booking failure
	SeatIDs []uint64 // seats involved in a booking failure
	Msg     string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Kind))
	if e.Entity != "" {
		fmt.Fprintf(&b, " %s", e.Entity)
		if e.ID != 0 {
			fmt.Fprintf(&b, " %d", e.ID)
		}
	}
	if e.ShowID != 0 {
		fmt.Fprintf(&b, " show=%d", e.ShowID)
	}
	if len(e.SeatIDs) > 0 {
		fmt.Fprintf(&b, " seats=%v", e.SeatIDs)
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of the first *Error in err's chain, or "" when
// err carries none.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// Is reports whether err's chain contains an *Error of the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// NewNotFound builds a NotFound error for entity id.
func NewNotFound(op, entity string, id uint64) *Error {
	return &Error{Kind: NotFound, Op: op, Entity: entity, ID: id}
}

// NewConflict builds a ReservationConflict for the given show and seats.
func NewConflict(op string, showID uint64, seatIDs []uint64, cause error) *Error {
	return &Error{Kind: ReservationConflict, Op: op, Entity: "show", ShowID: showID, SeatIDs: seatIDs, Err: cause}
}

// NewDuplicate builds a ConstraintViolation for entity.
func NewDuplicate(op, entity, msg string, cause error) *Error {
	return &Error{Kind: ConstraintViolation, Op: op, Entity: entity, Msg: msg, Err: cause}
}

// NewInvalid builds an Invalid error with a client facing message.
func NewInvalid(op, msg string) *Error {
	return &Error{Kind: Invalid, Op: op, Msg: msg}
}
