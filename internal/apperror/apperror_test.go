package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindSurvivesWrapping(t *testing.T) {
	base := NewConflict("repository.CommitBooking", 7, []uint64{3, 4}, errors.New("duplicate entry"))
	wrapped := fmt.Errorf("book: %w", base)

	assert.True(t, Is(wrapped, ReservationConflict))
	assert.False(t, Is(wrapped, NotFound))
	assert.Equal(t, ReservationConflict, KindOf(wrapped))

	var ae *Error
	assert.True(t, errors.As(wrapped, &ae))
	assert.Equal(t, uint64(7), ae.ShowID)
	assert.Equal(t, []uint64{3, 4}, ae.SeatIDs)
}

func TestKindOfPlainError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.False(t, Is(nil, NotFound))
}

func TestErrorMessage(t *testing.T) {
	err := NewNotFound("repository.GetShow", "show", 12)
	assert.Equal(t, "repository.GetShow: not_found show 12", err.Error())

	dup := NewDuplicate("repository.CreateMovie", "movie", "title already exists", nil)
	assert.Equal(t, "repository.CreateMovie: constraint_violation movie: title already exists", dup.Error())
}
