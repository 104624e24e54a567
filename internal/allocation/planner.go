package allocation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/cinema-group-booking/internal/apperror"
	"github.com/iliyamo/cinema-group-booking/internal/model"
)

// LayoutProvider supplies occupancy snapshots.  SeatOccupancy returns
// every seat of the show's hall flagged with whether it is booked for the
// show, ordered by row number then seat number.
type LayoutProvider interface {
	SeatOccupancy(ctx context.Context, showID uint64) ([]model.SeatStatus, error)
}

// ShowCatalog resolves shows for the booking flow.
type ShowCatalog interface {
	// FindShow looks up the show identified by movie, hall and start time.
	FindShow(ctx context.Context, movieID, hallID uint64, start time.Time) (*model.Show, error)
	// ListShowsForMovie lists the movie's shows except excludeShowID,
	// ordered by start time.
	ListShowsForMovie(ctx context.Context, movieID, excludeShowID uint64) ([]model.ShowSummary, error)
}

// Window restricts which alternative shows are considered.
type Window string

const (
	// WindowAll considers every other show of the movie.
	WindowAll Window = "all"
	// WindowSameDay considers only shows starting on the same UTC
	// calendar day as the requested show.
	WindowSameDay Window = "same_day"
)

// ParseWindow maps a configuration value to a Window.  Unknown values
// fall back to WindowAll.
func ParseWindow(s string) Window {
	if Window(s) == WindowSameDay {
		return WindowSameDay
	}
	return WindowAll
}

// Planner picks seats for a group.  It holds no state of its own; every
// call reads a fresh snapshot from the LayoutProvider.
type Planner struct {
	layout  LayoutProvider
	catalog ShowCatalog
	window  Window
}

// NewPlanner constructs a Planner.
func NewPlanner(layout LayoutProvider, catalog ShowCatalog, window Window) *Planner {
	return &Planner{layout: layout, catalog: catalog, window: window}
}

// PlanShow returns the first contiguous block of k free seats in the
// show, scanning rows in ascending row number.  When no row can seat the
// group it returns a NoContiguousBlock error.
func (p *Planner) PlanShow(ctx context.Context, showID uint64, k int) ([]uint64, error) {
	seats, err := p.layout.SeatOccupancy(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("plan show %d: %w", showID, err)
	}
	for _, row := range groupRows(seats) {
		if block, ok := FindBlock(row, k); ok {
			return block, nil
		}
	}
	return nil, &apperror.Error{
		Kind:   apperror.NoContiguousBlock,
		Op:     "allocation.PlanShow",
		Entity: "show",
		ID:     showID,
		ShowID: showID,
	}
}

// Suggest lists the other shows of the movie that can currently seat k
// people together, ordered by start time.  An empty result is not an
// error.
func (p *Planner) Suggest(ctx context.Context, show model.Show, k int) ([]model.Suggestion, error) {
	others, err := p.catalog.ListShowsForMovie(ctx, show.MovieID, show.ID)
	if err != nil {
		return nil, fmt.Errorf("suggest for show %d: %w", show.ID, err)
	}
	sort.SliceStable(others, func(i, j int) bool { return others[i].StartTime.Before(others[j].StartTime) })

	out := make([]model.Suggestion, 0)
	for _, o := range others {
		if !p.inWindow(show.StartTime, o.StartTime) {
			continue
		}
		block, err := p.PlanShow(ctx, o.ShowID, k)
		if err != nil {
			if apperror.Is(err, apperror.NoContiguousBlock) {
				continue
			}
			return nil, err
		}
		out = append(out, model.Suggestion{
			ShowID:    o.ShowID,
			HallID:    o.HallID,
			HallName:  o.HallName,
			StartTime: o.StartTime,
			Block:     block,
		})
	}
	return out, nil
}

func (p *Planner) inWindow(requested, candidate time.Time) bool {
	if p.window != WindowSameDay {
		return true
	}
	ry, rm, rd := requested.UTC().Date()
	cy, cm, cd := candidate.UTC().Date()
	return ry == cy && rm == cm && rd == cd
}

// groupRows partitions a snapshot by row, returning rows in ascending
// row number.  Seat order inside a row is left to FindBlock.
func groupRows(seats []model.SeatStatus) [][]model.SeatStatus {
	byRow := make(map[int][]model.SeatStatus)
	var numbers []int
	for _, s := range seats {
		if _, ok := byRow[s.RowNumber]; !ok {
			numbers = append(numbers, s.RowNumber)
		}
		byRow[s.RowNumber] = append(byRow[s.RowNumber], s)
	}
	sort.Ints(numbers)
	rows := make([][]model.SeatStatus, 0, len(numbers))
	for _, n := range numbers {
		rows = append(rows, byRow[n])
	}
	return rows
}
