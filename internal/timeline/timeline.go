// Package timeline holds the pure math for a single day's time-block layout:
// grid snapping and the forward cascade that resolves overlaps when a block
// grows or moves.
package timeline

import (
	"errors"
	"sort"

	"dayplan/internal/model"

	"github.com/google/uuid"
)

// DefaultGridMins is the snapping grid used when none is configured.
const DefaultGridMins = 15

var (
	// ErrInvalidRange rejects block extents with endTime <= startTime or
	// times outside the day.
	ErrInvalidRange = errors.New("timeline: invalid time range")

	// ErrScheduleOverflow rejects a cascade that would push any block past
	// the end of the day.
	ErrScheduleOverflow = errors.New("timeline: cascade would push past end of day")
)

// Snap rounds a minute-of-day to the nearest grid line.
func Snap(minute, grid int) int {
	if grid <= 1 {
		return minute
	}
	return (minute + grid/2) / grid * grid
}

// ValidateRange checks a snapped block extent. Snapping can collapse a short
// range to zero duration; that is rejected here rather than persisted.
func ValidateRange(start, end int) error {
	if start < 0 || end > model.MinutesPerDay || start >= end {
		return ErrInvalidRange
	}
	return nil
}

// Cascade computes the shifts needed after the block with changedID takes the
// extent [newStart, newEnd). blocks is the full day, in any order; the changed
// block must be among them. Each returned block is a copy with updated times,
// duration preserved, in cascade order. The pass is linear: walk blocks after
// the changed one in (startTime, position) order, shifting while the previous
// new end still overlaps the next start; the first gap stops the chain.
func Cascade(blocks []model.TimeBlock, changedID uuid.UUID, newStart, newEnd int) ([]model.TimeBlock, error) {
	if err := ValidateRange(newStart, newEnd); err != nil {
		return nil, err
	}

	day := make([]model.TimeBlock, len(blocks))
	copy(day, blocks)

	found := false
	for i := range day {
		if day[i].ID == changedID {
			day[i].StartTime = newStart
			day[i].EndTime = newEnd
			found = true
			break
		}
	}
	if !found {
		return nil, ErrInvalidRange
	}

	sort.SliceStable(day, func(i, j int) bool {
		if day[i].StartTime != day[j].StartTime {
			return day[i].StartTime < day[j].StartTime
		}
		return day[i].Position < day[j].Position
	})

	var shifted []model.TimeBlock
	cursor := 0
	active := false
	for _, b := range day {
		if b.ID == changedID {
			cursor = newEnd
			active = true
			continue
		}
		if !active {
			continue
		}
		if b.StartTime >= cursor {
			break
		}
		delta := cursor - b.StartTime
		b.StartTime += delta
		b.EndTime += delta
		if b.EndTime > model.MinutesPerDay {
			return nil, ErrScheduleOverflow
		}
		cursor = b.EndTime
		shifted = append(shifted, b)
	}

	return shifted, nil
}
