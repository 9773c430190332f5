package scheduling

import (
	"fmt"
	"time"
)

const clockLayout = "15:04"

// SlotGrid is a doctor's working day cut into fixed-length slots. Start is
// inclusive and End exclusive, both as minutes after midnight.
type SlotGrid struct {
	Start int
	End   int
	Step  int
}

// DefaultGrid is 09:00 to 17:00 in 30 minute steps.
func DefaultGrid() SlotGrid {
	return SlotGrid{Start: 9 * 60, End: 17 * 60, Step: 30}
}

// NewSlotGrid builds a grid from HH:MM bounds.
func NewSlotGrid(start, end string, stepMinutes int) (SlotGrid, error) {
	s, err := time.Parse(clockLayout, start)
	if err != nil {
		return SlotGrid{}, fmt.Errorf("parse day start %q: %w", start, err)
	}
	e, err := time.Parse(clockLayout, end)
	if err != nil {
		return SlotGrid{}, fmt.Errorf("parse day end %q: %w", end, err)
	}
	g := SlotGrid{
		Start: s.Hour()*60 + s.Minute(),
		End:   e.Hour()*60 + e.Minute(),
		Step:  stepMinutes,
	}
	if g.Step <= 0 {
		return SlotGrid{}, fmt.Errorf("slot length must be positive, got %d", stepMinutes)
	}
	if g.End <= g.Start {
		return SlotGrid{}, fmt.Errorf("day end %s must be after day start %s", end, start)
	}
	return g, nil
}

// Slots lists the start time of every slot as zero-padded HH:MM, in order.
func (g SlotGrid) Slots() []string {
	if g.Step <= 0 {
		return nil
	}
	slots := make([]string, 0, (g.End-g.Start)/g.Step+1)
	for m := g.Start; m < g.End; m += g.Step {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

// AvailableSlots removes every slot whose string equals a booked time and
// keeps the rest in grid order. Booked times outside the grid are ignored.
func AvailableSlots(grid, booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}
	free := make([]string, 0, len(grid))
	for _, s := range grid {
		if _, ok := taken[s]; !ok {
			free = append(free, s)
		}
	}
	return free
}
