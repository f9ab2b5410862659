package schedule

import (
	"sort"
	"time"

	"github.com/chandlershortlidge/baby-timer-app/internal"
	"github.com/chandlershortlidge/baby-timer-app/internal/timeutil"
)

// Edit is one entry of a bulk schedule edit: replace or insert the upcoming
// nap at Index so it starts at StartAt and runs DurationSec.
type Edit struct {
	Index       int    `json:"index" validate:"required,gt=0"`
	StartAt     string `json:"start_at" validate:"required"`
	DurationSec int64  `json:"duration_sec" validate:"required,gt=0"`
}

// EditResult is what a successful edit batch changes: indexes of deleted
// upcoming slots, the slots written (edited plus untouched ones whose
// planned start was re-derived), and the reprojected day.
type EditResult struct {
	Day     *internal.Day
	Naps    []*internal.NapSlot
	Deleted []int
}

type parsedEdit struct {
	edit  Edit
	start time.Time
	end   time.Time
}

// validateEdits checks a batch against the day's current slots. All checks
// run before any write so a failing batch leaves storage untouched.
func (e *Engine) validateEdits(day *internal.Day, naps []*internal.NapSlot, edits []Edit) ([]parsedEdit, error) {
	if len(edits) == 0 {
		return nil, internal.Validationf("edit batch is empty")
	}
	if len(edits) > e.cfg.MaxScheduleEdits {
		return nil, internal.Validationf("edit batch exceeds maximum of %d naps", e.cfg.MaxScheduleEdits)
	}

	byStatus := make(map[int]internal.NapStatus, len(naps))
	for _, n := range naps {
		byStatus[n.Index] = n.Status
	}
	anyInProgress := false
	for _, n := range naps {
		if n.Status == internal.NapInProgress {
			anyInProgress = true
		}
	}

	seen := make(map[int]bool, len(edits))
	parsed := make([]parsedEdit, 0, len(edits))
	now := e.now().UTC()
	for _, ed := range edits {
		if ed.Index <= 0 {
			return nil, internal.Validationf("nap index must be a positive integer, got %d", ed.Index)
		}
		if seen[ed.Index] {
			return nil, internal.Validationf("duplicate nap index %d in edit batch", ed.Index)
		}
		seen[ed.Index] = true

		start := timeutil.ParseInstant(ed.StartAt)
		if start == nil {
			return nil, internal.Validationf("nap %d has unparseable start time %q", ed.Index, ed.StartAt)
		}
		// Compare in seconds so a fractional-minute duration cannot sneak
		// past the bound by truncation.
		if ed.DurationSec < e.cfg.MinEditDurationMin*60 || ed.DurationSec > e.cfg.MaxEditDurationMin*60 {
			return nil, internal.Validationf("nap %d duration must be between %d and %d minutes",
				ed.Index, e.cfg.MinEditDurationMin, e.cfg.MaxEditDurationMin)
		}
		if timeutil.DateKey(*start) != day.Date {
			return nil, internal.Validationf("nap %d start date %s does not match day %s",
				ed.Index, timeutil.DateKey(*start), day.Date)
		}
		if anyInProgress && start.Before(now) {
			return nil, internal.Validationf("nap %d starts in the past while a nap is in progress", ed.Index)
		}
		if st, ok := byStatus[ed.Index]; ok && st != internal.NapUpcoming {
			return nil, internal.Validationf("nap %d is %s and can no longer be edited", ed.Index, st)
		}

		parsed = append(parsed, parsedEdit{
			edit:  ed,
			start: *start,
			end:   start.Add(time.Duration(ed.DurationSec) * time.Second),
		})
	}

	sort.Slice(parsed, func(i, j int) bool { return parsed[i].start.Before(parsed[j].start) })
	for i := 1; i < len(parsed); i++ {
		if parsed[i].start.Before(parsed[i-1].end) {
			return nil, internal.Validationf("naps %d and %d overlap",
				parsed[i-1].edit.Index, parsed[i].edit.Index)
		}
	}
	return parsed, nil
}

// ApplyEdits validates and applies a bulk edit to the day's schedule.
// Upcoming slots whose index is absent from the batch are deleted; matching
// edits overwrite the planned duration and start (clearing any adjustment);
// new indexes become fresh upcoming slots. Slots past the upcoming state are
// never touched. The surviving set is then re-chained and the bedtime
// reprojected.
func (e *Engine) ApplyEdits(day *internal.Day, naps []*internal.NapSlot, edits []Edit) (*EditResult, error) {
	parsed, err := e.validateEdits(day, naps, edits)
	if err != nil {
		return nil, err
	}

	editByIndex := make(map[int]parsedEdit, len(parsed))
	for _, p := range parsed {
		editByIndex[p.edit.Index] = p
	}

	result := &EditResult{Day: day}
	for _, n := range naps {
		if n.Status != internal.NapUpcoming {
			result.Naps = append(result.Naps, n)
			continue
		}
		p, ok := editByIndex[n.Index]
		if !ok {
			result.Deleted = append(result.Deleted, n.Index)
			continue
		}
		start := p.start
		n.PlannedDurationSec = p.edit.DurationSec
		n.PlannedStartAt = &start
		n.AdjustedDurationSec = nil
		n.Status = internal.NapUpcoming
		result.Naps = append(result.Naps, n)
		delete(editByIndex, n.Index)
	}
	for _, p := range editByIndex {
		start := p.start
		result.Naps = append(result.Naps, &internal.NapSlot{
			Date:               day.Date,
			Index:              p.edit.Index,
			PlannedDurationSec: p.edit.DurationSec,
			PlannedStartAt:     &start,
			Status:             internal.NapUpcoming,
		})
	}

	sort.Slice(result.Naps, func(i, j int) bool { return result.Naps[i].Index < result.Naps[j].Index })
	e.Replan(day, result.Naps)
	e.ProjectBedtime(day, result.Naps)
	return result, nil
}

// Replan fills in planned start times for slots that lack one, chaining each
// from the previous slot's end, or from first wake for the first slot,
// offset by the per-index wake-window default. Slots that already carry a
// start are left alone.
func (e *Engine) Replan(day *internal.Day, naps []*internal.NapSlot) {
	if day.FirstWakeAt == nil {
		return
	}
	prevEnd := day.FirstWakeAt.UTC()
	for _, n := range naps {
		if n.PlannedStartAt == nil {
			start := prevEnd.Add(time.Duration(e.cfg.WakeWindowSec(n.Index)) * time.Second)
			n.PlannedStartAt = &start
		}
		if end, ok := e.slotEnd(n); ok {
			prevEnd = end
		}
	}
}

// slotEnd is where a slot's occupancy of the timeline ends: the actual end
// for finished naps, otherwise the best-known start plus the effective
// duration. ok is false for a slot with no usable timestamps at all.
func (e *Engine) slotEnd(n *internal.NapSlot) (time.Time, bool) {
	if n.Status == internal.NapFinished && n.ActualEndAt != nil {
		return n.ActualEndAt.UTC(), true
	}
	start := n.PlannedStartAt
	if n.ActualStartAt != nil {
		start = n.ActualStartAt
	}
	if start == nil {
		return time.Time{}, false
	}
	return start.Add(time.Duration(n.EffectiveDurationSec()) * time.Second).UTC(), true
}
