package schedule

import (
	"time"

	"github.com/chandlershortlidge/baby-timer-app/internal"
)

// Adjust redistributes the deviation of a just-finished nap across all
// still-upcoming slots of the day. naps must be the full ordered slot set
// for the day; finishedIndex names the slot that just finished.
//
// The delta (actual minus planned duration) is split evenly across the
// upcoming slots, keeping fractional seconds in the intermediate arithmetic
// and truncating to whole seconds only at the write. Each upcoming slot's
// base is its adjusted duration when one exists, its planned duration
// otherwise; the result is floored at the configured minimum so no nap is
// ever adjusted below it. Planned durations are never touched here and no
// status transitions occur.
//
// Returns the upcoming slots whose adjusted duration was rewritten. A slot
// missing either actual timestamp makes the call a no-op: skipping an
// adjustment is always safer than computing one from partial data.
func (e *Engine) Adjust(naps []*internal.NapSlot, finishedIndex int) []*internal.NapSlot {
	var finished *internal.NapSlot
	var upcoming []*internal.NapSlot
	for _, n := range naps {
		if n.Index == finishedIndex {
			finished = n
		}
		if n.Status == internal.NapUpcoming {
			upcoming = append(upcoming, n)
		}
	}
	if finished == nil {
		e.logger.Warnf("adjust: nap %d not found, skipping", finishedIndex)
		return nil
	}
	if finished.ActualStartAt == nil || finished.ActualEndAt == nil {
		e.logger.Warnf("adjust: nap %d missing actual timestamps, skipping", finishedIndex)
		return nil
	}
	if len(upcoming) == 0 {
		return nil
	}

	actualSec := int64(finished.ActualEndAt.Sub(*finished.ActualStartAt) / time.Second)
	if actualSec < 0 {
		// End before start means the caller sent bad timestamps. Treat the
		// duration as zero for the delta but make it visible.
		e.logger.Warnf("adjust: nap %d has negative actual duration (%ds), treating as zero", finishedIndex, actualSec)
		actualSec = 0
	}

	delta := actualSec - finished.PlannedDurationSec
	perNap := float64(delta) / float64(len(upcoming))

	for _, n := range upcoming {
		base := float64(n.EffectiveDurationSec())
		newDur := base - perNap
		if newDur < float64(e.cfg.MinNapSec) {
			newDur = float64(e.cfg.MinNapSec)
		}
		adjusted := int64(newDur)
		n.AdjustedDurationSec = &adjusted
	}
	return upcoming
}
