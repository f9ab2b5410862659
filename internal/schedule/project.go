package schedule

import (
	"time"

	"github.com/chandlershortlidge/baby-timer-app/internal"
)

// ProjectBedtime computes the day's estimated bedtime and writes it onto the
// Day record: first wake, plus the awake budget, plus every nap's
// contribution. Finished naps contribute their actual span, an in-progress
// nap contributes only the elapsed portion so far (the projection tightens
// as the day goes on), everything else contributes its effective duration.
//
// Returns nil, and clears any stale stored projection, when the day has no
// first wake yet. Always recomputed from scratch; never cached across calls.
func (e *Engine) ProjectBedtime(day *internal.Day, naps []*internal.NapSlot) *time.Time {
	if day.FirstWakeAt == nil {
		day.ProjectedBedtimeAt = nil
		return nil
	}

	anchor := day.FirstWakeAt.UTC()
	now := e.now().UTC()

	var totalNapSec int64
	for _, n := range naps {
		switch n.Status {
		case internal.NapFinished:
			if n.ActualStartAt != nil && n.ActualEndAt != nil {
				if sec := int64(n.ActualEndAt.Sub(*n.ActualStartAt) / time.Second); sec > 0 {
					totalNapSec += sec
				}
			}
		case internal.NapInProgress:
			if n.ActualStartAt != nil {
				if sec := int64(now.Sub(*n.ActualStartAt) / time.Second); sec > 0 {
					totalNapSec += sec
				}
			}
		default:
			totalNapSec += n.EffectiveDurationSec()
		}
	}

	projected := anchor.Add(time.Duration(day.DailyAwakeBudgetSec+totalNapSec) * time.Second)
	day.ProjectedBedtimeAt = &projected
	return &projected
}
