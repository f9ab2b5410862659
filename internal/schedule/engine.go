// Package schedule holds the pure scheduling logic: adjustment of upcoming
// naps after a finished nap ran off-plan, bedtime projection, the default
// plan laid down on wake, and the bulk schedule editor. The package performs
// no I/O; the service layer reads slots from storage, calls in here, and
// persists what comes back inside one transaction.
package schedule

import (
	"time"

	"github.com/chandlershortlidge/baby-timer-app/internal"
	"github.com/chandlershortlidge/baby-timer-app/internal/config"
)

type Engine struct {
	cfg    config.Defaults
	logger internal.Logger
	now    func() time.Time
}

func NewEngine(cfg config.Defaults, logger internal.Logger) *Engine {
	return &Engine{cfg: cfg, logger: logger, now: time.Now}
}

// WithClock replaces the engine's clock. Tests use this to pin "now".
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// DefaultPlan builds the nap set laid down when a wake event is logged:
// one upcoming slot per configured plan entry, each start chained from the
// previous slot's end plus the per-index wake window.
func (e *Engine) DefaultPlan(date string, wakeAt time.Time) []*internal.NapSlot {
	slots := make([]*internal.NapSlot, 0, len(e.cfg.NapPlanSec))
	prevEnd := wakeAt.UTC()
	for i, dur := range e.cfg.NapPlanSec {
		index := i + 1
		start := prevEnd.Add(time.Duration(e.cfg.WakeWindowSec(index)) * time.Second)
		slots = append(slots, &internal.NapSlot{
			Date:               date,
			Index:              index,
			PlannedDurationSec: dur,
			PlannedStartAt:     &start,
			Status:             internal.NapUpcoming,
		})
		prevEnd = start.Add(time.Duration(dur) * time.Second)
	}
	return slots
}
