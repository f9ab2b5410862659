package internal

import "time"

// NapStatus is the lifecycle state of a NapSlot. Transitions are strictly
// linear: upcoming -> in_progress -> finished. The engine never moves a slot
// backwards; only a full schedule edit may replace a slot.
type NapStatus string

const (
	NapUpcoming   NapStatus = "upcoming"
	NapInProgress NapStatus = "in_progress"
	NapFinished   NapStatus = "finished"
)

// CanTransition reports whether moving from s to next is a legal forward step.
func (s NapStatus) CanTransition(next NapStatus) bool {
	switch s {
	case NapUpcoming:
		return next == NapInProgress
	case NapInProgress:
		return next == NapFinished
	default:
		return false
	}
}

// Valid reports whether s is one of the three known states.
func (s NapStatus) Valid() bool {
	return s == NapUpcoming || s == NapInProgress || s == NapFinished
}

// Day is the schedule record for one calendar date. Date is the key,
// formatted YYYY-MM-DD in UTC.
type Day struct {
	Date                string     `json:"date"`
	FirstWakeAt         *time.Time `json:"first_wake_at,omitempty"`
	BedtimeStartAt      *time.Time `json:"bedtime_start_at,omitempty"`
	TotalNightSleepSec  *int64     `json:"total_night_sleep_sec,omitempty"`
	DailyAwakeBudgetSec int64      `json:"daily_awake_budget_sec"`
	NapAlarmLeadSec     int64      `json:"nap_alarm_lead_sec"`
	ProjectedBedtimeAt  *time.Time `json:"projected_bedtime_at,omitempty"`
}

// NapSlot is one planned/actual nap window within a Day, identified by
// (Date, Index). AdjustedDurationSec overrides PlannedDurationSec for
// projection and live-timer purposes and is cleared whenever the planned
// duration is rewritten.
type NapSlot struct {
	Date                string     `json:"date"`
	Index               int        `json:"nap_index"`
	PlannedDurationSec  int64      `json:"planned_duration_sec"`
	PlannedStartAt      *time.Time `json:"planned_start_at,omitempty"`
	AdjustedDurationSec *int64     `json:"adjusted_duration_sec,omitempty"`
	ActualStartAt       *time.Time `json:"actual_start_at,omitempty"`
	ActualEndAt         *time.Time `json:"actual_end_at,omitempty"`
	Status              NapStatus  `json:"status"`
}

// EffectiveDurationSec is the duration the projection and live timers use:
// the adjusted duration when one has been written, the planned one otherwise.
func (n *NapSlot) EffectiveDurationSec() int64 {
	if n.AdjustedDurationSec != nil {
		return *n.AdjustedDurationSec
	}
	return n.PlannedDurationSec
}

// SleepSession is one nighttime sleep interval. EndAt nil means the session
// is still open; at most one session may be open at a time.
type SleepSession struct {
	ID            string     `json:"id"`
	StartAt       time.Time  `json:"start_at"`
	EndAt         *time.Time `json:"end_at,omitempty"`
	TotalSleepSec *int64     `json:"total_sleep_sec,omitempty"`
}

// Setting is a process-wide key/value pair, not tied to a specific day.
type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
