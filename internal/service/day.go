package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/chandlershortlidge/baby-timer-app/internal"
	"github.com/chandlershortlidge/baby-timer-app/internal/storage"
	"github.com/chandlershortlidge/baby-timer-app/internal/timeutil"
)

type BedtimeRequest struct {
	Type      string `json:"type" validate:"required,oneof=sleep wake"`
	Timestamp string `json:"timestamp" validate:"required"`
}

type TodayView struct {
	Day          *internal.Day          `json:"day"`
	Naps         []*internal.NapSlot    `json:"naps"`
	SleepSession *internal.SleepSession `json:"sleep_session,omitempty"`
}

// Today returns the schedule for the current UTC date, or ErrDayNotFound
// when no wake has been logged yet. A pure read: no records are created as
// a side effect. The reads run under the day's lock and one transaction so
// a concurrent wake can never expose a day with a half-rewritten nap set.
func (s *Scheduler) Today(ctx context.Context) (*TodayView, error) {
	ctx, cancel := s.scoped(ctx)
	defer cancel()

	date := timeutil.DateKey(s.now())
	unlock := s.locks.lock(date)
	defer unlock()

	var view *TodayView
	err := s.store.ExecTx(ctx, func(tx storage.Store) error {
		day, err := tx.GetDay(ctx, date)
		if err != nil {
			return err
		}
		naps, err := tx.ListNaps(ctx, date)
		if err != nil {
			return err
		}
		view = &TodayView{Day: day, Naps: naps}
		sess, err := tx.GetOpenSession(ctx)
		if err == nil {
			view.SleepSession = sess
		} else if !errors.Is(err, internal.ErrSessionNotFound) {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, wrapStore(err)
	}
	return view, nil
}

// LogBedtime handles the sleep/wake event pair. "sleep" opens (or reopens)
// the single open sleep session. "wake" closes it, upserts the Day keyed by
// the wake timestamp's calendar date, lays down the default nap plan for
// that day, and projects a bedtime. Re-logging the same wake timestamp
// rebuilds the same plan, so retries converge.
func (s *Scheduler) LogBedtime(ctx context.Context, req *BedtimeRequest) (string, error) {
	if err := validate.Struct(req); err != nil {
		return "", internal.Validationf("invalid bedtime event: %v", err)
	}
	ts := timeutil.ParseInstant(req.Timestamp)
	if ts == nil {
		return "", internal.Validationf("unparseable timestamp %q", req.Timestamp)
	}

	ctx, cancel := s.scoped(ctx)
	defer cancel()

	if req.Type == "sleep" {
		return s.logSleep(ctx, *ts)
	}
	return s.logWake(ctx, *ts)
}

func (s *Scheduler) logSleep(ctx context.Context, ts time.Time) (string, error) {
	err := s.store.ExecTx(ctx, func(tx storage.Store) error {
		sess, err := tx.GetOpenSession(ctx)
		if errors.Is(err, internal.ErrSessionNotFound) {
			sess = &internal.SleepSession{ID: uuid.NewString()}
		} else if err != nil {
			return err
		}
		// A second sleep event moves the open session's start rather than
		// opening a second one.
		sess.StartAt = ts
		sess.EndAt = nil
		sess.TotalSleepSec = nil
		return tx.SaveSession(ctx, sess)
	})
	if err != nil {
		return "", wrapStore(err)
	}
	return "sleep logged", nil
}

func (s *Scheduler) logWake(ctx context.Context, ts time.Time) (string, error) {
	date := timeutil.DateKey(ts)
	unlock := s.locks.lock(date)
	defer unlock()

	err := s.store.ExecTx(ctx, func(tx storage.Store) error {
		day := &internal.Day{
			Date:                date,
			FirstWakeAt:         &ts,
			DailyAwakeBudgetSec: s.cfg.DailyAwakeBudgetSec,
			NapAlarmLeadSec:     s.cfg.NapAlarmLeadSec,
		}

		sess, err := tx.GetOpenSession(ctx)
		if err == nil {
			end := ts
			sess.EndAt = &end
			total := timeutil.DurationSec(sess.StartAt, ts)
			if total < 0 {
				s.logger.Warnf("wake at %s precedes open session start, recording zero night sleep", ts)
				total = 0
			}
			sess.TotalSleepSec = &total
			if err := tx.SaveSession(ctx, sess); err != nil {
				return err
			}
			start := sess.StartAt
			day.BedtimeStartAt = &start
			day.TotalNightSleepSec = &total
		} else if !errors.Is(err, internal.ErrSessionNotFound) {
			return err
		}

		day, err = tx.UpsertDay(ctx, day)
		if err != nil {
			return err
		}

		// Wake replaces the whole nap set for the day, so re-logging the
		// same wake never accumulates duplicate slots.
		if err := tx.DeleteNapsForDay(ctx, date); err != nil {
			return err
		}
		naps := s.engine.DefaultPlan(date, ts)
		for _, n := range naps {
			if err := tx.SaveNap(ctx, n); err != nil {
				return err
			}
		}

		s.engine.ProjectBedtime(day, naps)
		return tx.SaveDay(ctx, day)
	})
	if err != nil {
		return "", wrapStore(err)
	}
	return "wake logged, schedule initialized", nil
}

type AlarmRequest struct {
	LeadSec int64  `json:"lead_sec" validate:"gte=0"`
	Date    string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// SetDayAlarm updates a day's nap alarm lead time. Date defaults to today.
func (s *Scheduler) SetDayAlarm(ctx context.Context, req *AlarmRequest) (*internal.Day, error) {
	if err := validate.Struct(req); err != nil {
		return nil, internal.Validationf("invalid alarm update: %v", err)
	}
	date := req.Date
	if date == "" {
		date = timeutil.DateKey(s.now())
	}

	ctx, cancel := s.scoped(ctx)
	defer cancel()
	unlock := s.locks.lock(date)
	defer unlock()

	var day *internal.Day
	err := s.store.ExecTx(ctx, func(tx storage.Store) error {
		var err error
		day, err = tx.GetDay(ctx, date)
		if err != nil {
			return err
		}
		day.NapAlarmLeadSec = req.LeadSec
		return tx.SaveDay(ctx, day)
	})
	if err != nil {
		return nil, wrapStore(err)
	}
	return day, nil
}
