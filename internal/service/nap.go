package service

import (
	"context"

	"github.com/chandlershortlidge/baby-timer-app/internal"
	"github.com/chandlershortlidge/baby-timer-app/internal/storage"
	"github.com/chandlershortlidge/baby-timer-app/internal/timeutil"
)

type NapEventRequest struct {
	Index     int    `json:"index" validate:"required,gt=0"`
	Timestamp string `json:"timestamp" validate:"required"`
}

// StartNap transitions the slot at the event's index to in_progress. The
// Day for the timestamp's date must already exist, the slot must still be
// upcoming, and no other nap may be running.
func (s *Scheduler) StartNap(ctx context.Context, req *NapEventRequest) (*internal.NapSlot, error) {
	if err := validate.Struct(req); err != nil {
		return nil, internal.Validationf("invalid nap start: %v", err)
	}
	ts := timeutil.ParseInstant(req.Timestamp)
	if ts == nil {
		return nil, internal.Validationf("unparseable timestamp %q", req.Timestamp)
	}
	date := timeutil.DateKey(*ts)

	ctx, cancel := s.scoped(ctx)
	defer cancel()
	unlock := s.locks.lock(date)
	defer unlock()

	var started *internal.NapSlot
	err := s.store.ExecTx(ctx, func(tx storage.Store) error {
		day, err := tx.GetDay(ctx, date)
		if err != nil {
			return err
		}
		naps, err := tx.ListNaps(ctx, date)
		if err != nil {
			return err
		}
		var slot *internal.NapSlot
		for _, n := range naps {
			if n.Index == req.Index {
				slot = n
			} else if n.Status == internal.NapInProgress {
				return internal.Validationf("nap %d is already in progress", n.Index)
			}
		}
		if slot == nil {
			return internal.ErrNapNotFound
		}
		if !slot.Status.CanTransition(internal.NapInProgress) {
			return internal.Validationf("nap %d is %s and cannot be started", slot.Index, slot.Status)
		}

		slot.ActualStartAt = ts
		slot.Status = internal.NapInProgress
		if err := tx.SaveNap(ctx, slot); err != nil {
			return err
		}

		s.engine.ProjectBedtime(day, naps)
		if err := tx.SaveDay(ctx, day); err != nil {
			return err
		}
		started = slot
		return nil
	})
	if err != nil {
		return nil, wrapStore(err)
	}
	return started, nil
}

// StopNap finishes the running slot, then redistributes its deviation from
// plan across the remaining upcoming naps and reprojects bedtime, all in
// one transaction.
func (s *Scheduler) StopNap(ctx context.Context, req *NapEventRequest) (*internal.NapSlot, error) {
	if err := validate.Struct(req); err != nil {
		return nil, internal.Validationf("invalid nap stop: %v", err)
	}
	ts := timeutil.ParseInstant(req.Timestamp)
	if ts == nil {
		return nil, internal.Validationf("unparseable timestamp %q", req.Timestamp)
	}
	date := timeutil.DateKey(*ts)

	ctx, cancel := s.scoped(ctx)
	defer cancel()
	unlock := s.locks.lock(date)
	defer unlock()

	var stopped *internal.NapSlot
	err := s.store.ExecTx(ctx, func(tx storage.Store) error {
		day, err := tx.GetDay(ctx, date)
		if err != nil {
			return err
		}
		naps, err := tx.ListNaps(ctx, date)
		if err != nil {
			return err
		}
		var slot *internal.NapSlot
		for _, n := range naps {
			if n.Index == req.Index {
				slot = n
				break
			}
		}
		if slot == nil {
			return internal.ErrNapNotFound
		}
		if !slot.Status.CanTransition(internal.NapFinished) {
			return internal.Validationf("nap %d is %s and cannot be stopped", slot.Index, slot.Status)
		}

		slot.ActualEndAt = ts
		slot.Status = internal.NapFinished
		if err := tx.SaveNap(ctx, slot); err != nil {
			return err
		}

		for _, adjusted := range s.engine.Adjust(naps, req.Index) {
			if err := tx.SaveNap(ctx, adjusted); err != nil {
				return err
			}
		}

		s.engine.ProjectBedtime(day, naps)
		if err := tx.SaveDay(ctx, day); err != nil {
			return err
		}
		stopped = slot
		return nil
	})
	if err != nil {
		return nil, wrapStore(err)
	}
	return stopped, nil
}

type NapUpdateRequest struct {
	Index       int    `json:"index" validate:"required,gt=0"`
	DurationMin int64  `json:"duration_min" validate:"required,gt=0"`
	Date        string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// UpdateNap changes a single nap's duration. A running nap only gets its
// adjusted duration rewritten (the plan is history at that point); an
// upcoming nap gets a new planned duration with any adjustment cleared; a
// finished nap is immutable.
func (s *Scheduler) UpdateNap(ctx context.Context, req *NapUpdateRequest) (*internal.NapSlot, error) {
	if err := validate.Struct(req); err != nil {
		return nil, internal.Validationf("invalid nap update: %v", err)
	}
	date := req.Date
	if date == "" {
		date = timeutil.DateKey(s.now())
	}

	ctx, cancel := s.scoped(ctx)
	defer cancel()
	unlock := s.locks.lock(date)
	defer unlock()

	durationSec := req.DurationMin * 60
	var updated *internal.NapSlot
	err := s.store.ExecTx(ctx, func(tx storage.Store) error {
		day, err := tx.GetDay(ctx, date)
		if err != nil {
			return err
		}
		slot, err := tx.GetNap(ctx, date, req.Index)
		if err != nil {
			return err
		}
		switch slot.Status {
		case internal.NapInProgress:
			slot.AdjustedDurationSec = &durationSec
		case internal.NapUpcoming:
			slot.PlannedDurationSec = durationSec
			slot.AdjustedDurationSec = nil
		default:
			return internal.Validationf("nap %d is finished and cannot be updated", slot.Index)
		}
		if err := tx.SaveNap(ctx, slot); err != nil {
			return err
		}

		naps, err := tx.ListNaps(ctx, date)
		if err != nil {
			return err
		}
		s.engine.ProjectBedtime(day, naps)
		if err := tx.SaveDay(ctx, day); err != nil {
			return err
		}
		updated = slot
		return nil
	})
	if err != nil {
		return nil, wrapStore(err)
	}
	return updated, nil
}
