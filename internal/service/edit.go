package service

import (
	"context"

	"github.com/chandlershortlidge/baby-timer-app/internal"
	"github.com/chandlershortlidge/baby-timer-app/internal/schedule"
	"github.com/chandlershortlidge/baby-timer-app/internal/storage"
	"github.com/chandlershortlidge/baby-timer-app/internal/timeutil"
)

type ScheduleEditRequest struct {
	Naps []schedule.Edit `json:"naps" validate:"required,min=1,dive"`
}

// EditToday applies a bulk manual edit to today's upcoming naps. Validation
// happens entirely before any write, so a rejected batch leaves the stored
// schedule exactly as it was.
func (s *Scheduler) EditToday(ctx context.Context, req *ScheduleEditRequest) (*schedule.EditResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, internal.Validationf("invalid schedule edit: %v", err)
	}
	date := timeutil.DateKey(s.now())

	ctx, cancel := s.scoped(ctx)
	defer cancel()
	unlock := s.locks.lock(date)
	defer unlock()

	var result *schedule.EditResult
	err := s.store.ExecTx(ctx, func(tx storage.Store) error {
		day, err := tx.GetDay(ctx, date)
		if err != nil {
			return err
		}
		naps, err := tx.ListNaps(ctx, date)
		if err != nil {
			return err
		}

		result, err = s.engine.ApplyEdits(day, naps, req.Naps)
		if err != nil {
			return err
		}

		for _, index := range result.Deleted {
			if err := tx.DeleteNap(ctx, date, index); err != nil {
				return err
			}
		}
		for _, n := range result.Naps {
			if err := tx.SaveNap(ctx, n); err != nil {
				return err
			}
		}
		return tx.SaveDay(ctx, result.Day)
	})
	if err != nil {
		return nil, wrapStore(err)
	}
	return result, nil
}
