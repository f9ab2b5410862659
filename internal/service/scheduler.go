// Package service orchestrates the nap schedule engine against storage.
// Each external event runs under the target day's lock and inside one store
// transaction, so a crash or concurrent request never leaves a day with a
// half-updated nap set.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chandlershortlidge/baby-timer-app/internal"
	"github.com/chandlershortlidge/baby-timer-app/internal/config"
	"github.com/chandlershortlidge/baby-timer-app/internal/schedule"
	"github.com/chandlershortlidge/baby-timer-app/internal/storage"
)

var validate = validator.New()

// storeTimeout bounds every store access so a stuck backend surfaces as a
// persistence error instead of a hang.
const storeTimeout = 5 * time.Second

type Scheduler struct {
	store  storage.Store
	engine *schedule.Engine
	cfg    config.Defaults
	logger internal.Logger
	locks  *dayLocks
	now    func() time.Time
}

func NewScheduler(store storage.Store, cfg config.Defaults, logger internal.Logger) *Scheduler {
	return &Scheduler{
		store:  store,
		engine: schedule.NewEngine(cfg, logger),
		cfg:    cfg,
		logger: logger,
		locks:  newDayLocks(),
		now:    time.Now,
	}
}

// WithClock pins the scheduler's (and its engine's) clock. Tests use this.
func (s *Scheduler) WithClock(now func() time.Time) *Scheduler {
	s.now = now
	s.engine.WithClock(now)
	return s
}

func (s *Scheduler) scoped(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storeTimeout)
}

// wrapStore turns unexpected store failures into persistence errors while
// letting the not-found sentinels and validation errors pass through
// untouched.
func wrapStore(err error) error {
	if err == nil || internal.IsNotFound(err) {
		return err
	}
	var ve *internal.ValidationError
	var pe *internal.PersistenceError
	if errors.As(err, &ve) || errors.As(err, &pe) {
		return err
	}
	return &internal.PersistenceError{Err: err}
}
