package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/chandlershortlidge/baby-timer-app/internal"
)

// SettingReminderLead is the settings key for the nap-end reminder lead
// time in seconds.
const SettingReminderLead = "reminder_lead_sec"

// GetReminderLead returns the configured reminder lead, falling back to the
// process default when the setting was never written.
func (s *Scheduler) GetReminderLead(ctx context.Context) (int64, error) {
	ctx, cancel := s.scoped(ctx)
	defer cancel()

	v, err := s.store.GetSetting(ctx, SettingReminderLead)
	if errors.Is(err, internal.ErrSettingNotFound) {
		return s.cfg.NapAlarmLeadSec, nil
	}
	if err != nil {
		return 0, wrapStore(err)
	}
	lead, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		s.logger.Warnf("stored reminder lead %q is not an integer, using default", v)
		return s.cfg.NapAlarmLeadSec, nil
	}
	return lead, nil
}

type ReminderRequest struct {
	LeadSec int64 `json:"lead_sec" validate:"gte=0"`
}

func (s *Scheduler) SetReminderLead(ctx context.Context, req *ReminderRequest) error {
	if err := validate.Struct(req); err != nil {
		return internal.Validationf("invalid reminder update: %v", err)
	}
	ctx, cancel := s.scoped(ctx)
	defer cancel()

	if err := s.store.SetSetting(ctx, SettingReminderLead, strconv.FormatInt(req.LeadSec, 10)); err != nil {
		return wrapStore(err)
	}
	return nil
}
