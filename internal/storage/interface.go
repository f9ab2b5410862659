package storage

import (
	"context"

	"github.com/chandlershortlidge/baby-timer-app/internal"
)

type DayRepository interface {
	GetDay(ctx context.Context, date string) (*internal.Day, error)
	// UpsertDay merges the incoming record into any existing one for the same
	// date: awake budget and alarm lead are only taken from the incoming
	// record when no day exists yet; once stored they win unconditionally,
	// zero included. Read-modify-write, inside the surrounding transaction,
	// so the merge is store-agnostic.
	UpsertDay(ctx context.Context, day *internal.Day) (*internal.Day, error)
	SaveDay(ctx context.Context, day *internal.Day) error
}

type NapSlotRepository interface {
	ListNaps(ctx context.Context, date string) ([]*internal.NapSlot, error)
	GetNap(ctx context.Context, date string, index int) (*internal.NapSlot, error)
	SaveNap(ctx context.Context, nap *internal.NapSlot) error
	DeleteNap(ctx context.Context, date string, index int) error
	DeleteNapsForDay(ctx context.Context, date string) error
}

type SleepSessionRepository interface {
	GetOpenSession(ctx context.Context) (*internal.SleepSession, error)
	SaveSession(ctx context.Context, session *internal.SleepSession) error
}

type SettingsRepository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
}

// Store bundles the four repositories behind one transactional surface.
// ExecTx runs fn against a store whose writes commit or roll back as a unit;
// the file backend is already serialized per event by the service layer, so
// its ExecTx simply runs fn against itself.
type Store interface {
	DayRepository
	NapSlotRepository
	SleepSessionRepository
	SettingsRepository
	ExecTx(ctx context.Context, fn func(Store) error) error
	Close() error
}
