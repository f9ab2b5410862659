package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chandlershortlidge/baby-timer-app/internal"
)

// pgxQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, so the same
// repository methods serve pooled and transactional access.
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStorage struct {
	pool   *pgxpool.Pool
	q      pgxQuerier
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	s := &PostgresStorage{pool: pool, q: pool, logger: logger}
	if err := s.initSchema(ctx); err != nil {
		logger.Errorf("failed to initialize schema: %v", err)
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (p *PostgresStorage) initSchema(ctx context.Context) error {
	_, err := p.q.Exec(ctx, `
CREATE TABLE IF NOT EXISTS days (
	date                   text PRIMARY KEY,
	first_wake_at          timestamptz,
	bedtime_start_at       timestamptz,
	total_night_sleep_sec  bigint,
	daily_awake_budget_sec bigint NOT NULL DEFAULT 0,
	nap_alarm_lead_sec     bigint NOT NULL DEFAULT 0,
	projected_bedtime_at   timestamptz
);
CREATE TABLE IF NOT EXISTS nap_slots (
	date                  text NOT NULL,
	nap_index             int  NOT NULL,
	planned_duration_sec  bigint NOT NULL,
	planned_start_at      timestamptz,
	adjusted_duration_sec bigint,
	actual_start_at       timestamptz,
	actual_end_at         timestamptz,
	status                text NOT NULL,
	PRIMARY KEY (date, nap_index)
);
CREATE TABLE IF NOT EXISTS sleep_sessions (
	id              text PRIMARY KEY,
	start_at        timestamptz NOT NULL,
	end_at          timestamptz,
	total_sleep_sec bigint
);
CREATE TABLE IF NOT EXISTS settings (
	key   text PRIMARY KEY,
	value text NOT NULL
);`)
	return err
}

func (p *PostgresStorage) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

// ExecTx runs fn against a transaction-bound copy of the store. A nested
// call (fn receives a tx-bound store and calls ExecTx again) reuses the same
// transaction.
func (p *PostgresStorage) ExecTx(ctx context.Context, fn func(Store) error) error {
	if p.pool == nil {
		return fn(p)
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		p.logger.Errorf("failed to begin transaction: %v", err)
		return err
	}
	defer tx.Rollback(ctx)

	txStore := &PostgresStorage{q: tx, logger: p.logger}
	if err := fn(txStore); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// --- DayRepository ---

const dayColumns = `date, first_wake_at, bedtime_start_at, total_night_sleep_sec, daily_awake_budget_sec, nap_alarm_lead_sec, projected_bedtime_at`

func scanDay(row pgx.Row) (*internal.Day, error) {
	var d internal.Day
	err := row.Scan(&d.Date, &d.FirstWakeAt, &d.BedtimeStartAt, &d.TotalNightSleepSec,
		&d.DailyAwakeBudgetSec, &d.NapAlarmLeadSec, &d.ProjectedBedtimeAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal.ErrDayNotFound
		}
		return nil, err
	}
	return &d, nil
}

func (p *PostgresStorage) GetDay(ctx context.Context, date string) (*internal.Day, error) {
	row := p.q.QueryRow(ctx, `SELECT `+dayColumns+` FROM days WHERE date = $1`, date)
	return scanDay(row)
}

func (p *PostgresStorage) UpsertDay(ctx context.Context, day *internal.Day) (*internal.Day, error) {
	// Explicit read-modify-write instead of a conflict clause: once a row
	// exists its budget and alarm lead always win over the incoming
	// defaults, even when they were edited to zero.
	existing, err := p.GetDay(ctx, day.Date)
	if err != nil && !errors.Is(err, internal.ErrDayNotFound) {
		return nil, err
	}
	merged := *day
	if existing != nil {
		merged.DailyAwakeBudgetSec = existing.DailyAwakeBudgetSec
		merged.NapAlarmLeadSec = existing.NapAlarmLeadSec
	}
	if err := p.SaveDay(ctx, &merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

func (p *PostgresStorage) SaveDay(ctx context.Context, day *internal.Day) error {
	_, err := p.q.Exec(ctx, `INSERT INTO days (`+dayColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (date) DO UPDATE SET
			first_wake_at = EXCLUDED.first_wake_at,
			bedtime_start_at = EXCLUDED.bedtime_start_at,
			total_night_sleep_sec = EXCLUDED.total_night_sleep_sec,
			daily_awake_budget_sec = EXCLUDED.daily_awake_budget_sec,
			nap_alarm_lead_sec = EXCLUDED.nap_alarm_lead_sec,
			projected_bedtime_at = EXCLUDED.projected_bedtime_at`,
		day.Date, day.FirstWakeAt, day.BedtimeStartAt, day.TotalNightSleepSec,
		day.DailyAwakeBudgetSec, day.NapAlarmLeadSec, day.ProjectedBedtimeAt)
	if err != nil {
		p.logger.Errorf("failed to save day %s: %v", day.Date, err)
	}
	return err
}

// --- NapSlotRepository ---

const napColumns = `date, nap_index, planned_duration_sec, planned_start_at, adjusted_duration_sec, actual_start_at, actual_end_at, status`

func (p *PostgresStorage) ListNaps(ctx context.Context, date string) ([]*internal.NapSlot, error) {
	rows, err := p.q.Query(ctx, `SELECT `+napColumns+` FROM nap_slots WHERE date = $1 ORDER BY nap_index`, date)
	if err != nil {
		p.logger.Errorf("failed to query nap slots: %v", err)
		return nil, err
	}
	defer rows.Close()

	naps := []*internal.NapSlot{}
	for rows.Next() {
		var n internal.NapSlot
		err := rows.Scan(&n.Date, &n.Index, &n.PlannedDurationSec, &n.PlannedStartAt,
			&n.AdjustedDurationSec, &n.ActualStartAt, &n.ActualEndAt, &n.Status)
		if err != nil {
			p.logger.Errorf("failed to scan nap slot: %v", err)
			return nil, err
		}
		naps = append(naps, &n)
	}
	return naps, rows.Err()
}

func (p *PostgresStorage) GetNap(ctx context.Context, date string, index int) (*internal.NapSlot, error) {
	row := p.q.QueryRow(ctx, `SELECT `+napColumns+` FROM nap_slots WHERE date = $1 AND nap_index = $2`, date, index)
	var n internal.NapSlot
	err := row.Scan(&n.Date, &n.Index, &n.PlannedDurationSec, &n.PlannedStartAt,
		&n.AdjustedDurationSec, &n.ActualStartAt, &n.ActualEndAt, &n.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal.ErrNapNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (p *PostgresStorage) SaveNap(ctx context.Context, nap *internal.NapSlot) error {
	_, err := p.q.Exec(ctx, `INSERT INTO nap_slots (`+napColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (date, nap_index) DO UPDATE SET
			planned_duration_sec = EXCLUDED.planned_duration_sec,
			planned_start_at = EXCLUDED.planned_start_at,
			adjusted_duration_sec = EXCLUDED.adjusted_duration_sec,
			actual_start_at = EXCLUDED.actual_start_at,
			actual_end_at = EXCLUDED.actual_end_at,
			status = EXCLUDED.status`,
		nap.Date, nap.Index, nap.PlannedDurationSec, nap.PlannedStartAt,
		nap.AdjustedDurationSec, nap.ActualStartAt, nap.ActualEndAt, nap.Status)
	if err != nil {
		p.logger.Errorf("failed to save nap %s/%d: %v", nap.Date, nap.Index, err)
	}
	return err
}

func (p *PostgresStorage) DeleteNap(ctx context.Context, date string, index int) error {
	_, err := p.q.Exec(ctx, `DELETE FROM nap_slots WHERE date = $1 AND nap_index = $2`, date, index)
	return err
}

func (p *PostgresStorage) DeleteNapsForDay(ctx context.Context, date string) error {
	_, err := p.q.Exec(ctx, `DELETE FROM nap_slots WHERE date = $1`, date)
	return err
}

// --- SleepSessionRepository ---

func (p *PostgresStorage) GetOpenSession(ctx context.Context) (*internal.SleepSession, error) {
	row := p.q.QueryRow(ctx, `SELECT id, start_at, end_at, total_sleep_sec FROM sleep_sessions
		WHERE end_at IS NULL ORDER BY start_at DESC LIMIT 1`)
	var s internal.SleepSession
	if err := row.Scan(&s.ID, &s.StartAt, &s.EndAt, &s.TotalSleepSec); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal.ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (p *PostgresStorage) SaveSession(ctx context.Context, session *internal.SleepSession) error {
	_, err := p.q.Exec(ctx, `INSERT INTO sleep_sessions (id, start_at, end_at, total_sleep_sec) VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			start_at = EXCLUDED.start_at,
			end_at = EXCLUDED.end_at,
			total_sleep_sec = EXCLUDED.total_sleep_sec`,
		session.ID, session.StartAt, session.EndAt, session.TotalSleepSec)
	if err != nil {
		p.logger.Errorf("failed to save sleep session %s: %v", session.ID, err)
	}
	return err
}

// --- SettingsRepository ---

func (p *PostgresStorage) GetSetting(ctx context.Context, key string) (string, error) {
	row := p.q.QueryRow(ctx, `SELECT value FROM settings WHERE key = $1`, key)
	var v string
	if err := row.Scan(&v); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", internal.ErrSettingNotFound
		}
		return "", err
	}
	return v, nil
}

func (p *PostgresStorage) SetSetting(ctx context.Context, key, value string) error {
	_, err := p.q.Exec(ctx, `INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

// --- Compile-time assertion ---
var _ Store = (*PostgresStorage)(nil)
