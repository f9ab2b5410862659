package config

import (
	"errors"
	"os"
	"strconv"
	"sync"
)

type Config struct {
	Env          string
	LogLevel     string
	ListenAddr   string
	DBType       string
	DBDSN        string
	ScheduleFile string
	SessionsFile string
	SettingsFile string
	Defaults     Defaults
}

// Defaults holds the engine's tunable constants. It is passed explicitly
// into the scheduler so tests can override values per scenario instead of
// reaching for module-level constants.
type Defaults struct {
	DailyAwakeBudgetSec int64   // awake time between first wake and bedtime
	NapAlarmLeadSec     int64   // reminder lead before a nap window ends
	NapPlanSec          []int64 // default per-index nap durations on wake
	WakeWindowsSec      []int64 // per-index gap before each nap starts
	MinNapSec           int64   // adjustment never shortens a nap below this
	MaxScheduleEdits    int
	MinEditDurationMin  int64
	MaxEditDurationMin  int64
}

func DefaultDefaults() Defaults {
	return Defaults{
		DailyAwakeBudgetSec: 36000, // 10h
		NapAlarmLeadSec:     300,
		NapPlanSec:          []int64{2700, 3600, 1800}, // 45/60/30 min
		WakeWindowsSec:      []int64{7200, 9000, 10800},
		MinNapSec:           600,
		MaxScheduleEdits:    6,
		MinEditDurationMin:  20,
		MaxEditDurationMin:  180,
	}
}

// WakeWindowSec returns the default gap before the nap at index (1-based).
// Indexes beyond the table reuse the last entry.
func (d Defaults) WakeWindowSec(index int) int64 {
	if len(d.WakeWindowsSec) == 0 {
		return 0
	}
	if index < 1 {
		index = 1
	}
	if index > len(d.WakeWindowsSec) {
		index = len(d.WakeWindowsSec)
	}
	return d.WakeWindowsSec[index-1]
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = loadDotEnv()
		cfg = &Config{
			Env:          getEnv("APP_ENV", "development"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			ListenAddr:   getEnv("LISTEN_ADDR", ":8088"),
			DBType:       getEnv("STORAGE_BACKEND", "file"),
			DBDSN:        getEnv("POSTGRES_DSN", ""),
			ScheduleFile: getEnv("SCHEDULE_FILE", "data/schedule.json"),
			SessionsFile: getEnv("SESSIONS_FILE", "data/sleep_sessions.json"),
			SettingsFile: getEnv("SETTINGS_FILE", "data/settings.json"),
			Defaults:     defaultsFromEnv(),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func defaultsFromEnv() Defaults {
	d := DefaultDefaults()
	d.DailyAwakeBudgetSec = getEnvInt64("AWAKE_BUDGET_SEC", d.DailyAwakeBudgetSec)
	d.NapAlarmLeadSec = getEnvInt64("NAP_ALARM_LEAD_SEC", d.NapAlarmLeadSec)
	return d
}

func (c *Config) Validate() error {
	if c.DBType == "postgres" && c.DBDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.DBType == "file" && (c.ScheduleFile == "" || c.SessionsFile == "" || c.SettingsFile == "") {
		return errors.New("File storage requires SCHEDULE_FILE, SESSIONS_FILE and SETTINGS_FILE to be set")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.Defaults.DailyAwakeBudgetSec <= 0 {
		return errors.New("AWAKE_BUDGET_SEC must be positive")
	}
	if c.Defaults.NapAlarmLeadSec < 0 {
		return errors.New("NAP_ALARM_LEAD_SEC must be non-negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		f, err := os.Open(".env")
		if err != nil {
			return err
		}
		defer f.Close()
		var lines []string
		buf := make([]byte, 4096)
		for {
			n, err := f.Read(buf)
			if n > 0 {
				lines = append(lines, string(buf[:n]))
			}
			if err != nil {
				break
			}
		}
		for _, line := range lines {
			for _, l := range splitLines(line) {
				if len(l) == 0 || l[0] == '#' {
					continue
				}
				kv := splitKV(l)
				if len(kv) == 2 {
					os.Setenv(kv[0], kv[1])
				}
			}
		}
	}
	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i, c := range s {
		if c == '\n' || c == '\r' {
			if i > start {
				lines = append(lines, s[start:i])
			}
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func splitKV(s string) []string {
	for i, c := range s {
		if c == '=' {
			return []string{s[:i], s[i+1:]}
		}
	}
	return nil
}
