package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/chandlershortlidge/baby-timer-app/internal"
)

// scheduleSnapshot is the on-disk shape of the schedule file: the day
// records plus every nap slot, flattened.
type scheduleSnapshot struct {
	Days []*internal.Day     `json:"days"`
	Naps []*internal.NapSlot `json:"naps"`
}

type FileStorage struct {
	days     map[string]*internal.Day              // date -> Day
	naps     map[string]map[int]*internal.NapSlot  // date -> index -> NapSlot
	sessions map[string]*internal.SleepSession     // id -> SleepSession
	settings map[string]string
	mu       sync.RWMutex

	scheduleFile string
	sessionsFile string
	settingsFile string

	saveScheduleChan chan struct{}
	saveSessionsChan chan struct{}
	saveSettingsChan chan struct{}
	shutdownChan     chan struct{}
	saveDelay        time.Duration
	logger           internal.Logger
}

func NewFileStorage(scheduleFile, sessionsFile, settingsFile string, logger internal.Logger) (*FileStorage, error) {
	s := &FileStorage{
		days:             make(map[string]*internal.Day),
		naps:             make(map[string]map[int]*internal.NapSlot),
		sessions:         make(map[string]*internal.SleepSession),
		settings:         make(map[string]string),
		scheduleFile:     scheduleFile,
		sessionsFile:     sessionsFile,
		settingsFile:     settingsFile,
		saveScheduleChan: make(chan struct{}, 1),
		saveSessionsChan: make(chan struct{}, 1),
		saveSettingsChan: make(chan struct{}, 1),
		shutdownChan:     make(chan struct{}),
		saveDelay:        500 * time.Millisecond,
		logger:           logger,
	}

	if err := s.loadSchedule(); err != nil {
		logger.Errorf("storage: failed to load schedule: %v", err)
		return nil, err
	}
	if err := s.loadSessions(); err != nil {
		logger.Errorf("storage: failed to load sleep sessions: %v", err)
		return nil, err
	}
	if err := s.loadSettings(); err != nil {
		logger.Errorf("storage: failed to load settings: %v", err)
		return nil, err
	}

	go s.saveWorker(s.saveScheduleChan, "schedule", s.saveSchedule)
	go s.saveWorker(s.saveSessionsChan, "sleep sessions", s.saveSessions)
	go s.saveWorker(s.saveSettingsChan, "settings", s.saveSettings)

	return s, nil
}

func loadJSON(path string, out interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func (s *FileStorage) loadSchedule() error {
	var snap scheduleSnapshot
	if err := loadJSON(s.scheduleFile, &snap); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range snap.Days {
		s.days[d.Date] = d
	}
	for _, n := range snap.Naps {
		if !n.Status.Valid() {
			s.logger.Warnf("storage: dropping nap %s/%d with unknown status %q", n.Date, n.Index, n.Status)
			continue
		}
		if s.naps[n.Date] == nil {
			s.naps[n.Date] = make(map[int]*internal.NapSlot)
		}
		s.naps[n.Date][n.Index] = n
	}
	return nil
}

func (s *FileStorage) loadSessions() error {
	var sessions []*internal.SleepSession
	if err := loadJSON(s.sessionsFile, &sessions); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range sessions {
		s.sessions[sess.ID] = sess
	}
	return nil
}

func (s *FileStorage) loadSettings() error {
	var settings []*internal.Setting
	if err := loadJSON(s.settingsFile, &settings); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range settings {
		s.settings[st.Key] = st.Value
	}
	return nil
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	tempFile := filePath + ".tmp"
	f, err := os.Create(tempFile)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveSchedule() error {
	s.mu.RLock()
	snap := scheduleSnapshot{
		Days: make([]*internal.Day, 0, len(s.days)),
		Naps: make([]*internal.NapSlot, 0),
	}
	for _, d := range s.days {
		snap.Days = append(snap.Days, d)
	}
	for _, byIndex := range s.naps {
		for _, n := range byIndex {
			snap.Naps = append(snap.Naps, n)
		}
	}
	s.mu.RUnlock()

	sort.Slice(snap.Days, func(i, j int) bool { return snap.Days[i].Date < snap.Days[j].Date })
	sort.Slice(snap.Naps, func(i, j int) bool {
		if snap.Naps[i].Date != snap.Naps[j].Date {
			return snap.Naps[i].Date < snap.Naps[j].Date
		}
		return snap.Naps[i].Index < snap.Naps[j].Index
	})
	return atomicWriteFileJSON(s.scheduleFile, snap)
}

func (s *FileStorage) saveSessions() error {
	s.mu.RLock()
	sessions := make([]*internal.SleepSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	s.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool { return sessions[i].StartAt.Before(sessions[j].StartAt) })
	return atomicWriteFileJSON(s.sessionsFile, sessions)
}

func (s *FileStorage) saveSettings() error {
	s.mu.RLock()
	settings := make([]*internal.Setting, 0, len(s.settings))
	for k, v := range s.settings {
		settings = append(settings, &internal.Setting{Key: k, Value: v})
	}
	s.mu.RUnlock()

	sort.Slice(settings, func(i, j int) bool { return settings[i].Key < settings[j].Key })
	return atomicWriteFileJSON(s.settingsFile, settings)
}

// saveWorker batches save signals so bursts of writes hit the disk once.
func (s *FileStorage) saveWorker(signal chan struct{}, name string, save func() error) {
	timer := time.NewTimer(s.saveDelay)
	defer timer.Stop()

	for {
		select {
		case <-signal:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", name, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

func signalSave(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

func (s *FileStorage) Close() error {
	close(s.shutdownChan)

	// Flush pending data synchronously on shutdown.
	if err := s.saveSchedule(); err != nil {
		return err
	}
	if err := s.saveSessions(); err != nil {
		return err
	}
	return s.saveSettings()
}

// ExecTx runs fn against the store itself. Events touching the same day are
// serialized by the service layer, and in-memory mutations under the RWMutex
// are atomic per call, so the file backend needs no separate transaction
// scope.
func (s *FileStorage) ExecTx(ctx context.Context, fn func(Store) error) error {
	return fn(s)
}

// --- DayRepository ---

func (s *FileStorage) GetDay(ctx context.Context, date string) (*internal.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.days[date]
	if !ok {
		return nil, internal.ErrDayNotFound
	}
	cp := *d
	return &cp, nil
}

func (s *FileStorage) UpsertDay(ctx context.Context, day *internal.Day) (*internal.Day, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := *day
	if existing, ok := s.days[day.Date]; ok {
		// Budget and alarm lead were set when the day was first created and
		// may have been edited since, possibly to zero. The stored values
		// always win over the incoming defaults.
		merged.DailyAwakeBudgetSec = existing.DailyAwakeBudgetSec
		merged.NapAlarmLeadSec = existing.NapAlarmLeadSec
	}
	s.days[day.Date] = &merged
	signalSave(s.saveScheduleChan)
	cp := merged
	return &cp, nil
}

func (s *FileStorage) SaveDay(ctx context.Context, day *internal.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *day
	s.days[day.Date] = &cp
	signalSave(s.saveScheduleChan)
	return nil
}

// --- NapSlotRepository ---

func (s *FileStorage) ListNaps(ctx context.Context, date string) ([]*internal.NapSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byIndex, ok := s.naps[date]
	if !ok {
		return []*internal.NapSlot{}, nil
	}
	naps := make([]*internal.NapSlot, 0, len(byIndex))
	for _, n := range byIndex {
		cp := *n
		naps = append(naps, &cp)
	}
	sort.Slice(naps, func(i, j int) bool { return naps[i].Index < naps[j].Index })
	return naps, nil
}

func (s *FileStorage) GetNap(ctx context.Context, date string, index int) (*internal.NapSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byIndex, ok := s.naps[date]
	if !ok {
		return nil, internal.ErrNapNotFound
	}
	n, ok := byIndex[index]
	if !ok {
		return nil, internal.ErrNapNotFound
	}
	cp := *n
	return &cp, nil
}

func (s *FileStorage) SaveNap(ctx context.Context, nap *internal.NapSlot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.naps[nap.Date] == nil {
		s.naps[nap.Date] = make(map[int]*internal.NapSlot)
	}
	cp := *nap
	s.naps[nap.Date][nap.Index] = &cp
	signalSave(s.saveScheduleChan)
	return nil
}

func (s *FileStorage) DeleteNap(ctx context.Context, date string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if byIndex, ok := s.naps[date]; ok {
		delete(byIndex, index)
	}
	signalSave(s.saveScheduleChan)
	return nil
}

func (s *FileStorage) DeleteNapsForDay(ctx context.Context, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.naps, date)
	signalSave(s.saveScheduleChan)
	return nil
}

// --- SleepSessionRepository ---

func (s *FileStorage) GetOpenSession(ctx context.Context) (*internal.SleepSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest *internal.SleepSession
	for _, sess := range s.sessions {
		if sess.EndAt != nil {
			continue
		}
		if latest == nil || sess.StartAt.After(latest.StartAt) {
			latest = sess
		}
	}
	if latest == nil {
		return nil, internal.ErrSessionNotFound
	}
	cp := *latest
	return &cp, nil
}

func (s *FileStorage) SaveSession(ctx context.Context, session *internal.SleepSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *session
	s.sessions[session.ID] = &cp
	signalSave(s.saveSessionsChan)
	return nil
}

// --- SettingsRepository ---

func (s *FileStorage) GetSetting(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.settings[key]
	if !ok {
		return "", internal.ErrSettingNotFound
	}
	return v, nil
}

func (s *FileStorage) SetSetting(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
	signalSave(s.saveSettingsChan)
	return nil
}

// --- Compile-time assertion ---
var _ Store = (*FileStorage)(nil)
