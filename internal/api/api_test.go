package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/chandlershortlidge/baby-timer-app/internal"
	"github.com/chandlershortlidge/baby-timer-app/internal/config"
	"github.com/chandlershortlidge/baby-timer-app/internal/service"
	"github.com/chandlershortlidge/baby-timer-app/internal/storage"
)

var (
	testWake = time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
	testNow  = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
)

type testApp struct {
	scheduler *service.Scheduler
}

func (a *testApp) Logger() internal.Logger       { return internal.NopLogger{} }
func (a *testApp) Scheduler() *service.Scheduler { return a.scheduler }

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	store, err := storage.NewFileStorage(
		filepath.Join(dir, "schedule.json"),
		filepath.Join(dir, "sessions.json"),
		filepath.Join(dir, "settings.json"),
		internal.NopLogger{},
	)
	assert.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	scheduler := service.NewScheduler(store, config.DefaultDefaults(), internal.NopLogger{}).
		WithClock(func() time.Time { return testNow })

	r := gin.New()
	RegisterRoutes(r, &testApp{scheduler: scheduler})
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req, _ = http.NewRequest(method, path, nil)
	} else {
		req, _ = http.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func logWake(t *testing.T, r *gin.Engine) {
	body := `{"type":"wake","timestamp":"` + testWake.Format(time.RFC3339) + `"}`
	w := doJSON(r, "POST", "/api/day/bedtime", body)
	assert.Equal(t, 200, w.Code)
}

func TestGetTodayNotStarted(t *testing.T) {
	r := setupRouter(t)
	w := doJSON(r, "GET", "/api/day/today", "")
	assert.Equal(t, 200, w.Code)

	var resp map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "not_found", resp["status"])
}

func TestWakeInitializesDay(t *testing.T) {
	r := setupRouter(t)
	logWake(t, r)

	w := doJSON(r, "GET", "/api/day/today", "")
	assert.Equal(t, 200, w.Code)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Day  internal.Day       `json:"day"`
			Naps []internal.NapSlot `json:"naps"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "2025-03-10", resp.Data.Day.Date)
	assert.Len(t, resp.Data.Naps, 3)
	assert.Equal(t, 1, resp.Data.Naps[0].Index)
	assert.Equal(t, internal.NapUpcoming, resp.Data.Naps[0].Status)
}

func TestStartAndStopNap(t *testing.T) {
	r := setupRouter(t)
	logWake(t, r)

	start := testWake.Add(90 * time.Minute)
	w := doJSON(r, "POST", "/api/naps/start",
		`{"index":1,"timestamp":"`+start.Format(time.RFC3339)+`"}`)
	assert.Equal(t, 200, w.Code)

	stop := start.Add(60 * time.Minute)
	w = doJSON(r, "POST", "/api/naps/stop",
		`{"index":1,"timestamp":"`+stop.Format(time.RFC3339)+`"}`)
	assert.Equal(t, 200, w.Code)

	w = doJSON(r, "GET", "/api/day/today", "")
	var resp struct {
		Data struct {
			Naps []internal.NapSlot `json:"naps"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, internal.NapFinished, resp.Data.Naps[0].Status)
	assert.Equal(t, start, resp.Data.Naps[0].ActualStartAt.UTC())
	assert.Equal(t, stop, resp.Data.Naps[0].ActualEndAt.UTC())

	// +900s over plan, split across the two remaining naps.
	assert.Equal(t, int64(3150), *resp.Data.Naps[1].AdjustedDurationSec)
	assert.Equal(t, int64(1350), *resp.Data.Naps[2].AdjustedDurationSec)
}

func TestStartNapWithoutDay(t *testing.T) {
	r := setupRouter(t)
	w := doJSON(r, "POST", "/api/naps/start",
		`{"index":1,"timestamp":"`+testWake.Format(time.RFC3339)+`"}`)
	assert.Equal(t, 404, w.Code)
}

func TestPatchScheduleOverlapRejected(t *testing.T) {
	r := setupRouter(t)
	logWake(t, r)

	s1 := testWake.Add(2 * time.Hour)
	s2 := s1.Add(30 * time.Minute)
	body := `{"naps":[` +
		`{"index":1,"start_at":"` + s1.Format(time.RFC3339) + `","duration_sec":3600},` +
		`{"index":2,"start_at":"` + s2.Format(time.RFC3339) + `","duration_sec":3600}]}`
	w := doJSON(r, "PATCH", "/api/schedule/today", body)
	assert.Equal(t, 400, w.Code)

	// Stored schedule unchanged.
	w = doJSON(r, "GET", "/api/day/today", "")
	var resp struct {
		Data struct {
			Naps []internal.NapSlot `json:"naps"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Naps, 3)
	assert.Equal(t, int64(2700), resp.Data.Naps[0].PlannedDurationSec)
}

func TestPatchScheduleApplies(t *testing.T) {
	r := setupRouter(t)
	logWake(t, r)

	s1 := testWake.Add(6 * time.Hour)
	s2 := testWake.Add(9 * time.Hour)
	body := `{"naps":[` +
		`{"index":1,"start_at":"` + s1.Format(time.RFC3339) + `","duration_sec":3000},` +
		`{"index":2,"start_at":"` + s2.Format(time.RFC3339) + `","duration_sec":2400}]}`
	w := doJSON(r, "PATCH", "/api/schedule/today", body)
	assert.Equal(t, 200, w.Code)

	w = doJSON(r, "GET", "/api/day/today", "")
	var resp struct {
		Data struct {
			Naps []internal.NapSlot `json:"naps"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Naps, 2)
}

func TestNapUpdateFinishedRejected(t *testing.T) {
	r := setupRouter(t)
	logWake(t, r)

	start := testWake.Add(2 * time.Hour)
	doJSON(r, "POST", "/api/naps/start", `{"index":1,"timestamp":"`+start.Format(time.RFC3339)+`"}`)
	doJSON(r, "POST", "/api/naps/stop", `{"index":1,"timestamp":"`+start.Add(45*time.Minute).Format(time.RFC3339)+`"}`)

	w := doJSON(r, "POST", "/api/naps/update", `{"index":1,"duration_min":30}`)
	assert.Equal(t, 400, w.Code)
}

func TestBedtimeInvalidPayload(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(r, "POST", "/api/day/bedtime", `{"type":"wake"}`)
	assert.Equal(t, 400, w.Code)

	w = doJSON(r, "POST", "/api/day/bedtime", `{"type":"wake","timestamp":"not-a-time"}`)
	assert.Equal(t, 400, w.Code)
}

func TestReminderSettingRoundtrip(t *testing.T) {
	r := setupRouter(t)

	w := doJSON(r, "GET", "/api/settings/reminder", "")
	assert.Equal(t, 200, w.Code)
	var resp struct {
		Data struct {
			LeadSec int64 `json:"lead_sec"`
		} `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(300), resp.Data.LeadSec)

	w = doJSON(r, "PATCH", "/api/settings/reminder", `{"lead_sec":420}`)
	assert.Equal(t, 200, w.Code)

	w = doJSON(r, "GET", "/api/settings/reminder", "")
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(420), resp.Data.LeadSec)
}
