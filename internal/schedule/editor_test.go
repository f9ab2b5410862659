package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/chandlershortlidge/baby-timer-app/internal"
)

func editorEngine() *Engine {
	return testEngine().WithClock(func() time.Time { return testWake.Add(time.Hour) })
}

func editAt(index int, start time.Time, durationSec int64) Edit {
	return Edit{Index: index, StartAt: start.Format(time.RFC3339), DurationSec: durationSec}
}

func TestApplyEditsReplacesUpcoming(t *testing.T) {
	e := editorEngine()
	day := testDay()
	naps := e.DefaultPlan(day.Date, testWake)

	s1 := testWake.Add(2 * time.Hour)
	s2 := testWake.Add(6 * time.Hour)
	result, err := e.ApplyEdits(day, naps, []Edit{
		editAt(1, s1, 3000),
		editAt(2, s2, 2400),
	})
	assert.NoError(t, err)

	// Nap 3 was upcoming and absent from the batch: deleted.
	assert.Equal(t, []int{3}, result.Deleted)
	assert.Len(t, result.Naps, 2)

	assert.Equal(t, int64(3000), result.Naps[0].PlannedDurationSec)
	assert.Equal(t, s1, result.Naps[0].PlannedStartAt.UTC())
	assert.Nil(t, result.Naps[0].AdjustedDurationSec)
	assert.Equal(t, internal.NapUpcoming, result.Naps[0].Status)

	// Bedtime reprojected for the new plan.
	assert.NotNil(t, day.ProjectedBedtimeAt)
	want := testWake.Add(time.Duration(36000+3000+2400) * time.Second)
	assert.Equal(t, want, *day.ProjectedBedtimeAt)
}

func TestApplyEditsClearsAdjustment(t *testing.T) {
	e := editorEngine()
	day := testDay()
	naps := e.DefaultPlan(day.Date, testWake)
	adj := int64(3150)
	naps[1].AdjustedDurationSec = &adj

	result, err := e.ApplyEdits(day, naps, []Edit{
		editAt(2, testWake.Add(5*time.Hour), 3600),
	})
	assert.NoError(t, err)
	for _, n := range result.Naps {
		if n.Index == 2 {
			assert.Nil(t, n.AdjustedDurationSec)
		}
	}
}

func TestApplyEditsInsertsNewIndex(t *testing.T) {
	e := editorEngine()
	day := testDay()
	naps := e.DefaultPlan(day.Date, testWake)

	result, err := e.ApplyEdits(day, naps, []Edit{
		editAt(1, testWake.Add(2*time.Hour), 2700),
		editAt(2, testWake.Add(5*time.Hour), 3600),
		editAt(3, testWake.Add(8*time.Hour), 1800),
		editAt(4, testWake.Add(10*time.Hour), 1500),
	})
	assert.NoError(t, err)
	assert.Len(t, result.Naps, 4)
	assert.Equal(t, 4, result.Naps[3].Index)
	assert.Equal(t, internal.NapUpcoming, result.Naps[3].Status)
}

func TestApplyEditsPreservesFinished(t *testing.T) {
	e := editorEngine()
	day := testDay()
	naps := e.DefaultPlan(day.Date, testWake)
	s := testWake.Add(90 * time.Minute)
	end := s.Add(45 * time.Minute)
	naps[0].ActualStartAt = &s
	naps[0].ActualEndAt = &end
	naps[0].Status = internal.NapFinished

	result, err := e.ApplyEdits(day, naps, []Edit{
		editAt(2, testWake.Add(5*time.Hour), 3600),
	})
	assert.NoError(t, err)

	// Finished nap 1 untouched, upcoming nap 3 deleted.
	assert.Equal(t, []int{3}, result.Deleted)
	assert.Equal(t, internal.NapFinished, result.Naps[0].Status)
	assert.Equal(t, end, result.Naps[0].ActualEndAt.UTC())
}

func TestApplyEditsValidation(t *testing.T) {
	e := editorEngine()
	s := testWake.Add(2 * time.Hour)

	cases := []struct {
		name  string
		edits []Edit
	}{
		{"empty batch", nil},
		{"too many", []Edit{
			editAt(1, s, 1800), editAt(2, s.Add(time.Hour), 1800),
			editAt(3, s.Add(2*time.Hour), 1800), editAt(4, s.Add(3*time.Hour), 1800),
			editAt(5, s.Add(4*time.Hour), 1800), editAt(6, s.Add(5*time.Hour), 1800),
			editAt(7, s.Add(6*time.Hour), 1800),
		}},
		{"duplicate index", []Edit{editAt(1, s, 1800), editAt(1, s.Add(time.Hour), 1800)}},
		{"non-positive index", []Edit{editAt(0, s, 1800)}},
		{"unparseable start", []Edit{{Index: 1, StartAt: "yesterday-ish", DurationSec: 1800}}},
		{"too short", []Edit{editAt(1, s, 19 * 60)}},
		{"too short by seconds", []Edit{editAt(1, s, 20*60-1)}},
		{"too long", []Edit{editAt(1, s, 181 * 60)}},
		{"too long by seconds", []Edit{editAt(1, s, 180*60+39)}},
		{"wrong date", []Edit{editAt(1, s.Add(24*time.Hour), 1800)}},
		{"overlap", []Edit{editAt(1, s, 3600), editAt(2, s.Add(30*time.Minute), 3600)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			day := testDay()
			naps := e.DefaultPlan(day.Date, testWake)
			_, err := e.ApplyEdits(day, naps, tc.edits)
			var ve *internal.ValidationError
			assert.ErrorAs(t, err, &ve, "expected validation error")
		})
	}
}

func TestApplyEditsAcceptsBoundaryDurations(t *testing.T) {
	e := editorEngine()
	day := testDay()
	naps := e.DefaultPlan(day.Date, testWake)

	_, err := e.ApplyEdits(day, naps, []Edit{
		editAt(1, testWake.Add(2*time.Hour), 20*60),
		editAt(2, testWake.Add(8*time.Hour), 180*60),
	})
	assert.NoError(t, err)
}

func TestApplyEditsRejectsNonUpcomingTarget(t *testing.T) {
	e := editorEngine()
	day := testDay()
	naps := e.DefaultPlan(day.Date, testWake)
	s := testWake.Add(30 * time.Minute)
	naps[0].ActualStartAt = &s
	naps[0].Status = internal.NapInProgress

	_, err := e.ApplyEdits(day, naps, []Edit{
		editAt(1, testWake.Add(2*time.Hour), 2700),
	})
	var ve *internal.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestApplyEditsRejectsPastStartDuringActiveNap(t *testing.T) {
	// Clock pinned an hour after wake; nap 1 is running.
	e := editorEngine()
	day := testDay()
	naps := e.DefaultPlan(day.Date, testWake)
	s := testWake.Add(30 * time.Minute)
	naps[0].ActualStartAt = &s
	naps[0].Status = internal.NapInProgress

	_, err := e.ApplyEdits(day, naps, []Edit{
		editAt(2, testWake.Add(30*time.Minute), 2700), // before "now"
	})
	var ve *internal.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestApplyEditsResultSortedAndNonOverlapping(t *testing.T) {
	e := editorEngine()
	day := testDay()
	naps := e.DefaultPlan(day.Date, testWake)

	result, err := e.ApplyEdits(day, naps, []Edit{
		editAt(3, testWake.Add(8*time.Hour), 1800),
		editAt(1, testWake.Add(2*time.Hour), 2700),
		editAt(2, testWake.Add(5*time.Hour), 3600),
	})
	assert.NoError(t, err)
	for i := 1; i < len(result.Naps); i++ {
		prev, cur := result.Naps[i-1], result.Naps[i]
		assert.Less(t, prev.Index, cur.Index)
		prevEnd := prev.PlannedStartAt.Add(time.Duration(prev.PlannedDurationSec) * time.Second)
		assert.False(t, cur.PlannedStartAt.Before(prevEnd))
	}
}

func TestReplanChainsMissingStarts(t *testing.T) {
	e := editorEngine()
	day := testDay()
	naps := e.DefaultPlan(day.Date, testWake)
	naps[1].PlannedStartAt = nil
	naps[2].PlannedStartAt = nil

	e.Replan(day, naps)

	// Nap 2 chains from nap 1's planned end plus its wake window.
	n1End := naps[0].PlannedStartAt.Add(time.Duration(naps[0].PlannedDurationSec) * time.Second)
	want2 := n1End.Add(time.Duration(e.cfg.WakeWindowSec(2)) * time.Second)
	assert.Equal(t, want2, naps[1].PlannedStartAt.UTC())

	n2End := naps[1].PlannedStartAt.Add(time.Duration(naps[1].PlannedDurationSec) * time.Second)
	want3 := n2End.Add(time.Duration(e.cfg.WakeWindowSec(3)) * time.Second)
	assert.Equal(t, want3, naps[2].PlannedStartAt.UTC())
}
