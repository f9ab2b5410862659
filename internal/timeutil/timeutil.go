// Package timeutil normalizes client timestamps to UTC. All internal
// comparisons and storage use UTC instants.
package timeutil

import "time"

const DateFormat = "2006-01-02"

// iso8601 layouts accepted by ParseInstant, tried in order. RFC3339 covers
// the trailing-Z and explicit-offset forms; the bare forms are treated as UTC.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateFormat,
}

// ParseInstant parses an ISO-8601 timestamp. A trailing "Z" means UTC;
// timestamps without zone information are assumed UTC. Returns nil on
// malformed input rather than an error, so callers must reject nil
// explicitly.
func ParseInstant(text string) *time.Time {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			u := ToUTC(t)
			return &u
		}
	}
	return nil
}

// ToUTC converts an instant to UTC.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// DateKey returns the calendar date (YYYY-MM-DD) an event should be bucketed
// under, taken from the client-supplied instant, not the server clock.
// A wake event logged just after local midnight in a zone behind UTC can key
// to the prior day when the client sends UTC-normalized timestamps; that
// boundary behavior is intentional and pending product clarification.
func DateKey(t time.Time) string {
	return ToUTC(t).Format(DateFormat)
}

// DurationSec returns end minus start in whole seconds.
func DurationSec(start, end time.Time) int64 {
	return int64(end.Sub(start) / time.Second)
}
