// Package timeplan does all wall-clock reasoning for schedules: next-run
// computation across timezones and weekday-only cadences, countdown
// labels, and the treat-naive-as-UTC parsing shim for stored timestamps.
//
// Every function is pure in the supplied now; callers re-derive on each
// tick instead of caching.
package timeplan

import (
	"fmt"
	"strings"
	"time"

	"kolscheduler/internal/model"
)

// Countdown labels. The zh-TW strings match what the dashboard renders.
const (
	labelAboutToRun = "即將執行"
	labelExpired    = "已過期"
)

// NextRun computes the next execution time for a schedule.
//
// daily: next occurrence of at (HH:mm) in tz, today if still ahead of
// now, else tomorrow. weekday_daily: same, then advanced one day at a
// time past Saturday/Sunday. immediate and interval_batch have no
// calendar logic. The result is returned in UTC.
func NextRun(st model.ScheduleType, at string, tz string, interval time.Duration, now time.Time) (time.Time, error) {
	switch st {
	case model.ScheduleImmediate:
		return now.UTC(), nil
	case model.ScheduleIntervalBatch:
		if interval <= 0 {
			return time.Time{}, fmt.Errorf("interval must be positive, got %v", interval)
		}
		return now.Add(interval).UTC(), nil
	case model.ScheduleDaily, model.ScheduleWeekdayDaily:
		// calendar logic below
	default:
		return time.Time{}, fmt.Errorf("unknown schedule type %q", st)
	}

	hour, minute, err := model.ParseHHMM(at)
	if err != nil {
		return time.Time{}, err
	}
	loc, err := loadZone(tz)
	if err != nil {
		return time.Time{}, err
	}

	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	if st == model.ScheduleWeekdayDaily {
		for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
			next = next.AddDate(0, 0, 1)
		}
	}
	return next.UTC(), nil
}

// Countdown renders the human label for the time until nextRun.
//
// A recurring daily cadence never reports expired: a past nextRun is
// rolled forward one occurrence at a time until it lands ahead of now and
// that gap is labelled instead. Weekend skipping during the roll uses the
// schedule's zone: a stored UTC instant before 08:00 Taipei falls on the
// previous UTC day, so the UTC weekday is one behind the local one.
func Countdown(nextRun *time.Time, st model.ScheduleType, tz string, now time.Time) string {
	if nextRun == nil {
		return ""
	}
	target := *nextRun
	if !target.After(now) {
		if !st.RecurringDaily() {
			return labelExpired
		}
		loc, err := loadZone(tz)
		if err != nil {
			loc = time.UTC
		}
		local := target.In(loc)
		for !local.After(now) {
			local = local.AddDate(0, 0, 1)
			if st == model.ScheduleWeekdayDaily {
				for local.Weekday() == time.Saturday || local.Weekday() == time.Sunday {
					local = local.AddDate(0, 0, 1)
				}
			}
		}
		target = local
	}
	return gapLabel(target.Sub(now))
}

func gapLabel(d time.Duration) string {
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%d天後", int(d.Hours())/24)
	case d >= time.Hour:
		return fmt.Sprintf("%d小時後", int(d.Hours()))
	case d >= time.Minute:
		return fmt.Sprintf("%d分鐘後", int(d.Minutes()))
	default:
		return labelAboutToRun
	}
}

// ParseStored parses a timestamp from the upstream store. Strings that
// carry no zone suffix are UTC by contract with that store; the marker is
// appended before parsing so the assumption stays in one visible place.
// Getting this wrong shows every time as off by the display-zone offset.
func ParseStored(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	s = strings.Replace(s, " ", "T", 1)
	if !hasZoneSuffix(s) {
		s += "Z"
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored timestamp: %w", err)
	}
	return t.UTC(), nil
}

// hasZoneSuffix reports whether an ISO-8601 string already ends in a zone
// marker. The date part's dashes sit before index 10, so any sign after
// that belongs to an offset.
func hasZoneSuffix(s string) bool {
	if strings.HasSuffix(s, "Z") {
		return true
	}
	for i := 10; i < len(s); i++ {
		if s[i] == '+' || s[i] == '-' {
			return true
		}
	}
	return false
}

func loadZone(tz string) (*time.Location, error) {
	if strings.TrimSpace(tz) == "" {
		tz = model.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return loc, nil
}
