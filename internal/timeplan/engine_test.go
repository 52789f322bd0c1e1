package timeplan

import (
	"testing"
	"time"

	"kolscheduler/internal/model"
)

// All fixture times are UTC with explicit zone to avoid ambiguity.
// Asia/Taipei is UTC+8 with no DST.

func mustUTC(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse fixture %q: %v", s, err)
	}
	return ts.UTC()
}

func TestNextRunDaily(t *testing.T) {
	tests := []struct {
		name string
		at   string
		now  string
		want string
	}{
		{
			name: "later today",
			at:   "09:00",
			// 06:00 Taipei
			now:  "2024-03-11T22:00:00Z",
			want: "2024-03-12T01:00:00Z", // 09:00 Taipei same day
		},
		{
			name: "already passed, tomorrow",
			at:   "09:00",
			// Monday 10:00 Taipei
			now:  "2024-03-11T02:00:00Z",
			want: "2024-03-12T01:00:00Z",
		},
		{
			name: "exactly at execution time rolls to next day",
			at:   "09:00",
			now:  "2024-03-11T01:00:00Z",
			want: "2024-03-12T01:00:00Z",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextRun(model.ScheduleDaily, tt.at, "Asia/Taipei", 0, mustUTC(t, tt.now))
			if err != nil {
				t.Fatalf("NextRun error: %v", err)
			}
			if !got.Equal(mustUTC(t, tt.want)) {
				t.Fatalf("NextRun = %s, want %s", got.Format(time.RFC3339), tt.want)
			}
		})
	}
}

func TestNextRunWeekdayDailySkipsWeekend(t *testing.T) {
	// Saturday 10:00 Taipei = Saturday 02:00 UTC
	now := mustUTC(t, "2024-03-16T02:00:00Z")
	got, err := NextRun(model.ScheduleWeekdayDaily, "09:00", "Asia/Taipei", 0, now)
	if err != nil {
		t.Fatalf("NextRun error: %v", err)
	}
	// Next Monday 09:00 Taipei = Monday 01:00 UTC
	want := mustUTC(t, "2024-03-18T01:00:00Z")
	if !got.Equal(want) {
		t.Fatalf("NextRun = %s, want %s", got.Format(time.RFC3339), want.Format(time.RFC3339))
	}
}

func TestNextRunWeekdayDailyFridayEvening(t *testing.T) {
	// Friday 23:30 Taipei, execution 09:00 → Monday
	now := mustUTC(t, "2024-03-15T15:30:00Z")
	got, err := NextRun(model.ScheduleWeekdayDaily, "09:00", "Asia/Taipei", 0, now)
	if err != nil {
		t.Fatalf("NextRun error: %v", err)
	}
	want := mustUTC(t, "2024-03-18T01:00:00Z")
	if !got.Equal(want) {
		t.Fatalf("NextRun = %s, want %s", got.Format(time.RFC3339), want.Format(time.RFC3339))
	}
}

func TestNextRunAlwaysFutureAndWeekday(t *testing.T) {
	// Sweep a week of hourly nows; the invariants must hold at each.
	start := mustUTC(t, "2024-03-11T00:00:00Z")
	loc, err := time.LoadLocation("Asia/Taipei")
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	for i := 0; i < 7*24; i++ {
		now := start.Add(time.Duration(i) * time.Hour)
		for _, st := range []model.ScheduleType{model.ScheduleDaily, model.ScheduleWeekdayDaily} {
			got, err := NextRun(st, "13:45", "Asia/Taipei", 0, now)
			if err != nil {
				t.Fatalf("NextRun(%s) at %s: %v", st, now, err)
			}
			if !got.After(now) {
				t.Fatalf("NextRun(%s) at %s = %s, not in the future", st, now, got)
			}
			if st == model.ScheduleWeekdayDaily {
				wd := got.In(loc).Weekday()
				if wd == time.Saturday || wd == time.Sunday {
					t.Fatalf("weekday_daily landed on %s (%s)", wd, got)
				}
			}
		}
	}
}

func TestNextRunImmediateAndInterval(t *testing.T) {
	now := mustUTC(t, "2024-03-11T02:00:00Z")

	got, err := NextRun(model.ScheduleImmediate, "", "", 0, now)
	if err != nil {
		t.Fatalf("immediate: %v", err)
	}
	if !got.Equal(now) {
		t.Fatalf("immediate NextRun = %s, want now", got)
	}

	got, err = NextRun(model.ScheduleIntervalBatch, "", "", 90*time.Second, now)
	if err != nil {
		t.Fatalf("interval: %v", err)
	}
	if !got.Equal(now.Add(90 * time.Second)) {
		t.Fatalf("interval NextRun = %s, want now+90s", got)
	}

	if _, err := NextRun(model.ScheduleIntervalBatch, "", "", 0, now); err == nil {
		t.Fatal("expected error for non-positive interval")
	}
}

func TestCountdownLabels(t *testing.T) {
	now := mustUTC(t, "2024-03-11T02:00:00Z")
	at := func(s string) *time.Time {
		ts := mustUTC(t, s)
		return &ts
	}

	tests := []struct {
		name string
		next *time.Time
		st   model.ScheduleType
		want string
	}{
		{name: "nil next run", next: nil, st: model.ScheduleDaily, want: ""},
		{name: "days", next: at("2024-03-14T02:00:00Z"), st: model.ScheduleDaily, want: "3天後"},
		{name: "hours", next: at("2024-03-11T07:30:00Z"), st: model.ScheduleDaily, want: "5小時後"},
		{name: "minutes", next: at("2024-03-11T02:42:00Z"), st: model.ScheduleDaily, want: "42分鐘後"},
		{name: "about to run", next: at("2024-03-11T02:00:30Z"), st: model.ScheduleDaily, want: "即將執行"},
		{name: "expired one-shot", next: at("2024-03-11T01:00:00Z"), st: model.ScheduleImmediate, want: "已過期"},
		{name: "expired interval batch", next: at("2024-03-11T01:00:00Z"), st: model.ScheduleIntervalBatch, want: "已過期"},
		// Recurring cadences roll to the next occurrence instead of
		// reporting expired: 01:00 yesterday-relative → 23h later.
		{name: "recurring past rolls forward", next: at("2024-03-11T01:00:00Z"), st: model.ScheduleDaily, want: "23小時後"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Countdown(tt.next, tt.st, "Asia/Taipei", now)
			if got != tt.want {
				t.Fatalf("Countdown = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCountdownWeekendSkipUsesScheduleZone(t *testing.T) {
	// A 07:00 Taipei slot is stored as 23:00 UTC the previous day, so the
	// UTC weekday trails the Taipei one. Rolling a stale Friday slot
	// forward must skip the Taipei Saturday even though that instant is
	// still a UTC Friday.
	next := mustUTC(t, "2024-03-14T23:00:00Z") // Friday 07:00 Taipei
	now := mustUTC(t, "2024-03-15T00:00:00Z")  // Friday 08:00 Taipei

	got := Countdown(&next, model.ScheduleWeekdayDaily, "Asia/Taipei", now)
	// Next weekday occurrence is Monday 07:00 Taipei, 2d23h out.
	if got != "2天後" {
		t.Fatalf("Countdown = %q, want %q", got, "2天後")
	}

	// The same stale slot on a plain daily cadence rolls just one day.
	got = Countdown(&next, model.ScheduleDaily, "Asia/Taipei", now)
	if got != "23小時後" {
		t.Fatalf("Countdown = %q, want %q", got, "23小時後")
	}
}

func TestCountdownRecurringNeverExpired(t *testing.T) {
	// Sweep a recurring schedule whose stored next run is far in the
	// past; no now may ever produce the expired label.
	next := mustUTC(t, "2024-01-01T01:00:00Z")
	for i := 0; i < 100; i++ {
		now := next.Add(time.Duration(i) * 7 * time.Hour)
		for _, st := range []model.ScheduleType{model.ScheduleDaily, model.ScheduleWeekdayDaily} {
			got := Countdown(&next, st, "Asia/Taipei", now)
			if got == labelExpired {
				t.Fatalf("recurring %s showed expired at now=%s", st, now)
			}
			if got == "" {
				t.Fatalf("recurring %s showed empty label at now=%s", st, now)
			}
		}
	}
}

func TestParseStored(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "naive treated as UTC", in: "2024-03-11T09:00:00", want: "2024-03-11T09:00:00Z"},
		{name: "space separator", in: "2024-03-11 09:00:00", want: "2024-03-11T09:00:00Z"},
		{name: "explicit zulu", in: "2024-03-11T09:00:00Z", want: "2024-03-11T09:00:00Z"},
		{name: "explicit offset normalized", in: "2024-03-11T17:00:00+08:00", want: "2024-03-11T09:00:00Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStored(tt.in)
			if err != nil {
				t.Fatalf("ParseStored(%q): %v", tt.in, err)
			}
			if !got.Equal(mustUTC(t, tt.want)) {
				t.Fatalf("ParseStored(%q) = %s, want %s", tt.in, got.Format(time.RFC3339), tt.want)
			}
		})
	}

	if _, err := ParseStored(""); err == nil {
		t.Fatal("expected error for empty timestamp")
	}
	if _, err := ParseStored("not-a-time"); err == nil {
		t.Fatal("expected error for garbage timestamp")
	}
}
