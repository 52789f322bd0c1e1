package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultTimezone is the display zone used when a task carries none.
const DefaultTimezone = "Asia/Taipei"

// ScheduleType is the recurrence cadence of a task.
type ScheduleType string

const (
	ScheduleImmediate     ScheduleType = "immediate"
	ScheduleDaily         ScheduleType = "daily"
	ScheduleWeekdayDaily  ScheduleType = "weekday_daily"
	ScheduleIntervalBatch ScheduleType = "interval_batch"
)

// RecurringDaily reports whether the cadence repeats on a calendar day, in
// which case a past next-run time means "roll to the next occurrence",
// never "expired".
func (s ScheduleType) RecurringDaily() bool {
	return s == ScheduleDaily || s == ScheduleWeekdayDaily
}

// NeedsExecutionTime reports whether the cadence requires an HH:mm time.
func (s ScheduleType) NeedsExecutionTime() bool {
	return s == ScheduleDaily || s == ScheduleWeekdayDaily
}

// TaskStatus is the lifecycle state of a schedule task.
//
// active ⇄ paused via enable/disable; active → completed/failed only as a
// side effect of runs owned by the remote scheduler. completed and failed
// are terminal.
type TaskStatus string

const (
	StatusActive    TaskStatus = "active"
	StatusPaused    TaskStatus = "paused"
	StatusCompleted TaskStatus = "completed"
	StatusFailed    TaskStatus = "failed"
)

// Toggleable reports whether enable/disable may act on the task.
func (s TaskStatus) Toggleable() bool {
	return s == StatusActive || s == StatusPaused
}

// KolAssignment is the policy picking which persona publishes each item.
type KolAssignment string

const (
	KolFixed      KolAssignment = "fixed"
	KolRandom     KolAssignment = "random"
	KolPoolRandom KolAssignment = "pool_random"
)

// ScheduleTask is a recurring (or one-shot) publishing configuration.
// LastRun/NextRun are stored in UTC; nil means never ran / not scheduled.
type ScheduleTask struct {
	TaskID    string       `json:"task_id"`
	Name      string       `json:"name"`
	Status    TaskStatus   `json:"status"`
	Type      ScheduleType `json:"schedule_type"`
	// DailyExecutionTime is "HH:mm" wall time in Timezone; required for
	// daily and weekday_daily cadences.
	DailyExecutionTime string `json:"daily_execution_time,omitempty"`
	Timezone           string `json:"timezone,omitempty"`
	// IntervalSeconds spaces items within one run.
	IntervalSeconds int `json:"interval_seconds"`

	Trigger  TriggerConfig     `json:"trigger_config"`
	Criteria SelectionCriteria `json:"selection_criteria"`

	KolAssignment KolAssignment `json:"kol_assignment"`
	SelectedKols  []string      `json:"selected_kols,omitempty"`

	// AutoPosting publishes generated items without manual approval. It is
	// orthogonal to Status and may be toggled while the task is active.
	AutoPosting bool `json:"auto_posting"`

	LastRun *time.Time `json:"last_run,omitempty"`
	NextRun *time.Time `json:"next_run,omitempty"`

	RunCount     int `json:"run_count"`
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`
}

// SuccessRate is SuccessCount/RunCount, 0 when the task never ran.
func (t *ScheduleTask) SuccessRate() float64 {
	if t.RunCount == 0 {
		return 0
	}
	return float64(t.SuccessCount) / float64(t.RunCount)
}

// RecordRun bumps the counters for one finished run.
func (t *ScheduleTask) RecordRun(success bool, finished time.Time) {
	t.RunCount++
	if success {
		t.SuccessCount++
	} else {
		t.FailureCount++
	}
	ts := finished.UTC()
	t.LastRun = &ts
}

// Validate checks the task invariants that do not require the trigger
// registry (the resolver re-checks the trigger key against known keys).
func (t *ScheduleTask) Validate() error {
	switch t.Type {
	case ScheduleImmediate, ScheduleDaily, ScheduleWeekdayDaily, ScheduleIntervalBatch:
	default:
		return fmt.Errorf("unknown schedule type %q", t.Type)
	}
	if t.Type.NeedsExecutionTime() {
		if _, _, err := ParseHHMM(t.DailyExecutionTime); err != nil {
			return fmt.Errorf("daily_execution_time: %w", err)
		}
	}
	if t.Type == ScheduleIntervalBatch && t.IntervalSeconds <= 0 {
		return fmt.Errorf("interval_seconds must be positive for interval_batch")
	}
	if tz := t.Timezone; tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("timezone %q: %w", tz, err)
		}
	}
	switch t.KolAssignment {
	case KolFixed:
		if len(t.SelectedKols) != 1 {
			return fmt.Errorf("fixed kol assignment requires exactly one kol, got %d", len(t.SelectedKols))
		}
	case KolPoolRandom:
		if len(t.SelectedKols) == 0 {
			return fmt.Errorf("pool_random kol assignment requires at least one kol")
		}
	case KolRandom:
		// kol list is ignored
	default:
		return fmt.Errorf("unknown kol assignment %q", t.KolAssignment)
	}
	return nil
}

// ParseHHMM parses a "HH:mm" wall time.
func ParseHHMM(s string) (hour int, minute int, err error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:mm", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}
