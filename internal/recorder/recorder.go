package recorder

import (
	"time"

	"kolscheduler/internal/model"
)

// Audit event types for schedule mutations and observations.
const (
	EventCreate      = "CREATE"
	EventEdit        = "EDIT"
	EventEnable      = "ENABLE"
	EventDisable     = "DISABLE"
	EventAutoPosting = "AUTO_POSTING"
	EventDelete      = "DELETE"
	EventDrift       = "DRIFT"
)

// ScheduleEvent is one audit entry for a schedule mutation.
type ScheduleEvent struct {
	TaskID    string
	EventType string
	Note      string
}

// DayStats aggregates local execution history for one calendar day (UTC).
type DayStats struct {
	Day       string
	Runs      int
	Succeeded int
	Failed    int
	Generated int
}

// Recorder persists execution history for analysis.
type Recorder interface {
	RecordExecution(taskID string, res *model.ExecutionResult, started time.Time, duration time.Duration) error
	RecordScheduleEvent(evt *ScheduleEvent) error
	DailyStats(day string) (*DayStats, error)
	Close() error
}
