package recorder

import (
	"time"

	"kolscheduler/internal/model"
)

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordExecution(string, *model.ExecutionResult, time.Time, time.Duration) error {
	return nil
}
func (n *NoopRecorder) RecordScheduleEvent(_ *ScheduleEvent) error { return nil }
func (n *NoopRecorder) DailyStats(day string) (*DayStats, error)   { return &DayStats{Day: day}, nil }
func (n *NoopRecorder) Close() error                               { return nil }
