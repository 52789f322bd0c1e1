package backend

import (
	"fmt"
	"time"

	"kolscheduler/internal/model"
	"kolscheduler/internal/timeplan"
)

// TaskPayload is the job API's wire shape for a schedule task. Timestamps
// cross this boundary as ISO-8601 strings; the backend sometimes omits
// the zone suffix, so parsing goes through timeplan.ParseStored.
type TaskPayload struct {
	TaskID             string                  `json:"task_id"`
	Name               string                  `json:"name"`
	Status             string                  `json:"status"`
	ScheduleType       string                  `json:"schedule_type"`
	DailyExecutionTime string                  `json:"daily_execution_time,omitempty"`
	Timezone           string                  `json:"timezone,omitempty"`
	IntervalSeconds    int                     `json:"interval_seconds"`
	Trigger            model.TriggerConfig     `json:"trigger_config"`
	Criteria           model.SelectionCriteria `json:"selection_criteria"`
	KolAssignment      string                  `json:"kol_assignment"`
	SelectedKols       []string                `json:"selected_kols,omitempty"`
	AutoPosting        bool                    `json:"auto_posting"`
	LastRun            string                  `json:"last_run,omitempty"`
	NextRun            string                  `json:"next_run,omitempty"`
	RunCount           int                     `json:"run_count"`
	SuccessCount       int                     `json:"success_count"`
	FailureCount       int                     `json:"failure_count"`
}

// ToPayload serializes a task for the job API. Outbound timestamps are
// always zoned (UTC, RFC3339) even though inbound ones may not be.
func ToPayload(t *model.ScheduleTask) *TaskPayload {
	p := &TaskPayload{
		TaskID:             t.TaskID,
		Name:               t.Name,
		Status:             string(t.Status),
		ScheduleType:       string(t.Type),
		DailyExecutionTime: t.DailyExecutionTime,
		Timezone:           t.Timezone,
		IntervalSeconds:    t.IntervalSeconds,
		Trigger:            t.Trigger,
		Criteria:           t.Criteria,
		KolAssignment:      string(t.KolAssignment),
		SelectedKols:       t.SelectedKols,
		AutoPosting:        t.AutoPosting,
		RunCount:           t.RunCount,
		SuccessCount:       t.SuccessCount,
		FailureCount:       t.FailureCount,
	}
	if t.LastRun != nil {
		p.LastRun = t.LastRun.UTC().Format(time.RFC3339)
	}
	if t.NextRun != nil {
		p.NextRun = t.NextRun.UTC().Format(time.RFC3339)
	}
	return p
}

// FromPayload parses an echoed task back into the domain model.
func FromPayload(p *TaskPayload) (*model.ScheduleTask, error) {
	t := &model.ScheduleTask{
		TaskID:             p.TaskID,
		Name:               p.Name,
		Status:             model.TaskStatus(p.Status),
		Type:               model.ScheduleType(p.ScheduleType),
		DailyExecutionTime: p.DailyExecutionTime,
		Timezone:           p.Timezone,
		IntervalSeconds:    p.IntervalSeconds,
		Trigger:            p.Trigger,
		Criteria:           p.Criteria,
		KolAssignment:      model.KolAssignment(p.KolAssignment),
		SelectedKols:       p.SelectedKols,
		AutoPosting:        p.AutoPosting,
		RunCount:           p.RunCount,
		SuccessCount:       p.SuccessCount,
		FailureCount:       p.FailureCount,
	}
	if p.LastRun != "" {
		ts, err := timeplan.ParseStored(p.LastRun)
		if err != nil {
			return nil, fmt.Errorf("last_run: %w", err)
		}
		t.LastRun = &ts
	}
	if p.NextRun != "" {
		ts, err := timeplan.ParseStored(p.NextRun)
		if err != nil {
			return nil, fmt.Errorf("next_run: %w", err)
		}
		t.NextRun = &ts
	}
	return t, nil
}
