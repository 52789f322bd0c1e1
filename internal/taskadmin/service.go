// Package taskadmin drives schedule lifecycle mutations against the job
// API: create, edit, delete, enable/disable, auto-posting. Every mutation
// that the remote accepts is mirrored into the local schedule_events
// audit so operators can reconstruct who changed what without the remote
// API's cooperation.
package taskadmin

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"kolscheduler/internal/model"
	"kolscheduler/internal/recorder"
)

// JobBackend is the slice of the job API this service mutates through.
type JobBackend interface {
	CreateTask(ctx context.Context, task *model.ScheduleTask) (*model.ScheduleTask, error)
	UpdateTask(ctx context.Context, task *model.ScheduleTask) (*model.ScheduleTask, error)
	DeleteTask(ctx context.Context, taskID string) error
	SetAutoPosting(ctx context.Context, taskID string, enabled bool) error
	Start(ctx context.Context, taskID string) error
	Cancel(ctx context.Context, taskID string) error
}

type Service struct {
	jobs JobBackend
	rec  recorder.Recorder
	log  zerolog.Logger
}

func New(jobs JobBackend, rec recorder.Recorder, log zerolog.Logger) *Service {
	return &Service{jobs: jobs, rec: rec, log: log}
}

// Create validates and submits a new schedule, returning the remote echo.
func (s *Service) Create(ctx context.Context, task *model.ScheduleTask) (*model.ScheduleTask, error) {
	task.Criteria.Normalize()
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("validate task: %w", err)
	}
	echoed, err := s.jobs.CreateTask(ctx, task)
	if err != nil {
		return nil, err
	}
	s.audit(echoed.TaskID, recorder.EventCreate, "trigger="+echoed.Trigger.Key)
	return echoed, nil
}

// Update replaces an existing schedule's configuration.
func (s *Service) Update(ctx context.Context, task *model.ScheduleTask) (*model.ScheduleTask, error) {
	task.Criteria.Normalize()
	if err := task.Validate(); err != nil {
		return nil, fmt.Errorf("validate task: %w", err)
	}
	echoed, err := s.jobs.UpdateTask(ctx, task)
	if err != nil {
		return nil, err
	}
	s.audit(echoed.TaskID, recorder.EventEdit, "trigger="+echoed.Trigger.Key)
	return echoed, nil
}

// Delete removes a schedule permanently.
func (s *Service) Delete(ctx context.Context, taskID string) error {
	if err := s.jobs.DeleteTask(ctx, taskID); err != nil {
		return err
	}
	s.audit(taskID, recorder.EventDelete, "")
	return nil
}

// SetEnabled flips a task between active and paused. Completed and failed
// tasks are terminal; the only way forward for those is recreation.
func (s *Service) SetEnabled(ctx context.Context, task *model.ScheduleTask, enabled bool) error {
	if !task.Status.Toggleable() {
		return fmt.Errorf("task %s is %s, cannot toggle", task.TaskID, task.Status)
	}
	var err error
	event := recorder.EventDisable
	status := model.StatusPaused
	if enabled {
		err = s.jobs.Start(ctx, task.TaskID)
		event = recorder.EventEnable
		status = model.StatusActive
	} else {
		err = s.jobs.Cancel(ctx, task.TaskID)
	}
	if err != nil {
		return err
	}
	task.Status = status
	s.audit(task.TaskID, event, "")
	return nil
}

// SetAutoPosting toggles unattended publishing for a task.
func (s *Service) SetAutoPosting(ctx context.Context, taskID string, enabled bool) error {
	if err := s.jobs.SetAutoPosting(ctx, taskID, enabled); err != nil {
		return err
	}
	note := "off"
	if enabled {
		note = "on"
	}
	s.audit(taskID, recorder.EventAutoPosting, note)
	return nil
}

// audit is best effort: a full audit database must not block mutations
// that the remote already accepted.
func (s *Service) audit(taskID, event, note string) {
	err := s.rec.RecordScheduleEvent(&recorder.ScheduleEvent{
		TaskID:    taskID,
		EventType: event,
		Note:      note,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("task", taskID).Str("event", event).Msg("record schedule event")
	}
}
