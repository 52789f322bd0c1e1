package backend

import (
	"context"
	"fmt"
	"time"

	"kolscheduler/internal/model"
)

// JobClient talks to the schedule job API: execute-now, task CRUD,
// enable/disable, auto-posting, daily stats.
type JobClient struct {
	client
}

func NewJobClient(baseURL, apiKey, proxyURL string, timeout time.Duration) *JobClient {
	return &JobClient{client: newClient(baseURL, apiKey, proxyURL, timeout)}
}

// ExecuteNow runs the schedule out of band. The idempotency key guards
// against duplicate submissions from network retries or a second tab.
func (c *JobClient) ExecuteNow(ctx context.Context, taskID, idempotencyKey string) (*model.ExecutionResult, error) {
	var result model.ExecutionResult
	headers := map[string]string{"X-Idempotency-Key": idempotencyKey}
	path := fmt.Sprintf("/schedule/execute/%s", taskID)
	if err := c.doJSON(ctx, "POST", path, nil, &result, headers); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateTask submits a new schedule and returns the echoed task.
func (c *JobClient) CreateTask(ctx context.Context, task *model.ScheduleTask) (*model.ScheduleTask, error) {
	var echoed TaskPayload
	if err := c.doJSON(ctx, "POST", "/schedule/tasks", ToPayload(task), &echoed, nil); err != nil {
		return nil, err
	}
	return FromPayload(&echoed)
}

// UpdateTask replaces an existing schedule's configuration.
func (c *JobClient) UpdateTask(ctx context.Context, task *model.ScheduleTask) (*model.ScheduleTask, error) {
	var echoed TaskPayload
	path := fmt.Sprintf("/schedule/tasks/%s", task.TaskID)
	if err := c.doJSON(ctx, "PUT", path, ToPayload(task), &echoed, nil); err != nil {
		return nil, err
	}
	return FromPayload(&echoed)
}

// DeleteTask removes a schedule permanently. There is no soft delete.
func (c *JobClient) DeleteTask(ctx context.Context, taskID string) error {
	return c.doJSON(ctx, "DELETE", fmt.Sprintf("/schedule/tasks/%s", taskID), nil, nil, nil)
}

// ListTasks fetches every schedule visible to this operator.
func (c *JobClient) ListTasks(ctx context.Context) ([]model.ScheduleTask, error) {
	var reply struct {
		Tasks []TaskPayload `json:"tasks"`
	}
	if err := c.doJSON(ctx, "GET", "/schedule/tasks", nil, &reply, nil); err != nil {
		return nil, err
	}
	tasks := make([]model.ScheduleTask, 0, len(reply.Tasks))
	for i := range reply.Tasks {
		t, err := FromPayload(&reply.Tasks[i])
		if err != nil {
			return nil, fmt.Errorf("task %s: %w", reply.Tasks[i].TaskID, err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, nil
}

// SetAutoPosting toggles unattended publishing for a task.
func (c *JobClient) SetAutoPosting(ctx context.Context, taskID string, enabled bool) error {
	body := map[string]bool{"enabled": enabled}
	return c.doJSON(ctx, "POST", fmt.Sprintf("/schedule/%s/auto-posting", taskID), body, nil, nil)
}

// Start enables a paused schedule.
func (c *JobClient) Start(ctx context.Context, taskID string) error {
	return c.doJSON(ctx, "POST", fmt.Sprintf("/schedule/start/%s", taskID), nil, nil, nil)
}

// Cancel pauses an active schedule.
func (c *JobClient) Cancel(ctx context.Context, taskID string) error {
	return c.doJSON(ctx, "POST", fmt.Sprintf("/schedule/cancel/%s", taskID), nil, nil, nil)
}

// DailyStats is the remote aggregate for one calendar day.
type DailyStats struct {
	Date           string `json:"date"`
	Runs           int    `json:"runs"`
	Succeeded      int    `json:"succeeded"`
	Failed         int    `json:"failed"`
	GeneratedPosts int    `json:"generated_posts"`
}

func (c *JobClient) FetchDailyStats(ctx context.Context) (*DailyStats, error) {
	var stats DailyStats
	if err := c.doJSON(ctx, "GET", "/schedule/daily-stats", nil, &stats, nil); err != nil {
		return nil, err
	}
	return &stats, nil
}
