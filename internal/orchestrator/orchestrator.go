// Package orchestrator drives on-demand schedule runs and owns the single
// live execution result per task, including the post-hoc review actions
// on each generated item.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"kolscheduler/internal/model"
)

var (
	// ErrAlreadyRunning rejects a second execute-now while one is still
	// in flight for the same task. The run is rejected, never queued.
	ErrAlreadyRunning = errors.New("execution already running")

	// ErrRemoteRejected wraps an upstream refusal of a post action; the
	// upstream message is carried verbatim.
	ErrRemoteRejected = errors.New("remote rejected")

	// ErrUnknownPost means the post id is not part of the live result.
	ErrUnknownPost = errors.New("unknown post id")

	// ErrNoResult means no execution result is live for the task.
	ErrNoResult = errors.New("no live execution result")
)

// RunState is the per-task execution state. Running exists at most once
// per task; Succeeded/Failed hold until the result is acknowledged.
type RunState int

const (
	Idle RunState = iota
	Running
	Succeeded
	Failed
)

func (s RunState) String() string {
	switch s {
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// JobBackend starts a run and returns its artifacts.
type JobBackend interface {
	ExecuteNow(ctx context.Context, taskID, idempotencyKey string) (*model.ExecutionResult, error)
}

// PostBackend applies review actions to individual generated posts.
type PostBackend interface {
	Approve(ctx context.Context, postID string) error
	Reject(ctx context.Context, postID string) error
	Publish(ctx context.Context, postID string) error
	UpdateContent(ctx context.Context, postID, title, content string) error
	ListVersions(ctx context.Context, postID string) ([]model.PostVersion, error)
	SelectVersion(ctx context.Context, postID, versionID string) error
}

// ExecutionSink receives finished runs for history recording. Recording
// failures are logged, never propagated.
type ExecutionSink interface {
	RecordExecution(taskID string, res *model.ExecutionResult, started time.Time, duration time.Duration) error
}

type Orchestrator struct {
	jobs  JobBackend
	posts PostBackend
	sink  ExecutionSink
	log   zerolog.Logger
	now   func() time.Time

	mu      sync.Mutex
	running map[string]bool
	results map[string]*model.ExecutionResult
}

func New(jobs JobBackend, posts PostBackend, sink ExecutionSink, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:    jobs,
		posts:   posts,
		sink:    sink,
		log:     log,
		now:     time.Now,
		running: map[string]bool{},
		results: map[string]*model.ExecutionResult{},
	}
}

// SetClock overrides the wall clock, for tests.
func (o *Orchestrator) SetClock(now func() time.Time) { o.now = now }

// ExecuteNow runs the schedule immediately. At most one run per task may
// be in flight; a second call gets ErrAlreadyRunning while the first is
// unresolved. Transport failures do not surface as errors: they come back
// as a Success=false result so callers treat them exactly like business
// failures.
func (o *Orchestrator) ExecuteNow(ctx context.Context, taskID string) (*model.ExecutionResult, error) {
	o.mu.Lock()
	if o.running[taskID] {
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: task %s", ErrAlreadyRunning, taskID)
	}
	o.running[taskID] = true
	o.mu.Unlock()

	started := o.now()
	key := fmt.Sprintf("%s-%d-%s", taskID, started.UTC().Unix(), uuid.NewString())
	o.log.Info().Str("task", taskID).Str("idempotency_key", key).Msg("execute-now submitted")

	res, err := o.jobs.ExecuteNow(ctx, taskID, key)
	if err != nil {
		res = &model.ExecutionResult{Success: false, Message: err.Error()}
	}
	duration := o.now().Sub(started)

	o.mu.Lock()
	o.running[taskID] = false
	o.results[taskID] = res
	o.mu.Unlock()

	if res.Success {
		o.log.Info().Str("task", taskID).Str("session", res.SessionID).
			Int("generated", res.GeneratedCount).Int("failed", res.FailedCount).
			Dur("took", duration).Msg("execute-now finished")
	} else {
		o.log.Warn().Str("task", taskID).Str("message", res.Message).
			Dur("took", duration).Msg("execute-now failed")
	}
	if o.sink != nil {
		if err := o.sink.RecordExecution(taskID, res, started, duration); err != nil {
			o.log.Warn().Err(err).Str("task", taskID).Msg("record execution")
		}
	}
	return res, nil
}

// State reports the run state for a task.
func (o *Orchestrator) State(taskID string) RunState {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.running[taskID] {
		return Running
	}
	res, ok := o.results[taskID]
	switch {
	case !ok:
		return Idle
	case res.Success:
		return Succeeded
	default:
		return Failed
	}
}

// Result returns the live execution result, nil when none is held.
func (o *Orchestrator) Result(taskID string) *model.ExecutionResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.results[taskID]
}

// Acknowledge closes the result view, returning the task to Idle.
func (o *Orchestrator) Acknowledge(taskID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.results, taskID)
}
