// Package poller periodically refreshes the schedule list from the job
// API and recomputes next-run and countdown views. Consumers that are not
// visible pause it to avoid pointless load.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"kolscheduler/internal/model"
	"kolscheduler/internal/recorder"
	"kolscheduler/internal/timeplan"
)

// Poll interval bounds per view, seconds.
const (
	MinIntervalSeconds = 5
	MaxIntervalSeconds = 60
)

// TaskSource lists the schedules to watch.
type TaskSource interface {
	ListTasks(ctx context.Context) ([]model.ScheduleTask, error)
}

// TaskView is one schedule plus its derived timing fields, recomputed on
// every refresh because now moves.
type TaskView struct {
	Task      model.ScheduleTask
	NextRun   *time.Time
	Countdown string
}

type Poller struct {
	source TaskSource
	rec    recorder.Recorder
	log    zerolog.Logger
	now    func() time.Time

	cron    *cron.Cron
	entryID cron.EntryID

	mu       sync.Mutex
	paused   bool
	snapshot []TaskView
	drifted  map[string]bool
}

func New(source TaskSource, rec recorder.Recorder, log zerolog.Logger) *Poller {
	return &Poller{
		source:  source,
		rec:     rec,
		log:     log,
		now:     time.Now,
		cron:    cron.New(),
		drifted: make(map[string]bool),
	}
}

// SetClock overrides the wall clock, for tests.
func (p *Poller) SetClock(now func() time.Time) { p.now = now }

// Start begins refreshing every intervalSeconds (clamped to 5–60s).
func (p *Poller) Start(ctx context.Context, intervalSeconds int) error {
	if intervalSeconds < MinIntervalSeconds {
		intervalSeconds = MinIntervalSeconds
	}
	if intervalSeconds > MaxIntervalSeconds {
		intervalSeconds = MaxIntervalSeconds
	}
	spec := fmt.Sprintf("@every %ds", intervalSeconds)
	id, err := p.cron.AddFunc(spec, func() { p.Refresh(ctx) })
	if err != nil {
		return fmt.Errorf("register poll entry: %w", err)
	}
	p.entryID = id
	p.cron.Start()
	p.log.Info().Int("interval_s", intervalSeconds).Msg("poller started")
	return nil
}

// Stop halts the refresh loop.
func (p *Poller) Stop() {
	p.cron.Stop()
	p.log.Info().Msg("poller stopped")
}

// Pause suspends refreshing while the consuming surface is hidden. The
// loop keeps ticking but ticks become no-ops.
func (p *Poller) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
	p.log.Debug().Msg("poller paused")
}

// Resume re-enables refreshing and refreshes once immediately so the
// surface does not show stale countdowns until the next tick.
func (p *Poller) Resume(ctx context.Context) {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
	p.log.Debug().Msg("poller resumed")
	p.Refresh(ctx)
}

// Refresh fetches the task list and rebuilds the derived views.
func (p *Poller) Refresh(ctx context.Context) {
	p.mu.Lock()
	if p.paused {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	tasks, err := p.source.ListTasks(ctx)
	if err != nil {
		p.log.Warn().Err(err).Msg("refresh schedule list")
		return
	}
	now := p.now()

	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		view := TaskView{Task: t, NextRun: t.NextRun}
		if t.NextRun == nil && t.Status == model.StatusActive {
			next, err := timeplan.NextRun(t.Type, t.DailyExecutionTime, t.Timezone,
				time.Duration(t.IntervalSeconds)*time.Second, now)
			if err != nil {
				p.log.Warn().Err(err).Str("task", t.TaskID).Msg("compute next run")
			} else {
				view.NextRun = &next
			}
		}
		view.Countdown = timeplan.Countdown(view.NextRun, t.Type, t.Timezone, now)
		views = append(views, view)
		p.noteDrift(&t, view.NextRun, now)
	}

	p.mu.Lock()
	p.snapshot = views
	p.mu.Unlock()
	p.log.Debug().Int("tasks", len(views)).Msg("schedule list refreshed")
}

// noteDrift audits active tasks whose stored next run is already behind
// now: the external scheduler should have advanced it after the run. One
// event per drift episode; the flag clears once the task catches up.
func (p *Poller) noteDrift(t *model.ScheduleTask, next *time.Time, now time.Time) {
	stale := t.Status == model.StatusActive && next != nil && !next.After(now)
	p.mu.Lock()
	seen := p.drifted[t.TaskID]
	if stale {
		p.drifted[t.TaskID] = true
	} else {
		delete(p.drifted, t.TaskID)
	}
	p.mu.Unlock()
	if !stale || seen {
		return
	}

	p.log.Warn().Str("task", t.TaskID).Time("next_run", *next).
		Msg("schedule behind its next run")
	evt := &recorder.ScheduleEvent{
		TaskID:    t.TaskID,
		EventType: recorder.EventDrift,
		Note:      "next_run " + next.UTC().Format(time.RFC3339),
	}
	if err := p.rec.RecordScheduleEvent(evt); err != nil {
		p.log.Warn().Err(err).Str("task", t.TaskID).Msg("record drift event")
	}
}

// Snapshot returns the latest derived views.
func (p *Poller) Snapshot() []TaskView {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]TaskView, len(p.snapshot))
	copy(out, p.snapshot)
	return out
}
