package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"kolscheduler/internal/backend"
	"kolscheduler/internal/config"
	"kolscheduler/internal/orchestrator"
	"kolscheduler/internal/poller"
	"kolscheduler/internal/recorder"
	"kolscheduler/internal/resolver"
	"kolscheduler/internal/taskadmin"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	log.Info().Msg("kolscheduler starting")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	applyLogLevel(log, cfg.Log.Level)

	// Backend clients
	jobs := backend.NewJobClient(cfg.JobAPI.BaseURL, cfg.JobAPI.APIKey, cfg.Proxy, cfg.HTTPTimeout())
	posts := backend.NewPostClient(cfg.PostAPI.BaseURL, cfg.PostAPI.APIKey, cfg.Proxy, cfg.HTTPTimeout())

	// Execution history recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch := orchestrator.New(jobs, posts, rec, log)
	admin := taskadmin.New(jobs, rec, log)

	// Schedule poller
	p := poller.New(jobs, rec, log)
	if err := p.Start(ctx, cfg.Schedule.PollIntervalSeconds); err != nil {
		log.Fatal().Err(err).Msg("start poller")
	}
	defer p.Stop()
	p.Refresh(ctx)

	if stats, err := jobs.FetchDailyStats(ctx); err != nil {
		log.Warn().Err(err).Msg("fetch daily stats")
	} else {
		log.Info().Str("date", stats.Date).Int("runs", stats.Runs).
			Int("succeeded", stats.Succeeded).Int("failed", stats.Failed).
			Msg("daily stats")
	}

	// Live reload for log level; interval changes need a restart.
	if err := config.Watch(ctx, cfgPath, log, func(next *config.Config) {
		applyLogLevel(log, next.Log.Level)
	}); err != nil {
		log.Warn().Err(err).Msg("config watch unavailable")
	}

	// Optional: dry-run a schedule's stock selection on start
	if taskID := os.Getenv("PREVIEW_TASK"); taskID != "" {
		query := backend.NewQueryClient(cfg.QueryAPI.BaseURL, cfg.QueryAPI.APIKey, cfg.Proxy,
			cfg.HTTPTimeout(), cfg.QueryAPI.RequestsPerSec)
		res := resolver.New(query, log)
		go previewSelection(ctx, res, jobs, taskID, log)
	}

	// Optional: pause or resume one schedule on start
	if taskID := os.Getenv("DISABLE_TASK"); taskID != "" {
		go setTaskEnabled(ctx, admin, jobs, taskID, false, log)
	}
	if taskID := os.Getenv("ENABLE_TASK"); taskID != "" {
		go setTaskEnabled(ctx, admin, jobs, taskID, true, log)
	}

	// Optional: trigger one schedule immediately on start
	if taskID := os.Getenv("EXECUTE_ON_START"); taskID != "" {
		log.Info().Str("task", taskID).Msg("EXECUTE_ON_START set, executing now")
		go func() {
			if _, err := orch.ExecuteNow(ctx, taskID); err != nil {
				log.Error().Err(err).Str("task", taskID).Msg("execute on start")
			}
		}()
	}

	// SIGUSR1 toggles polling, mirroring the hidden-surface pause.
	go watchPauseSignal(ctx, p, log)

	log.Info().Msg("kolscheduler is running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	log.Info().Msg("kolscheduler stopped")
}

func applyLogLevel(log zerolog.Logger, level string) {
	lv, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level, keeping current")
		return
	}
	zerolog.SetGlobalLevel(lv)
}

// previewSelection resolves a task's configured trigger without starting
// a run, so an operator can check what a schedule would pick.
func previewSelection(ctx context.Context, res *resolver.Resolver, jobs *backend.JobClient, taskID string, log zerolog.Logger) {
	tasks, err := jobs.ListTasks(ctx)
	if err != nil {
		log.Error().Err(err).Msg("preview: list tasks")
		return
	}
	for _, t := range tasks {
		if t.TaskID != taskID {
			continue
		}
		sel, err := res.ApplyFilters(ctx, t.Trigger, t.Criteria)
		if err != nil {
			log.Error().Err(err).Str("task", taskID).Msg("preview selection")
			return
		}
		log.Info().Str("task", taskID).Str("trigger", t.Trigger.Key).
			Strs("codes", sel.StockCodes).Msg("preview selection")
		return
	}
	log.Warn().Str("task", taskID).Msg("preview: task not found")
}

// setTaskEnabled looks a schedule up by id and flips it between active
// and paused through the lifecycle service.
func setTaskEnabled(ctx context.Context, admin *taskadmin.Service, jobs *backend.JobClient, taskID string, enabled bool, log zerolog.Logger) {
	tasks, err := jobs.ListTasks(ctx)
	if err != nil {
		log.Error().Err(err).Msg("toggle: list tasks")
		return
	}
	for i := range tasks {
		if tasks[i].TaskID != taskID {
			continue
		}
		if err := admin.SetEnabled(ctx, &tasks[i], enabled); err != nil {
			log.Error().Err(err).Str("task", taskID).Msg("toggle schedule")
			return
		}
		log.Info().Str("task", taskID).Bool("enabled", enabled).Msg("schedule toggled")
		return
	}
	log.Warn().Str("task", taskID).Msg("toggle: task not found")
}

func watchPauseSignal(ctx context.Context, p *poller.Poller, log zerolog.Logger) {
	usrCh := make(chan os.Signal, 1)
	signal.Notify(usrCh, syscall.SIGUSR1)
	paused := false
	for {
		select {
		case <-ctx.Done():
			return
		case <-usrCh:
			if paused {
				p.Resume(ctx)
			} else {
				p.Pause()
			}
			paused = !paused
			log.Info().Bool("paused", paused).Msg("polling toggled")
		}
	}
}
