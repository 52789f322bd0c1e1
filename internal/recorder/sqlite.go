package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"kolscheduler/internal/model"
)

// SQLiteRecorder persists execution history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	log zerolog.Logger
	mu  sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so reporting reads don't block recording writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS executions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			task_id     TEXT NOT NULL,
			session_id  TEXT,
			success     INTEGER NOT NULL,
			generated   INTEGER,
			failed      INTEGER,
			message     TEXT,
			duration_ms INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_exec_ts ON executions(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_exec_task ON executions(task_id)`,

		`CREATE TABLE IF NOT EXISTS schedule_events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			task_id    TEXT NOT NULL,
			event_type TEXT,
			note       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_event_ts ON schedule_events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordExecution(taskID string, res *model.ExecutionResult, started time.Time, duration time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	success := 0
	if res.Success {
		success = 1
	}
	_, err := r.db.Exec(`INSERT INTO executions
		(timestamp, task_id, session_id, success, generated, failed, message, duration_ms)
		VALUES (?,?,?,?,?,?,?,?)`,
		started.UTC().Unix(), taskID, res.SessionID, success,
		res.GeneratedCount, res.FailedCount, res.Message,
		duration.Milliseconds(),
	)
	return err
}

func (r *SQLiteRecorder) RecordScheduleEvent(evt *ScheduleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO schedule_events
		(timestamp, task_id, event_type, note)
		VALUES (?,?,?,?)`,
		time.Now().Unix(), evt.TaskID, evt.EventType, evt.Note,
	)
	return err
}

// DailyStats aggregates the executions recorded on one UTC day
// ("2006-01-02"). Mirrors the remote daily-stats endpoint for local
// reporting.
func (r *SQLiteRecorder) DailyStats(day string) (*DayStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start, err := time.Parse("2006-01-02", day)
	if err != nil {
		return nil, fmt.Errorf("parse day %q: %w", day, err)
	}
	end := start.AddDate(0, 0, 1)

	row := r.db.QueryRow(`SELECT
			COUNT(*),
			COALESCE(SUM(success), 0),
			COALESCE(SUM(1 - success), 0),
			COALESCE(SUM(generated), 0)
		FROM executions WHERE timestamp >= ? AND timestamp < ?`,
		start.Unix(), end.Unix(),
	)
	stats := &DayStats{Day: day}
	if err := row.Scan(&stats.Runs, &stats.Succeeded, &stats.Failed, &stats.Generated); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
