// Package sqlite provides SQLite-based persistent storage for FocusRPG.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		// Schedule instances own their tasks (cascade delete).
		`CREATE TABLE IF NOT EXISTS schedule_instances (
			id                  TEXT PRIMARY KEY,
			title               TEXT NOT NULL,
			start_time          INTEGER NOT NULL,
			end_time            INTEGER NOT NULL,
			base_reward_minutes INTEGER NOT NULL DEFAULT 20,
			created_at          INTEGER NOT NULL,
			completed           BOOLEAN DEFAULT 0,
			pomodoro            BOOLEAN DEFAULT 0,
			recurring           BOOLEAN DEFAULT 0,
			recurring_group_id  TEXT,
			calendar_event_id   TEXT,
			subcategory_id      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_instances_start ON schedule_instances(start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_instances_completed ON schedule_instances(completed)`,

		`CREATE TABLE IF NOT EXISTS tasks (
			id          TEXT PRIMARY KEY,
			instance_id TEXT NOT NULL REFERENCES schedule_instances(id) ON DELETE CASCADE,
			title       TEXT NOT NULL,
			weight      REAL NOT NULL DEFAULT 1.0,
			completed   BOOLEAN DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_instance ON tasks(instance_id)`,

		`CREATE TABLE IF NOT EXISTS recurrence_rules (
			id                  TEXT PRIMARY KEY,
			title               TEXT NOT NULL,
			start_hour          INTEGER NOT NULL,
			start_minute        INTEGER NOT NULL,
			end_hour            INTEGER NOT NULL,
			end_minute          INTEGER NOT NULL,
			base_reward_minutes INTEGER NOT NULL,
			subcategory_id      TEXT,
			active              BOOLEAN DEFAULT 1,
			days_of_week        TEXT NOT NULL DEFAULT '',
			created_at          INTEGER NOT NULL
		)`,

		// Stat categories and subcategories
		`CREATE TABLE IF NOT EXISTS categories (
			id         TEXT PRIMARY KEY,
			stat       TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS subcategories (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			emoji       TEXT NOT NULL DEFAULT '',
			category_id TEXT,
			created_at  INTEGER NOT NULL
		)`,

		// Singleton rows (profile, wallet, settings, trackers): one row
		// each, get-or-create at startup.
		`CREATE TABLE IF NOT EXISTS profile (
			id                TEXT PRIMARY KEY,
			username          TEXT NOT NULL DEFAULT '',
			strength          REAL NOT NULL DEFAULT 0,
			agility           REAL NOT NULL DEFAULT 0,
			intelligence      REAL NOT NULL DEFAULT 0,
			artistry          REAL NOT NULL DEFAULT 0,
			bonus_xp          INTEGER NOT NULL DEFAULT 0,
			character_sprite  TEXT NOT NULL DEFAULT 'barbarian',
			background_sprite TEXT NOT NULL DEFAULT 'start_background',
			created_at        INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS wallet (
			id                         TEXT PRIMARY KEY,
			available_minutes          INTEGER NOT NULL DEFAULT 0,
			earned_today_minutes       INTEGER NOT NULL DEFAULT 0,
			last_earned_date           INTEGER NOT NULL,
			redeemed_minutes_remaining INTEGER NOT NULL DEFAULT 0,
			redemption_start_time      INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			id                      TEXT PRIMARY KEY,
			calendar_sync_enabled   BOOLEAN DEFAULT 0,
			app_blocking_enabled    BOOLEAN DEFAULT 0,
			screen_time_ratio       REAL NOT NULL DEFAULT 0.5,
			leetcode_enabled        BOOLEAN DEFAULT 0,
			leetcode_username       TEXT NOT NULL DEFAULT '',
			leetcode_daily_goal     INTEGER NOT NULL DEFAULT 3,
			leetcode_blocks_rewards BOOLEAN DEFAULT 0,
			leetcode_last_checked   INTEGER,
			anki_enabled            BOOLEAN DEFAULT 0,
			anki_daily_goal         INTEGER NOT NULL DEFAULT 50,
			anki_blocks_rewards     BOOLEAN DEFAULT 0,
			created_at              INTEGER NOT NULL,
			updated_at              INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS streak_tracker (
			id                   TEXT PRIMARY KEY,
			current_streak       INTEGER NOT NULL DEFAULT 0,
			longest_streak       INTEGER NOT NULL DEFAULT 0,
			last_completion_date INTEGER,
			milestones           TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS daily_login (
			id               TEXT PRIMARY KEY,
			last_login_date  INTEGER,
			consecutive_days INTEGER NOT NULL DEFAULT 0,
			total_logins     INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS weekend_bonus (
			id                     TEXT PRIMARY KEY,
			last_claimed_date      INTEGER,
			bonus_minutes_earned   INTEGER NOT NULL DEFAULT 0,
			total_lifetime_minutes INTEGER NOT NULL DEFAULT 0
		)`,

		// Daily quest cohorts, one per calendar day
		`CREATE TABLE IF NOT EXISTS daily_quests (
			id               TEXT PRIMARY KEY,
			title            TEXT NOT NULL,
			description      TEXT NOT NULL,
			target_count     INTEGER NOT NULL,
			current_progress INTEGER NOT NULL DEFAULT 0,
			reward_minutes   INTEGER NOT NULL,
			reward_xp        INTEGER NOT NULL DEFAULT 0,
			type             TEXT NOT NULL,
			date             INTEGER NOT NULL,
			completed        BOOLEAN DEFAULT 0,
			claimed          BOOLEAN DEFAULT 0,
			sort_order       INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quests_date ON daily_quests(date)`,

		// Achievement catalog, seeded at install
		`CREATE TABLE IF NOT EXISTS achievements (
			id               TEXT PRIMARY KEY,
			title            TEXT NOT NULL,
			description      TEXT NOT NULL,
			category         TEXT NOT NULL,
			requirement      INTEGER NOT NULL,
			current_progress INTEGER NOT NULL DEFAULT 0,
			unlocked         BOOLEAN DEFAULT 0,
			claimed          BOOLEAN DEFAULT 0,
			unlocked_at      INTEGER,
			rewards          TEXT NOT NULL DEFAULT '[]'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_achievements_category ON achievements(category)`,

		// Oracle daily-count cache (TTL'd by the requirement gate)
		`CREATE TABLE IF NOT EXISTS daily_progress (
			id           TEXT PRIMARY KEY,
			date         INTEGER NOT NULL UNIQUE,
			count        INTEGER NOT NULL DEFAULT 0,
			verified     BOOLEAN DEFAULT 0,
			last_updated INTEGER NOT NULL
		)`,

		// Sprite unlock catalog
		`CREATE TABLE IF NOT EXISTS sprites (
			id             TEXT PRIMARY KEY,
			name           TEXT NOT NULL,
			sprite_name    TEXT NOT NULL,
			required_level INTEGER NOT NULL,
			unlocked       BOOLEAN DEFAULT 0,
			unlocked_at    INTEGER,
			description    TEXT NOT NULL DEFAULT '',
			type           TEXT NOT NULL
		)`,

		// Per-completion audit trail
		`CREATE TABLE IF NOT EXISTS focus_sessions (
			id                 TEXT PRIMARY KEY,
			date               INTEGER NOT NULL,
			completion_percent REAL NOT NULL,
			minutes_earned     INTEGER NOT NULL,
			block_title        TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_date ON focus_sessions(date)`,

		// Stat samples for graphing
		`CREATE TABLE IF NOT EXISTS stat_history (
			id    TEXT PRIMARY KEY,
			date  INTEGER NOT NULL,
			stat  TEXT NOT NULL,
			value REAL NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stat_history_date ON stat_history(date)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func nullableUnix(t *time.Time) sql.NullInt64 {
	if t == nil || t.IsZero() {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func timePtr(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := time.Unix(n.Int64, 0)
	return &t
}
