package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/focusrpg/focusrpg/internal/domain"
)

// ─── Wallet (singleton) ─────────────────────────────────────────────────────

// GetOrCreateWallet returns the single wallet row, creating it on first
// access.
func (d *DB) GetOrCreateWallet() (domain.Wallet, error) {
	row := d.db.QueryRow(
		`SELECT id, available_minutes, earned_today_minutes, last_earned_date,
		 redeemed_minutes_remaining, redemption_start_time FROM wallet LIMIT 1`,
	)

	var w domain.Wallet
	var id string
	var lastEarned int64
	var redemptionStart sql.NullInt64
	err := row.Scan(&id, &w.AvailableMinutes, &w.EarnedTodayMinutes,
		&lastEarned, &w.RedeemedMinutesRemaining, &redemptionStart)
	if err == sql.ErrNoRows {
		w = domain.NewWallet()
		_, err = d.db.Exec(
			`INSERT INTO wallet (id, available_minutes, earned_today_minutes, last_earned_date,
			 redeemed_minutes_remaining, redemption_start_time) VALUES (?, 0, 0, ?, 0, NULL)`,
			w.ID.String(), w.LastEarnedDate.Unix(),
		)
		if err != nil {
			return w, fmt.Errorf("create wallet: %w", err)
		}
		return w, nil
	}
	if err != nil {
		return w, err
	}
	if w.ID, err = uuid.Parse(id); err != nil {
		return w, fmt.Errorf("parse wallet id: %w", err)
	}
	w.LastEarnedDate = time.Unix(lastEarned, 0)
	w.RedemptionStartTime = timePtr(redemptionStart)
	return w, nil
}

// SaveWallet persists the wallet's mutable columns.
func (d *DB) SaveWallet(w domain.Wallet) error {
	_, err := d.db.Exec(
		`UPDATE wallet SET available_minutes=?, earned_today_minutes=?, last_earned_date=?,
		 redeemed_minutes_remaining=?, redemption_start_time=? WHERE id=?`,
		w.AvailableMinutes, w.EarnedTodayMinutes, w.LastEarnedDate.Unix(),
		w.RedeemedMinutesRemaining, nullableUnix(w.RedemptionStartTime), w.ID.String(),
	)
	return err
}

// ─── Settings (singleton) ───────────────────────────────────────────────────

// GetOrCreateSettings returns the single settings row, creating the
// defaults on first access.
func (d *DB) GetOrCreateSettings() (domain.Settings, error) {
	row := d.db.QueryRow(
		`SELECT id, calendar_sync_enabled, app_blocking_enabled, screen_time_ratio,
		 leetcode_enabled, leetcode_username, leetcode_daily_goal, leetcode_blocks_rewards,
		 leetcode_last_checked, anki_enabled, anki_daily_goal, anki_blocks_rewards,
		 created_at, updated_at FROM settings LIMIT 1`,
	)

	var s domain.Settings
	var id string
	var lastChecked sql.NullInt64
	var created, updated int64
	err := row.Scan(&id, &s.CalendarSyncEnabled, &s.AppBlockingEnabled, &s.ScreenTimeRatio,
		&s.LeetCodeEnabled, &s.LeetCodeUsername, &s.LeetCodeDailyGoal, &s.LeetCodeBlocksRewards,
		&lastChecked, &s.AnkiEnabled, &s.AnkiDailyGoal, &s.AnkiBlocksRewards,
		&created, &updated)
	if err == sql.ErrNoRows {
		s = domain.DefaultSettings()
		_, err = d.db.Exec(
			`INSERT INTO settings (id, calendar_sync_enabled, app_blocking_enabled, screen_time_ratio,
			 leetcode_enabled, leetcode_username, leetcode_daily_goal, leetcode_blocks_rewards,
			 leetcode_last_checked, anki_enabled, anki_daily_goal, anki_blocks_rewards,
			 created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?, ?, ?, ?)`,
			s.ID.String(), s.CalendarSyncEnabled, s.AppBlockingEnabled, s.ScreenTimeRatio,
			s.LeetCodeEnabled, s.LeetCodeUsername, s.LeetCodeDailyGoal, s.LeetCodeBlocksRewards,
			s.AnkiEnabled, s.AnkiDailyGoal, s.AnkiBlocksRewards,
			s.CreatedAt.Unix(), s.UpdatedAt.Unix(),
		)
		if err != nil {
			return s, fmt.Errorf("create settings: %w", err)
		}
		return s, nil
	}
	if err != nil {
		return s, err
	}
	if s.ID, err = uuid.Parse(id); err != nil {
		return s, fmt.Errorf("parse settings id: %w", err)
	}
	s.LeetCodeLastChecked = timePtr(lastChecked)
	s.CreatedAt = time.Unix(created, 0)
	s.UpdatedAt = time.Unix(updated, 0)
	return s, nil
}

// SaveSettings persists the settings row and bumps updated_at.
func (d *DB) SaveSettings(s domain.Settings) error {
	_, err := d.db.Exec(
		`UPDATE settings SET calendar_sync_enabled=?, app_blocking_enabled=?, screen_time_ratio=?,
		 leetcode_enabled=?, leetcode_username=?, leetcode_daily_goal=?, leetcode_blocks_rewards=?,
		 leetcode_last_checked=?, anki_enabled=?, anki_daily_goal=?, anki_blocks_rewards=?,
		 updated_at=? WHERE id=?`,
		s.CalendarSyncEnabled, s.AppBlockingEnabled, s.ScreenTimeRatio,
		s.LeetCodeEnabled, s.LeetCodeUsername, s.LeetCodeDailyGoal, s.LeetCodeBlocksRewards,
		nullableUnix(s.LeetCodeLastChecked), s.AnkiEnabled, s.AnkiDailyGoal, s.AnkiBlocksRewards,
		time.Now().Unix(), s.ID.String(),
	)
	return err
}

// ─── Daily Progress (oracle cache) ──────────────────────────────────────────

// GetOrCreateDailyProgress returns the cache row for a calendar day,
// creating an empty unverified row on first access.
func (d *DB) GetOrCreateDailyProgress(day time.Time) (domain.DailyProgress, error) {
	normalized := domain.DayOf(day)
	row := d.db.QueryRow(
		`SELECT id, date, count, verified, last_updated FROM daily_progress WHERE date = ?`,
		normalized.Unix(),
	)

	var p domain.DailyProgress
	var id string
	var date, updated int64
	err := row.Scan(&id, &date, &p.Count, &p.Verified, &updated)
	if err == sql.ErrNoRows {
		p = domain.DailyProgress{ID: uuid.New(), Date: normalized}
		_, err = d.db.Exec(
			`INSERT INTO daily_progress (id, date, count, verified, last_updated)
			 VALUES (?, ?, 0, 0, 0)`,
			p.ID.String(), normalized.Unix(),
		)
		if err != nil {
			return p, fmt.Errorf("create daily progress: %w", err)
		}
		return p, nil
	}
	if err != nil {
		return p, err
	}
	if p.ID, err = uuid.Parse(id); err != nil {
		return p, fmt.Errorf("parse daily progress id: %w", err)
	}
	p.Date = time.Unix(date, 0)
	p.LastUpdated = time.Unix(updated, 0)
	return p, nil
}

// SaveDailyProgress persists a cache row.
func (d *DB) SaveDailyProgress(p domain.DailyProgress) error {
	_, err := d.db.Exec(
		`UPDATE daily_progress SET count=?, verified=?, last_updated=? WHERE id=?`,
		p.Count, p.Verified, p.LastUpdated.Unix(), p.ID.String(),
	)
	return err
}
