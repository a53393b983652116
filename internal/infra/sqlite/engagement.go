package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/focusrpg/focusrpg/internal/domain"
)

// ─── Daily Quests ───────────────────────────────────────────────────────────

const questCols = `id, title, description, target_count, current_progress,
	reward_minutes, reward_xp, type, date, completed, claimed, sort_order`

// InsertQuest stores one daily quest.
func (d *DB) InsertQuest(q domain.DailyQuest) error {
	_, err := d.db.Exec(
		`INSERT INTO daily_quests (`+questCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID.String(), q.Title, q.Description, q.TargetCount, q.CurrentProgress,
		q.RewardMinutes, q.RewardXP, string(q.Type), domain.DayOf(q.Date).Unix(),
		q.Completed, q.Claimed, q.SortOrder,
	)
	return err
}

// SaveQuest persists a quest's progress and flags.
func (d *DB) SaveQuest(q domain.DailyQuest) error {
	res, err := d.db.Exec(
		`UPDATE daily_quests SET current_progress=?, completed=?, claimed=? WHERE id=?`,
		q.CurrentProgress, q.Completed, q.Claimed, q.ID.String(),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrQuestNotFound
	}
	return nil
}

// GetQuest retrieves one quest by ID.
func (d *DB) GetQuest(id uuid.UUID) (*domain.DailyQuest, error) {
	row := d.db.QueryRow(`SELECT `+questCols+` FROM daily_quests WHERE id = ?`, id.String())
	q, err := scanQuest(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrQuestNotFound
	}
	return q, err
}

// ListQuestsForDay returns the day's cohort ordered by sort order.
func (d *DB) ListQuestsForDay(day time.Time) ([]domain.DailyQuest, error) {
	rows, err := d.db.Query(
		`SELECT `+questCols+` FROM daily_quests WHERE date = ? ORDER BY sort_order`,
		domain.DayOf(day).Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var quests []domain.DailyQuest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, err
		}
		quests = append(quests, *q)
	}
	return quests, rows.Err()
}

func scanQuest(s scanner) (*domain.DailyQuest, error) {
	var q domain.DailyQuest
	var id, typ string
	var date int64
	err := s.Scan(&id, &q.Title, &q.Description, &q.TargetCount, &q.CurrentProgress,
		&q.RewardMinutes, &q.RewardXP, &typ, &date, &q.Completed, &q.Claimed, &q.SortOrder)
	if err != nil {
		return nil, err
	}
	if q.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse quest id: %w", err)
	}
	q.Type = domain.QuestType(typ)
	q.Date = time.Unix(date, 0)
	return &q, nil
}

// ─── Achievements ───────────────────────────────────────────────────────────

const achievementCols = `id, title, description, category, requirement,
	current_progress, unlocked, claimed, unlocked_at, rewards`

// InsertAchievement stores one achievement definition.
func (d *DB) InsertAchievement(a domain.Achievement) error {
	rewards, err := json.Marshal(a.Rewards)
	if err != nil {
		return fmt.Errorf("marshal rewards: %w", err)
	}
	_, err = d.db.Exec(
		`INSERT INTO achievements (`+achievementCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID.String(), a.Title, a.Description, string(a.Category), a.Requirement,
		a.CurrentProgress, a.Unlocked, a.Claimed, nullableUnix(a.UnlockedAt), string(rewards),
	)
	return err
}

// SaveAchievement persists an achievement's progress and flags.
func (d *DB) SaveAchievement(a domain.Achievement) error {
	res, err := d.db.Exec(
		`UPDATE achievements SET current_progress=?, unlocked=?, claimed=?, unlocked_at=? WHERE id=?`,
		a.CurrentProgress, a.Unlocked, a.Claimed, nullableUnix(a.UnlockedAt), a.ID.String(),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAchievementNotFound
	}
	return nil
}

// GetAchievement retrieves one achievement by ID.
func (d *DB) GetAchievement(id uuid.UUID) (*domain.Achievement, error) {
	row := d.db.QueryRow(`SELECT `+achievementCols+` FROM achievements WHERE id = ?`, id.String())
	a, err := scanAchievement(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrAchievementNotFound
	}
	return a, err
}

// ListAchievements returns every achievement, optionally filtered by
// category (empty string = all), ordered by requirement.
func (d *DB) ListAchievements(category domain.AchievementCategory) ([]domain.Achievement, error) {
	query := `SELECT ` + achievementCols + ` FROM achievements`
	args := []any{}
	if category != "" {
		query += ` WHERE category = ?`
		args = append(args, string(category))
	}
	query += ` ORDER BY requirement`

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []domain.Achievement
	for rows.Next() {
		a, err := scanAchievement(rows)
		if err != nil {
			return nil, err
		}
		achievements = append(achievements, *a)
	}
	return achievements, rows.Err()
}

// CountAchievements reports how many achievements exist (seed check).
func (d *DB) CountAchievements() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM achievements`).Scan(&n)
	return n, err
}

func scanAchievement(s scanner) (*domain.Achievement, error) {
	var a domain.Achievement
	var id, category, rewards string
	var unlockedAt sql.NullInt64
	err := s.Scan(&id, &a.Title, &a.Description, &category, &a.Requirement,
		&a.CurrentProgress, &a.Unlocked, &a.Claimed, &unlockedAt, &rewards)
	if err != nil {
		return nil, err
	}
	if a.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse achievement id: %w", err)
	}
	a.Category = domain.AchievementCategory(category)
	a.UnlockedAt = timePtr(unlockedAt)
	if err := json.Unmarshal([]byte(rewards), &a.Rewards); err != nil {
		return nil, fmt.Errorf("unmarshal rewards: %w", err)
	}
	return &a, nil
}

// ─── Streak Tracker (singleton) ─────────────────────────────────────────────

// GetOrCreateStreak returns the single streak row.
func (d *DB) GetOrCreateStreak() (domain.StreakTracker, error) {
	row := d.db.QueryRow(
		`SELECT id, current_streak, longest_streak, last_completion_date, milestones
		 FROM streak_tracker LIMIT 1`,
	)

	var s domain.StreakTracker
	var id, milestones string
	var lastDate sql.NullInt64
	err := row.Scan(&id, &s.CurrentStreak, &s.LongestStreak, &lastDate, &milestones)
	if err == sql.ErrNoRows {
		s = domain.NewStreakTracker()
		_, err = d.db.Exec(
			`INSERT INTO streak_tracker (id, current_streak, longest_streak, last_completion_date, milestones)
			 VALUES (?, 0, 0, NULL, ?)`,
			s.ID.String(), joinDays(s.Milestones),
		)
		if err != nil {
			return s, fmt.Errorf("create streak tracker: %w", err)
		}
		return s, nil
	}
	if err != nil {
		return s, err
	}
	if s.ID, err = uuid.Parse(id); err != nil {
		return s, fmt.Errorf("parse streak id: %w", err)
	}
	s.LastCompletionDate = timePtr(lastDate)
	s.Milestones = splitDays(milestones)
	return s, nil
}

// SaveStreak persists the streak row.
func (d *DB) SaveStreak(s domain.StreakTracker) error {
	_, err := d.db.Exec(
		`UPDATE streak_tracker SET current_streak=?, longest_streak=?, last_completion_date=?, milestones=?
		 WHERE id=?`,
		s.CurrentStreak, s.LongestStreak, nullableUnix(s.LastCompletionDate),
		joinDays(s.Milestones), s.ID.String(),
	)
	return err
}

// ─── Daily Login (singleton) ────────────────────────────────────────────────

// GetOrCreateDailyLogin returns the single login-tracker row.
func (d *DB) GetOrCreateDailyLogin() (domain.DailyLogin, error) {
	row := d.db.QueryRow(
		`SELECT id, last_login_date, consecutive_days, total_logins FROM daily_login LIMIT 1`,
	)

	var l domain.DailyLogin
	var id string
	var lastDate sql.NullInt64
	err := row.Scan(&id, &lastDate, &l.ConsecutiveDays, &l.TotalLogins)
	if err == sql.ErrNoRows {
		l = domain.NewDailyLogin()
		_, err = d.db.Exec(
			`INSERT INTO daily_login (id, last_login_date, consecutive_days, total_logins)
			 VALUES (?, NULL, 0, 0)`,
			l.ID.String(),
		)
		if err != nil {
			return l, fmt.Errorf("create daily login: %w", err)
		}
		return l, nil
	}
	if err != nil {
		return l, err
	}
	if l.ID, err = uuid.Parse(id); err != nil {
		return l, fmt.Errorf("parse login id: %w", err)
	}
	l.LastLoginDate = timePtr(lastDate)
	return l, nil
}

// SaveDailyLogin persists the login-tracker row.
func (d *DB) SaveDailyLogin(l domain.DailyLogin) error {
	_, err := d.db.Exec(
		`UPDATE daily_login SET last_login_date=?, consecutive_days=?, total_logins=? WHERE id=?`,
		nullableUnix(l.LastLoginDate), l.ConsecutiveDays, l.TotalLogins, l.ID.String(),
	)
	return err
}

// ─── Weekend Bonus (singleton) ──────────────────────────────────────────────

// GetOrCreateWeekendBonus returns the single weekend-bonus row.
func (d *DB) GetOrCreateWeekendBonus() (domain.WeekendBonus, error) {
	row := d.db.QueryRow(
		`SELECT id, last_claimed_date, bonus_minutes_earned, total_lifetime_minutes
		 FROM weekend_bonus LIMIT 1`,
	)

	var b domain.WeekendBonus
	var id string
	var lastDate sql.NullInt64
	err := row.Scan(&id, &lastDate, &b.BonusMinutesEarned, &b.TotalLifetimeMinutes)
	if err == sql.ErrNoRows {
		b = domain.NewWeekendBonus()
		_, err = d.db.Exec(
			`INSERT INTO weekend_bonus (id, last_claimed_date, bonus_minutes_earned, total_lifetime_minutes)
			 VALUES (?, NULL, 0, 0)`,
			b.ID.String(),
		)
		if err != nil {
			return b, fmt.Errorf("create weekend bonus: %w", err)
		}
		return b, nil
	}
	if err != nil {
		return b, err
	}
	if b.ID, err = uuid.Parse(id); err != nil {
		return b, fmt.Errorf("parse weekend bonus id: %w", err)
	}
	b.LastClaimedDate = timePtr(lastDate)
	return b, nil
}

// SaveWeekendBonus persists the weekend-bonus row.
func (d *DB) SaveWeekendBonus(b domain.WeekendBonus) error {
	_, err := d.db.Exec(
		`UPDATE weekend_bonus SET last_claimed_date=?, bonus_minutes_earned=?, total_lifetime_minutes=?
		 WHERE id=?`,
		nullableUnix(b.LastClaimedDate), b.BonusMinutesEarned, b.TotalLifetimeMinutes, b.ID.String(),
	)
	return err
}
