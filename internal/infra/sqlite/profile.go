package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/focusrpg/focusrpg/internal/domain"
)

// ─── Profile (singleton) ────────────────────────────────────────────────────

// GetOrCreateProfile returns the single profile row, creating it on
// first access.
func (d *DB) GetOrCreateProfile() (domain.Profile, error) {
	row := d.db.QueryRow(
		`SELECT id, username, strength, agility, intelligence, artistry,
		 bonus_xp, character_sprite, background_sprite, created_at
		 FROM profile LIMIT 1`,
	)

	var p domain.Profile
	var id string
	var created int64
	err := row.Scan(&id, &p.Username, &p.StrengthStat, &p.AgilityStat,
		&p.IntelligenceStat, &p.ArtistryStat, &p.BonusExperience,
		&p.CharacterSprite, &p.BackgroundSprite, &created)
	if err == sql.ErrNoRows {
		p = domain.NewProfile()
		_, err = d.db.Exec(
			`INSERT INTO profile (id, username, strength, agility, intelligence, artistry,
			 bonus_xp, character_sprite, background_sprite, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID.String(), p.Username, p.StrengthStat, p.AgilityStat,
			p.IntelligenceStat, p.ArtistryStat, p.BonusExperience,
			p.CharacterSprite, p.BackgroundSprite, p.CreatedAt.Unix(),
		)
		if err != nil {
			return p, fmt.Errorf("create profile: %w", err)
		}
		return p, nil
	}
	if err != nil {
		return p, err
	}
	if p.ID, err = uuid.Parse(id); err != nil {
		return p, fmt.Errorf("parse profile id: %w", err)
	}
	p.CreatedAt = time.Unix(created, 0)
	return p, nil
}

// SaveProfile persists the profile's mutable columns.
func (d *DB) SaveProfile(p domain.Profile) error {
	_, err := d.db.Exec(
		`UPDATE profile SET username=?, strength=?, agility=?, intelligence=?,
		 artistry=?, bonus_xp=?, character_sprite=?, background_sprite=? WHERE id=?`,
		p.Username, p.StrengthStat, p.AgilityStat, p.IntelligenceStat,
		p.ArtistryStat, p.BonusExperience, p.CharacterSprite, p.BackgroundSprite,
		p.ID.String(),
	)
	return err
}

// ─── Categories / Subcategories ─────────────────────────────────────────────

// InsertCategory stores a stat category.
func (d *DB) InsertCategory(c domain.Category) error {
	_, err := d.db.Exec(
		`INSERT INTO categories (id, stat, created_at) VALUES (?, ?, ?)`,
		c.ID.String(), string(c.Stat), c.CreatedAt.Unix(),
	)
	return err
}

// GetCategory retrieves a category by ID; nil if missing.
func (d *DB) GetCategory(id uuid.UUID) (*domain.Category, error) {
	row := d.db.QueryRow(`SELECT id, stat, created_at FROM categories WHERE id = ?`, id.String())

	var c domain.Category
	var cid, stat string
	var created int64
	err := row.Scan(&cid, &stat, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if c.ID, err = uuid.Parse(cid); err != nil {
		return nil, err
	}
	c.Stat = domain.StatType(stat)
	c.CreatedAt = time.Unix(created, 0)
	return &c, nil
}

// ListCategories returns all stat categories.
func (d *DB) ListCategories() ([]domain.Category, error) {
	rows, err := d.db.Query(`SELECT id, stat, created_at FROM categories`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cats []domain.Category
	for rows.Next() {
		var c domain.Category
		var id, stat string
		var created int64
		if err := rows.Scan(&id, &stat, &created); err != nil {
			return nil, err
		}
		if c.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		c.Stat = domain.StatType(stat)
		c.CreatedAt = time.Unix(created, 0)
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// InsertSubcategory stores a subcategory.
func (d *DB) InsertSubcategory(s domain.Subcategory) error {
	_, err := d.db.Exec(
		`INSERT INTO subcategories (id, name, emoji, category_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID.String(), s.Name, s.Emoji, nullUUID(s.CategoryID), s.CreatedAt.Unix(),
	)
	return err
}

// GetSubcategory retrieves a subcategory by ID; nil if missing.
func (d *DB) GetSubcategory(id uuid.UUID) (*domain.Subcategory, error) {
	row := d.db.QueryRow(
		`SELECT id, name, emoji, category_id, created_at FROM subcategories WHERE id = ?`,
		id.String(),
	)

	var s domain.Subcategory
	var sid string
	var catID sql.NullString
	var created int64
	err := row.Scan(&sid, &s.Name, &s.Emoji, &catID, &created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if s.ID, err = uuid.Parse(sid); err != nil {
		return nil, err
	}
	if catID.Valid {
		if parsed, err := uuid.Parse(catID.String); err == nil {
			s.CategoryID = &parsed
		}
	}
	s.CreatedAt = time.Unix(created, 0)
	return &s, nil
}

// CountSubcategories reports how many subcategories exist (seed check).
func (d *DB) CountSubcategories() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM subcategories`).Scan(&n)
	return n, err
}

// ─── Sprites ────────────────────────────────────────────────────────────────

// InsertSprite stores one unlockable sprite.
func (d *DB) InsertSprite(s domain.UnlockableSprite) error {
	_, err := d.db.Exec(
		`INSERT INTO sprites (id, name, sprite_name, required_level, unlocked, unlocked_at, description, type)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID.String(), s.Name, s.SpriteName, s.RequiredLevel, s.Unlocked,
		nullableUnix(s.UnlockedAt), s.Description, string(s.Type),
	)
	return err
}

// UnlockSpritesUpTo marks every still-locked sprite at or below the
// given level as unlocked, returning the newly unlocked ones.
// Unlocking is one-directional; a later delevel never re-locks.
func (d *DB) UnlockSpritesUpTo(level int, now time.Time) ([]domain.UnlockableSprite, error) {
	rows, err := d.db.Query(
		`SELECT id, name, sprite_name, required_level, unlocked, unlocked_at, description, type
		 FROM sprites WHERE unlocked = 0 AND required_level <= ?`, level,
	)
	if err != nil {
		return nil, err
	}
	sprites, err := collectSprites(rows)
	if err != nil {
		return nil, err
	}

	for i := range sprites {
		_, err := d.db.Exec(
			`UPDATE sprites SET unlocked = 1, unlocked_at = ? WHERE id = ?`,
			now.Unix(), sprites[i].ID.String(),
		)
		if err != nil {
			return nil, err
		}
		sprites[i].Unlocked = true
		t := now
		sprites[i].UnlockedAt = &t
	}
	return sprites, nil
}

// ListSprites returns the full sprite catalog ordered by level.
func (d *DB) ListSprites() ([]domain.UnlockableSprite, error) {
	rows, err := d.db.Query(
		`SELECT id, name, sprite_name, required_level, unlocked, unlocked_at, description, type
		 FROM sprites ORDER BY required_level`,
	)
	if err != nil {
		return nil, err
	}
	return collectSprites(rows)
}

// CountSprites reports how many sprites exist (seed check).
func (d *DB) CountSprites() (int, error) {
	var n int
	err := d.db.QueryRow(`SELECT COUNT(*) FROM sprites`).Scan(&n)
	return n, err
}

func collectSprites(rows *sql.Rows) ([]domain.UnlockableSprite, error) {
	defer rows.Close()

	var sprites []domain.UnlockableSprite
	for rows.Next() {
		var s domain.UnlockableSprite
		var id, typ string
		var unlockedAt sql.NullInt64
		err := rows.Scan(&id, &s.Name, &s.SpriteName, &s.RequiredLevel,
			&s.Unlocked, &unlockedAt, &s.Description, &typ)
		if err != nil {
			return nil, err
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse sprite id: %w", err)
		}
		s.UnlockedAt = timePtr(unlockedAt)
		s.Type = domain.SpriteType(typ)
		sprites = append(sprites, s)
	}
	return sprites, rows.Err()
}

// ─── Stat History ───────────────────────────────────────────────────────────

// InsertStatHistory appends a stat sample.
func (d *DB) InsertStatHistory(h domain.StatHistory) error {
	_, err := d.db.Exec(
		`INSERT INTO stat_history (id, date, stat, value) VALUES (?, ?, ?, ?)`,
		h.ID.String(), h.Date.Unix(), string(h.Stat), h.Value,
	)
	return err
}

// ListStatHistory returns samples for one stat in [from, to), oldest first.
func (d *DB) ListStatHistory(stat domain.StatType, from, to time.Time) ([]domain.StatHistory, error) {
	rows, err := d.db.Query(
		`SELECT id, date, stat, value FROM stat_history
		 WHERE stat = ? AND date >= ? AND date < ? ORDER BY date`,
		string(stat), from.Unix(), to.Unix(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []domain.StatHistory
	for rows.Next() {
		var h domain.StatHistory
		var id, st string
		var date int64
		if err := rows.Scan(&id, &date, &st, &h.Value); err != nil {
			return nil, err
		}
		if h.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		h.Date = time.Unix(date, 0)
		h.Stat = domain.StatType(st)
		samples = append(samples, h)
	}
	return samples, rows.Err()
}
