package sqlite

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/focusrpg/focusrpg/internal/domain"
)

// Seed populates the install-time catalog: stat categories with default
// subcategories, the sprite catalog, the achievement catalog, and every
// singleton row. Idempotent — existing data is never touched.
func (d *DB) Seed() error {
	cats, err := d.ListCategories()
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	if len(cats) == 0 {
		if err := d.seedCategories(); err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
	}

	if n, err := d.CountSprites(); err != nil {
		return err
	} else if n == 0 {
		if err := d.seedSprites(); err != nil {
			return fmt.Errorf("seed sprites: %w", err)
		}
	}

	if n, err := d.CountAchievements(); err != nil {
		return err
	} else if n == 0 {
		if err := d.seedAchievements(); err != nil {
			return fmt.Errorf("seed achievements: %w", err)
		}
	}

	// Singletons: get-or-create at startup so the components can rely
	// on the rows existing.
	if _, err := d.GetOrCreateProfile(); err != nil {
		return fmt.Errorf("seed profile: %w", err)
	}
	if _, err := d.GetOrCreateWallet(); err != nil {
		return fmt.Errorf("seed wallet: %w", err)
	}
	if _, err := d.GetOrCreateSettings(); err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	if _, err := d.GetOrCreateStreak(); err != nil {
		return fmt.Errorf("seed streak: %w", err)
	}
	if _, err := d.GetOrCreateDailyLogin(); err != nil {
		return fmt.Errorf("seed daily login: %w", err)
	}
	if _, err := d.GetOrCreateWeekendBonus(); err != nil {
		return fmt.Errorf("seed weekend bonus: %w", err)
	}
	return nil
}

func (d *DB) seedCategories() error {
	now := time.Now()
	byStat := map[domain.StatType]uuid.UUID{}
	for _, stat := range domain.AllStatTypes() {
		c := domain.Category{ID: uuid.New(), Stat: stat, CreatedAt: now}
		if err := d.InsertCategory(c); err != nil {
			return err
		}
		byStat[stat] = c.ID
	}

	defaults := []struct {
		name  string
		emoji string
		stat  domain.StatType
	}{
		{"Gym", "💪", domain.StatStrength},
		{"Guitar", "🎸", domain.StatArtistry},
		{"Chess", "♟️", domain.StatIntelligence},
		{"Reading", "📚", domain.StatIntelligence},
		{"Cooking", "🍳", domain.StatArtistry},
	}
	for _, def := range defaults {
		catID := byStat[def.stat]
		sub := domain.Subcategory{
			ID:         uuid.New(),
			Name:       def.name,
			Emoji:      def.emoji,
			CategoryID: &catID,
			CreatedAt:  now,
		}
		if err := d.InsertSubcategory(sub); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) seedSprites() error {
	now := time.Now()
	sprites := []domain.UnlockableSprite{
		{Name: "Novice Barbarian", SpriteName: "barbarian", RequiredLevel: 1,
			Description: "Your journey begins", Type: domain.SpriteCharacter,
			Unlocked: true, UnlockedAt: &now},
		{Name: "Trained Warrior", SpriteName: "barbarian_10", RequiredLevel: 10,
			Description: "Leather armor, honed skills", Type: domain.SpriteCharacter},
		{Name: "Veteran Fighter", SpriteName: "barbarian_20", RequiredLevel: 20,
			Description: "Chainmail and battle scars", Type: domain.SpriteCharacter},
		{Name: "Elite Warrior", SpriteName: "barbarian_30", RequiredLevel: 30,
			Description: "Plate armor, seasoned in battle", Type: domain.SpriteCharacter},
		{Name: "Champion", SpriteName: "barbarian_40", RequiredLevel: 40,
			Description: "A name known across the realm", Type: domain.SpriteCharacter},
		{Name: "Legend", SpriteName: "barbarian_50", RequiredLevel: 50,
			Description: "Legends are written about you", Type: domain.SpriteCharacter},
		{Name: "Starting Camp", SpriteName: "start_background", RequiredLevel: 1,
			Description: "Where it all began", Type: domain.SpriteBackground,
			Unlocked: true, UnlockedAt: &now},
		{Name: "Forest Clearing", SpriteName: "forest_background", RequiredLevel: 15,
			Description: "Deeper into the wild", Type: domain.SpriteBackground},
		{Name: "Mountain Pass", SpriteName: "mountain_background", RequiredLevel: 25,
			Description: "The air grows thin", Type: domain.SpriteBackground},
		{Name: "Castle Gates", SpriteName: "castle_background", RequiredLevel: 45,
			Description: "Few make it this far", Type: domain.SpriteBackground},
	}
	for _, s := range sprites {
		s.ID = uuid.New()
		if err := d.InsertSprite(s); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) seedAchievements() error {
	plural := func(n int) string {
		if n == 1 {
			return ""
		}
		return "s"
	}

	loginDays := []int{1, 5, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 200, 300, 400, 500}
	for _, days := range loginDays {
		a := domain.Achievement{
			ID:          uuid.New(),
			Title:       fmt.Sprintf("%d Day%s Logged", days, plural(days)),
			Description: fmt.Sprintf("Log in for %d total day%s", days, plural(days)),
			Category:    domain.AchievementLoginDays,
			Requirement: days,
			Rewards:     []domain.Reward{{Kind: domain.RewardMinutes, Amount: 30}},
		}
		if err := d.InsertAchievement(a); err != nil {
			return err
		}
	}

	// XP rewards are small bonuses — most XP comes from completed work.
	workHours := []struct{ hours, xp int }{
		{5, 30}, {10, 60}, {20, 120}, {50, 300},
		{100, 600}, {200, 1200}, {500, 3000}, {1000, 6000},
	}
	for _, wh := range workHours {
		a := domain.Achievement{
			ID:          uuid.New(),
			Title:       fmt.Sprintf("%d Hour%s Worked", wh.hours, plural(wh.hours)),
			Description: fmt.Sprintf("Complete %d hour%s of focused work", wh.hours, plural(wh.hours)),
			Category:    domain.AchievementWorkHours,
			Requirement: wh.hours,
			Rewards: []domain.Reward{
				{Kind: domain.RewardMinutes, Amount: 60},
				{Kind: domain.RewardXP, Amount: wh.xp},
			},
		}
		if err := d.InsertAchievement(a); err != nil {
			return err
		}
	}
	return nil
}
