package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Leveling constants. Stat gain is ~4 points per hour of focused work;
// the scaling factor is tuned so achievement XP contributes meaningfully.
const (
	LevelScaling = 16.67
	XPPerHour    = 4.0

	// StatBonusMultiplier: every stat point earned from work adds 6
	// more bonus XP, so one point of work yields 7 XP-equivalent total.
	StatBonusMultiplier = 6.0

	// SkipPenaltyFactor is the fraction of the would-be gain deducted
	// when an instance is skipped.
	SkipPenaltyFactor = 0.5
)

// StatType identifies one of the four character stats. Each category of
// work credits exactly one stat.
type StatType string

const (
	StatStrength     StatType = "strength"
	StatAgility      StatType = "agility"
	StatIntelligence StatType = "intelligence"
	StatArtistry     StatType = "artistry"
)

// AllStatTypes lists stats in display order.
func AllStatTypes() []StatType {
	return []StatType{StatStrength, StatAgility, StatIntelligence, StatArtistry}
}

// Profile is the singleton character sheet. Stats ARE experience
// (1 stat point = 1 XP) plus a separate bonus pool fed by achievement and
// quest claims and the work multiplier.
type Profile struct {
	ID               uuid.UUID `json:"id"`
	Username         string    `json:"username"`
	StrengthStat     float64   `json:"strength_stat"`
	AgilityStat      float64   `json:"agility_stat"`
	IntelligenceStat float64   `json:"intelligence_stat"`
	ArtistryStat     float64   `json:"artistry_stat"`
	BonusExperience  int       `json:"bonus_experience"`
	CharacterSprite  string    `json:"character_sprite"`
	BackgroundSprite string    `json:"background_sprite"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewProfile returns a fresh level-1 profile.
func NewProfile() Profile {
	return Profile{
		ID:               uuid.New(),
		CharacterSprite:  "barbarian",
		BackgroundSprite: "start_background",
		CreatedAt:        time.Now(),
	}
}

// TotalStats is the sum of all four stats (the base XP pool).
func (p Profile) TotalStats() float64 {
	return p.StrengthStat + p.AgilityStat + p.IntelligenceStat + p.ArtistryStat
}

// TotalXP is floor(sum of stats) plus the bonus pool.
func (p Profile) TotalXP() int {
	return int(p.TotalStats()) + p.BonusExperience
}

// Level is derived from TotalXP; it can decrease if stats are reduced
// (skip penalty) — delevel on inactivity is intentional.
func (p Profile) Level() int {
	return LevelForXP(p.TotalXP())
}

// Stat returns the named stat value.
func (p Profile) Stat(t StatType) float64 {
	switch t {
	case StatStrength:
		return p.StrengthStat
	case StatAgility:
		return p.AgilityStat
	case StatIntelligence:
		return p.IntelligenceStat
	case StatArtistry:
		return p.ArtistryStat
	}
	return 0
}

// AddStat mutates the named stat by delta, clamping at zero.
func (p *Profile) AddStat(t StatType, delta float64) {
	apply := func(v float64) float64 {
		v += delta
		if v < 0 {
			return 0
		}
		return v
	}
	switch t {
	case StatStrength:
		p.StrengthStat = apply(p.StrengthStat)
	case StatAgility:
		p.AgilityStat = apply(p.AgilityStat)
	case StatIntelligence:
		p.IntelligenceStat = apply(p.IntelligenceStat)
	case StatArtistry:
		p.ArtistryStat = apply(p.ArtistryStat)
	}
}

// ExperienceToNextLevel is the XP remaining until the next level.
func (p Profile) ExperienceToNextLevel() int {
	next := TotalXPForLevel(p.Level() + 1)
	if remaining := next - p.TotalXP(); remaining > 0 {
		return remaining
	}
	return 0
}

// ExperienceIntoCurrentLevel is the XP accumulated past the current
// level's threshold.
func (p Profile) ExperienceIntoCurrentLevel() int {
	into := p.TotalXP() - TotalXPForLevel(p.Level())
	if into < 0 {
		return 0
	}
	return into
}

// TotalXPForLevel returns the cumulative XP required to reach a level,
// using the triangular-number curve: scaling * L * (L+1) / 2.
func TotalXPForLevel(level int) int {
	return int(LevelScaling * float64(level*(level+1)) / 2.0)
}

// LevelForXP inverts the triangular curve via the quadratic formula,
// floored at level 1.
func LevelForXP(totalXP int) int {
	level := int(math.Floor((-1.0 + math.Sqrt(1.0+8.0*float64(totalXP)/LevelScaling)) / 2.0))
	if level < 1 {
		return 1
	}
	return level
}

// SpriteType distinguishes character sprites from backgrounds.
type SpriteType string

const (
	SpriteCharacter  SpriteType = "character"
	SpriteBackground SpriteType = "background"
)

// UnlockableSprite is a cosmetic unlocked at a level threshold.
// Unlocking is one-directional: a delevel never re-locks a sprite.
type UnlockableSprite struct {
	ID            uuid.UUID  `json:"id"`
	Name          string     `json:"name"`
	SpriteName    string     `json:"sprite_name"`
	RequiredLevel int        `json:"required_level"`
	Unlocked      bool       `json:"unlocked"`
	UnlockedAt    *time.Time `json:"unlocked_at,omitempty"`
	Description   string     `json:"description"`
	Type          SpriteType `json:"type"`
}

// StatHistory is an append-only sample of a stat's value over time,
// recorded after every mutation for graphing.
type StatHistory struct {
	ID    uuid.UUID `json:"id"`
	Date  time.Time `json:"date"`
	Stat  StatType  `json:"stat"`
	Value float64   `json:"value"`
}

// Category groups subcategories under a single stat.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Stat      StatType  `json:"stat"`
	CreatedAt time.Time `json:"created_at"`
}

// Subcategory tags schedule instances; its parent category determines
// which stat completed work credits. The parent may be missing (nullify
// on delete), in which case no stat is credited.
type Subcategory struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Emoji      string     `json:"emoji"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
