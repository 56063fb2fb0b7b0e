package domain

import "time"

// Category is a progress track.
type Category string

const (
	CategoryCareer    Category = "career"
	CategoryPhysical  Category = "physical"
	CategoryMental    Category = "mental"
	CategoryFinancial Category = "financial"
	CategoryEducation Category = "education"
)

// Categories lists every progress category.
func Categories() []Category {
	return []Category{CategoryCareer, CategoryPhysical, CategoryMental, CategoryFinancial, CategoryEducation}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}

// XPPerLevel is the experience needed to advance one level.
const XPPerLevel = 100

// LevelFor returns floor(xp/100) + 1. Negative totals count as zero.
func LevelFor(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// UserProgress is keyed by (UserID, Category). Experience only grows.
type UserProgress struct {
	ID         string         `json:"id,omitempty"`
	UserID     string         `json:"userId,omitempty"`
	Category   Category       `json:"category"`
	Level      int            `json:"level"`
	Experience int            `json:"experience"`
	Progress   map[string]any `json:"progress"`
	UpdatedAt  time.Time      `json:"updatedAt,omitempty"`
}

// AddExperience applies an additive XP award and recomputes the level.
func (p *UserProgress) AddExperience(n int, at time.Time) {
	if n > 0 {
		p.Experience += n
	}
	p.Level = LevelFor(p.Experience)
	if p.Progress == nil {
		p.Progress = map[string]any{}
	}
	p.Progress["lastActivity"] = at.UTC().Format(time.RFC3339)
}
