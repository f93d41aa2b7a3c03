package domain

import "strings"

// Category identifies the reasoning area a question belongs to.
type Category string

const (
	CategoryLogical   Category = "logical"
	CategoryNumerical Category = "numerical"
	CategoryVerbal    Category = "verbal"
	CategorySpatial   Category = "spatial"
	CategoryPattern   Category = "pattern"
)

// Categories lists every valid category, in report order.
func Categories() []Category {
	return []Category{CategoryLogical, CategoryNumerical, CategoryVerbal, CategorySpatial, CategoryPattern}
}

// Question is a single multiple-choice test item. Immutable once fetched.
type Question struct {
	ID         string   `json:"id"`
	Category   Category `json:"category"`
	Difficulty int      `json:"difficulty"` // 1: Easy, 2: Medium, 3: Hard
	Points     int      `json:"points"`
	Prompt     string   `json:"prompt"`
	Options    []string `json:"options"` // length >= 2
}

// DifficultyToInt converts a difficulty label to its numeric level.
func DifficultyToInt(diff string) int {
	switch strings.ToLower(diff) {
	case "easy":
		return 1
	case "medium":
		return 2
	case "hard":
		return 3
	default:
		return 1
	}
}

// DifficultyToString converts the difficulty level to a string representation
func (q *Question) DifficultyToString() string {
	switch q.Difficulty {
	case 1:
		return "easy"
	case 2:
		return "medium"
	case 3:
		return "hard"
	default:
		return "easy"
	}
}

// Validate validates the question
func (q *Question) Validate() error {
	if q.ID == "" {
		return NewInvalidInputError("question id is required")
	}
	if q.Prompt == "" {
		return NewInvalidInputError("question prompt is required")
	}
	if len(q.Options) < 2 {
		return NewInvalidInputError("question needs at least two options")
	}
	if q.Points <= 0 {
		return NewInvalidInputError("question points must be positive")
	}
	return nil
}
