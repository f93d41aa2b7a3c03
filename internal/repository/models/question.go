package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StringSlice is a custom type for storing string arrays as JSON in a single
// column (the option lists of a question).
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	if value == nil {
		*s = StringSlice{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("StringSlice Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(bytesToParse, s)
}

// Question is the database model for one test item.
type Question struct {
	ID         string      `db:"ID"` // ULID
	Category   string      `db:"CATEGORY"`
	Difficulty int         `db:"DIFFICULTY"` // 1: Easy, 2: Medium, 3: Hard
	Points     int         `db:"POINTS"`
	Prompt     string      `db:"PROMPT"`
	Options    StringSlice `db:"OPTIONS"`
	// CorrectIndex never leaves the repository layer; scoring happens
	// server-side only.
	CorrectIndex int          `db:"CORRECT_INDEX"`
	Position     int          `db:"POSITION"`
	Active       bool         `db:"ACTIVE"`
	CreatedAt    time.Time    `db:"CREATED_AT"`
	UpdatedAt    time.Time    `db:"UPDATED_AT"`
}

func (Question) TableName() string {
	return "questions"
}
