package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ScoreMap is a custom type for storing per-category percentages as a JSON
// object in a single column.
type ScoreMap map[string]float64

// Value implements the driver.Valuer interface
func (m ScoreMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	jsonData, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (m *ScoreMap) Scan(value interface{}) error {
	if value == nil {
		*m = ScoreMap{}
		return nil
	}

	var bytesToParse []byte
	switch v := value.(type) {
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("ScoreMap Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	if len(bytesToParse) == 0 || string(bytesToParse) == "null" {
		*m = ScoreMap{}
		return nil
	}
	return json.Unmarshal(bytesToParse, m)
}

// TestResult is the database model for a claimed (user-owned) test result.
type TestResult struct {
	ID             string       `db:"ID"`      // ULID
	UserID         string       `db:"USER_ID"` // Foreign key to users table
	IQScore        int          `db:"IQ_SCORE"`
	IQLevel        string       `db:"IQ_LEVEL"`
	Description    sql.NullString `db:"DESCRIPTION"`
	TotalCorrect   int          `db:"TOTAL_CORRECT"`
	TotalQuestions int          `db:"TOTAL_QUESTIONS"`
	Percentile     int          `db:"PERCENTILE"`
	CategoryScores ScoreMap     `db:"CATEGORY_SCORES"`
	TimeTakenSec   int          `db:"TIME_TAKEN_SEC"`
	CompletedAt    time.Time    `db:"COMPLETED_AT"`
	CreatedAt      time.Time    `db:"CREATED_AT"`
	UpdatedAt      time.Time    `db:"UPDATED_AT"`
	DeletedAt      sql.NullTime `db:"DELETED_AT"`
}

func (TestResult) TableName() string {
	return "test_results"
}
