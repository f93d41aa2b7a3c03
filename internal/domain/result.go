package domain

import "time"

// TestResult is the scored outcome of one completed attempt. It is created
// by the scoring service and treated as immutable afterwards.
type TestResult struct {
	ID             string               `json:"id,omitempty"`
	UserID         string               `json:"user_id,omitempty"`
	IQScore        int                  `json:"iq_score"`
	IQLevel        string               `json:"iq_level"`
	Description    string               `json:"description"`
	TotalCorrect   int                  `json:"total_correct"`
	TotalQuestions int                  `json:"total_questions"`
	Percentile     int                  `json:"percentile"`
	CategoryScores map[Category]float64 `json:"category_scores"`
	TimeTakenSec   int                  `json:"time_taken_seconds"`
	CompletedAt    time.Time            `json:"completed_at"`
}

// SubmittedAnswer pairs a question with the option index the taker selected.
// Order of the pairs is not significant to scoring.
type SubmittedAnswer struct {
	QuestionID     string `json:"question_id"`
	SelectedAnswer int    `json:"selected_answer"`
}
