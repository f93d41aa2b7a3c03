package dto

import "iq-test-service/internal/domain"

// StartTestRequest begins a fresh attempt. Guests omit the body entirely.
type StartTestRequest struct {
	// SessionID lets a client resume the attempt it already holds a key for.
	SessionID string `json:"session_id,omitempty"`
}

// SetAnswerRequest upserts or clears one answer.
// @Description Request body for answering a question
type SetAnswerRequest struct {
	SessionID  string `json:"session_id"`
	QuestionID string `json:"question_id"`
	// Selected is the chosen option index; null clears a previous choice.
	Selected *int `json:"selected"`
	// PageIndex selects which page the returned snapshot describes.
	PageIndex int `json:"page_index"`
}

// SubmitTestRequest submits a complete attempt.
type SubmitTestRequest struct {
	SessionID string `json:"session_id"`
}

// TimerView is the countdown state derived from the persisted budget/epoch pair.
type TimerView struct {
	RemainingSeconds int64               `json:"remaining_seconds"`
	BudgetSeconds    int64               `json:"budget_seconds"`
	Warning          domain.WarningLevel `json:"warning"`
}

// SessionSnapshot is the full client-facing view of one attempt.
// @Description Current session state including timer and pagination
type SessionSnapshot struct {
	SessionID string          `json:"session_id"`
	Status    domain.Status   `json:"status"`
	Page      domain.PageView `json:"page"`
	Answers   map[string]int  `json:"answers"`
	Timer     *TimerView      `json:"timer,omitempty"`
	Result    *ResultResponse `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// ErrorResponse represents an error in the API response
type ErrorResponse struct {
	Error string `json:"error"`
}
