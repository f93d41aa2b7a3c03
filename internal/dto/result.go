package dto

import (
	"time"

	"iq-test-service/internal/domain"
)

// ResultResponse is the client-facing view of a scored result.
// @Description Scored test result
type ResultResponse struct {
	ID             string             `json:"id,omitempty"`
	IQScore        int                `json:"iq_score"`
	IQLevel        string             `json:"iq_level"`
	Description    string             `json:"description"`
	TotalCorrect   int                `json:"total_correct"`
	TotalQuestions int                `json:"total_questions"`
	Percentile     int                `json:"percentile"`
	CategoryScores map[string]float64 `json:"category_scores"`
	TimeTakenSec   int                `json:"time_taken_seconds"`
	CompletedAt    time.Time          `json:"completed_at"`
}

// NewResultResponse converts a domain result for transport.
func NewResultResponse(r *domain.TestResult) *ResultResponse {
	if r == nil {
		return nil
	}
	scores := make(map[string]float64, len(r.CategoryScores))
	for category, pct := range r.CategoryScores {
		scores[string(category)] = pct
	}
	return &ResultResponse{
		ID:             r.ID,
		IQScore:        r.IQScore,
		IQLevel:        r.IQLevel,
		Description:    r.Description,
		TotalCorrect:   r.TotalCorrect,
		TotalQuestions: r.TotalQuestions,
		Percentile:     r.Percentile,
		CategoryScores: scores,
		TimeTakenSec:   r.TimeTakenSec,
		CompletedAt:    r.CompletedAt,
	}
}

// ResolveResultRequest drives the reconciliation decision on the results view.
// @Description Request body for resolving the result to display after login
type ResolveResultRequest struct {
	// SessionID of a pending guest attempt, when the client still holds one.
	SessionID string `json:"session_id,omitempty"`
	// ResultID requests one specific stored result directly.
	ResultID string `json:"result_id,omitempty"`
}

// ResolveResultResponse tells the client what to show next.
type ResolveResultResponse struct {
	Result *ResultResponse `json:"result,omitempty"`
	// Redirect asks the client to navigate back to the test entry point;
	// RedirectDelayed means it should first leave the message on screen.
	Redirect        bool   `json:"redirect"`
	RedirectDelayed bool   `json:"redirect_delayed"`
	Message         string `json:"message,omitempty"`
}

// ResultListResponse lists a user's stored results, most recent first.
type ResultListResponse struct {
	Results []*ResultResponse `json:"results"`
}
