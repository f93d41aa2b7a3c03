package service

import (
	"testing"

	"iq-test-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScorePerfect(t *testing.T) {
	scorer := NewScoringService()
	answers := []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: 2},
		{QuestionID: "q2", SelectedAnswer: 1},
		{QuestionID: "q3", SelectedAnswer: 2},
	}

	result := scorer.Score(answers, testAnswerKey(), 3, 120)

	assert.Equal(t, 130, result.IQScore)
	assert.Equal(t, "Very Superior", result.IQLevel)
	assert.Equal(t, 3, result.TotalCorrect)
	assert.Equal(t, 3, result.TotalQuestions)
	assert.Equal(t, 120, result.TimeTakenSec)
	assert.Equal(t, 98, result.Percentile)
	assert.Equal(t, 100.0, result.CategoryScores[domain.CategoryLogical])
	assert.Equal(t, 100.0, result.CategoryScores[domain.CategoryNumerical])
}

func TestScoreAllWrong(t *testing.T) {
	scorer := NewScoringService()
	answers := []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: 0},
		{QuestionID: "q2", SelectedAnswer: 0},
		{QuestionID: "q3", SelectedAnswer: 0},
	}

	result := scorer.Score(answers, testAnswerKey(), 3, 60)

	assert.Equal(t, 70, result.IQScore)
	assert.Equal(t, 0, result.TotalCorrect)
	assert.Equal(t, 0.0, result.CategoryScores[domain.CategoryLogical])
	// The percentile is clamped into [1, 99].
	assert.GreaterOrEqual(t, result.Percentile, 1)
}

func TestScorePartialAndUnanswered(t *testing.T) {
	// Forced expiry submissions can carry fewer answers than questions.
	scorer := NewScoringService()
	answers := []domain.SubmittedAnswer{
		{QuestionID: "q2", SelectedAnswer: 1}, // 15 of 35 points
	}

	result := scorer.Score(answers, testAnswerKey(), 3, 3600)

	require.Equal(t, 1, result.TotalCorrect)
	// 15/35 of the 60-point range above the floor, rounded.
	assert.Equal(t, 96, result.IQScore)
	assert.Equal(t, "Average", result.IQLevel)
	assert.Equal(t, 0.0, result.CategoryScores[domain.CategoryLogical])
	assert.Equal(t, 100.0, result.CategoryScores[domain.CategoryNumerical])
}

func TestScoreIgnoresUnknownQuestionIDs(t *testing.T) {
	scorer := NewScoringService()
	answers := []domain.SubmittedAnswer{
		{QuestionID: "stale", SelectedAnswer: 1},
	}

	result := scorer.Score(answers, testAnswerKey(), 3, 10)
	assert.Equal(t, 0, result.TotalCorrect)
	assert.Equal(t, 70, result.IQScore)
}

func TestScoreEmptyKey(t *testing.T) {
	scorer := NewScoringService()
	result := scorer.Score(nil, domain.AnswerKey{}, 0, 0)
	assert.Equal(t, 70, result.IQScore)
	assert.Equal(t, 0, result.TotalQuestions)
}
