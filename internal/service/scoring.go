package service

import (
	"math"
	"time"

	"iq-test-service/internal/domain"
)

// ScoringService turns a submitted answer set into a TestResult.
type ScoringService interface {
	Score(answers []domain.SubmittedAnswer, key domain.AnswerKey, totalQuestions int, elapsedSec int) *domain.TestResult
}

type scoringServiceImpl struct{}

// NewScoringService creates the deterministic scorer.
func NewScoringService() ScoringService {
	return &scoringServiceImpl{}
}

// The IQ scale is anchored at mean 100, standard deviation 15. The raw
// points ratio maps linearly onto [70, 130].
const (
	iqFloor  = 70
	iqRange  = 60
	iqMean   = 100.0
	iqStdDev = 15.0
)

// Score grades the answers against the key. Unanswered questions (possible on
// a forced expiry submission) simply earn nothing.
func (s *scoringServiceImpl) Score(answers []domain.SubmittedAnswer, key domain.AnswerKey, totalQuestions int, elapsedSec int) *domain.TestResult {
	totalPoints := 0
	categoryTotals := make(map[domain.Category]int)
	for _, entry := range key {
		totalPoints += entry.Points
		categoryTotals[entry.Category] += entry.Points
	}

	earnedPoints := 0
	totalCorrect := 0
	categoryEarned := make(map[domain.Category]int)
	for _, a := range answers {
		entry, ok := key[a.QuestionID]
		if !ok {
			continue
		}
		if a.SelectedAnswer == entry.CorrectIndex {
			earnedPoints += entry.Points
			totalCorrect++
			categoryEarned[entry.Category] += entry.Points
		}
	}

	ratio := 0.0
	if totalPoints > 0 {
		ratio = float64(earnedPoints) / float64(totalPoints)
	}
	iqScore := iqFloor + int(math.Round(ratio*iqRange))

	categoryScores := make(map[domain.Category]float64, len(categoryTotals))
	for category, total := range categoryTotals {
		pct := 0.0
		if total > 0 {
			pct = math.Round(float64(categoryEarned[category]) / float64(total) * 100)
		}
		categoryScores[category] = pct
	}

	level, description := classifyIQ(iqScore)

	return &domain.TestResult{
		IQScore:        iqScore,
		IQLevel:        level,
		Description:    description,
		TotalCorrect:   totalCorrect,
		TotalQuestions: totalQuestions,
		Percentile:     percentileFor(iqScore),
		CategoryScores: categoryScores,
		TimeTakenSec:   elapsedSec,
		CompletedAt:    time.Now(),
	}
}

// percentileFor places an IQ score on the normal distribution N(100, 15).
func percentileFor(iqScore int) int {
	z := (float64(iqScore) - iqMean) / iqStdDev
	cdf := 0.5 * (1 + math.Erf(z/math.Sqrt2))
	percentile := int(math.Round(cdf * 100))
	if percentile < 1 {
		percentile = 1
	}
	if percentile > 99 {
		percentile = 99
	}
	return percentile
}

func classifyIQ(iqScore int) (string, string) {
	switch {
	case iqScore >= 130:
		return "Very Superior", "Exceptional reasoning ability across the board."
	case iqScore >= 120:
		return "Superior", "Well above average performance in most areas."
	case iqScore >= 110:
		return "Above Average", "Stronger than average reasoning skills."
	case iqScore >= 90:
		return "Average", "Solid performance in line with the general population."
	case iqScore >= 80:
		return "Below Average", "Some reasoning areas need more practice."
	default:
		return "Low", "Consider retaking the test after some practice."
	}
}
