package domain

import "context"

// AnswerKeyEntry carries the grading data for one question. It never leaves
// the server side.
type AnswerKeyEntry struct {
	CorrectIndex int
	Points       int
	Category     Category
}

// AnswerKey maps question id to its grading data.
type AnswerKey map[string]AnswerKeyEntry

// QuestionRepository loads the question bank for new attempts.
type QuestionRepository interface {
	// GetActiveQuestions returns the full ordered question set of the test,
	// without correct answers.
	GetActiveQuestions(ctx context.Context) ([]Question, error)
	// GetAnswerKey returns the grading data for the active question set.
	GetAnswerKey(ctx context.Context) (AnswerKey, error)
}

// ResultRepository persists scored results owned by authenticated users.
type ResultRepository interface {
	SaveResult(ctx context.Context, result *TestResult) error
	// GetResultByID returns nil when no result exists for the id.
	GetResultByID(ctx context.Context, resultID string) (*TestResult, error)
	// GetResultsByUser returns the user's results, most recent first.
	GetResultsByUser(ctx context.Context, userID string) ([]*TestResult, error)
}
