package repository

import (
	"context"
	"fmt"

	"iq-test-service/internal/domain"
	"iq-test-service/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

// sqlxQuestionRepository implements domain.QuestionRepository using sqlx.
type sqlxQuestionRepository struct {
	db *sqlx.DB
}

// NewSQLXQuestionRepository creates a new instance of sqlxQuestionRepository.
func NewSQLXQuestionRepository(db *sqlx.DB) domain.QuestionRepository {
	return &sqlxQuestionRepository{db: db}
}

func toDomainQuestion(m *models.Question) domain.Question {
	return domain.Question{
		ID:         m.ID,
		Category:   domain.Category(m.Category),
		Difficulty: m.Difficulty,
		Points:     m.Points,
		Prompt:     m.Prompt,
		Options:    append([]string(nil), m.Options...),
	}
}

// GetActiveQuestions returns the ordered active question set without the
// correct answers.
func (r *sqlxQuestionRepository) GetActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	query := `SELECT ID, CATEGORY, DIFFICULTY, POINTS, PROMPT, OPTIONS, CORRECT_INDEX, POSITION, ACTIVE, CREATED_AT, UPDATED_AT
	          FROM questions WHERE ACTIVE = 1 ORDER BY POSITION ASC`

	var rows []models.Question
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to select active questions: %w", err)
	}

	questions := make([]domain.Question, 0, len(rows))
	for i := range rows {
		questions = append(questions, toDomainQuestion(&rows[i]))
	}
	return questions, nil
}

// GetAnswerKey returns the grading data for the active question set.
func (r *sqlxQuestionRepository) GetAnswerKey(ctx context.Context) (domain.AnswerKey, error) {
	query := `SELECT ID, CATEGORY, DIFFICULTY, POINTS, PROMPT, OPTIONS, CORRECT_INDEX, POSITION, ACTIVE, CREATED_AT, UPDATED_AT
	          FROM questions WHERE ACTIVE = 1 ORDER BY POSITION ASC`

	var rows []models.Question
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to select answer key: %w", err)
	}

	key := make(domain.AnswerKey, len(rows))
	for i := range rows {
		key[rows[i].ID] = domain.AnswerKeyEntry{
			CorrectIndex: rows[i].CorrectIndex,
			Points:       rows[i].Points,
			Category:     domain.Category(rows[i].Category),
		}
	}
	return key, nil
}
