package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"iq-test-service/internal/domain"
	"iq-test-service/internal/repository/models"
	"iq-test-service/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxResultRepository implements domain.ResultRepository using sqlx.
type sqlxResultRepository struct {
	db *sqlx.DB
}

// NewSQLXResultRepository creates a new instance of sqlxResultRepository.
func NewSQLXResultRepository(db *sqlx.DB) domain.ResultRepository {
	return &sqlxResultRepository{db: db}
}

func toDomainResult(m *models.TestResult) *domain.TestResult {
	if m == nil {
		return nil
	}
	scores := make(map[domain.Category]float64, len(m.CategoryScores))
	for category, pct := range m.CategoryScores {
		scores[domain.Category(category)] = pct
	}
	return &domain.TestResult{
		ID:             m.ID,
		UserID:         m.UserID,
		IQScore:        m.IQScore,
		IQLevel:        m.IQLevel,
		Description:    m.Description.String,
		TotalCorrect:   m.TotalCorrect,
		TotalQuestions: m.TotalQuestions,
		Percentile:     m.Percentile,
		CategoryScores: scores,
		TimeTakenSec:   m.TimeTakenSec,
		CompletedAt:    m.CompletedAt,
	}
}

func fromDomainResult(r *domain.TestResult) *models.TestResult {
	if r == nil {
		return nil
	}
	scores := make(models.ScoreMap, len(r.CategoryScores))
	for category, pct := range r.CategoryScores {
		scores[string(category)] = pct
	}
	return &models.TestResult{
		ID:             r.ID,
		UserID:         r.UserID,
		IQScore:        r.IQScore,
		IQLevel:        r.IQLevel,
		Description:    util.StringToNullString(r.Description),
		TotalCorrect:   r.TotalCorrect,
		TotalQuestions: r.TotalQuestions,
		Percentile:     r.Percentile,
		CategoryScores: scores,
		TimeTakenSec:   r.TimeTakenSec,
		CompletedAt:    r.CompletedAt,
	}
}

// SaveResult inserts a claimed result.
func (r *sqlxResultRepository) SaveResult(ctx context.Context, result *domain.TestResult) error {
	model := fromDomainResult(result)
	if model.CompletedAt.IsZero() {
		model.CompletedAt = time.Now()
	}
	model.CreatedAt = time.Now()
	model.UpdatedAt = time.Now()

	query := `INSERT INTO test_results (ID, USER_ID, IQ_SCORE, IQ_LEVEL, DESCRIPTION, TOTAL_CORRECT, TOTAL_QUESTIONS, PERCENTILE, CATEGORY_SCORES, TIME_TAKEN_SEC, COMPLETED_AT, CREATED_AT, UPDATED_AT)
	          VALUES (:ID, :USER_ID, :IQ_SCORE, :IQ_LEVEL, :DESCRIPTION, :TOTAL_CORRECT, :TOTAL_QUESTIONS, :PERCENTILE, :CATEGORY_SCORES, :TIME_TAKEN_SEC, :COMPLETED_AT, :CREATED_AT, :UPDATED_AT)`

	if _, err := r.db.NamedExecContext(ctx, query, model); err != nil {
		return fmt.Errorf("failed to insert test result: %w", err)
	}
	return nil
}

// GetResultByID retrieves one result; nil when it does not exist.
func (r *sqlxResultRepository) GetResultByID(ctx context.Context, resultID string) (*domain.TestResult, error) {
	var model models.TestResult
	query := `SELECT * FROM test_results WHERE ID = :ID AND DELETED_AT IS NULL`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetResultByID: %w", err)
	}
	defer stmt.Close()

	if err := stmt.GetContext(ctx, &model, map[string]interface{}{"ID": resultID}); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get test result by id: %w", err)
	}
	return toDomainResult(&model), nil
}

// GetResultsByUser retrieves the user's results, most recent first.
func (r *sqlxResultRepository) GetResultsByUser(ctx context.Context, userID string) ([]*domain.TestResult, error) {
	var rows []models.TestResult
	query := `SELECT * FROM test_results WHERE USER_ID = :USER_ID AND DELETED_AT IS NULL ORDER BY COMPLETED_AT DESC`

	stmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare query for GetResultsByUser: %w", err)
	}
	defer stmt.Close()

	if err := stmt.SelectContext(ctx, &rows, map[string]interface{}{"USER_ID": userID}); err != nil {
		return nil, fmt.Errorf("failed to get test results by user: %w", err)
	}

	results := make([]*domain.TestResult, 0, len(rows))
	for i := range rows {
		results = append(results, toDomainResult(&rows[i]))
	}
	return results, nil
}
