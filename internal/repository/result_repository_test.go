package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"iq-test-service/internal/domain"
	"iq-test-service/internal/repository/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupResultTestDB creates a new sqlx.DB instance and sqlmock for result repository testing.
func setupResultTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return sqlxDB, mock
}

func resultColumns() []string {
	return []string{
		"ID", "USER_ID", "IQ_SCORE", "IQ_LEVEL", "DESCRIPTION", "TOTAL_CORRECT",
		"TOTAL_QUESTIONS", "PERCENTILE", "CATEGORY_SCORES", "TIME_TAKEN_SEC",
		"COMPLETED_AT", "CREATED_AT", "UPDATED_AT", "DELETED_AT",
	}
}

func TestResultConverters(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	model := &models.TestResult{
		ID:             "res1",
		UserID:         "user1",
		IQScore:        118,
		IQLevel:        "Above Average",
		Description:    sql.NullString{String: "Strong logical reasoning", Valid: true},
		TotalCorrect:   17,
		TotalQuestions: 20,
		Percentile:     88,
		CategoryScores: models.ScoreMap{"logical": 90, "verbal": 75},
		TimeTakenSec:   1420,
		CompletedAt:    now,
	}

	d := toDomainResult(model)
	require.NotNil(t, d)
	assert.Equal(t, 118, d.IQScore)
	assert.Equal(t, "Strong logical reasoning", d.Description)
	assert.Equal(t, 90.0, d.CategoryScores[domain.CategoryLogical])

	back := fromDomainResult(d)
	require.NotNil(t, back)
	assert.Equal(t, model.ID, back.ID)
	assert.Equal(t, model.CategoryScores, back.CategoryScores)

	assert.Nil(t, toDomainResult(nil))
	assert.Nil(t, fromDomainResult(nil))
}

func TestSaveResult(t *testing.T) {
	db, mock := setupResultTestDB(t)
	defer db.Close()
	repo := NewSQLXResultRepository(db)

	result := &domain.TestResult{
		ID:             "res1",
		UserID:         "user1",
		IQScore:        104,
		IQLevel:        "Average",
		TotalCorrect:   12,
		TotalQuestions: 20,
		Percentile:     61,
		CategoryScores: map[domain.Category]float64{domain.CategoryNumerical: 60},
		TimeTakenSec:   900,
		CompletedAt:    time.Now(),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO test_results")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.SaveResult(context.Background(), result)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetResultByID(t *testing.T) {
	db, mock := setupResultTestDB(t)
	defer db.Close()
	repo := NewSQLXResultRepository(db)
	now := time.Now()

	t.Run("Found", func(t *testing.T) {
		rows := sqlmock.NewRows(resultColumns()).AddRow(
			"res1", "user1", 125, "Superior", "Excellent pattern recognition", 19,
			20, 95, `{"pattern":100}`, 1000, now, now, now, nil,
		)
		mock.ExpectPrepare(regexp.QuoteMeta("SELECT * FROM test_results WHERE ID")).
			ExpectQuery().WillReturnRows(rows)

		result, err := repo.GetResultByID(context.Background(), "res1")
		assert.NoError(t, err)
		require.NotNil(t, result)
		assert.Equal(t, 125, result.IQScore)
		assert.Equal(t, 100.0, result.CategoryScores[domain.CategoryPattern])
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectPrepare(regexp.QuoteMeta("SELECT * FROM test_results WHERE ID")).
			ExpectQuery().WillReturnError(sql.ErrNoRows)

		result, err := repo.GetResultByID(context.Background(), "missing")
		assert.NoError(t, err)
		assert.Nil(t, result)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetResultsByUser(t *testing.T) {
	db, mock := setupResultTestDB(t)
	defer db.Close()
	repo := NewSQLXResultRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(resultColumns()).
		AddRow("res2", "user1", 110, "Above Average", nil, 15, 20, 75, `{}`, 800, now, now, now, nil).
		AddRow("res1", "user1", 98, "Average", nil, 11, 20, 45, `{}`, 1200, now.Add(-time.Hour), now, now, nil)

	mock.ExpectPrepare(regexp.QuoteMeta("SELECT * FROM test_results WHERE USER_ID")).
		ExpectQuery().WillReturnRows(rows)

	results, err := repo.GetResultsByUser(context.Background(), "user1")
	assert.NoError(t, err)
	require.Len(t, results, 2)
	// Rows arrive ordered by COMPLETED_AT DESC; the repo preserves that order.
	assert.Equal(t, "res2", results[0].ID)
	assert.Equal(t, "res1", results[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
