package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"iq-test-service/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupQuestionTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	return sqlxDB, mock
}

func questionColumns() []string {
	return []string{"ID", "CATEGORY", "DIFFICULTY", "POINTS", "PROMPT", "OPTIONS", "CORRECT_INDEX", "POSITION", "ACTIVE", "CREATED_AT", "UPDATED_AT"}
}

func TestGetActiveQuestions(t *testing.T) {
	db, mock := setupQuestionTestDB(t)
	defer db.Close()
	repo := NewSQLXQuestionRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(questionColumns()).
		AddRow("q1", "logical", 1, 5, "Which shape completes the series?", `["circle","square","triangle","hexagon"]`, 2, 1, true, now, now).
		AddRow("q2", "numerical", 2, 10, "What is the next number: 2, 6, 18, ...?", `["36","54","48","24"]`, 1, 2, true, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM questions WHERE ACTIVE = 1 ORDER BY POSITION ASC")).
		WillReturnRows(rows)

	questions, err := repo.GetActiveQuestions(context.Background())
	assert.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, "q1", questions[0].ID)
	assert.Equal(t, domain.CategoryLogical, questions[0].Category)
	assert.Equal(t, []string{"circle", "square", "triangle", "hexagon"}, questions[0].Options)
	assert.Equal(t, 10, questions[1].Points)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAnswerKey(t *testing.T) {
	db, mock := setupQuestionTestDB(t)
	defer db.Close()
	repo := NewSQLXQuestionRepository(db)
	now := time.Now()

	rows := sqlmock.NewRows(questionColumns()).
		AddRow("q1", "logical", 1, 5, "Which shape completes the series?", `["a","b"]`, 1, 1, true, now, now)

	mock.ExpectQuery(regexp.QuoteMeta("FROM questions WHERE ACTIVE = 1 ORDER BY POSITION ASC")).
		WillReturnRows(rows)

	key, err := repo.GetAnswerKey(context.Background())
	assert.NoError(t, err)
	require.Contains(t, key, "q1")
	assert.Equal(t, 1, key["q1"].CorrectIndex)
	assert.Equal(t, 5, key["q1"].Points)
	assert.Equal(t, domain.CategoryLogical, key["q1"].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}
