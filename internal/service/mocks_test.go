package service

import (
	"context"
	"sync"
	"time"

	"iq-test-service/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockQuestionRepository ---
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) GetActiveQuestions(ctx context.Context) ([]domain.Question, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetAnswerKey(ctx context.Context) (domain.AnswerKey, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.AnswerKey), args.Error(1)
}

// --- MockResultRepository ---
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) SaveResult(ctx context.Context, result *domain.TestResult) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultRepository) GetResultByID(ctx context.Context, id string) (*domain.TestResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TestResult), args.Error(1)
}

func (m *MockResultRepository) GetResultsByUser(ctx context.Context, userID string) ([]*domain.TestResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.TestResult), args.Error(1)
}

// --- MockSessionRecordStore ---
type MockSessionRecordStore struct {
	mock.Mock
}

func (m *MockSessionRecordStore) Save(ctx context.Context, record *PersistedSessionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockSessionRecordStore) Load(ctx context.Context, sessionID string) (*PersistedSessionRecord, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PersistedSessionRecord), args.Error(1)
}

func (m *MockSessionRecordStore) Clear(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// --- MockPendingResultStore ---
type MockPendingResultStore struct {
	mock.Mock
}

func (m *MockPendingResultStore) Put(ctx context.Context, sessionID string, result *domain.TestResult) error {
	args := m.Called(ctx, sessionID, result)
	return args.Error(0)
}

func (m *MockPendingResultStore) Get(ctx context.Context, sessionID string) (*domain.TestResult, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TestResult), args.Error(1)
}

func (m *MockPendingResultStore) Delete(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// --- memoryCache is an in-memory domain.Cache for store tests ---
type memoryCache struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string]string)}
}

func (c *memoryCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.values[key]
	if !ok {
		return "", domain.ErrCacheMiss
	}
	return value, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
	return nil
}

func (c *memoryCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

func (c *memoryCache) Ping(ctx context.Context) error {
	return nil
}

// --- shared fixtures ---

func testQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Category: domain.CategoryLogical, Difficulty: 1, Points: 10, Prompt: "Which shape completes the sequence?", Options: []string{"A", "B", "C", "D"}},
		{ID: "q2", Category: domain.CategoryNumerical, Difficulty: 2, Points: 15, Prompt: "What is the next number?", Options: []string{"8", "13", "21", "34"}},
		{ID: "q3", Category: domain.CategoryVerbal, Difficulty: 1, Points: 10, Prompt: "Pick the odd word out.", Options: []string{"run", "walk", "chair", "jump"}},
	}
}

func testAnswerKey() domain.AnswerKey {
	return domain.AnswerKey{
		"q1": {CorrectIndex: 2, Points: 10, Category: domain.CategoryLogical},
		"q2": {CorrectIndex: 1, Points: 15, Category: domain.CategoryNumerical},
		"q3": {CorrectIndex: 2, Points: 10, Category: domain.CategoryVerbal},
	}
}

func intPtr(v int) *int { return &v }
