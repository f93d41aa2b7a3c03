package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"iq-test-service/internal/cache"
	"iq-test-service/internal/domain"
	"iq-test-service/internal/logger"

	"go.uber.org/zap"
)

// ErrPendingResultNotFound is returned when no unclaimed guest result exists
// for a session id. Reconciliation branches on this error specifically, so it
// must stay distinguishable from transport failures.
var ErrPendingResultNotFound = errors.New("no temporary test result found for session")

// PendingResultStore holds scored guest results until an authenticated user
// claims them. Entries expire after the configured TTL.
type PendingResultStore interface {
	Put(ctx context.Context, sessionID string, result *domain.TestResult) error
	Get(ctx context.Context, sessionID string) (*domain.TestResult, error)
	Delete(ctx context.Context, sessionID string) error
}

type pendingResultStoreImpl struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewPendingResultStore creates a PendingResultStore backed by the given cache.
func NewPendingResultStore(cache domain.Cache, ttl time.Duration) PendingResultStore {
	if cache == nil {
		logger.Get().Warn("PendingResultStore initialized with nil cache. Store will be no-op.")
		return &noopPendingResultStore{}
	}
	return &pendingResultStoreImpl{cache: cache, ttl: ttl}
}

func (s *pendingResultStoreImpl) generateKey(sessionID string) string {
	return cache.GenerateCacheKey("pending", "result", sessionID)
}

// Put stores the scored result of a guest submission under its session id.
func (s *pendingResultStoreImpl) Put(ctx context.Context, sessionID string, result *domain.TestResult) error {
	if result == nil {
		return domain.NewInvalidInputError("cannot store nil pending result")
	}

	key := s.generateKey(sessionID)
	dataBytes, err := json.Marshal(result)
	if err != nil {
		logger.Get().Error("Failed to marshal pending result", zap.Error(err), zap.String("sessionID", sessionID))
		return domain.NewInternalError("failed to marshal pending result", err)
	}

	if err := s.cache.Set(ctx, key, string(dataBytes), s.ttl); err != nil {
		logger.Get().Error("Failed to store pending result", zap.Error(err), zap.String("key", key))
		return domain.NewInternalError(fmt.Sprintf("failed to store pending result for key %s", key), err)
	}
	logger.Get().Debug("Stored pending guest result", zap.String("key", key), zap.Duration("ttl", s.ttl))
	return nil
}

// Get retrieves an unclaimed guest result.
func (s *pendingResultStoreImpl) Get(ctx context.Context, sessionID string) (*domain.TestResult, error) {
	key := s.generateKey(sessionID)
	dataString, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Debug("Pending result miss", zap.String("key", key))
			return nil, ErrPendingResultNotFound
		}
		logger.Get().Error("Failed to get pending result", zap.Error(err), zap.String("key", key))
		return nil, domain.NewInternalError(fmt.Sprintf("failed to get pending result for key %s", key), err)
	}
	if dataString == "" {
		return nil, ErrPendingResultNotFound
	}

	var result domain.TestResult
	if err := json.Unmarshal([]byte(dataString), &result); err != nil {
		logger.Get().Error("Failed to unmarshal pending result", zap.Error(err), zap.String("key", key))
		return nil, domain.NewInternalError(fmt.Sprintf("failed to unmarshal pending result for key %s", key), err)
	}
	return &result, nil
}

// Delete removes a claimed (or abandoned) pending result.
func (s *pendingResultStoreImpl) Delete(ctx context.Context, sessionID string) error {
	key := s.generateKey(sessionID)
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Get().Error("Failed to delete pending result", zap.Error(err), zap.String("key", key))
		return domain.NewInternalError(fmt.Sprintf("failed to delete pending result for key %s", key), err)
	}
	return nil
}

// noopPendingResultStore is used when no cache is configured.
type noopPendingResultStore struct{}

func (s *noopPendingResultStore) Put(ctx context.Context, sessionID string, result *domain.TestResult) error {
	return nil
}

func (s *noopPendingResultStore) Get(ctx context.Context, sessionID string) (*domain.TestResult, error) {
	return nil, ErrPendingResultNotFound
}

func (s *noopPendingResultStore) Delete(ctx context.Context, sessionID string) error {
	return nil
}
