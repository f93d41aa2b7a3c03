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

// ErrSessionRecordNotFound is returned when no record exists for a session id.
var ErrSessionRecordNotFound = errors.New("session record not found in store")

// PersistedSessionRecord is the durable snapshot of one attempt. It is
// serialized as a single value under a single key, so clearing it is one
// delete — the record can never be left partially cleared.
type PersistedSessionRecord struct {
	SessionID string         `json:"session_id"`
	Answers   map[string]int `json:"answers"`
	// Completed means a guest submission was accepted and the scored result
	// is waiting in the pending store to be claimed by an authenticated user.
	Completed bool `json:"completed"`
	// Timer pair: remaining time is always recomputed from these two values,
	// never stored directly.
	TimerBudgetSeconds int64     `json:"timer_budget_seconds"`
	TimerEpoch         time.Time `json:"timer_epoch"`
}

// SessionRecordStore persists session records across reloads and crashes.
type SessionRecordStore interface {
	Save(ctx context.Context, record *PersistedSessionRecord) error
	// Load returns ErrSessionRecordNotFound when no record exists. A record
	// that exists but cannot be decoded is discarded in full and reported as
	// not found, so the caller starts fresh instead of crashing.
	Load(ctx context.Context, sessionID string) (*PersistedSessionRecord, error)
	// Clear removes the whole record. Idempotent.
	Clear(ctx context.Context, sessionID string) error
}

type sessionRecordStoreImpl struct {
	cache domain.Cache
	ttl   time.Duration
}

// NewSessionRecordStore creates a SessionRecordStore backed by the given cache.
func NewSessionRecordStore(cache domain.Cache, ttl time.Duration) SessionRecordStore {
	if cache == nil {
		logger.Get().Warn("SessionRecordStore initialized with nil cache. Store will be no-op.")
		return &noopSessionRecordStore{}
	}
	return &sessionRecordStoreImpl{cache: cache, ttl: ttl}
}

func (s *sessionRecordStoreImpl) generateKey(sessionID string) string {
	return cache.GenerateCacheKey("session", "record", sessionID)
}

// Save stores the full record, overwriting any previous attempt's record.
func (s *sessionRecordStoreImpl) Save(ctx context.Context, record *PersistedSessionRecord) error {
	if record == nil || record.SessionID == "" {
		return domain.NewInvalidInputError("cannot persist a session record without a session id")
	}

	key := s.generateKey(record.SessionID)
	dataBytes, err := json.Marshal(record)
	if err != nil {
		logger.Get().Error("Failed to marshal session record", zap.Error(err), zap.String("sessionID", record.SessionID))
		return domain.NewInternalError("failed to marshal session record", err)
	}

	if err := s.cache.Set(ctx, key, string(dataBytes), s.ttl); err != nil {
		logger.Get().Error("Failed to persist session record", zap.Error(err), zap.String("key", key))
		return domain.NewInternalError(fmt.Sprintf("failed to persist session record for key %s", key), err)
	}
	return nil
}

// Load retrieves and decodes the record for a session id.
func (s *sessionRecordStoreImpl) Load(ctx context.Context, sessionID string) (*PersistedSessionRecord, error) {
	key := s.generateKey(sessionID)
	dataString, err := s.cache.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			return nil, ErrSessionRecordNotFound
		}
		logger.Get().Error("Failed to load session record", zap.Error(err), zap.String("key", key))
		return nil, domain.NewInternalError(fmt.Sprintf("failed to load session record for key %s", key), err)
	}
	if dataString == "" {
		return nil, ErrSessionRecordNotFound
	}

	var record PersistedSessionRecord
	if err := json.Unmarshal([]byte(dataString), &record); err != nil {
		// A corrupt record is discarded in full; the caller proceeds as if
		// starting fresh.
		logger.Get().Warn("Discarding malformed session record", zap.Error(err), zap.String("key", key))
		if delErr := s.cache.Delete(ctx, key); delErr != nil {
			logger.Get().Error("Failed to discard malformed session record", zap.Error(delErr), zap.String("key", key))
		}
		return nil, ErrSessionRecordNotFound
	}
	return &record, nil
}

// Clear removes the record in one delete.
func (s *sessionRecordStoreImpl) Clear(ctx context.Context, sessionID string) error {
	key := s.generateKey(sessionID)
	if err := s.cache.Delete(ctx, key); err != nil {
		logger.Get().Error("Failed to clear session record", zap.Error(err), zap.String("key", key))
		return domain.NewInternalError(fmt.Sprintf("failed to clear session record for key %s", key), err)
	}
	return nil
}

// noopSessionRecordStore is used when no cache is configured; sessions then
// only live in memory.
type noopSessionRecordStore struct{}

func (s *noopSessionRecordStore) Save(ctx context.Context, record *PersistedSessionRecord) error {
	return nil
}

func (s *noopSessionRecordStore) Load(ctx context.Context, sessionID string) (*PersistedSessionRecord, error) {
	return nil, ErrSessionRecordNotFound
}

func (s *noopSessionRecordStore) Clear(ctx context.Context, sessionID string) error {
	return nil
}
