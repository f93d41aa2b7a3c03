package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRecordStoreRoundTrip(t *testing.T) {
	cache := newMemoryCache()
	store := NewSessionRecordStore(cache, time.Hour)

	epoch := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	record := &PersistedSessionRecord{
		SessionID:          "sess-1",
		Answers:            map[string]int{"q1": 2, "q2": 0},
		TimerBudgetSeconds: 3600,
		TimerEpoch:         epoch,
	}
	require.NoError(t, store.Save(context.Background(), record))

	loaded, err := store.Load(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, record.Answers, loaded.Answers)
	assert.False(t, loaded.Completed)
	assert.Equal(t, int64(3600), loaded.TimerBudgetSeconds)
	assert.True(t, loaded.TimerEpoch.Equal(epoch))
}

func TestSessionRecordStoreMiss(t *testing.T) {
	store := NewSessionRecordStore(newMemoryCache(), time.Hour)
	_, err := store.Load(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrSessionRecordNotFound)
}

func TestSessionRecordStoreRejectsEmptySessionID(t *testing.T) {
	store := NewSessionRecordStore(newMemoryCache(), time.Hour)
	assert.Error(t, store.Save(context.Background(), &PersistedSessionRecord{}))
	assert.Error(t, store.Save(context.Background(), nil))
}

func TestSessionRecordStoreDiscardsCorruptRecord(t *testing.T) {
	cache := newMemoryCache()
	store := NewSessionRecordStore(cache, time.Hour)

	key := "iqtest:session:record:sess-bad"
	require.NoError(t, cache.Set(context.Background(), key, "{not json", 0))

	// A record that cannot be decoded is dropped in full and reported as a
	// miss, so the caller starts fresh instead of crashing.
	_, err := store.Load(context.Background(), "sess-bad")
	assert.ErrorIs(t, err, ErrSessionRecordNotFound)

	_, err = cache.Get(context.Background(), key)
	assert.Error(t, err)
}

func TestSessionRecordStoreClearIsSingleDelete(t *testing.T) {
	cache := newMemoryCache()
	store := NewSessionRecordStore(cache, time.Hour)

	require.NoError(t, store.Save(context.Background(), &PersistedSessionRecord{
		SessionID: "sess-1",
		Answers:   map[string]int{"q1": 1},
	}))
	require.NoError(t, store.Clear(context.Background(), "sess-1"))

	_, err := store.Load(context.Background(), "sess-1")
	assert.ErrorIs(t, err, ErrSessionRecordNotFound)

	// Clearing again is a no-op, not an error.
	assert.NoError(t, store.Clear(context.Background(), "sess-1"))
}
