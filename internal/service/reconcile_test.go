package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"iq-test-service/internal/domain"
	"iq-test-service/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newReconcileFixture() (*MockResultRepository, *MockPendingResultStore, *MockSessionRecordStore, ReconcileService) {
	results := new(MockResultRepository)
	pending := new(MockPendingResultStore)
	records := new(MockSessionRecordStore)
	return results, pending, records, NewReconcileService(results, pending, records)
}

func TestResolveResultClaimsPending(t *testing.T) {
	results, pending, records, svc := newReconcileFixture()

	guestResult := &domain.TestResult{ID: "res-1", IQScore: 115}
	pending.On("Get", mock.Anything, "sess-1").Return(guestResult, nil)
	results.On("SaveResult", mock.Anything, mock.Anything).Return(nil)
	pending.On("Delete", mock.Anything, "sess-1").Return(nil)
	records.On("Clear", mock.Anything, "sess-1").Return(nil)

	resp, err := svc.ResolveResult(context.Background(), "user-1", &dto.ResolveResultRequest{SessionID: "sess-1"})
	require.NoError(t, err)

	require.NotNil(t, resp.Result)
	assert.Equal(t, "res-1", resp.Result.ID)
	assert.False(t, resp.Redirect)

	// The claim rebinds the result to the user and cleans up both stores.
	saved := results.Calls[0].Arguments.Get(1).(*domain.TestResult)
	assert.Equal(t, "user-1", saved.UserID)
	pending.AssertCalled(t, "Delete", mock.Anything, "sess-1")
	records.AssertCalled(t, "Clear", mock.Anything, "sess-1")
}

func TestResolveResultNoPendingFallsBackToStored(t *testing.T) {
	results, pending, records, svc := newReconcileFixture()

	pending.On("Get", mock.Anything, "sess-1").Return(nil, ErrPendingResultNotFound)
	results.On("GetResultsByUser", mock.Anything, "user-1").
		Return([]*domain.TestResult{{ID: "res-old", UserID: "user-1", IQScore: 104}}, nil)

	resp, err := svc.ResolveResult(context.Background(), "user-1", &dto.ResolveResultRequest{SessionID: "sess-1"})
	require.NoError(t, err)

	require.NotNil(t, resp.Result)
	assert.Equal(t, "res-old", resp.Result.ID)
	// The missing pending entry is not a claim failure; the session record is
	// left alone.
	records.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestResolveResultClaimFailureDiscardsAttempt(t *testing.T) {
	results, pending, records, svc := newReconcileFixture()

	pending.On("Get", mock.Anything, "sess-1").Return(&domain.TestResult{ID: "res-1"}, nil)
	results.On("SaveResult", mock.Anything, mock.Anything).Return(errors.New("db down"))
	records.On("Clear", mock.Anything, "sess-1").Return(nil)

	resp, err := svc.ResolveResult(context.Background(), "user-1", &dto.ResolveResultRequest{SessionID: "sess-1"})
	require.NoError(t, err)

	assert.Nil(t, resp.Result)
	assert.True(t, resp.Redirect)
	assert.True(t, resp.RedirectDelayed)
	assert.NotEmpty(t, resp.Message)
	records.AssertCalled(t, "Clear", mock.Anything, "sess-1")
}

func TestResolveResultMissThenGuestSubmitStillClaims(t *testing.T) {
	results, pending, records, svc := newReconcileFixture()

	pending.On("Get", mock.Anything, "sess-1").Return(nil, ErrPendingResultNotFound).Once()
	results.On("GetResultsByUser", mock.Anything, "user-1").Return([]*domain.TestResult{}, nil).Once()

	// Resolve while the guest attempt has not been submitted yet: nothing to
	// claim, nothing stored, so the user is sent back to the test.
	resp, err := svc.ResolveResult(context.Background(), "user-1", &dto.ResolveResultRequest{SessionID: "sess-1"})
	require.NoError(t, err)
	assert.Nil(t, resp.Result)
	assert.True(t, resp.Redirect)

	// The guest submission lands afterwards; the earlier miss must not have
	// consumed the claim, so the next resolve adopts the result.
	pending.On("Get", mock.Anything, "sess-1").Return(&domain.TestResult{ID: "res-1", IQScore: 112}, nil).Once()
	results.On("SaveResult", mock.Anything, mock.Anything).Return(nil)
	pending.On("Delete", mock.Anything, "sess-1").Return(nil)
	records.On("Clear", mock.Anything, "sess-1").Return(nil)

	resp, err = svc.ResolveResult(context.Background(), "user-1", &dto.ResolveResultRequest{SessionID: "sess-1"})
	require.NoError(t, err)
	require.NotNil(t, resp.Result)
	assert.Equal(t, "res-1", resp.Result.ID)

	saved := results.Calls[len(results.Calls)-1].Arguments.Get(1).(*domain.TestResult)
	assert.Equal(t, "user-1", saved.UserID)
}

func TestResolveResultClaimHappensAtMostOnce(t *testing.T) {
	results, pending, records, svc := newReconcileFixture()

	pending.On("Get", mock.Anything, "sess-1").Return(&domain.TestResult{ID: "res-1"}, nil).Once()
	results.On("SaveResult", mock.Anything, mock.Anything).Return(nil).Once()
	pending.On("Delete", mock.Anything, "sess-1").Return(nil)
	records.On("Clear", mock.Anything, "sess-1").Return(nil)
	results.On("GetResultsByUser", mock.Anything, "user-1").
		Return([]*domain.TestResult{{ID: "res-1", UserID: "user-1"}}, nil)

	resp, err := svc.ResolveResult(context.Background(), "user-1", &dto.ResolveResultRequest{SessionID: "sess-1"})
	require.NoError(t, err)
	assert.Equal(t, "res-1", resp.Result.ID)

	// The second resolve for the same session does not re-run the claim; it
	// falls back to stored results.
	resp, err = svc.ResolveResult(context.Background(), "user-1", &dto.ResolveResultRequest{SessionID: "sess-1"})
	require.NoError(t, err)
	assert.Equal(t, "res-1", resp.Result.ID)

	pending.AssertNumberOfCalls(t, "Get", 1)
	results.AssertNumberOfCalls(t, "SaveResult", 1)
}

func TestResolveResultConcurrentClaimsShareOneFlight(t *testing.T) {
	results, pending, records, svc := newReconcileFixture()

	pending.On("Get", mock.Anything, "sess-1").Return(&domain.TestResult{ID: "res-1"}, nil)
	results.On("SaveResult", mock.Anything, mock.Anything).Return(nil)
	pending.On("Delete", mock.Anything, "sess-1").Return(nil)
	records.On("Clear", mock.Anything, "sess-1").Return(nil)
	results.On("GetResultsByUser", mock.Anything, "user-1").
		Return([]*domain.TestResult{{ID: "res-1", UserID: "user-1"}}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := svc.ResolveResult(context.Background(), "user-1", &dto.ResolveResultRequest{SessionID: "sess-1"})
			assert.NoError(t, err)
			assert.NotNil(t, resp.Result)
		}()
	}
	wg.Wait()

	// At most one goroutine executed the claim body.
	saveCalls := 0
	for _, c := range results.Calls {
		if c.Method == "SaveResult" {
			saveCalls++
		}
	}
	assert.Equal(t, 1, saveCalls)
}

func TestResolveResultExplicitResultID(t *testing.T) {
	results, _, _, svc := newReconcileFixture()

	results.On("GetResultByID", mock.Anything, "res-9").
		Return(&domain.TestResult{ID: "res-9", UserID: "user-1", IQScore: 121}, nil)

	resp, err := svc.ResolveResult(context.Background(), "user-1", &dto.ResolveResultRequest{ResultID: "res-9"})
	require.NoError(t, err)
	assert.Equal(t, "res-9", resp.Result.ID)
}

func TestResolveResultUnviewableResultIDRedirects(t *testing.T) {
	results, _, _, svc := newReconcileFixture()

	results.On("GetResultByID", mock.Anything, "missing").Return(nil, nil)
	results.On("GetResultByID", mock.Anything, "res-9").
		Return(&domain.TestResult{ID: "res-9", UserID: "someone-else"}, nil)

	// A result id that does not exist or belongs to someone else is not an
	// error to the caller: the user sees a message, then a redirect.
	for _, id := range []string{"missing", "res-9"} {
		resp, err := svc.ResolveResult(context.Background(), "user-1", &dto.ResolveResultRequest{ResultID: id})
		require.NoError(t, err)
		assert.Nil(t, resp.Result)
		assert.True(t, resp.Redirect)
		assert.True(t, resp.RedirectDelayed)
		assert.NotEmpty(t, resp.Message)
	}
}

func TestResolveResultClaimPrecedesExplicitResultID(t *testing.T) {
	results, pending, records, svc := newReconcileFixture()

	pending.On("Get", mock.Anything, "sess-1").Return(&domain.TestResult{ID: "res-new"}, nil)
	results.On("SaveResult", mock.Anything, mock.Anything).Return(nil)
	pending.On("Delete", mock.Anything, "sess-1").Return(nil)
	records.On("Clear", mock.Anything, "sess-1").Return(nil)

	resp, err := svc.ResolveResult(context.Background(), "user-1",
		&dto.ResolveResultRequest{SessionID: "sess-1", ResultID: "res-old"})
	require.NoError(t, err)
	assert.Equal(t, "res-new", resp.Result.ID)
	results.AssertNotCalled(t, "GetResultByID", mock.Anything, mock.Anything)
}

func TestGetResultByIDOwnership(t *testing.T) {
	results, _, _, svc := newReconcileFixture()

	results.On("GetResultByID", mock.Anything, "res-9").
		Return(&domain.TestResult{ID: "res-9", UserID: "someone-else"}, nil)
	results.On("GetResultByID", mock.Anything, "missing").Return(nil, nil)

	_, err := svc.GetResultByID(context.Background(), "user-1", "res-9")
	assert.True(t, domain.IsCode(err, domain.CodeAccessDenied))

	_, err = svc.GetResultByID(context.Background(), "user-1", "missing")
	assert.True(t, domain.IsCode(err, domain.CodeResultNotFound))
}

func TestResolveResultNothingToShowRedirects(t *testing.T) {
	results, _, _, svc := newReconcileFixture()
	results.On("GetResultsByUser", mock.Anything, "user-1").Return([]*domain.TestResult{}, nil)

	resp, err := svc.ResolveResult(context.Background(), "user-1", &dto.ResolveResultRequest{})
	require.NoError(t, err)
	assert.Nil(t, resp.Result)
	assert.True(t, resp.Redirect)
	assert.False(t, resp.RedirectDelayed)
}

func TestResolveResultRequiresAuth(t *testing.T) {
	_, _, _, svc := newReconcileFixture()
	_, err := svc.ResolveResult(context.Background(), "", nil)
	assert.True(t, domain.IsCode(err, domain.CodeUnauthorized))
}
