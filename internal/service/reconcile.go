package service

import (
	"context"
	"errors"
	"sync"

	"iq-test-service/internal/domain"
	"iq-test-service/internal/dto"
	"iq-test-service/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ReconcileService decides what the results view shows after login and, when a
// guest attempt is still pending, claims it for the authenticated user.
type ReconcileService interface {
	// ResolveResult applies the decision procedure: claim the session's
	// pending result first, then a directly requested result id, then the
	// latest owned result, otherwise a redirect back to the test entry point.
	ResolveResult(ctx context.Context, userID string, req *dto.ResolveResultRequest) (*dto.ResolveResultResponse, error)
	// GetResultByID fetches one stored result, enforcing ownership.
	GetResultByID(ctx context.Context, userID, resultID string) (*dto.ResultResponse, error)
	// ListResults returns the user's stored results, most recent first.
	ListResults(ctx context.Context, userID string) (*dto.ResultListResponse, error)
}

type reconcileServiceImpl struct {
	results domain.ResultRepository
	pending PendingResultStore
	records SessionRecordStore

	// Concurrent resolves for the same session share one claim via
	// singleflight. The attempted set latches a session once a pending entry
	// has actually been found, so the claim runs at most once per session; a
	// resolve that finds nothing pending does not consume the latch.
	group     singleflight.Group
	mu        sync.Mutex
	attempted map[string]bool
}

// NewReconcileService wires the claim path.
func NewReconcileService(results domain.ResultRepository, pending PendingResultStore, records SessionRecordStore) ReconcileService {
	return &reconcileServiceImpl{
		results:   results,
		pending:   pending,
		records:   records,
		attempted: make(map[string]bool),
	}
}

func (s *reconcileServiceImpl) ResolveResult(ctx context.Context, userID string, req *dto.ResolveResultRequest) (*dto.ResolveResultResponse, error) {
	if userID == "" {
		return nil, domain.NewError(domain.CodeUnauthorized, "authentication required to resolve results", nil)
	}

	if req != nil && req.SessionID != "" {
		claimed, err := s.claimPending(ctx, userID, req.SessionID)
		switch {
		case err == nil:
			return &dto.ResolveResultResponse{Result: dto.NewResultResponse(claimed)}, nil
		case domain.IsCode(err, domain.CodeNoTemporaryResult):
			// The pending entry expired or was already claimed. The session
			// record is left untouched; fall back to the latest stored result.
			logger.Get().Info("No pending result to claim, falling back to stored results",
				zap.String("sessionID", req.SessionID), zap.String("userID", userID))
		default:
			// The claim itself failed. The attempt is discarded so the client
			// does not loop on a broken claim: clear the record, surface a
			// message, then redirect.
			logger.Get().Error("Pending result claim failed, discarding attempt",
				zap.Error(err), zap.String("sessionID", req.SessionID), zap.String("userID", userID))
			if clearErr := s.records.Clear(ctx, req.SessionID); clearErr != nil {
				logger.Get().Error("Failed to clear session record after failed claim",
					zap.Error(clearErr), zap.String("sessionID", req.SessionID))
			}
			return &dto.ResolveResultResponse{
				Redirect:        true,
				RedirectDelayed: true,
				Message:         "Failed to save your test result. Please take the test again.",
			}, nil
		}
	}

	if req != nil && req.ResultID != "" {
		result, err := s.GetResultByID(ctx, userID, req.ResultID)
		switch {
		case err == nil:
			return &dto.ResolveResultResponse{Result: result}, nil
		case domain.IsCode(err, domain.CodeResultNotFound) || domain.IsCode(err, domain.CodeAccessDenied):
			// A requested result that cannot be shown sends the user back to
			// the test entry point, message first.
			logger.Get().Warn("Requested result is not viewable, redirecting to test",
				zap.Error(err), zap.String("resultID", req.ResultID), zap.String("userID", userID))
			return &dto.ResolveResultResponse{
				Redirect:        true,
				RedirectDelayed: true,
				Message:         "The requested result is not available. Please take the test again.",
			}, nil
		default:
			return nil, err
		}
	}

	latest, err := s.results.GetResultsByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load stored results", err)
	}
	if len(latest) > 0 {
		return &dto.ResolveResultResponse{Result: dto.NewResultResponse(latest[0])}, nil
	}
	return &dto.ResolveResultResponse{Redirect: true}, nil
}

// claimPending moves a guest result into durable storage under the user's id.
// Success clears both the pending entry and the session record, in that order;
// a crash between the two leaves a re-claimable state, never a lost result.
func (s *reconcileServiceImpl) claimPending(ctx context.Context, userID, sessionID string) (*domain.TestResult, error) {
	value, err, _ := s.group.Do(sessionID, func() (interface{}, error) {
		s.mu.Lock()
		already := s.attempted[sessionID]
		s.mu.Unlock()
		if already {
			return nil, domain.NewNoTemporaryResultError(sessionID)
		}

		result, err := s.pending.Get(ctx, sessionID)
		if err != nil {
			// Nothing was consumed, so nothing is latched: a resolve that runs
			// before the guest has submitted must not block a later claim.
			if errors.Is(err, ErrPendingResultNotFound) {
				return nil, domain.NewNoTemporaryResultError(sessionID)
			}
			return nil, err
		}

		// A pending entry exists; consume the one claim attempt for this
		// session before touching durable storage.
		s.mu.Lock()
		s.attempted[sessionID] = true
		s.mu.Unlock()

		result.UserID = userID
		if err := s.results.SaveResult(ctx, result); err != nil {
			return nil, domain.NewInternalError("failed to save claimed result", err)
		}

		if err := s.pending.Delete(ctx, sessionID); err != nil {
			logger.Get().Warn("Claimed result saved but pending entry not deleted",
				zap.Error(err), zap.String("sessionID", sessionID))
		}
		if err := s.records.Clear(ctx, sessionID); err != nil {
			logger.Get().Warn("Claimed result saved but session record not cleared",
				zap.Error(err), zap.String("sessionID", sessionID))
		}

		logger.Get().Info("Guest result claimed",
			zap.String("sessionID", sessionID),
			zap.String("userID", userID),
			zap.String("resultID", result.ID),
		)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return value.(*domain.TestResult), nil
}

func (s *reconcileServiceImpl) GetResultByID(ctx context.Context, userID, resultID string) (*dto.ResultResponse, error) {
	result, err := s.results.GetResultByID(ctx, resultID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load result", err)
	}
	if result == nil {
		return nil, domain.NewResultNotFoundError(resultID)
	}
	if result.UserID != userID {
		return nil, domain.NewAccessDeniedError("result belongs to another user")
	}
	return dto.NewResultResponse(result), nil
}

func (s *reconcileServiceImpl) ListResults(ctx context.Context, userID string) (*dto.ResultListResponse, error) {
	results, err := s.results.GetResultsByUser(ctx, userID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load stored results", err)
	}
	responses := make([]*dto.ResultResponse, 0, len(results))
	for _, r := range results {
		responses = append(responses, dto.NewResultResponse(r))
	}
	return &dto.ResultListResponse{Results: responses}, nil
}
