package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"iq-test-service/internal/domain"
	"iq-test-service/internal/dto"
	"iq-test-service/internal/logger"
	"iq-test-service/internal/util"

	"go.uber.org/zap"
)

// TestSessionService owns the lifecycle of test attempts: starting, answering,
// pagination snapshots, submission and reset. All transitions of one attempt
// are serialized through its session lock and the pure domain.Apply function,
// so no two actions ever interleave on the same session.
type TestSessionService interface {
	// StartTest begins a fresh attempt. An empty sessionID allocates a new
	// one; the returned snapshot carries it.
	StartTest(ctx context.Context, sessionID string) (*dto.SessionSnapshot, error)
	// GetSession returns the current snapshot, rehydrating from the record
	// store after a reload or restart.
	GetSession(ctx context.Context, sessionID string, pageIndex int) (*dto.SessionSnapshot, error)
	// SetAnswer upserts or clears one answer while in progress.
	SetAnswer(ctx context.Context, req *dto.SetAnswerRequest) (*dto.SessionSnapshot, error)
	// SubmitTest scores and persists a complete attempt under the user's id.
	SubmitTest(ctx context.Context, sessionID, userID string) (*dto.SessionSnapshot, error)
	// SubmitTestGuest scores the attempt and parks the result in the pending
	// store, keyed by sessionID, until an authenticated user claims it.
	SubmitTestGuest(ctx context.Context, sessionID string) (*dto.SessionSnapshot, error)
	// ResetTest abandons the attempt from any state.
	ResetTest(ctx context.Context, sessionID string) error
	// Shutdown stops every running countdown.
	Shutdown()
}

type activeSession struct {
	mu            sync.Mutex
	state         domain.SessionState
	timer         *SessionTimer
	budgetSeconds int64
}

type testSessionService struct {
	questions domain.QuestionRepository
	results   domain.ResultRepository
	scoring   ScoringService
	records   SessionRecordStore
	pending   PendingResultStore

	budget time.Duration
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*activeSession

	timerCtx    context.Context
	timerCancel context.CancelFunc
}

// SessionOption configures the service.
type SessionOption func(*testSessionService)

// WithSessionClock injects a deterministic clock for tests.
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *testSessionService) { s.now = now }
}

// NewTestSessionService wires the session state machine.
func NewTestSessionService(
	questions domain.QuestionRepository,
	results domain.ResultRepository,
	scoring ScoringService,
	records SessionRecordStore,
	pending PendingResultStore,
	budget time.Duration,
	opts ...SessionOption,
) TestSessionService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &testSessionService{
		questions:   questions,
		results:     results,
		scoring:     scoring,
		records:     records,
		pending:     pending,
		budget:      budget,
		now:         time.Now,
		sessions:    make(map[string]*activeSession),
		timerCtx:    ctx,
		timerCancel: cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *testSessionService) StartTest(ctx context.Context, sessionID string) (*dto.SessionSnapshot, error) {
	if sessionID == "" {
		sessionID = util.NewULID()
	}
	session := s.getOrCreate(sessionID)
	session.mu.Lock()
	defer session.mu.Unlock()

	next, err := domain.Apply(session.state, domain.StartRequested{})
	if err != nil {
		return nil, err
	}
	session.state = next

	questions, err := s.questions.GetActiveQuestions(ctx)
	if err != nil {
		session.state, _ = domain.Apply(session.state, domain.LoadFailed{Message: "Failed to load test questions"})
		logger.Get().Error("Failed to load questions for new attempt", zap.Error(err), zap.String("sessionID", sessionID))
		return nil, domain.NewInternalError("Failed to load test questions", err)
	}

	startTime := s.now()
	session.state, _ = domain.Apply(session.state, domain.QuestionsLoaded{Questions: questions, StartTime: startTime})
	session.budgetSeconds = int64(s.budget.Seconds())

	if err := s.persistRecord(ctx, sessionID, session, false); err != nil {
		// The attempt still works in memory; it just won't survive a restart.
		logger.Get().Warn("Failed to persist fresh session record", zap.Error(err), zap.String("sessionID", sessionID))
	}

	s.startTimer(sessionID, session, startTime)

	logger.Get().Info("Test attempt started",
		zap.String("sessionID", sessionID),
		zap.Int("questions", len(questions)),
		zap.Int64("budgetSeconds", session.budgetSeconds),
	)
	return s.snapshot(sessionID, session, 0), nil
}

func (s *testSessionService) GetSession(ctx context.Context, sessionID string, pageIndex int) (*dto.SessionSnapshot, error) {
	session, err := s.getOrRehydrate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return s.snapshot(sessionID, session, pageIndex), nil
}

func (s *testSessionService) SetAnswer(ctx context.Context, req *dto.SetAnswerRequest) (*dto.SessionSnapshot, error) {
	session, err := s.getOrRehydrate(ctx, req.SessionID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	next, err := domain.Apply(session.state, domain.AnswerSet{QuestionID: req.QuestionID, Selected: req.Selected})
	if err != nil {
		return nil, err
	}
	session.state = next

	if err := s.persistRecord(ctx, req.SessionID, session, false); err != nil {
		logger.Get().Warn("Failed to persist answer snapshot", zap.Error(err), zap.String("sessionID", req.SessionID))
	}
	return s.snapshot(req.SessionID, session, req.PageIndex), nil
}

func (s *testSessionService) SubmitTest(ctx context.Context, sessionID, userID string) (*dto.SessionSnapshot, error) {
	session, err := s.getOrRehydrate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	next, err := domain.Apply(session.state, domain.SubmitRequested{})
	if err != nil {
		// Validation failures (incomplete submission, wrong state) surface
		// before any remote call is made.
		return nil, err
	}
	session.state = next

	result, err := s.scoreCurrent(ctx, session)
	if err == nil {
		result.ID = util.NewULID()
		result.UserID = userID
		err = s.results.SaveResult(ctx, result)
	}
	if err != nil {
		session.state, _ = domain.Apply(session.state, domain.SubmitFailed{Message: "Failed to submit test result"})
		logger.Get().Error("Authenticated submission failed", zap.Error(err), zap.String("sessionID", sessionID), zap.String("userID", userID))
		return nil, domain.NewInternalError("Failed to submit test result", err)
	}

	session.state, _ = domain.Apply(session.state, domain.SubmitSucceeded{Result: result})
	s.stopTimer(session)

	if err := s.records.Clear(ctx, sessionID); err != nil {
		logger.Get().Error("Failed to clear session record after submission", zap.Error(err), zap.String("sessionID", sessionID))
	}
	s.evict(sessionID)

	logger.Get().Info("Test submitted",
		zap.String("sessionID", sessionID),
		zap.String("userID", userID),
		zap.Int("iqScore", result.IQScore),
	)
	return s.snapshot(sessionID, session, 0), nil
}

func (s *testSessionService) SubmitTestGuest(ctx context.Context, sessionID string) (*dto.SessionSnapshot, error) {
	session, err := s.getOrRehydrate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()

	next, err := domain.Apply(session.state, domain.SubmitRequested{})
	if err != nil {
		return nil, err
	}
	session.state = next

	if err := s.submitGuestLocked(ctx, sessionID, session); err != nil {
		return nil, err
	}
	return s.snapshot(sessionID, session, 0), nil
}

// submitGuestLocked scores the current state and parks the result in the
// pending store. The session must already be in Submitting and locked.
func (s *testSessionService) submitGuestLocked(ctx context.Context, sessionID string, session *activeSession) error {
	result, err := s.scoreCurrent(ctx, session)
	if err == nil {
		result.ID = util.NewULID()
		err = s.pending.Put(ctx, sessionID, result)
	}
	if err != nil {
		session.state, _ = domain.Apply(session.state, domain.SubmitFailed{Message: "Failed to submit test result"})
		logger.Get().Error("Guest submission failed", zap.Error(err), zap.String("sessionID", sessionID))
		return domain.NewInternalError("Failed to submit test result", err)
	}

	session.state, _ = domain.Apply(session.state, domain.SubmitSucceeded{Result: result})
	s.stopTimer(session)

	// The record stays, flagged completed, until reconciliation claims it.
	// The in-memory entry is dropped; later snapshots rehydrate from it.
	if err := s.persistRecord(ctx, sessionID, session, true); err != nil {
		logger.Get().Error("Failed to flag session record as completed", zap.Error(err), zap.String("sessionID", sessionID))
	}
	s.evict(sessionID)

	logger.Get().Info("Guest test submitted, result pending claim",
		zap.String("sessionID", sessionID),
		zap.Int("iqScore", result.IQScore),
	)
	return nil
}

func (s *testSessionService) ResetTest(ctx context.Context, sessionID string) error {
	session := s.getOrCreate(sessionID)
	session.mu.Lock()
	defer session.mu.Unlock()

	s.stopTimer(session)
	session.state, _ = domain.Apply(session.state, domain.Reset{})

	if err := s.records.Clear(ctx, sessionID); err != nil {
		return err
	}
	s.evict(sessionID)
	logger.Get().Info("Test attempt reset", zap.String("sessionID", sessionID))
	return nil
}

func (s *testSessionService) Shutdown() {
	s.timerCancel()
	s.mu.Lock()
	sessions := make([]*activeSession, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.Unlock()
	for _, session := range sessions {
		session.mu.Lock()
		s.stopTimer(session)
		session.mu.Unlock()
	}
}

// evict drops the in-memory entry of a finished attempt. Anything that still
// matters survives in the record store and rehydrates on the next request.
func (s *testSessionService) evict(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

func (s *testSessionService) getOrCreate(sessionID string) *activeSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[sessionID]; ok {
		return session
	}
	session := &activeSession{state: domain.NewSessionState()}
	s.sessions[sessionID] = session
	return session
}

// getOrRehydrate returns the in-memory session, rebuilding it from the record
// store when the process has restarted since the attempt began.
func (s *testSessionService) getOrRehydrate(ctx context.Context, sessionID string) (*activeSession, error) {
	if sessionID == "" {
		return nil, domain.NewInvalidInputError("session id is required")
	}

	s.mu.Lock()
	if session, ok := s.sessions[sessionID]; ok {
		s.mu.Unlock()
		return session, nil
	}
	s.mu.Unlock()

	record, err := s.records.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionRecordNotFound) {
			// Unknown session: answer with a transient idle session instead of
			// allocating a map entry, so probing arbitrary ids cannot grow
			// memory. StartTest is what registers a session.
			return &activeSession{state: domain.NewSessionState()}, nil
		}
		return nil, err
	}

	session := s.getOrCreate(sessionID)
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.state.Status != domain.StatusIdle {
		// Another request rehydrated it first.
		return session, nil
	}

	if record.Completed {
		// Submitted as guest, still waiting to be claimed. The scored result
		// lives in the pending store; reconciliation owns the next step.
		session.state.Status = domain.StatusCompleted
		session.budgetSeconds = record.TimerBudgetSeconds
		return session, nil
	}

	questions, err := s.questions.GetActiveQuestions(ctx)
	if err != nil {
		return nil, domain.NewInternalError("Failed to load test questions", err)
	}

	// Keep only answers that still reference a live question; anything else
	// is stale data from a changed question bank.
	answers := domain.AnswerMap{}
	for _, q := range questions {
		if selected, ok := record.Answers[q.ID]; ok && selected >= 0 && selected < len(q.Options) {
			answers[q.ID] = selected
		}
	}

	session.state = domain.SessionState{
		Status:    domain.StatusInProgress,
		Questions: questions,
		Answers:   answers,
		StartTime: record.TimerEpoch,
	}
	session.budgetSeconds = record.TimerBudgetSeconds

	// Elapsed wall-clock time keeps counting against the budget across the
	// restart; the timer picks up from the persisted epoch.
	s.startTimer(sessionID, session, record.TimerEpoch)

	logger.Get().Info("Session rehydrated from record store",
		zap.String("sessionID", sessionID),
		zap.Int("answers", len(answers)),
	)
	return session, nil
}

func (s *testSessionService) scoreCurrent(ctx context.Context, session *activeSession) (*domain.TestResult, error) {
	key, err := s.questions.GetAnswerKey(ctx)
	if err != nil {
		return nil, err
	}
	elapsed := domain.ElapsedSeconds(session.state, s.now())
	answers := domain.OrderedAnswers(session.state)
	return s.scoring.Score(answers, key, len(session.state.Questions), elapsed), nil
}

func (s *testSessionService) persistRecord(ctx context.Context, sessionID string, session *activeSession, completed bool) error {
	answers := make(map[string]int, len(session.state.Answers))
	for id, selected := range session.state.Answers {
		answers[id] = selected
	}
	return s.records.Save(ctx, &PersistedSessionRecord{
		SessionID:          sessionID,
		Answers:            answers,
		Completed:          completed,
		TimerBudgetSeconds: session.budgetSeconds,
		TimerEpoch:         session.state.StartTime,
	})
}

func (s *testSessionService) startTimer(sessionID string, session *activeSession, epoch time.Time) {
	s.stopTimer(session)
	timer := NewSessionTimer(
		session.budgetSeconds,
		epoch,
		func(level domain.WarningLevel, remaining int64) {
			logger.Get().Info("Countdown warning",
				zap.String("sessionID", sessionID),
				zap.String("level", string(level)),
				zap.Int64("remaining", remaining),
			)
		},
		func() { s.autoSubmit(sessionID) },
		WithClock(s.now),
	)
	timer.Start(s.timerCtx)
	session.timer = timer
}

func (s *testSessionService) stopTimer(session *activeSession) {
	if session.timer != nil {
		session.timer.Stop()
		session.timer = nil
	}
}

// autoSubmit is the expiry path: the timer latch guarantees it runs at most
// once per countdown, and the state check below makes it a no-op if a manual
// submission won the race.
func (s *testSessionService) autoSubmit(sessionID string) {
	s.mu.Lock()
	session, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.state.Status != domain.StatusInProgress {
		return
	}

	next, err := domain.Apply(session.state, domain.TimeExpired{})
	if err != nil {
		return
	}
	session.state = next

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.submitGuestLocked(ctx, sessionID, session); err != nil {
		logger.Get().Error("Auto-submit on expiry failed", zap.Error(err), zap.String("sessionID", sessionID))
	}
}

func (s *testSessionService) snapshot(sessionID string, session *activeSession, pageIndex int) *dto.SessionSnapshot {
	state := session.state

	answers := make(map[string]int, len(state.Answers))
	for id, selected := range state.Answers {
		answers[id] = selected
	}

	snap := &dto.SessionSnapshot{
		SessionID: sessionID,
		Status:    state.Status,
		Page:      domain.NewPageView(state, pageIndex),
		Answers:   answers,
		Result:    dto.NewResultResponse(state.Result),
		Error:     state.ErrorMessage,
	}

	if state.Status == domain.StatusInProgress || state.Status == domain.StatusSubmitting {
		remaining := domain.RemainingSeconds(session.budgetSeconds, state.StartTime, s.now())
		snap.Timer = &dto.TimerView{
			RemainingSeconds: remaining,
			BudgetSeconds:    session.budgetSeconds,
			Warning:          domain.WarningLevelFor(remaining),
		}
	}
	return snap
}
