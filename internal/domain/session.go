package domain

import (
	"time"
)

// Status is the lifecycle state of a test session.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusLoading    Status = "loading"
	StatusInProgress Status = "in_progress"
	StatusSubmitting Status = "submitting"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// AnswerMap maps a question id to the selected option index. A question id
// that is absent from the map has never been answered (or was deliberately
// cleared); there is no "answered with nothing" value.
type AnswerMap map[string]int

// Clone returns an independent copy of the map.
func (m AnswerMap) Clone() AnswerMap {
	out := make(AnswerMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SessionState is the full state of one test attempt. Values are treated as
// immutable: Apply returns a new state rather than mutating in place, so a
// failed transition leaves the previous state untouched.
type SessionState struct {
	Status       Status
	Questions    []Question
	Answers      AnswerMap
	StartTime    time.Time
	Result       *TestResult
	ErrorMessage string
}

// NewSessionState returns the empty Idle state.
func NewSessionState() SessionState {
	return SessionState{Status: StatusIdle, Answers: AnswerMap{}}
}

// Action is one element of the tagged union consumed by Apply. Every
// lifecycle transition of the session goes through exactly one Action, which
// keeps the transition table exhaustively testable.
type Action interface {
	actionName() string
}

// StartRequested begins loading questions for a fresh attempt.
type StartRequested struct{}

// QuestionsLoaded delivers the fetched question set.
type QuestionsLoaded struct {
	Questions []Question
	StartTime time.Time
}

// LoadFailed reports a question-fetch failure.
type LoadFailed struct{ Message string }

// AnswerSet upserts or clears one answer. A nil Selected is a deliberate
// clear, distinct from never having answered.
type AnswerSet struct {
	QuestionID string
	Selected   *int
}

// SubmitRequested moves a complete session into Submitting.
type SubmitRequested struct{}

// TimeExpired forces submission when the countdown hits zero, regardless of
// completeness.
type TimeExpired struct{}

// SubmitSucceeded stores the scored result.
type SubmitSucceeded struct{ Result *TestResult }

// SubmitFailed returns the session to InProgress with the failure message so
// the taker can retry without losing answers.
type SubmitFailed struct{ Message string }

// Reset abandons the attempt from any state.
type Reset struct{}

func (StartRequested) actionName() string  { return "StartRequested" }
func (QuestionsLoaded) actionName() string { return "QuestionsLoaded" }
func (LoadFailed) actionName() string      { return "LoadFailed" }
func (AnswerSet) actionName() string       { return "AnswerSet" }
func (SubmitRequested) actionName() string { return "SubmitRequested" }
func (TimeExpired) actionName() string     { return "TimeExpired" }
func (SubmitSucceeded) actionName() string { return "SubmitSucceeded" }
func (SubmitFailed) actionName() string    { return "SubmitFailed" }
func (Reset) actionName() string           { return "Reset" }

// Apply is the single pure transition function of the session state machine.
// It returns the next state, or an error when the action is not allowed in
// the current state; the input state is never modified.
func Apply(state SessionState, action Action) (SessionState, error) {
	switch a := action.(type) {
	case StartRequested:
		if state.Status != StatusIdle && state.Status != StatusError {
			return state, NewInvalidTransitionError(state.Status, a.actionName())
		}
		next := NewSessionState()
		next.Status = StatusLoading
		return next, nil

	case QuestionsLoaded:
		if state.Status != StatusLoading {
			return state, NewInvalidTransitionError(state.Status, a.actionName())
		}
		next := state
		next.Status = StatusInProgress
		next.Questions = a.Questions
		next.Answers = AnswerMap{}
		next.StartTime = a.StartTime
		next.ErrorMessage = ""
		return next, nil

	case LoadFailed:
		if state.Status != StatusLoading {
			return state, NewInvalidTransitionError(state.Status, a.actionName())
		}
		next := state
		next.Status = StatusError
		next.ErrorMessage = a.Message
		return next, nil

	case AnswerSet:
		if state.Status != StatusInProgress {
			return state, NewInvalidTransitionError(state.Status, a.actionName())
		}
		question := findQuestion(state.Questions, a.QuestionID)
		if question == nil {
			return state, NewQuestionNotFoundError(a.QuestionID)
		}
		if a.Selected != nil && (*a.Selected < 0 || *a.Selected >= len(question.Options)) {
			return state, NewError(CodeInvalidAnswer, "selected option index is out of range", nil)
		}
		next := state
		next.Answers = state.Answers.Clone()
		if a.Selected == nil {
			delete(next.Answers, a.QuestionID)
		} else {
			next.Answers[a.QuestionID] = *a.Selected
		}
		return next, nil

	case SubmitRequested:
		if state.Status != StatusInProgress {
			return state, NewInvalidTransitionError(state.Status, a.actionName())
		}
		if !IsComplete(state) {
			return state, NewSubmissionIncompleteError(len(state.Answers), len(state.Questions))
		}
		next := state
		next.Status = StatusSubmitting
		next.ErrorMessage = ""
		return next, nil

	case TimeExpired:
		if state.Status != StatusInProgress {
			return state, NewInvalidTransitionError(state.Status, a.actionName())
		}
		next := state
		next.Status = StatusSubmitting
		next.ErrorMessage = ""
		return next, nil

	case SubmitSucceeded:
		if state.Status != StatusSubmitting {
			return state, NewInvalidTransitionError(state.Status, a.actionName())
		}
		next := state
		next.Status = StatusCompleted
		next.Result = a.Result
		next.ErrorMessage = ""
		return next, nil

	case SubmitFailed:
		if state.Status != StatusSubmitting {
			return state, NewInvalidTransitionError(state.Status, a.actionName())
		}
		next := state
		next.Status = StatusInProgress
		next.ErrorMessage = a.Message
		return next, nil

	case Reset:
		return NewSessionState(), nil

	default:
		return state, NewInternalError("unknown session action", nil)
	}
}

func findQuestion(questions []Question, id string) *Question {
	for i := range questions {
		if questions[i].ID == id {
			return &questions[i]
		}
	}
	return nil
}

// IsComplete reports whether every question has a present answer.
func IsComplete(state SessionState) bool {
	if len(state.Questions) == 0 {
		return false
	}
	for _, q := range state.Questions {
		if _, ok := state.Answers[q.ID]; !ok {
			return false
		}
	}
	return true
}

// Progress returns the answered percentage, rounded to the nearest integer.
// An empty question set yields 0.
func Progress(state SessionState) int {
	total := len(state.Questions)
	if total == 0 {
		return 0
	}
	answered := 0
	for _, q := range state.Questions {
		if _, ok := state.Answers[q.ID]; ok {
			answered++
		}
	}
	return int(float64(answered)/float64(total)*100 + 0.5)
}

// ElapsedSeconds returns whole seconds since the session started.
func ElapsedSeconds(state SessionState, now time.Time) int {
	if state.StartTime.IsZero() {
		return 0
	}
	elapsed := int(now.Sub(state.StartTime).Seconds())
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

// OrderedAnswers flattens the answer map into question order for submission.
// Unanswered questions are skipped (relevant for forced expiry submissions).
func OrderedAnswers(state SessionState) []SubmittedAnswer {
	out := make([]SubmittedAnswer, 0, len(state.Answers))
	for _, q := range state.Questions {
		if selected, ok := state.Answers[q.ID]; ok {
			out = append(out, SubmittedAnswer{QuestionID: q.ID, SelectedAnswer: selected})
		}
	}
	return out
}
