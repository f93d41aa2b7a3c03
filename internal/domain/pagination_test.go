package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func questionsN(n int) []Question {
	out := make([]Question, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, Question{
			ID:      fmt.Sprintf("q%d", i+1),
			Points:  10,
			Prompt:  "prompt",
			Options: []string{"a", "b"},
		})
	}
	return out
}

func TestTotalPages(t *testing.T) {
	cases := []struct {
		questions int
		pages     int
	}{
		{0, 0},
		{1, 1},
		{5, 1},
		{6, 2},
		{10, 2},
		{11, 3},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.pages, TotalPages(tc.questions), "questions=%d", tc.questions)
	}
}

func TestNewPageViewSlicesAndGates(t *testing.T) {
	state := SessionState{
		Status:    StatusInProgress,
		Questions: questionsN(12),
		Answers:   AnswerMap{"q1": 0, "q2": 0, "q3": 0, "q4": 0, "q5": 0},
	}

	first := NewPageView(state, 0)
	assert.Equal(t, 3, first.TotalPages)
	assert.Len(t, first.Questions, 5)
	assert.True(t, first.PageComplete)
	assert.True(t, first.CanAdvance)
	assert.False(t, first.CanRetreat)

	second := NewPageView(state, 1)
	assert.Len(t, second.Questions, 5)
	assert.False(t, second.PageComplete)
	assert.False(t, second.CanAdvance)
	assert.True(t, second.CanRetreat)

	// The last page holds the remainder and can never advance.
	last := NewPageView(state, 2)
	assert.Len(t, last.Questions, 2)
	assert.False(t, last.CanAdvance)
}

func TestNewPageViewShortQuestionSet(t *testing.T) {
	// Two questions fit on a single page; a complete page with no next page
	// still cannot advance.
	state := SessionState{
		Status:    StatusInProgress,
		Questions: questionsN(2),
		Answers:   AnswerMap{"q1": 1, "q2": 0},
	}

	view := NewPageView(state, 0)
	assert.Equal(t, 1, view.TotalPages)
	assert.Len(t, view.Questions, 2)
	assert.True(t, view.PageComplete)
	assert.False(t, view.CanAdvance)
	assert.False(t, view.CanRetreat)
	assert.Equal(t, 100, view.ProgressPercent)
}

func TestNewPageViewClampsIndex(t *testing.T) {
	state := SessionState{Questions: questionsN(7), Answers: AnswerMap{}}

	assert.Equal(t, 0, NewPageView(state, -3).PageIndex)
	assert.Equal(t, 1, NewPageView(state, 99).PageIndex)
}

func TestNewPageViewEmptyQuestions(t *testing.T) {
	view := NewPageView(SessionState{Answers: AnswerMap{}}, 0)
	assert.Equal(t, 0, view.TotalPages)
	assert.Empty(t, view.Questions)
	// An empty page is not complete.
	assert.False(t, view.PageComplete)
	assert.False(t, view.CanAdvance)
}
