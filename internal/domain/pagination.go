package domain

// PageSize is the fixed number of questions shown per page.
const PageSize = 5

// PageView is a pure derivation of the pagination state for one page index.
// It only reads session state, so it can be recomputed on every snapshot
// without side effects.
type PageView struct {
	PageIndex       int        `json:"page_index"`
	TotalPages      int        `json:"total_pages"`
	Questions       []Question `json:"questions"`
	PageComplete    bool       `json:"page_complete"`
	CanAdvance      bool       `json:"can_advance"`
	CanRetreat      bool       `json:"can_retreat"`
	ProgressPercent int        `json:"progress_percent"`
}

// TotalPages returns ceil(n / PageSize); 0 for an empty question set.
func TotalPages(questionCount int) int {
	return (questionCount + PageSize - 1) / PageSize
}

// NewPageView derives the view for the given page index. Indexes outside the
// valid range are clamped.
func NewPageView(state SessionState, pageIndex int) PageView {
	total := TotalPages(len(state.Questions))
	if pageIndex < 0 {
		pageIndex = 0
	}
	if total > 0 && pageIndex > total-1 {
		pageIndex = total - 1
	}

	start := pageIndex * PageSize
	end := start + PageSize
	if end > len(state.Questions) {
		end = len(state.Questions)
	}
	var slice []Question
	if start < end {
		slice = state.Questions[start:end]
	}

	complete := len(slice) > 0
	for _, q := range slice {
		if _, ok := state.Answers[q.ID]; !ok {
			complete = false
			break
		}
	}

	return PageView{
		PageIndex:       pageIndex,
		TotalPages:      total,
		Questions:       slice,
		PageComplete:    complete,
		CanAdvance:      complete && pageIndex < total-1,
		CanRetreat:      pageIndex > 0,
		ProgressPercent: Progress(state),
	}
}
