package controller

// ViewKind names the overlay currently shown over a list.
type ViewKind int

const (
	ViewNone ViewKind = iota
	ViewCreate
	ViewEdit
	ViewDelete
	ViewDetail
	ViewFeedback
)

func (k ViewKind) String() string {
	switch k {
	case ViewCreate:
		return "create"
	case ViewEdit:
		return "edit"
	case ViewDelete:
		return "delete"
	case ViewDetail:
		return "detail"
	case ViewFeedback:
		return "feedback"
	}
	return "none"
}

type Feedback struct {
	Success bool
	Message string
}

// ViewState is the single overlay of a list. RecordID is set for edit,
// delete and detail; Feedback only for feedback.
type ViewState struct {
	Kind     ViewKind
	RecordID string
	Feedback *Feedback
}

func (v ViewState) Open() bool {
	return v.Kind != ViewNone
}

func createView() ViewState {
	return ViewState{Kind: ViewCreate}
}

func recordView(kind ViewKind, id string) ViewState {
	return ViewState{Kind: kind, RecordID: id}
}

func feedbackView(success bool, msg string) ViewState {
	return ViewState{Kind: ViewFeedback, Feedback: &Feedback{Success: success, Message: msg}}
}
