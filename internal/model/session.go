package model

import "fmt"

// Phase enumerates the mutually exclusive states of an exam session.
type Phase string

const (
	PhaseInQuestion Phase = "in_question"
	PhaseInReview   Phase = "in_review"
	PhaseOnBreak    Phase = "on_break"
	PhaseFinished   Phase = "finished"
)

// QuestionKey addresses a question by (module, index). Using a composite
// struct key keeps the timing ledger and response store free of the
// key-type mismatches a stringly-typed map invites.
type QuestionKey struct {
	Module ModuleID `json:"module"`
	Index  int      `json:"index"`
}

func (k QuestionKey) String() string {
	return fmt.Sprintf("m%d/q%d", k.Module, k.Index)
}

// Response holds a student's current answer for one question.
// A Response is never stored with an empty value; absence means unanswered.
type Response struct {
	Type  QuestionType `json:"type"`
	Value string       `json:"value"`
}

// QuestionStatus classifies a question index for the review grid and the
// navigation popover. Priority: current > flagged > answered > unanswered.
type QuestionStatus string

const (
	StatusCurrent    QuestionStatus = "current"
	StatusFlagged    QuestionStatus = "flagged"
	StatusAnswered   QuestionStatus = "answered"
	StatusUnanswered QuestionStatus = "unanswered"
)

// SessionView is the read-model of a session exposed to the rendering surface.
type SessionView struct {
	AttemptID        string           `json:"attempt_id"`
	Phase            Phase            `json:"phase"`
	Module           ModuleID         `json:"module"`
	ModuleLabel      string           `json:"module_label"`
	QuestionIndex    int              `json:"question_index"`
	QuestionCount    int              `json:"question_count"`
	RemainingSeconds int              `json:"remaining_seconds"`
	Flagged          bool             `json:"flagged"`
	Statuses         []QuestionStatus `json:"statuses"`
	AnsweredCount    int              `json:"answered_count"`
	Response         *Response        `json:"response,omitempty"`
}

// SubmitResponseRequest records or clears an answer for (module, index).
// An empty (or whitespace-only) value clears the stored response.
type SubmitResponseRequest struct {
	Module int    `json:"module" binding:"required,min=1,max=4"`
	Index  *int   `json:"index" binding:"required,min=0"`
	Type   string `json:"type" binding:"required,oneof=MCQ SPR"`
	Value  string `json:"value"`
}

// NavigateRequest moves the session to a question within the current module.
type NavigateRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

// ToggleFlagRequest toggles the mark-for-review flag on a question of the
// current module.
type ToggleFlagRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}
