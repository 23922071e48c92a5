package engine

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/primeivy/portal-backend/internal/model"
)

// BreakDuration is the single scheduled break, taken after module 2.
const BreakDuration = 10 * time.Minute

// Session is the exam state machine for one attempt. It owns module
// sequencing, the module/break deadlines, review and navigation
// transitions, and the per-question stores.
//
// A Session is not safe for concurrent use; callers serialize access
// (the service layer holds one mutex per attempt).
type Session struct {
	clock Clock
	log   zerolog.Logger

	counts map[model.ModuleID]int

	module         model.ModuleID
	index          int
	moduleDeadline time.Time
	onBreak        bool
	breakDeadline  time.Time
	viewingReview  bool
	finished       bool

	startedAt  time.Time
	finishedAt time.Time

	tracker   *Tracker
	responses *ResponseStore
	flags     *FlagSet
}

// NewSession starts an attempt at module 1, question 0, with the module
// timer already running.
func NewSession(counts map[model.ModuleID]int, clock Clock, log zerolog.Logger) *Session {
	s := &Session{
		clock:  clock,
		log:    log.With().Str("component", "session").Logger(),
		counts: counts,
	}
	s.reset()
	return s
}

func (s *Session) reset() {
	now := s.clock.Now()
	s.tracker = NewTracker(s.clock)
	s.responses = NewResponseStore()
	s.flags = NewFlagSet()
	s.onBreak = false
	s.viewingReview = false
	s.finished = false
	s.startedAt = now
	s.finishedAt = time.Time{}
	s.startModule(model.ModuleRW1)
}

func (s *Session) startModule(m model.ModuleID) {
	now := s.clock.Now()
	s.module = m
	s.index = 0
	s.onBreak = false
	s.viewingReview = false
	s.moduleDeadline = now.Add(m.Duration())
	s.tracker.Start(model.QuestionKey{Module: m, Index: 0})
	s.log.Debug().Int("module", int(m)).Time("deadline", s.moduleDeadline).Msg("module started")
}

// Phase returns the single phase the session is in.
func (s *Session) Phase() model.Phase {
	switch {
	case s.finished:
		return model.PhaseFinished
	case s.onBreak:
		return model.PhaseOnBreak
	case s.viewingReview:
		return model.PhaseInReview
	default:
		return model.PhaseInQuestion
	}
}

// Module returns the current module.
func (s *Session) Module() model.ModuleID { return s.module }

// Index returns the current question index within the module.
func (s *Session) Index() int { return s.index }

// CurrentKey returns the (module, index) key of the current question.
func (s *Session) CurrentKey() model.QuestionKey {
	return model.QuestionKey{Module: s.module, Index: s.index}
}

// StartedAt returns when the attempt began.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// FinishedAt returns the completion timestamp; zero until finished.
func (s *Session) FinishedAt() time.Time { return s.finishedAt }

// Remaining returns the time left on the module timer, or on the break
// countdown while on break. Never negative.
func (s *Session) Remaining() time.Duration {
	if s.finished {
		return 0
	}
	deadline := s.moduleDeadline
	if s.onBreak {
		deadline = s.breakDeadline
	}
	rem := deadline.Sub(s.clock.Now())
	if rem < 0 {
		rem = 0
	}
	return rem
}

// QuestionCount returns the number of questions in the current module.
func (s *Session) QuestionCount() int { return s.counts[s.module] }

// NavigateTo moves to question i of the current module, settling the timer
// of the question being left and starting the timer of the target. Out of
// range indices are rejected silently. Works both from a question and from
// the review grid (which clears the review flag).
func (s *Session) NavigateTo(i int) bool {
	if s.finished || s.onBreak {
		return false
	}
	if i < 0 || i >= s.counts[s.module] {
		return false
	}
	s.tracker.Start(model.QuestionKey{Module: s.module, Index: i})
	s.index = i
	s.viewingReview = false
	return true
}

// Advance moves to the next question, or to the review grid when the
// current question is the module's last.
func (s *Session) Advance() {
	if s.finished || s.onBreak || s.viewingReview {
		return
	}
	if s.index >= s.counts[s.module]-1 {
		s.enterReview()
		return
	}
	s.NavigateTo(s.index + 1)
}

// Back moves to the previous question, if any.
func (s *Session) Back() {
	if s.finished || s.onBreak || s.viewingReview {
		return
	}
	s.NavigateTo(s.index - 1)
}

// GoToReview opens the review grid for the current module.
func (s *Session) GoToReview() {
	if s.finished || s.onBreak || s.viewingReview {
		return
	}
	s.enterReview()
}

func (s *Session) enterReview() {
	s.tracker.Stop()
	s.viewingReview = true
	s.log.Debug().Int("module", int(s.module)).Msg("entered review")
}

// CheckDeadline is the 1 Hz poll hook. While in a question past the module
// deadline it forces the transition to review exactly once; the review flag
// guards re-entry so repeated ticks are no-ops. While on break past the
// break deadline it resumes testing at module 3. Returns whether a
// transition fired.
func (s *Session) CheckDeadline() bool {
	if s.finished {
		return false
	}
	now := s.clock.Now()
	if s.onBreak {
		if now.Before(s.breakDeadline) {
			return false
		}
		s.log.Info().Msg("break over, resuming")
		s.startModule(model.ModuleMath1)
		return true
	}
	if s.viewingReview || now.Before(s.moduleDeadline) {
		return false
	}
	s.log.Info().Int("module", int(s.module)).Msg("module time expired")
	s.enterReview()
	return true
}

// SubmitModule completes the current module from the review grid.
// Module 2 leads into the break, module 4 finishes the exam, modules 1 and
// 3 roll straight into the next module with a fresh deadline. Ignored
// outside of review.
func (s *Session) SubmitModule() {
	if s.finished || s.onBreak || !s.viewingReview {
		return
	}
	s.tracker.Stop()
	switch s.module {
	case model.ModuleRW2:
		s.viewingReview = false
		s.onBreak = true
		s.breakDeadline = s.clock.Now().Add(BreakDuration)
		s.log.Info().Time("break_until", s.breakDeadline).Msg("module 2 submitted, on break")
	case model.ModuleMath2:
		s.viewingReview = false
		s.finished = true
		s.finishedAt = s.clock.Now()
		s.log.Info().Time("finished_at", s.finishedAt).Msg("exam finished")
	default:
		s.log.Info().Int("module", int(s.module)).Msg("module submitted")
		s.startModule(s.module + 1)
	}
}

// ResumeFromBreak ends the break early and starts module 3.
func (s *Session) ResumeFromBreak() {
	if !s.onBreak {
		return
	}
	s.log.Info().Msg("resuming from break")
	s.startModule(model.ModuleMath1)
}

// Retake atomically resets session state, responses, flags, and the timing
// ledger, restarting at module 1 question 0.
func (s *Session) Retake() {
	s.log.Info().Msg("retake: clearing attempt state")
	s.reset()
}

// Classify returns the review-grid status of question i in the current
// module, with priority current > flagged > answered > unanswered. The
// "current" status applies only while in a question, not in review.
func (s *Session) Classify(i int) model.QuestionStatus {
	key := model.QuestionKey{Module: s.module, Index: i}
	if s.Phase() == model.PhaseInQuestion && i == s.index {
		return model.StatusCurrent
	}
	if s.flags.Flagged(key) {
		return model.StatusFlagged
	}
	if s.responses.IsAnswered(key) {
		return model.StatusAnswered
	}
	return model.StatusUnanswered
}

// Statuses classifies every question of the current module.
func (s *Session) Statuses() []model.QuestionStatus {
	out := make([]model.QuestionStatus, s.counts[s.module])
	for i := range out {
		out[i] = s.Classify(i)
	}
	return out
}

// Tracker exposes the timing ledger.
func (s *Session) Tracker() *Tracker { return s.tracker }

// Responses exposes the response store.
func (s *Session) Responses() *ResponseStore { return s.responses }

// Flags exposes the review flag set.
func (s *Session) Flags() *FlagSet { return s.flags }
