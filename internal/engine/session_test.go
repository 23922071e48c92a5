package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/primeivy/portal-backend/internal/model"
)

func testCounts() map[model.ModuleID]int {
	return map[model.ModuleID]int{
		model.ModuleRW1:   4,
		model.ModuleRW2:   4,
		model.ModuleMath1: 3,
		model.ModuleMath2: 3,
	}
}

func newTestSession(clock Clock) *Session {
	return NewSession(testCounts(), clock, zerolog.Nop())
}

func TestSessionInitialState(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)

	if s.Phase() != model.PhaseInQuestion {
		t.Fatalf("phase = %v, want in_question", s.Phase())
	}
	if s.Module() != model.ModuleRW1 || s.Index() != 0 {
		t.Fatalf("position = (%d,%d), want (1,0)", s.Module(), s.Index())
	}
	if got := s.Remaining(); got != 32*time.Minute {
		t.Fatalf("remaining = %v, want 32m", got)
	}
	if active, ok := s.Tracker().Active(); !ok || active != (model.QuestionKey{Module: 1, Index: 0}) {
		t.Fatalf("active timer = (%v,%v), want (1,0)", active, ok)
	}
}

func TestSessionNavigateOutOfRangeIsNoop(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)

	for _, i := range []int{-1, 4, 99} {
		if s.NavigateTo(i) {
			t.Fatalf("NavigateTo(%d) should be rejected", i)
		}
	}
	if s.Index() != 0 || s.Phase() != model.PhaseInQuestion {
		t.Fatal("rejected navigation must not change state")
	}
}

func TestSessionNavigationSettlesTimers(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)

	clock.AdvanceSeconds(12.4)
	s.NavigateTo(3)
	clock.AdvanceSeconds(30)
	s.NavigateTo(0)
	clock.AdvanceSeconds(5.1)
	s.NavigateTo(1)

	if got := s.Tracker().Settled(model.QuestionKey{Module: 1, Index: 0}); !almostEqual(got, 17.5) {
		t.Fatalf("settled(1,0) = %v, want 17.5", got)
	}
}

func TestSessionAdvancePastLastEntersReview(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)

	s.NavigateTo(3) // last question of module 1
	s.Advance()

	if s.Phase() != model.PhaseInReview {
		t.Fatalf("phase = %v, want in_review", s.Phase())
	}
	if _, active := s.Tracker().Active(); active {
		t.Fatal("no timer may accrue in review")
	}

	// Selecting a question from the grid goes back to the question phase.
	if !s.NavigateTo(1) {
		t.Fatal("selecting from review should succeed")
	}
	if s.Phase() != model.PhaseInQuestion || s.Index() != 1 {
		t.Fatalf("state = (%v, %d), want (in_question, 1)", s.Phase(), s.Index())
	}
}

func TestSessionDeadlineForcesReviewOnce(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)

	if s.CheckDeadline() {
		t.Fatal("deadline must not fire with time remaining")
	}

	clock.Advance(32*time.Minute + time.Second)
	if !s.CheckDeadline() {
		t.Fatal("expired deadline should force review")
	}
	if s.Phase() != model.PhaseInReview {
		t.Fatalf("phase = %v, want in_review", s.Phase())
	}

	// Repeated polls after the forced transition are no-ops.
	for i := 0; i < 5; i++ {
		if s.CheckDeadline() {
			t.Fatal("poll after forced transition must be a no-op")
		}
	}
}

func TestSessionModuleTwoSubmitStartsBreak(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)

	s.GoToReview()
	s.SubmitModule() // module 1 -> 2
	if s.Module() != model.ModuleRW2 || s.Index() != 0 {
		t.Fatalf("position = (%d,%d), want (2,0)", s.Module(), s.Index())
	}
	if got := s.Remaining(); got != 32*time.Minute {
		t.Fatalf("module 2 remaining = %v, want 32m", got)
	}

	s.GoToReview()
	s.SubmitModule() // module 2 -> break
	if s.Phase() != model.PhaseOnBreak {
		t.Fatalf("phase = %v, want on_break", s.Phase())
	}
	if got := s.Remaining(); got != 10*time.Minute {
		t.Fatalf("break remaining = %v, want 600s", got)
	}

	// Submitting again during the break is not possible.
	s.SubmitModule()
	if s.Phase() != model.PhaseOnBreak {
		t.Fatal("submit during break must be ignored")
	}

	s.ResumeFromBreak()
	if s.Phase() != model.PhaseInQuestion || s.Module() != model.ModuleMath1 || s.Index() != 0 {
		t.Fatalf("after resume: (%v, %d, %d), want (in_question, 3, 0)", s.Phase(), s.Module(), s.Index())
	}
	if got := s.Remaining(); got != 35*time.Minute {
		t.Fatalf("module 3 remaining = %v, want 35m", got)
	}
}

func TestSessionBreakDeadlineAutoResumes(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)

	s.GoToReview()
	s.SubmitModule()
	s.GoToReview()
	s.SubmitModule() // on break

	clock.Advance(9 * time.Minute)
	if s.CheckDeadline() {
		t.Fatal("break should still be running")
	}
	clock.Advance(time.Minute)
	if !s.CheckDeadline() {
		t.Fatal("elapsed break should resume testing")
	}
	if s.Module() != model.ModuleMath1 || s.Phase() != model.PhaseInQuestion {
		t.Fatalf("after break: (%v, %d), want (in_question, 3)", s.Phase(), s.Module())
	}
}

func TestSessionModuleFourSubmitFinishes(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)

	for i := 0; i < 3; i++ { // modules 1, 2 and the break
		s.GoToReview()
		s.SubmitModule()
		s.ResumeFromBreak() // no-op unless on break
	}
	s.GoToReview()
	s.SubmitModule() // module 3 -> 4
	if s.Module() != model.ModuleMath2 {
		t.Fatalf("module = %d, want 4", s.Module())
	}

	clock.AdvanceSeconds(90)
	s.GoToReview()
	s.SubmitModule() // module 4 -> finished

	if s.Phase() != model.PhaseFinished {
		t.Fatalf("phase = %v, want finished", s.Phase())
	}
	if s.FinishedAt() != clock.Now() {
		t.Fatalf("finishedAt = %v, want %v", s.FinishedAt(), clock.Now())
	}
	if _, active := s.Tracker().Active(); active {
		t.Fatal("no timer may remain active after finishing")
	}
	if s.Remaining() != 0 {
		t.Fatal("remaining must be zero when finished")
	}
}

func TestSessionSubmitOutsideReviewIsIgnored(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)

	s.SubmitModule()
	if s.Module() != model.ModuleRW1 || s.Phase() != model.PhaseInQuestion {
		t.Fatal("submit while in a question must be ignored")
	}
}

func TestSessionRetakeClearsEverything(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)

	s.Responses().Set(model.QuestionKey{Module: 1, Index: 0}, model.QuestionTypeMCQ, "C")
	s.Flags().Set(model.QuestionKey{Module: 1, Index: 2}, true)
	clock.AdvanceSeconds(44)
	s.GoToReview()
	s.SubmitModule()
	s.GoToReview()
	s.SubmitModule() // on break

	s.Retake()

	if s.Phase() != model.PhaseInQuestion || s.Module() != model.ModuleRW1 || s.Index() != 0 {
		t.Fatalf("after retake: (%v, %d, %d), want (in_question, 1, 0)", s.Phase(), s.Module(), s.Index())
	}
	if s.Responses().Len() != 0 {
		t.Fatal("responses must be cleared")
	}
	if len(s.Flags().Snapshot()) != 0 {
		t.Fatal("flags must be cleared")
	}
	if len(s.Tracker().Snapshot()) != 0 {
		t.Fatal("timing ledger must be cleared")
	}
	if got := s.Remaining(); got != 32*time.Minute {
		t.Fatalf("remaining = %v, want a fresh 32m deadline", got)
	}
}

func TestSessionClassificationPriority(t *testing.T) {
	clock := newFakeClock()
	s := newTestSession(clock)

	s.Responses().Set(model.QuestionKey{Module: 1, Index: 0}, model.QuestionTypeMCQ, "A")
	s.Flags().Set(model.QuestionKey{Module: 1, Index: 0}, true)
	s.Responses().Set(model.QuestionKey{Module: 1, Index: 1}, model.QuestionTypeMCQ, "B")
	s.Flags().Set(model.QuestionKey{Module: 1, Index: 2}, true)

	// Current wins over flagged+answered.
	if got := s.Classify(0); got != model.StatusCurrent {
		t.Fatalf("classify(0) = %v, want current", got)
	}
	if got := s.Classify(1); got != model.StatusAnswered {
		t.Fatalf("classify(1) = %v, want answered", got)
	}
	if got := s.Classify(2); got != model.StatusFlagged {
		t.Fatalf("classify(2) = %v, want flagged", got)
	}
	if got := s.Classify(3); got != model.StatusUnanswered {
		t.Fatalf("classify(3) = %v, want unanswered", got)
	}

	// In review no question is "current": priority falls to flagged.
	s.GoToReview()
	if got := s.Classify(0); got != model.StatusFlagged {
		t.Fatalf("in review classify(0) = %v, want flagged", got)
	}
}

// After any sequence of engine operations at most one key accrues time.
func TestSessionExactlyOneActiveTimer(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	clock := newFakeClock()
	s := newTestSession(clock)

	for step := 0; step < 2000; step++ {
		clock.AdvanceSeconds(rng.Float64() * 40)
		switch rng.Intn(8) {
		case 0:
			s.NavigateTo(rng.Intn(6) - 1)
		case 1:
			s.Advance()
		case 2:
			s.Back()
		case 3:
			s.GoToReview()
		case 4:
			s.SubmitModule()
		case 5:
			s.ResumeFromBreak()
		case 6:
			s.CheckDeadline()
		case 7:
			if rng.Intn(50) == 0 {
				s.Retake()
			}
		}

		_, active := s.Tracker().Active()
		switch s.Phase() {
		case model.PhaseInQuestion:
			if !active {
				t.Fatalf("step %d: in question but no timer active", step)
			}
		default:
			if active {
				t.Fatalf("step %d: phase %v with an active timer", step, s.Phase())
			}
		}
	}
}
