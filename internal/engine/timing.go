package engine

import (
	"time"

	"github.com/primeivy/portal-backend/internal/model"
)

// Tracker accumulates wall-clock seconds per question key. At most one key
// is "active" (accruing) at any instant; all other keys hold settled totals.
//
// Starting a key while a different key is active settles the prior key
// first, so no interval is ever dropped or double-counted. Starting the
// already-active key is a no-op.
type Tracker struct {
	clock     Clock
	ledger    map[model.QuestionKey]float64
	active    *model.QuestionKey
	startedAt time.Time
}

// NewTracker creates an empty Tracker.
func NewTracker(clock Clock) *Tracker {
	return &Tracker{
		clock:  clock,
		ledger: make(map[model.QuestionKey]float64),
	}
}

// Start begins accruing time against key, settling any other active key.
func (t *Tracker) Start(key model.QuestionKey) {
	if t.active != nil && *t.active == key {
		return // already timing this question
	}
	t.Stop()
	k := key
	t.active = &k
	t.startedAt = t.clock.Now()
}

// Stop settles the active key, if any, and clears the active pointer.
func (t *Tracker) Stop() {
	if t.active == nil {
		return
	}
	elapsed := t.clock.Now().Sub(t.startedAt).Seconds()
	if elapsed > 0 {
		t.ledger[*t.active] += elapsed
	}
	t.active = nil
}

// Elapsed returns the settled total for key plus any currently-accruing
// time if key is active.
func (t *Tracker) Elapsed(key model.QuestionKey) float64 {
	total := t.ledger[key]
	if t.active != nil && *t.active == key {
		if d := t.clock.Now().Sub(t.startedAt).Seconds(); d > 0 {
			total += d
		}
	}
	return total
}

// Settled returns only the committed total for key.
func (t *Tracker) Settled(key model.QuestionKey) float64 {
	return t.ledger[key]
}

// Active returns the currently accruing key, if any.
func (t *Tracker) Active() (model.QuestionKey, bool) {
	if t.active == nil {
		return model.QuestionKey{}, false
	}
	return *t.active, true
}

// Snapshot returns a copy of the settled ledger.
func (t *Tracker) Snapshot() map[model.QuestionKey]float64 {
	out := make(map[model.QuestionKey]float64, len(t.ledger))
	for k, v := range t.ledger {
		out[k] = v
	}
	return out
}
