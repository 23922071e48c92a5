package engine

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/primeivy/portal-backend/internal/model"
)

// fakeClock is a manually-advanced clock for deterministic timing tests.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 8, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func (c *fakeClock) AdvanceSeconds(s float64) {
	c.Advance(time.Duration(s * float64(time.Second)))
}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestTrackerAccumulatesAcrossVisits(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock)
	key := model.QuestionKey{Module: 1, Index: 3}
	other := model.QuestionKey{Module: 1, Index: 4}

	tr.Start(key)
	clock.AdvanceSeconds(12.4)
	tr.Start(other) // leaving (1,3) settles it
	clock.AdvanceSeconds(30)
	tr.Start(key) // back to (1,3)
	clock.AdvanceSeconds(5.1)
	tr.Stop()

	if got := tr.Settled(key); !almostEqual(got, 17.5) {
		t.Fatalf("settled(1,3) = %v, want 17.5", got)
	}
	if got := tr.Settled(other); !almostEqual(got, 30) {
		t.Fatalf("settled(1,4) = %v, want 30", got)
	}
}

func TestTrackerStartIdempotentOnActiveKey(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock)
	key := model.QuestionKey{Module: 2, Index: 0}

	tr.Start(key)
	clock.AdvanceSeconds(4)
	tr.Start(key) // must not settle or reset the running interval
	clock.AdvanceSeconds(6)
	tr.Stop()

	if got := tr.Settled(key); !almostEqual(got, 10) {
		t.Fatalf("settled = %v, want 10 (no double-count, no reset)", got)
	}
}

func TestTrackerStopWithoutActiveIsNoop(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock)

	tr.Stop()
	tr.Stop()

	if _, active := tr.Active(); active {
		t.Fatal("no key should be active")
	}
	if len(tr.Snapshot()) != 0 {
		t.Fatal("ledger should be empty")
	}
}

func TestTrackerElapsedIncludesAccruingTime(t *testing.T) {
	clock := newFakeClock()
	tr := NewTracker(clock)
	key := model.QuestionKey{Module: 3, Index: 7}

	tr.Start(key)
	clock.AdvanceSeconds(2.5)
	tr.Stop()
	tr.Start(key)
	clock.AdvanceSeconds(1.5)

	if got := tr.Elapsed(key); !almostEqual(got, 4) {
		t.Fatalf("elapsed = %v, want 4 (settled 2.5 + accruing 1.5)", got)
	}
	if got := tr.Settled(key); !almostEqual(got, 2.5) {
		t.Fatalf("settled = %v, want 2.5", got)
	}
}

// TestTrackerConservation drives a long random start/stop/switch sequence
// and checks that the settled ledger accounts for exactly the wall-clock
// time each key was active.
func TestTrackerConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	clock := newFakeClock()
	tr := NewTracker(clock)

	keys := make([]model.QuestionKey, 0, 16)
	for m := model.ModuleID(1); m <= 4; m++ {
		for i := 0; i < 4; i++ {
			keys = append(keys, model.QuestionKey{Module: m, Index: i})
		}
	}

	want := make(map[model.QuestionKey]float64)
	var activeKey *model.QuestionKey

	for step := 0; step < 5000; step++ {
		dt := rng.Float64() * 9.7
		clock.AdvanceSeconds(dt)
		if activeKey != nil {
			want[*activeKey] += dt
		}

		switch rng.Intn(4) {
		case 0: // stop
			tr.Stop()
			activeKey = nil
		default: // switch / start (possibly the same key)
			k := keys[rng.Intn(len(keys))]
			tr.Start(k)
			activeKey = &k
		}
	}
	tr.Stop()

	got := tr.Snapshot()
	for _, k := range keys {
		if !almostEqual(got[k], want[k]) {
			t.Fatalf("key %v: settled %v, want %v", k, got[k], want[k])
		}
	}

	var total, wantTotal float64
	for _, v := range got {
		total += v
	}
	for _, v := range want {
		wantTotal += v
	}
	if !almostEqual(total, wantTotal) {
		t.Fatalf("total settled %v, want %v", total, wantTotal)
	}
}
