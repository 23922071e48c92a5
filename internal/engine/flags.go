package engine

import "github.com/primeivy/portal-backend/internal/model"

// FlagSet tracks which questions are marked for review. Flags default to
// false and are never cleared automatically, only by the student or a retake.
type FlagSet struct {
	marks map[model.QuestionKey]bool
}

// NewFlagSet creates an empty FlagSet.
func NewFlagSet() *FlagSet {
	return &FlagSet{marks: make(map[model.QuestionKey]bool)}
}

// Set marks or unmarks key.
func (f *FlagSet) Set(key model.QuestionKey, flagged bool) {
	if !flagged {
		delete(f.marks, key)
		return
	}
	f.marks[key] = true
}

// Toggle flips the flag for key and returns the new state.
func (f *FlagSet) Toggle(key model.QuestionKey) bool {
	next := !f.marks[key]
	f.Set(key, next)
	return next
}

// Flagged reports whether key is marked for review.
func (f *FlagSet) Flagged(key model.QuestionKey) bool {
	return f.marks[key]
}

// Snapshot returns a copy of all set flags.
func (f *FlagSet) Snapshot() map[model.QuestionKey]bool {
	out := make(map[model.QuestionKey]bool, len(f.marks))
	for k := range f.marks {
		out[k] = true
	}
	return out
}
