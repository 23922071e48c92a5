package engine

import (
	"testing"

	"github.com/primeivy/portal-backend/internal/model"
)

func TestResponseStoreEmptyValueRemovesEntry(t *testing.T) {
	s := NewResponseStore()
	key := model.QuestionKey{Module: 1, Index: 5}

	s.Set(key, model.QuestionTypeMCQ, "B")
	if !s.IsAnswered(key) {
		t.Fatal("expected answered after set")
	}

	for _, blank := range []string{"", "   ", "\t\n"} {
		s.Set(key, model.QuestionTypeMCQ, "B")
		s.Set(key, model.QuestionTypeSPR, blank)
		if s.IsAnswered(key) {
			t.Fatalf("value %q should remove the entry", blank)
		}
		if _, ok := s.Get(key); ok {
			t.Fatalf("no entry should remain after clearing with %q", blank)
		}
	}
	if s.Len() != 0 {
		t.Fatalf("store should be empty, has %d entries", s.Len())
	}
}

func TestResponseStoreOverwrite(t *testing.T) {
	s := NewResponseStore()
	key := model.QuestionKey{Module: 3, Index: 0}

	s.Set(key, model.QuestionTypeSPR, " 3/4 ")
	r, ok := s.Get(key)
	if !ok || r.Value != "3/4" {
		t.Fatalf("got (%v, %v), want trimmed value 3/4", r, ok)
	}

	s.Set(key, model.QuestionTypeSPR, "0.75")
	r, _ = s.Get(key)
	if r.Value != "0.75" {
		t.Fatalf("got %q, want overwrite to 0.75", r.Value)
	}
}

// The stored type is a tag only; a type that disagrees with the question's
// actual type is accepted as-is.
func TestResponseStoreDoesNotValidateType(t *testing.T) {
	s := NewResponseStore()
	key := model.QuestionKey{Module: 2, Index: 1}

	s.Set(key, model.QuestionTypeSPR, "A")
	r, ok := s.Get(key)
	if !ok || r.Type != model.QuestionTypeSPR || r.Value != "A" {
		t.Fatalf("got (%v, %v), want SPR/A stored verbatim", r, ok)
	}
}

func TestFlagSetToggle(t *testing.T) {
	f := NewFlagSet()
	key := model.QuestionKey{Module: 4, Index: 9}

	if f.Flagged(key) {
		t.Fatal("flags default to false")
	}
	if !f.Toggle(key) {
		t.Fatal("first toggle should set the flag")
	}
	if f.Toggle(key) {
		t.Fatal("second toggle should clear the flag")
	}
	if len(f.Snapshot()) != 0 {
		t.Fatal("cleared flags should not linger in the snapshot")
	}
}
