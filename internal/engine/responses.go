package engine

import (
	"strings"

	"github.com/primeivy/portal-backend/internal/model"
)

// ResponseStore records the student's current answer per question key.
// An entry is never stored with an empty value: setting a blank value
// removes the entry, so "answered" is exactly "entry present".
//
// The stored type is a tag only; it is not validated against the question's
// actual type.
type ResponseStore struct {
	entries map[model.QuestionKey]model.Response
}

// NewResponseStore creates an empty ResponseStore.
func NewResponseStore() *ResponseStore {
	return &ResponseStore{entries: make(map[model.QuestionKey]model.Response)}
}

// Set stores or overwrites the response for key. A value that trims to the
// empty string removes any existing entry instead.
func (s *ResponseStore) Set(key model.QuestionKey, typ model.QuestionType, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		delete(s.entries, key)
		return
	}
	s.entries[key] = model.Response{Type: typ, Value: value}
}

// Get returns the stored response for key, if present.
func (s *ResponseStore) Get(key model.QuestionKey) (model.Response, bool) {
	r, ok := s.entries[key]
	return r, ok
}

// IsAnswered reports whether a response exists for key.
func (s *ResponseStore) IsAnswered(key model.QuestionKey) bool {
	_, ok := s.entries[key]
	return ok
}

// Len returns the number of stored responses.
func (s *ResponseStore) Len() int { return len(s.entries) }

// Snapshot returns a copy of all stored responses.
func (s *ResponseStore) Snapshot() map[model.QuestionKey]model.Response {
	out := make(map[model.QuestionKey]model.Response, len(s.entries))
	for k, v := range s.entries {
		out[k] = v
	}
	return out
}
