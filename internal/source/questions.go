package source

import "github.com/primeivy/portal-backend/internal/model"

// QuestionSet is an immutable snapshot of the workbook's questions,
// grouped by module in sheet order.
type QuestionSet struct {
	byModule     map[model.ModuleID][]model.Question
	hasAnswerKey bool
}

// HasAnswerKey reports whether the workbook carried a Correct_Answer
// column. Without it the exam is still usable but cannot be scored.
func (s *QuestionSet) HasAnswerKey() bool { return s.hasAnswerKey }

// Count returns the number of questions in module m.
func (s *QuestionSet) Count(m model.ModuleID) int { return len(s.byModule[m]) }

// Counts returns the per-module question counts.
func (s *QuestionSet) Counts() map[model.ModuleID]int {
	out := make(map[model.ModuleID]int, model.ModuleCount)
	for _, m := range model.Modules() {
		out[m] = len(s.byModule[m])
	}
	return out
}

// Total returns the number of questions across all modules.
func (s *QuestionSet) Total() int {
	n := 0
	for _, qs := range s.byModule {
		n += len(qs)
	}
	return n
}

// Question returns question i of module m.
func (s *QuestionSet) Question(m model.ModuleID, i int) (model.Question, bool) {
	qs := s.byModule[m]
	if i < 0 || i >= len(qs) {
		return model.Question{}, false
	}
	return qs[i], true
}

// All returns every question in exam order.
func (s *QuestionSet) All() []model.Question {
	out := make([]model.Question, 0, s.Total())
	for _, m := range model.Modules() {
		out = append(out, s.byModule[m]...)
	}
	return out
}

// Paper builds the student-facing exam payload, with answer keys stripped.
func (s *QuestionSet) Paper(title string) model.ExamPaper {
	paper := model.ExamPaper{Title: title}
	for _, m := range model.Modules() {
		pm := model.ExamPaperModule{
			Module:          m,
			Label:           m.Label(),
			DurationSeconds: int(m.Duration().Seconds()),
		}
		for _, q := range s.byModule[m] {
			pm.Questions = append(pm.Questions, model.QuestionForStudent{
				Module:    q.Module,
				Index:     q.Index,
				Prompt:    q.Prompt,
				Content:   q.Content,
				ImageURL:  q.ImageURL,
				TableData: q.TableData,
				Type:      q.Type,
				Options:   q.Options,
			})
		}
		paper.Modules = append(paper.Modules, pm)
	}
	return paper
}
