package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/primeivy/portal-backend/internal/model"
)

// Sheet names in the exam workbook.
const (
	QuestionsSheet = "Questions"
	UsersSheet     = "Users"
)

var (
	// ErrQuestionsSheetMissing means the workbook has no Questions sheet.
	ErrQuestionsSheetMissing = errors.New("questions sheet not found in workbook")
	// ErrNoQuestions means the Questions sheet had no usable rows.
	ErrNoQuestions = errors.New("workbook contains no questions")
	// ErrAnswerKeyMissing means the Correct_Answer column is absent. The
	// exam itself can still be taken; only scoring is blocked.
	ErrAnswerKeyMissing = errors.New("workbook is missing the Correct_Answer column")
)

// Workbook reads exam content from an xlsx file. The Questions sheet holds
// one row per question, grouped into modules by the Session column; the
// Users sheet holds login credentials.
type Workbook struct {
	path string
	log  zerolog.Logger
}

// NewWorkbook wraps the xlsx file at path. The file is opened per call,
// not held open.
func NewWorkbook(path string, log zerolog.Logger) *Workbook {
	return &Workbook{
		path: path,
		log:  log.With().Str("component", "workbook").Logger(),
	}
}

// Path returns the workbook file path.
func (w *Workbook) Path() string { return w.path }

// LoadQuestions reads and parses the Questions sheet into a QuestionSet.
func (w *Workbook) LoadQuestions() (*QuestionSet, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", w.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(QuestionsSheet)
	if err != nil {
		return nil, ErrQuestionsSheetMissing
	}
	if len(rows) < 2 {
		return nil, ErrNoQuestions
	}

	cols := headerIndex(rows[0])
	_, hasKey := cols["correct_answer"]

	set := &QuestionSet{
		byModule:     make(map[model.ModuleID][]model.Question, model.ModuleCount),
		hasAnswerKey: hasKey,
	}

	labelToModule := make(map[string]model.ModuleID, model.ModuleCount)
	for _, m := range model.Modules() {
		labelToModule[strings.ToLower(m.Label())] = m
	}

	for _, row := range rows[1:] {
		label := strings.ToLower(strings.TrimSpace(cell(row, cols, "session")))
		m, ok := labelToModule[label]
		if !ok {
			continue // blank separator or unknown session row
		}
		q := parseQuestion(row, cols)
		q.Module = m
		q.Index = len(set.byModule[m])
		set.byModule[m] = append(set.byModule[m], q)
	}

	if set.Total() == 0 {
		return nil, ErrNoQuestions
	}

	w.log.Info().
		Int("questions", set.Total()).
		Bool("answer_key", hasKey).
		Msg("workbook loaded")
	return set, nil
}

// headerIndex maps lowercased trimmed header names to column positions.
func headerIndex(header []string) map[string]int {
	out := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			out[h] = i
		}
	}
	return out
}

// cell returns the named column of row, or "" when absent. Excelize trims
// trailing empty cells, so short rows are normal.
func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseQuestion(row []string, cols map[string]int) model.Question {
	q := model.Question{
		Prompt:        normalizeText(cell(row, cols, "prompt")),
		Content:       normalizeText(cell(row, cols, "content")),
		ImageURL:      NormalizeImageURL(cell(row, cols, "image_url")),
		TableData:     parseTableData(cell(row, cols, "table_data")),
		Type:          parseQuestionType(cell(row, cols, "question_type")),
		CorrectAnswer: strings.TrimSpace(cell(row, cols, "correct_answer")),
	}

	if q.Type == model.QuestionTypeMCQ {
		for _, letter := range []string{"A", "B", "C", "D"} {
			text := normalizeText(cell(row, cols, "option_"+strings.ToLower(letter)))
			q.Options = append(q.Options, model.Choice{Letter: letter, Text: text})
		}
	}
	return q
}

// parseQuestionType defaults unknown or blank types to MCQ.
func parseQuestionType(v string) model.QuestionType {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case string(model.QuestionTypeSPR):
		return model.QuestionTypeSPR
	default:
		return model.QuestionTypeMCQ
	}
}

// parseTableData decodes the compact cell format where ";" separates rows
// and "," separates cells within a row.
func parseTableData(v string) [][]string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	var table [][]string
	for _, rawRow := range strings.Split(v, ";") {
		cells := strings.Split(rawRow, ",")
		for i := range cells {
			cells[i] = strings.TrimSpace(cells[i])
		}
		table = append(table, cells)
	}
	return table
}

// normalizeText unifies line endings and trims surrounding whitespace.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}
