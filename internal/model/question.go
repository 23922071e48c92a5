package model

import "time"

// ModuleID identifies one of the four fixed exam modules.
// Modules 1-2 form the Reading & Writing section, 3-4 the Math section.
type ModuleID int

const (
	ModuleRW1   ModuleID = 1
	ModuleRW2   ModuleID = 2
	ModuleMath1 ModuleID = 3
	ModuleMath2 ModuleID = 4

	// ModuleCount is the fixed number of modules in a full mock exam.
	ModuleCount = 4
)

// Valid reports whether m is one of the four exam modules.
func (m ModuleID) Valid() bool {
	return m >= ModuleRW1 && m <= ModuleMath2
}

// Label returns the worksheet label used by the question workbook
// to group rows into modules.
func (m ModuleID) Label() string {
	switch m {
	case ModuleRW1:
		return "Session 1 Module 1"
	case ModuleRW2:
		return "Session 1 Module 2"
	case ModuleMath1:
		return "Session 2 Module 1"
	case ModuleMath2:
		return "Session 2 Module 2"
	}
	return ""
}

// Duration returns the fixed testing time for the module.
func (m ModuleID) Duration() time.Duration {
	switch m {
	case ModuleRW1, ModuleRW2:
		return 32 * time.Minute
	case ModuleMath1, ModuleMath2:
		return 35 * time.Minute
	}
	return 0
}

// Section identifies one of the two scored exam sections.
type Section string

const (
	SectionReadingWriting Section = "reading_writing"
	SectionMath           Section = "math"
)

// Section returns the scored section the module belongs to.
func (m ModuleID) Section() Section {
	if m == ModuleRW1 || m == ModuleRW2 {
		return SectionReadingWriting
	}
	return SectionMath
}

// Modules lists all module IDs in exam order.
func Modules() []ModuleID {
	return []ModuleID{ModuleRW1, ModuleRW2, ModuleMath1, ModuleMath2}
}

// QuestionType distinguishes multiple-choice from student-produced-response
// (free text) questions.
type QuestionType string

const (
	QuestionTypeMCQ QuestionType = "MCQ"
	QuestionTypeSPR QuestionType = "SPR"
)

// Choice is a single lettered MCQ option.
type Choice struct {
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// Question is an immutable question record supplied by the workbook source.
type Question struct {
	Module        ModuleID     `json:"module"`
	Index         int          `json:"index"` // 0-based position within the module
	Prompt        string       `json:"prompt"`
	Content       string       `json:"content"`
	ImageURL      string       `json:"image_url,omitempty"`
	TableData     [][]string   `json:"table_data,omitempty"`
	Type          QuestionType `json:"type"`
	Options       []Choice     `json:"options,omitempty"` // MCQ only
	CorrectAnswer string       `json:"-"`                 // never serialized to students
}

// QuestionForStudent is a question stripped of the correct answer,
// as delivered in the exam paper payload.
type QuestionForStudent struct {
	Module    ModuleID     `json:"module"`
	Index     int          `json:"index"`
	Prompt    string       `json:"prompt"`
	Content   string       `json:"content"`
	ImageURL  string       `json:"image_url,omitempty"`
	TableData [][]string   `json:"table_data,omitempty"`
	Type      QuestionType `json:"type"`
	Options   []Choice     `json:"options,omitempty"`
}

// ExamPaper is the full student-facing payload: every module's questions
// without answer keys, plus the fixed timing parameters.
type ExamPaper struct {
	Title   string            `json:"title"`
	Modules []ExamPaperModule `json:"modules"`
}

// ExamPaperModule groups the student-facing questions of one module.
type ExamPaperModule struct {
	Module          ModuleID             `json:"module"`
	Label           string               `json:"label"`
	DurationSeconds int                  `json:"duration_seconds"`
	Questions       []QuestionForStudent `json:"questions"`
}
