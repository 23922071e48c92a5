package model

import "time"

// ScoreRange is an inclusive estimated scaled-score interval.
type ScoreRange struct {
	Lo int `json:"lo"`
	Hi int `json:"hi"`
}

// Width returns the size of the interval.
func (r ScoreRange) Width() int { return r.Hi - r.Lo }

// SectionScore is the scored outcome of one exam section.
type SectionScore struct {
	Section  Section    `json:"section"`
	Correct  int        `json:"correct"`
	Total    int        `json:"total"`
	Accuracy float64    `json:"accuracy"` // 0..1, 0 when Total == 0
	Range    ScoreRange `json:"range"`
}

// ModuleStats aggregates correctness and settled time for one module.
type ModuleStats struct {
	Module   ModuleID `json:"module"`
	Label    string   `json:"label"`
	Correct  int      `json:"correct"`
	Total    int      `json:"total"`
	Accuracy float64  `json:"accuracy"`
	TimeSec  float64  `json:"time_sec"`
}

// QuestionResult is one row of the detailed review table.
type QuestionResult struct {
	Module       ModuleID     `json:"module"`
	Label        string       `json:"label"`
	Number       int          `json:"number"` // 1-based, for display
	Type         QuestionType `json:"type"`
	TimeSec      float64      `json:"time_sec"`
	Answered     bool         `json:"answered"`
	StudentValue string       `json:"student_value"`
	CorrectValue string       `json:"correct_value"`
	Correct      bool         `json:"correct"`
}

// Confidence labels for the estimated score range.
const (
	ConfidenceLow    = "Low"
	ConfidenceMedium = "Medium"
	ConfidenceHigh   = "High"
)

// ScoreReport is the full Score Estimator output for a finished attempt.
type ScoreReport struct {
	ReadingWriting SectionScore     `json:"reading_writing"`
	Math           SectionScore     `json:"math"`
	Total          ScoreRange       `json:"total"`
	Confidence     string           `json:"confidence"`
	Modules        []ModuleStats    `json:"modules"`
	TotalCorrect   int              `json:"total_correct"`
	TotalQuestions int              `json:"total_questions"`
	AnsweredCount  int              `json:"answered_count"`
	TotalTimeSec   float64          `json:"total_time_sec"`
	AvgTimeSec     float64          `json:"avg_time_sec"`
	Slowest        []QuestionResult `json:"slowest"`
	Details        []QuestionResult `json:"details"`
	FinishedAt     time.Time        `json:"finished_at"`
}

// ExamResult is a persisted summary of a finished attempt (score history).
type ExamResult struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	RWLo         int       `json:"rw_lo"`
	RWHi         int       `json:"rw_hi"`
	MathLo       int       `json:"math_lo"`
	MathHi       int       `json:"math_hi"`
	TotalLo      int       `json:"total_lo"`
	TotalHi      int       `json:"total_hi"`
	Confidence   string    `json:"confidence"`
	Correct      int       `json:"correct"`
	Total        int       `json:"total"`
	Answered     int       `json:"answered"`
	TotalTimeSec float64   `json:"total_time_sec"`
	FinishedAt   time.Time `json:"finished_at"`
}
