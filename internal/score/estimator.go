package score

import (
	"sort"
	"time"

	"github.com/primeivy/portal-backend/internal/model"
)

// slowestLimit caps the "slowest questions" list in the report.
const slowestLimit = 10

// Input carries everything a finished attempt contributes to scoring.
// Questions must be in exam order (module ascending, index ascending).
// A question with no entry in Responses simply counts as unanswered.
type Input struct {
	Questions  []model.Question
	Responses  map[model.QuestionKey]model.Response
	Timings    map[model.QuestionKey]float64
	FinishedAt time.Time
}

// BuildReport scores an attempt: per-question correctness, per-module and
// per-section aggregates, the estimated scaled ranges, and the confidence
// label. The total range is the sum of the two section ranges.
func BuildReport(in Input) model.ScoreReport {
	type sectionTally struct{ correct, total int }
	tallies := map[model.Section]*sectionTally{
		model.SectionReadingWriting: {},
		model.SectionMath:           {},
	}

	moduleStats := make(map[model.ModuleID]*model.ModuleStats, model.ModuleCount)
	for _, m := range model.Modules() {
		moduleStats[m] = &model.ModuleStats{Module: m, Label: m.Label()}
	}

	report := model.ScoreReport{FinishedAt: in.FinishedAt}
	details := make([]model.QuestionResult, 0, len(in.Questions))

	for _, q := range in.Questions {
		key := model.QuestionKey{Module: q.Module, Index: q.Index}

		var studentVal string
		answered := false
		if resp, ok := in.Responses[key]; ok {
			studentVal = resp.Value
			answered = NormalizeAnswer(studentVal) != ""
		}

		correct := answered && AnswersMatch(studentVal, q.CorrectAnswer)
		timeSec := in.Timings[key]

		details = append(details, model.QuestionResult{
			Module:       q.Module,
			Label:        q.Module.Label(),
			Number:       q.Index + 1,
			Type:         q.Type,
			TimeSec:      timeSec,
			Answered:     answered,
			StudentValue: studentVal,
			CorrectValue: q.CorrectAnswer,
			Correct:      correct,
		})

		tally := tallies[q.Module.Section()]
		tally.total++
		ms := moduleStats[q.Module]
		ms.Total++
		ms.TimeSec += timeSec

		report.TotalQuestions++
		report.TotalTimeSec += timeSec
		if answered {
			report.AnsweredCount++
		}
		if correct {
			tally.correct++
			ms.Correct++
			report.TotalCorrect++
		}
	}

	report.ReadingWriting = sectionScore(model.SectionReadingWriting, tallies[model.SectionReadingWriting].correct, tallies[model.SectionReadingWriting].total)
	report.Math = sectionScore(model.SectionMath, tallies[model.SectionMath].correct, tallies[model.SectionMath].total)
	report.Total = model.ScoreRange{
		Lo: report.ReadingWriting.Range.Lo + report.Math.Range.Lo,
		Hi: report.ReadingWriting.Range.Hi + report.Math.Range.Hi,
	}
	report.Confidence = Confidence(report.Total, report.AnsweredCount, report.TotalQuestions)

	for _, m := range model.Modules() {
		ms := moduleStats[m]
		if ms.Total > 0 {
			ms.Accuracy = float64(ms.Correct) / float64(ms.Total)
		}
		report.Modules = append(report.Modules, *ms)
	}

	if report.TotalQuestions > 0 {
		report.AvgTimeSec = report.TotalTimeSec / float64(report.TotalQuestions)
	}

	report.Details = details
	report.Slowest = slowest(details)
	return report
}

func sectionScore(sec model.Section, correct, total int) model.SectionScore {
	var acc float64
	if total > 0 {
		acc = float64(correct) / float64(total)
	}
	return model.SectionScore{
		Section:  sec,
		Correct:  correct,
		Total:    total,
		Accuracy: acc,
		Range:    SectionRange(acc),
	}
}

func slowest(details []model.QuestionResult) []model.QuestionResult {
	out := make([]model.QuestionResult, len(details))
	copy(out, details)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimeSec > out[j].TimeSec
	})
	if len(out) > slowestLimit {
		out = out[:slowestLimit]
	}
	return out
}
