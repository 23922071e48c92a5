package score

import "github.com/primeivy/portal-backend/internal/model"

// band maps an accuracy interval [lo, hi) to a scaled section range.
type band struct {
	lo, hi float64
	rng    model.ScoreRange
}

// sectionBands is a deliberately harsh approximation of historical SAT
// section curves. The last band's upper bound is over 1.0 so that a
// perfect module still lands in it.
var sectionBands = []band{
	{0.00, 0.10, model.ScoreRange{Lo: 200, Hi: 250}},
	{0.10, 0.20, model.ScoreRange{Lo: 250, Hi: 310}},
	{0.20, 0.30, model.ScoreRange{Lo: 310, Hi: 370}},
	{0.30, 0.40, model.ScoreRange{Lo: 370, Hi: 450}},
	{0.40, 0.50, model.ScoreRange{Lo: 450, Hi: 530}},
	{0.50, 0.60, model.ScoreRange{Lo: 530, Hi: 610}},
	{0.60, 0.70, model.ScoreRange{Lo: 610, Hi: 690}},
	{0.70, 0.80, model.ScoreRange{Lo: 690, Hi: 750}},
	{0.80, 0.85, model.ScoreRange{Lo: 750, Hi: 770}},
	{0.85, 0.90, model.ScoreRange{Lo: 770, Hi: 790}},
	{0.90, 0.93, model.ScoreRange{Lo: 790, Hi: 800}},
	{0.93, 1.01, model.ScoreRange{Lo: 800, Hi: 800}},
}

// SectionRange maps a section accuracy in [0, 1] to its estimated scaled
// score range. Out-of-range inputs are clamped first.
func SectionRange(accuracy float64) model.ScoreRange {
	if accuracy < 0 {
		accuracy = 0
	}
	if accuracy > 1 {
		accuracy = 1
	}
	for _, b := range sectionBands {
		if accuracy >= b.lo && accuracy < b.hi {
			return b.rng
		}
	}
	return model.ScoreRange{Lo: 200, Hi: 800}
}

// Confidence labels the reliability of a total range estimate from the
// interval width and how much of the exam was answered.
func Confidence(total model.ScoreRange, answered, questions int) string {
	var rate float64
	if questions > 0 {
		rate = float64(answered) / float64(questions)
	}

	switch {
	case rate < 0.75:
		return model.ConfidenceLow
	case total.Width() <= 40 && rate >= 0.95:
		return model.ConfidenceHigh
	case total.Width() <= 80:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}
