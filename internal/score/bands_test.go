package score

import (
	"testing"

	"github.com/primeivy/portal-backend/internal/model"
)

func TestSectionRangeBoundaries(t *testing.T) {
	cases := []struct {
		accuracy float64
		want     model.ScoreRange
	}{
		{0.0, model.ScoreRange{Lo: 200, Hi: 250}},
		{0.09, model.ScoreRange{Lo: 200, Hi: 250}},
		{0.10, model.ScoreRange{Lo: 250, Hi: 310}},
		{0.50, model.ScoreRange{Lo: 530, Hi: 610}},
		{0.799, model.ScoreRange{Lo: 690, Hi: 750}},
		{0.80, model.ScoreRange{Lo: 750, Hi: 770}},
		{0.90, model.ScoreRange{Lo: 790, Hi: 800}},
		{0.93, model.ScoreRange{Lo: 800, Hi: 800}},
		{1.0, model.ScoreRange{Lo: 800, Hi: 800}},
		{-0.3, model.ScoreRange{Lo: 200, Hi: 250}}, // clamped
		{1.7, model.ScoreRange{Lo: 800, Hi: 800}},  // clamped
	}

	for _, tc := range cases {
		if got := SectionRange(tc.accuracy); got != tc.want {
			t.Fatalf("SectionRange(%v) = %+v, want %+v", tc.accuracy, got, tc.want)
		}
	}
}

// Higher accuracy never produces a lower range.
func TestSectionRangeMonotonic(t *testing.T) {
	prev := SectionRange(0)
	for i := 1; i <= 1000; i++ {
		acc := float64(i) / 1000
		got := SectionRange(acc)
		if got.Lo < prev.Lo || got.Hi < prev.Hi {
			t.Fatalf("range regressed at accuracy %v: %+v after %+v", acc, got, prev)
		}
		prev = got
	}
}

func TestConfidence(t *testing.T) {
	cases := []struct {
		name      string
		total     model.ScoreRange
		answered  int
		questions int
		want      string
	}{
		{"low completion wins", model.ScoreRange{Lo: 1600, Hi: 1600}, 70, 100, model.ConfidenceLow},
		{"tight and complete", model.ScoreRange{Lo: 1580, Hi: 1600}, 98, 100, model.ConfidenceHigh},
		{"tight but under 95%", model.ScoreRange{Lo: 1580, Hi: 1600}, 90, 100, model.ConfidenceMedium},
		{"medium width", model.ScoreRange{Lo: 1000, Hi: 1080}, 100, 100, model.ConfidenceMedium},
		{"wide range", model.ScoreRange{Lo: 900, Hi: 1100}, 100, 100, model.ConfidenceLow},
		{"zero questions", model.ScoreRange{Lo: 400, Hi: 500}, 0, 0, model.ConfidenceLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Confidence(tc.total, tc.answered, tc.questions); got != tc.want {
				t.Fatalf("Confidence(%+v, %d/%d) = %q, want %q", tc.total, tc.answered, tc.questions, got, tc.want)
			}
		})
	}
}
