package score

import "strings"

// minusFold maps unicode minus/dash lookalikes that students paste in
// (or that spreadsheets export) to the ASCII hyphen-minus.
var minusFold = strings.NewReplacer(
	"−", "-", // minus sign
	"–", "-", // en dash
	"—", "-", // em dash
)

// NormalizeAnswer canonicalizes an answer value for comparison. It works
// for both MCQ letters and basic SPR numeric answers: whitespace and
// non-breaking spaces are removed, unicode minus variants are folded to
// "-", a leading "A)" / "a." / "B:" collapses to its letter, and the
// result is uppercased. An empty input normalizes to "".
func NormalizeAnswer(v string) string {
	s := strings.TrimSpace(v)
	s = minusFold.Replace(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")

	if len(s) >= 2 && isChoiceLetter(s[0]) && isChoicePunct(s[1]) {
		s = s[:1]
	}

	return strings.ToUpper(s)
}

func isChoiceLetter(b byte) bool {
	return (b >= 'A' && b <= 'D') || (b >= 'a' && b <= 'd')
}

func isChoicePunct(b byte) bool {
	return b == ')' || b == '.' || b == ':'
}

// AnswersMatch reports whether a student's value matches the key after
// normalization. MCQ and SPR use the same comparison.
func AnswersMatch(student, correct string) bool {
	return NormalizeAnswer(student) == NormalizeAnswer(correct)
}
