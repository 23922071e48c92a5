package source

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/primeivy/portal-backend/internal/model"
)

func writeWorkbook(t *testing.T, header []interface{}, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", QuestionsSheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	if err := f.SetSheetRow(QuestionsSheet, "A1", &header); err != nil {
		t.Fatalf("write header: %v", err)
	}
	for i, row := range rows {
		anchor, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(QuestionsSheet, anchor, &row); err != nil {
			t.Fatalf("write row %d: %v", i, err)
		}
	}

	if _, err := f.NewSheet(UsersSheet); err != nil {
		t.Fatalf("create users sheet: %v", err)
	}
	usersHeader := []interface{}{"Username", "Password"}
	if err := f.SetSheetRow(UsersSheet, "A1", &usersHeader); err != nil {
		t.Fatalf("write users header: %v", err)
	}
	alice := []interface{}{"alice", "secret123"}
	if err := f.SetSheetRow(UsersSheet, "A2", &alice); err != nil {
		t.Fatalf("write users row: %v", err)
	}

	path := filepath.Join(t.TempDir(), "exam.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return path
}

func questionHeader() []interface{} {
	return []interface{}{
		"Session", "Prompt", "Content", "Question_Type",
		"Option_A", "Option_B", "Option_C", "Option_D",
		"Correct_Answer", "Image_URL", "Table_Data",
	}
}

func TestWorkbookLoadQuestions(t *testing.T) {
	path := writeWorkbook(t, questionHeader(), [][]interface{}{
		{"Session 1 Module 1", "Pick A", "Some passage", "MCQ", "yes", "no", "maybe", "never", "A", "", ""},
		{"Session 1 Module 1", "Pick B", "Another passage", "mcq", "w", "x", "y", "z", "B", "", ""},
		{"Session 2 Module 2", "Compute", "", "SPR", "", "", "", "", "3/4", "", "a,b;c,d"},
		{"Not A Session", "ignored", "", "MCQ", "", "", "", "", "A", "", ""},
	})

	wb := NewWorkbook(path, zerolog.Nop())
	set, err := wb.LoadQuestions()
	if err != nil {
		t.Fatalf("LoadQuestions: %v", err)
	}

	if !set.HasAnswerKey() {
		t.Fatal("answer key column present, HasAnswerKey should be true")
	}
	if got := set.Count(model.ModuleRW1); got != 2 {
		t.Fatalf("module 1 count = %d, want 2", got)
	}
	if got := set.Count(model.ModuleMath2); got != 1 {
		t.Fatalf("module 4 count = %d, want 1", got)
	}
	if got := set.Total(); got != 3 {
		t.Fatalf("total = %d, want 3 (unknown session row skipped)", got)
	}

	q, ok := set.Question(model.ModuleRW1, 1)
	if !ok {
		t.Fatal("question (1,1) should exist")
	}
	if q.Type != model.QuestionTypeMCQ || q.CorrectAnswer != "B" {
		t.Fatalf("question (1,1) = %+v, want MCQ with key B", q)
	}
	if len(q.Options) != 4 || q.Options[0].Letter != "A" || q.Options[0].Text != "w" {
		t.Fatalf("options = %+v, want 4 lettered choices starting at A/w", q.Options)
	}

	spr, _ := set.Question(model.ModuleMath2, 0)
	if spr.Type != model.QuestionTypeSPR {
		t.Fatalf("type = %v, want SPR", spr.Type)
	}
	if len(spr.Options) != 0 {
		t.Fatal("SPR questions carry no options")
	}
	wantTable := [][]string{{"a", "b"}, {"c", "d"}}
	if len(spr.TableData) != 2 || spr.TableData[0][1] != wantTable[0][1] || spr.TableData[1][0] != wantTable[1][0] {
		t.Fatalf("table = %v, want %v", spr.TableData, wantTable)
	}
}

func TestWorkbookMissingAnswerKeyColumn(t *testing.T) {
	header := []interface{}{"Session", "Prompt", "Question_Type"}
	path := writeWorkbook(t, header, [][]interface{}{
		{"Session 1 Module 1", "Pick one", "MCQ"},
	})

	set, err := NewWorkbook(path, zerolog.Nop()).LoadQuestions()
	if err != nil {
		t.Fatalf("LoadQuestions: %v", err)
	}
	if set.HasAnswerKey() {
		t.Fatal("HasAnswerKey should be false without a Correct_Answer column")
	}
}

func TestWorkbookUnknownTypeDefaultsToMCQ(t *testing.T) {
	path := writeWorkbook(t, questionHeader(), [][]interface{}{
		{"Session 1 Module 1", "p", "", "essay", "", "", "", "", "A", "", ""},
		{"Session 1 Module 1", "p", "", "", "", "", "", "", "B", "", ""},
	})

	set, err := NewWorkbook(path, zerolog.Nop()).LoadQuestions()
	if err != nil {
		t.Fatalf("LoadQuestions: %v", err)
	}
	for i := 0; i < 2; i++ {
		q, _ := set.Question(model.ModuleRW1, i)
		if q.Type != model.QuestionTypeMCQ {
			t.Fatalf("question %d type = %v, want MCQ default", i, q.Type)
		}
	}
}

func TestWorkbookEmptyQuestions(t *testing.T) {
	path := writeWorkbook(t, questionHeader(), nil)

	_, err := NewWorkbook(path, zerolog.Nop()).LoadQuestions()
	if !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("err = %v, want ErrNoQuestions", err)
	}
}

func TestWorkbookPaperStripsAnswers(t *testing.T) {
	path := writeWorkbook(t, questionHeader(), [][]interface{}{
		{"Session 1 Module 1", "Pick A", "passage", "MCQ", "1", "2", "3", "4", "A", "", ""},
	})

	set, err := NewWorkbook(path, zerolog.Nop()).LoadQuestions()
	if err != nil {
		t.Fatalf("LoadQuestions: %v", err)
	}

	paper := set.Paper("Mock Exam")
	if len(paper.Modules) != 4 {
		t.Fatalf("paper modules = %d, want 4", len(paper.Modules))
	}
	if paper.Modules[0].DurationSeconds != 32*60 {
		t.Fatalf("module 1 duration = %d, want 1920", paper.Modules[0].DurationSeconds)
	}
	if got := len(paper.Modules[0].Questions); got != 1 {
		t.Fatalf("module 1 questions = %d, want 1", got)
	}
}

func TestWorkbookUsersRoundTrip(t *testing.T) {
	path := writeWorkbook(t, questionHeader(), [][]interface{}{
		{"Session 1 Module 1", "p", "", "MCQ", "", "", "", "", "A", "", ""},
	})
	wb := NewWorkbook(path, zerolog.Nop())

	users, err := wb.LoadUsers()
	if err != nil {
		t.Fatalf("LoadUsers: %v", err)
	}
	if len(users) != 1 || users[0].Username != "alice" {
		t.Fatalf("users = %+v, want alice only", users)
	}

	if err := wb.AppendUser(model.User{Username: "bob", Password: "hash"}); err != nil {
		t.Fatalf("AppendUser: %v", err)
	}

	users, err = wb.LoadUsers()
	if err != nil {
		t.Fatalf("LoadUsers after append: %v", err)
	}
	if len(users) != 2 || users[1].Username != "bob" {
		t.Fatalf("users = %+v, want alice then bob", users)
	}
}

func TestNormalizeImageURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"drive share link", "https://drive.google.com/file/d/FILE123/view?usp=sharing", "https://drive.google.com/uc?export=view&id=FILE123"},
		{"github blob", "https://github.com/acme/assets/blob/main/fig.png", "https://raw.githubusercontent.com/acme/assets/main/fig.png"},
		{"github blob raw param", "https://github.com/acme/assets/blob/main/fig.png?raw=true", "https://raw.githubusercontent.com/acme/assets/main/fig.png"},
		{"passthrough", "https://example.com/x.png", "https://example.com/x.png"},
		{"nan placeholder", "nan", ""},
		{"false placeholder", "FALSE", ""},
		{"blank", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeImageURL(tc.in); got != tc.want {
				t.Fatalf("NormalizeImageURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
