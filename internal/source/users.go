package source

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/primeivy/portal-backend/internal/model"
)

// ErrUsersSheetMissing means the workbook has no Users sheet.
var ErrUsersSheetMissing = errors.New("users sheet not found in workbook")

// LoadUsers reads the Users sheet. Rows with a blank username or password
// are skipped, matching how spreadsheet edits leave gaps.
func (w *Workbook) LoadUsers() ([]model.User, error) {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", w.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(UsersSheet)
	if err != nil {
		return nil, ErrUsersSheetMissing
	}
	if len(rows) < 2 {
		return nil, nil
	}

	cols := headerIndex(rows[0])
	users := make([]model.User, 0, len(rows)-1)
	for _, row := range rows[1:] {
		u := model.User{
			Username: strings.TrimSpace(cell(row, cols, "username")),
			Password: strings.TrimSpace(cell(row, cols, "password")),
		}
		if u.Username == "" || u.Password == "" {
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

// AppendUser adds a credential row to the Users sheet, creating the sheet
// with its header when absent, and saves the workbook in place.
func (w *Workbook) AppendUser(user model.User) error {
	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("open workbook %s: %w", w.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(UsersSheet)
	if err != nil {
		if _, err := f.NewSheet(UsersSheet); err != nil {
			return fmt.Errorf("create users sheet: %w", err)
		}
		header := []interface{}{"Username", "Password"}
		if err := f.SetSheetRow(UsersSheet, "A1", &header); err != nil {
			return fmt.Errorf("write users header: %w", err)
		}
		rows = [][]string{{"Username", "Password"}}
	}

	row := []interface{}{user.Username, user.Password}
	anchor := fmt.Sprintf("A%d", len(rows)+1)
	if err := f.SetSheetRow(UsersSheet, anchor, &row); err != nil {
		return fmt.Errorf("append user row: %w", err)
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	w.log.Info().Str("username", user.Username).Msg("user appended to workbook")
	return nil
}
