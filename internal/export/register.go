package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"qrattend/internal/record"
)

var header = []string{"Student ID", "Name", "First Name", "Last Name", "M.I.", "Email", "Marked At"}

// Register maintains an xlsx attendance register with one sheet per
// calendar date, for staff who want the day's roll as a spreadsheet.
type Register struct {
	path string
}

// NewRegister creates a register writing to path. The file is created on
// first append.
func NewRegister(path string) *Register {
	return &Register{path: path}
}

// Append adds rec as a row on the sheet for its date, creating the
// workbook, sheet, and header row as needed.
func (r *Register) Append(rec record.Record) error {
	f, created, err := r.open()
	if err != nil {
		return err
	}
	defer f.Close()

	sheet := rec.Date
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	if idx == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		for col, title := range header {
			cell, _ := excelize.CoordinatesToCellName(col+1, 1)
			if err := f.SetCellValue(sheet, cell, title); err != nil {
				return err
			}
		}
	}
	if created {
		// excelize seeds new workbooks with a default sheet we never use.
		_ = f.DeleteSheet("Sheet1")
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return err
	}
	rowNum := len(rows) + 1
	values := []string{rec.StudentID, rec.StudentName, rec.FirstName, rec.LastName, rec.MiddleInitial, rec.Email, rec.MarkedAt}
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, rowNum)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create register dir: %w", err)
		}
	}
	return f.SaveAs(r.path)
}

// open loads the workbook, creating a fresh one when the file is absent.
func (r *Register) open() (f *excelize.File, created bool, err error) {
	f, err = excelize.OpenFile(r.path)
	if err == nil {
		return f, false, nil
	}
	if os.IsNotExist(err) {
		return excelize.NewFile(), true, nil
	}
	return nil, false, fmt.Errorf("open register: %w", err)
}
