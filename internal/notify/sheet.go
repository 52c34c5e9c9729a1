package notify

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

// ExcelAppender implements SheetAppender against a local .xlsx workbook. The
// workbook is created on first use; rows are appended under a header row.
type ExcelAppender struct {
	mu        sync.Mutex
	path      string
	sheetName string
}

var sheetHeader = []interface{}{"Timestamp", "Recipient", "File", "Missing Clauses"}

// NewExcelAppender returns an appender writing to the workbook at path.
func NewExcelAppender(path, sheetName string) *ExcelAppender {
	if sheetName == "" {
		sheetName = "Sheet1"
	}
	return &ExcelAppender{path: path, sheetName: sheetName}
}

// Append adds one row recording a missing-clause notification.
func (a *ExcelAppender) Append(ctx context.Context, timestamp, recipient, filename string, missing []string) error {
	if a.path == "" {
		return fmt.Errorf("sheet path not configured")
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	f, created, err := a.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(a.sheetName)
	if err != nil {
		return fmt.Errorf("read sheet: %w", err)
	}
	next := len(rows) + 1
	if created || next == 1 {
		cell, _ := excelize.CoordinatesToCellName(1, 1)
		if err := f.SetSheetRow(a.sheetName, cell, &sheetHeader); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		next = 2
	}

	row := []interface{}{timestamp, recipient, filename, strings.Join(missing, ", ")}
	cell, err := excelize.CoordinatesToCellName(1, next)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(a.sheetName, cell, &row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	if err := f.SaveAs(a.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// open returns the workbook at a.path, creating it (and the target sheet)
// when absent. created reports whether a fresh workbook was made.
func (a *ExcelAppender) open() (f *excelize.File, created bool, err error) {
	if _, statErr := os.Stat(a.path); statErr == nil {
		f, err = excelize.OpenFile(a.path)
		if err != nil {
			return nil, false, fmt.Errorf("open workbook: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
			return nil, false, err
		}
		f = excelize.NewFile()
		created = true
	}
	if idx, _ := f.GetSheetIndex(a.sheetName); idx == -1 {
		if _, err := f.NewSheet(a.sheetName); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("create sheet: %w", err)
		}
	}
	return f, created, nil
}
