package workbook

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Reader reads an edited translations workbook and annotates it with the
// import change log. The workbook itself is only modified through the
// change-log column.
type Reader struct {
	file      *excelize.File
	logStyle  int
	styleBold map[int]bool
}

// Open loads a workbook from disk.
func Open(path string) (*Reader, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return NewReader(f), nil
}

// OpenReader loads a workbook from a stream.
func OpenReader(r io.Reader) (*Reader, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return NewReader(f), nil
}

// NewReader wraps an already-open workbook file.
func NewReader(f *excelize.File) *Reader {
	return &Reader{file: f, styleBold: make(map[int]bool)}
}

// File exposes the underlying workbook.
func (r *Reader) File() *excelize.File { return r.file }

// Sheets returns the workbook's sheet names in order.
func (r *Reader) Sheets() []string {
	return r.file.GetSheetList()
}

// HasSheet reports whether the workbook contains the named sheet.
func (r *Reader) HasSheet(name string) bool {
	idx, err := r.file.GetSheetIndex(name)
	return err == nil && idx >= 0
}

// Rows returns the sheet's cell values; rows are trimmed of trailing empty
// cells, matching how the sheet was written.
func (r *Reader) Rows(sheet string) ([][]string, error) {
	rows, err := r.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

// Cell returns one cell value; row and col are 1-based.
func (r *Reader) Cell(sheet string, row, col int) string {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return ""
	}
	v, _ := r.file.GetCellValue(sheet, cell)
	return v
}

// CellBold reports whether the cell carries a bold font; row and col are
// 1-based. Styles are memoized because anchor detection probes three cells
// per row.
func (r *Reader) CellBold(sheet string, row, col int) bool {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return false
	}
	styleID, err := r.file.GetCellStyle(sheet, cell)
	if err != nil {
		return false
	}
	if bold, ok := r.styleBold[styleID]; ok {
		return bold
	}
	style, err := r.file.GetStyle(styleID)
	bold := err == nil && style != nil && style.Font != nil && style.Font.Bold
	r.styleBold[styleID] = bold
	return bold
}

// AddChangeLogColumn inserts the change-log header at the first empty header
// cell and returns its 1-based column number.
func (r *Reader) AddChangeLogColumn(sheet string) (int, error) {
	header, err := r.file.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	col := 1
	if len(header) > 0 {
		for _, v := range header[0] {
			if v == "" {
				break
			}
			col++
		}
	}
	cell, err := excelize.CoordinatesToCellName(col, 1)
	if err != nil {
		return 0, fmt.Errorf("column coordinates: %w", err)
	}
	if err := r.file.SetCellValue(sheet, cell, ChangeLogHeader); err != nil {
		return 0, fmt.Errorf("write change log header: %w", err)
	}
	if name, err := excelize.ColumnNumberToName(col); err == nil {
		_ = r.file.SetColWidth(sheet, name, name, 75)
	}
	return col, nil
}

// SetCell writes a value into the sheet; row and col are 1-based.
func (r *Reader) SetCell(sheet string, row, col int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("cell coordinates: %w", err)
	}
	if err := r.file.SetCellValue(sheet, cell, value); err != nil {
		return fmt.Errorf("write cell %s!%s: %w", sheet, cell, err)
	}
	return nil
}

// Save writes the annotated workbook to path.
func (r *Reader) Save(path string) error {
	if err := r.file.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
