package workbook

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Builder writes export sheets with the workbook's styling conventions.
type Builder struct {
	file *excelize.File
	rows map[string]int

	headerStyle int
	boldStyle   int
}

// NewBuilder creates an empty workbook with the shared styles registered.
func NewBuilder() (*Builder, error) {
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "gradient", Color: []string{"FFFFFF", "E8E8E8"}, Shading: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
	})
	if err != nil {
		return nil, fmt.Errorf("create bold style: %w", err)
	}

	return &Builder{
		file:        f,
		rows:        make(map[string]int),
		headerStyle: headerStyle,
		boldStyle:   boldStyle,
	}, nil
}

// AddSheet creates a sheet with a styled header row. Adding an existing
// sheet is a no-op.
func (b *Builder) AddSheet(name string, headers []string) error {
	if b.HasSheet(name) {
		return nil
	}
	if _, err := b.file.NewSheet(name); err != nil {
		return fmt.Errorf("create sheet %s: %w", name, err)
	}
	b.rows[name] = 0
	if err := b.appendStyled(name, headers, b.headerStyle); err != nil {
		return err
	}
	return nil
}

// HasSheet reports whether the sheet exists.
func (b *Builder) HasSheet(name string) bool {
	_, ok := b.rows[name]
	return ok
}

// AppendRow writes values into the next row of the sheet.
func (b *Builder) AppendRow(sheet string, values []string) error {
	return b.appendStyled(sheet, values, 0)
}

// AppendHeaderRow writes values into the next row with bold styling; the
// import engine recognizes those rows as group anchors.
func (b *Builder) AppendHeaderRow(sheet string, values []string) error {
	return b.appendStyled(sheet, values, b.boldStyle)
}

func (b *Builder) appendStyled(sheet string, values []string, style int) error {
	row := b.rows[sheet] + 1
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row coordinates: %w", err)
	}
	data := make([]interface{}, len(values))
	for i, v := range values {
		data[i] = v
	}
	if err := b.file.SetSheetRow(sheet, cell, &data); err != nil {
		return fmt.Errorf("write row to %s: %w", sheet, err)
	}
	if style != 0 && len(values) > 0 {
		last, err := excelize.CoordinatesToCellName(len(values), row)
		if err != nil {
			return fmt.Errorf("row coordinates: %w", err)
		}
		if err := b.file.SetCellStyle(sheet, cell, last, style); err != nil {
			return fmt.Errorf("style row in %s: %w", sheet, err)
		}
	}
	b.rows[sheet] = row
	return nil
}

// Sheets lists the sheets created so far, in no particular order.
func (b *Builder) Sheets() []string {
	out := make([]string, 0, len(b.rows))
	for sheet := range b.rows {
		out = append(out, sheet)
	}
	return out
}

// RowCount returns the number of rows written to the sheet, header included.
func (b *Builder) RowCount(sheet string) int {
	return b.rows[sheet]
}

// Finish drops the implicit default sheet, freezes header rows, and returns
// the underlying file.
func (b *Builder) Finish() *excelize.File {
	for sheet := range b.rows {
		// Best effort; a sheet that cannot be frozen is still usable.
		_ = b.file.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		})
	}
	if len(b.rows) > 0 {
		_ = b.file.DeleteSheet("Sheet1")
	}
	return b.file
}

// Save finalizes the workbook and writes it to path.
func (b *Builder) Save(path string) error {
	if err := b.Finish().SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// WriteTo finalizes the workbook and streams it to w.
func (b *Builder) WriteTo(w io.Writer) error {
	if err := b.Finish().Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
