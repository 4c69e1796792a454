package export

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"
)

// Sheet is one named sheet of a workbook: a table plus per-column width
// hints so text does not truncate unreadably when opened.
type Sheet struct {
	Name      string
	Table     Table
	ColWidths []float64
}

// WorkbookBuilder assembles named sheets into a single xlsx payload.
// Stateless; construct one per call or share freely.
type WorkbookBuilder struct {
	logger *slog.Logger
}

// NewWorkbookBuilder creates a workbook builder
func NewWorkbookBuilder(logger *slog.Logger) *WorkbookBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookBuilder{logger: logger.With(slog.String("component", "workbook_builder"))}
}

// Header row styling shared by every sheet. One fixed style table, not a
// per-report choice.
const (
	headerFillColor = "2563EB"
	headerFontColor = "FFFFFF"
)

// Build serializes the given sheets, in order, into xlsx bytes. At least one
// sheet is required; a sheet with zero rows still gets its header row.
func (b *WorkbookBuilder) Build(sheets []Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook requires at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: headerFontColor, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerFillColor}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, sheet := range sheets {
		if i == 0 {
			// The default sheet excelize creates becomes the first one.
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return nil, fmt.Errorf("rename sheet %q: %w", sheet.Name, err)
			}
		} else {
			if _, err := f.NewSheet(sheet.Name); err != nil {
				return nil, fmt.Errorf("create sheet %q: %w", sheet.Name, err)
			}
		}
		if err := b.writeSheet(f, sheet, headerStyle); err != nil {
			return nil, fmt.Errorf("write sheet %q: %w", sheet.Name, err)
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}

	b.logger.Debug("workbook built",
		slog.Int("sheets", len(sheets)),
		slog.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

func (b *WorkbookBuilder) writeSheet(f *excelize.File, sheet Sheet, headerStyle int) error {
	for col, name := range sheet.Table.Columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheet.Name, cell, name); err != nil {
			return fmt.Errorf("set header %q: %w", name, err)
		}
	}
	if len(sheet.Table.Columns) > 0 {
		first, _ := excelize.CoordinatesToCellName(1, 1)
		last, _ := excelize.CoordinatesToCellName(len(sheet.Table.Columns), 1)
		if err := f.SetCellStyle(sheet.Name, first, last, headerStyle); err != nil {
			return fmt.Errorf("style header row: %w", err)
		}
	}

	for r, row := range sheet.Table.Rows {
		for c, value := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(sheet.Name, cell, value); err != nil {
				return fmt.Errorf("set cell %s: %w", cell, err)
			}
		}
	}

	for col, width := range sheet.ColWidths {
		if width <= 0 {
			continue
		}
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("column name: %w", err)
		}
		if err := f.SetColWidth(sheet.Name, name, name, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	return nil
}
