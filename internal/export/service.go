package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/logforms/constants"
	"github.com/joseph-ayodele/logforms/internal/entity"
)

const (
	EntrySheet  = "Entries"
	FieldsSheet = "Fields"

	titleRow  = 1
	headerRow = 2
	// KeyRow carries the field keys so a filled sheet can be mapped back to a
	// schema. It is hidden from the person entering data.
	KeyRow       = 3
	FirstDataRow = 4

	DefaultEntryRows = 200
)

// Service produces XLSX data-entry workbooks for a data schema.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// EntryWorkbookXLSX returns a workbook with one column per field (in field
// order), drop-down validation for choice fields, and a second sheet
// describing every field. rows <= 0 uses DefaultEntryRows.
func (s *Service) EntryWorkbookXLSX(schema entity.DataSchema, rows int) ([]byte, error) {
	start := time.Now()
	if len(schema.Fields) == 0 {
		return nil, fmt.Errorf("schema has no fields")
	}
	if rows <= 0 {
		rows = DefaultEntryRows
	}
	fields := entity.SortFields(schema.Fields)
	lastRow := FirstDataRow + rows - 1

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), EntrySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(FieldsSheet); err != nil {
		return nil, err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E7E6E6"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	title := schema.Title
	if title == "" {
		title = "Log"
	}
	_ = f.SetCellValue(EntrySheet, cellName(1, titleRow), title)
	_ = f.SetCellStyle(EntrySheet, cellName(1, titleRow), cellName(1, titleRow), titleStyle)
	if len(fields) > 1 {
		_ = f.MergeCell(EntrySheet, cellName(1, titleRow), cellName(len(fields), titleRow))
	}

	dropLists := 0
	for i, fd := range fields {
		col := i + 1
		colName, _ := excelize.ColumnNumberToName(col)

		_ = f.SetCellValue(EntrySheet, cellName(col, headerRow), headerText(fd))
		_ = f.SetCellValue(EntrySheet, cellName(col, KeyRow), fd.Key)
		_ = f.SetColWidth(EntrySheet, colName, colName, columnWidth(fd))

		choices := choicesFor(fd)
		if len(choices) == 0 {
			continue
		}
		dv := excelize.NewDataValidation(!fd.Required)
		dv.Sqref = fmt.Sprintf("%s%d:%s%d", colName, FirstDataRow, colName, lastRow)
		if err := dv.SetDropList(choices); err != nil {
			// too many choices for an inline list; the column stays free text
			s.logger.Warn("export.xlsx.droplist_skipped", "field", fd.Key, "error", err)
			continue
		}
		if err := f.AddDataValidation(EntrySheet, dv); err != nil {
			return nil, fmt.Errorf("add validation for %q: %w", fd.Key, err)
		}
		dropLists++
	}
	_ = f.SetCellStyle(EntrySheet, cellName(1, headerRow), cellName(len(fields), headerRow), headerStyle)
	_ = f.SetRowVisible(EntrySheet, KeyRow, false)
	_ = f.SetPanes(EntrySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      KeyRow,
		TopLeftCell: cellName(1, FirstDataRow),
		ActivePane:  "bottomLeft",
	})

	if err := writeFieldsSheet(f, fields, headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"fields", len(fields),
		"rows", rows,
		"drop_lists", dropLists,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func writeFieldsSheet(f *excelize.File, fields []entity.FieldDefinition, headerStyle int) error {
	headers := []string{"Key", "Label", "Type", "Required", "Unit", "Format", "Choices", "Notes"}
	for i, h := range headers {
		_ = f.SetCellValue(FieldsSheet, cellName(i+1, 1), h)
	}
	if err := f.SetCellStyle(FieldsSheet, "A1", cellName(len(headers), 1), headerStyle); err != nil {
		return err
	}
	for i, fd := range fields {
		row := i + 2
		values := []any{
			fd.Key, fd.DisplayLabel(), string(fd.Type), fd.Required,
			fd.Unit, fd.Format, strings.Join(fd.Enum, ", "), truncate(fd.Notes, 240),
		}
		for j, v := range values {
			_ = f.SetCellValue(FieldsSheet, cellName(j+1, row), v)
		}
	}
	_ = f.SetColWidth(FieldsSheet, "A", "C", 18)
	_ = f.SetColWidth(FieldsSheet, "G", "H", 40)
	return nil
}

func choicesFor(fd entity.FieldDefinition) []string {
	switch fd.Type {
	case constants.FieldEnum, constants.FieldRadio:
		return fd.Enum
	case constants.FieldBoolean, constants.FieldCheckbox:
		return []string{"true", "false"}
	}
	return nil
}

func headerText(fd entity.FieldDefinition) string {
	label := fd.DisplayLabel()
	if fd.Unit != "" {
		label += " (" + fd.Unit + ")"
	}
	if fd.Required {
		label += " *"
	}
	return label
}

func columnWidth(fd entity.FieldDefinition) float64 {
	w := float64(utf8.RuneCountInString(headerText(fd))) * 1.4
	switch fd.Type {
	case constants.FieldTextarea:
		w = max(w, 40)
	case constants.FieldDate, constants.FieldDatetime, constants.FieldTime:
		w = max(w, 18)
	}
	return min(max(w, 10), 60)
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
