package export

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/logforms/constants"
	"github.com/joseph-ayodele/logforms/internal/entity"
)

func sampleSchema() entity.DataSchema {
	return entity.DataSchema{
		Title: "Kiln temperature log",
		Fields: []entity.FieldDefinition{
			{Key: "shift", Label: "Shift", Type: constants.FieldEnum, Order: 3, Enum: []string{"day", "night"}},
			{Key: "temp", Label: "Temperature", Type: constants.FieldNumber, Order: 2, Unit: "°C", Required: true},
			{Key: "batch_date", Label: "Batch date", Type: constants.FieldDate, Order: 1},
			{Key: "passed", Label: "Passed", Type: constants.FieldCheckbox, Order: 4},
		},
	}
}

func TestEntryWorkbookXLSX(t *testing.T) {
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))

	raw, err := svc.EntryWorkbookXLSX(sampleSchema(), 10)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{EntrySheet, FieldsSheet}, f.GetSheetList())

	title, err := f.GetCellValue(EntrySheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Kiln temperature log", title)

	headers := make([]string, 4)
	keys := make([]string, 4)
	for i := range headers {
		headers[i], _ = f.GetCellValue(EntrySheet, cellName(i+1, headerRow))
		keys[i], _ = f.GetCellValue(EntrySheet, cellName(i+1, KeyRow))
	}
	assert.Equal(t, []string{"Batch date", "Temperature (°C) *", "Shift", "Passed"}, headers)
	assert.Equal(t, []string{"batch_date", "temp", "shift", "passed"}, keys)

	visible, err := f.GetRowVisible(EntrySheet, KeyRow)
	require.NoError(t, err)
	assert.False(t, visible)

	dvs, err := f.GetDataValidations(EntrySheet)
	require.NoError(t, err)
	require.Len(t, dvs, 2)
	byRange := map[string]string{}
	for _, dv := range dvs {
		byRange[dv.Sqref] = dv.Formula1
	}
	assert.Contains(t, byRange["C4:C13"], "day,night")
	assert.Contains(t, byRange["D4:D13"], "true,false")

	rows, err := f.GetRows(FieldsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "batch_date", rows[1][0])
	assert.Equal(t, "day, night", rows[3][6])
}

func TestEntryWorkbookXLSX_Edges(t *testing.T) {
	svc := NewService(nil)

	_, err := svc.EntryWorkbookXLSX(entity.DataSchema{Title: "empty"}, 0)
	assert.Error(t, err)

	// a choice list too long for an inline drop-down leaves the column as free text
	long := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		long = append(long, strings.Repeat("x", 5))
	}
	raw, err := svc.EntryWorkbookXLSX(entity.DataSchema{
		Title:  "long",
		Fields: []entity.FieldDefinition{{Key: "code", Type: constants.FieldEnum, Enum: long}},
	}, 0)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	dvs, err := f.GetDataValidations(EntrySheet)
	require.NoError(t, err)
	assert.Empty(t, dvs)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "온도…", truncate("온도계측", 3))
}
