package repository

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/logforms/constants"
	"github.com/joseph-ayodele/logforms/internal/common"
	"github.com/joseph-ayodele/logforms/internal/entity"
)

func field(key string, t constants.FieldType) entity.FieldDefinition {
	return entity.FieldDefinition{Key: key, Label: key, Type: t}
}

func TestCoerce(t *testing.T) {
	tests := []struct {
		name string
		f    entity.FieldDefinition
		raw  any
		want any
	}{
		{"number text", field("temp", constants.FieldNumber), "98.6", 98.6},
		{"number thousands", field("qty", constants.FieldNumber), "1,234.5", 1234.5},
		{"number grouped negative", field("qty", constants.FieldNumber), "-12,500", -12500.0},
		{"number json", field("qty", constants.FieldNumber), json.Number("12"), 12.0},
		{"number native", field("qty", constants.FieldNumber), 7.0, 7.0},
		{"number empty", field("qty", constants.FieldNumber), "  ", nil},
		{"boolean true", field("ok", constants.FieldBoolean), "true", true},
		{"boolean one", field("ok", constants.FieldBoolean), "1", true},
		{"boolean other", field("ok", constants.FieldBoolean), "yes", false},
		{"boolean native", field("ok", constants.FieldBoolean), false, false},
		{"boolean empty", field("ok", constants.FieldBoolean), "", nil},
		{"date", field("day", constants.FieldDate), "2024-01-05", "2024-01-05T00:00:00.000Z"},
		{"datetime offset", field("at", constants.FieldDatetime), "2024-01-05T09:30:00+09:00", "2024-01-05T00:30:00.000Z"},
		{"datetime local", field("at", constants.FieldDatetime), "2024-01-05T09:30", "2024-01-05T09:30:00.000Z"},
		{"time only", field("at", constants.FieldTime), "14:05", "1970-01-01T14:05:00.000Z"},
		{"time with seconds", field("at", constants.FieldTime), "07:08:09", "1970-01-01T07:08:09.000Z"},
		{"date empty", field("day", constants.FieldDate), "", nil},
		{"string", field("lot", constants.FieldString), "A-17", "A-17"},
		{"enum", field("shift", constants.FieldEnum), "night", "night"},
		{"string empty", field("lot", constants.FieldString), "", nil},
		{"null", field("lot", constants.FieldString), nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.f, tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerce_ValueErrors(t *testing.T) {
	tests := []struct {
		name string
		f    entity.FieldDefinition
		raw  any
	}{
		{"not a number", field("temp", constants.FieldNumber), "warm"},
		{"nan", field("temp", constants.FieldNumber), "NaN"},
		{"decimal comma", field("temp", constants.FieldNumber), "1,5"},
		{"misplaced grouping", field("temp", constants.FieldNumber), "1,2,3"},
		{"short group", field("temp", constants.FieldNumber), "12,00"},
		{"inf", field("temp", constants.FieldNumber), math.Inf(1)},
		{"bad date", field("day", constants.FieldDate), "05/01/2024x"},
		{"non string date", field("day", constants.FieldDate), 20240105.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Coerce(tt.f, tt.raw)
			assert.Error(t, err)
		})
	}
}

func TestCoerceAll(t *testing.T) {
	fields := []entity.FieldDefinition{
		{Key: "temp", Type: constants.FieldNumber, Order: 2},
		{Key: "day", Type: constants.FieldDate, Order: 1},
		{Key: "note", Type: constants.FieldTextarea, Order: 3},
	}

	t.Run("missing keys become explicit nulls", func(t *testing.T) {
		values, err := CoerceAll(fields, map[string]any{"temp": "36.5"})
		require.NoError(t, err)
		assert.Equal(t, []ColumnValue{
			{Name: "day", Value: nil},
			{Name: "temp", Value: 36.5},
			{Name: "note", Value: nil},
		}, values)
	})

	t.Run("value errors name every field", func(t *testing.T) {
		_, err := CoerceAll(fields, map[string]any{"temp": "hot", "day": "someday"})
		require.Error(t, err)
		ae := common.AsAppError(err)
		assert.Equal(t, common.KindInputValidation, ae.Kind)
		assert.Equal(t, common.CodeInvalidFieldValue, ae.Code)
		require.Len(t, ae.Details, 2)
		assert.Equal(t, "day", ae.Details[0].Field)
		assert.Equal(t, "temp", ae.Details[1].Field)
	})
}

func TestUnknownKeys(t *testing.T) {
	fields := []entity.FieldDefinition{{Key: "temp", Type: constants.FieldNumber}}
	assert.Equal(t, []string{"extra", "zeta"}, unknownKeys(fields, map[string]any{"zeta": 1, "temp": 2, "extra": 3}))
	assert.Empty(t, unknownKeys(fields, map[string]any{"temp": 2}))
}

func TestNormalizeRecord(t *testing.T) {
	fields := []entity.FieldDefinition{
		{Key: "temp", Type: constants.FieldNumber},
		{Key: "qty", Type: constants.FieldNumber},
		{Key: "ok", Type: constants.FieldBoolean},
	}
	rec := entity.DataRecord{"temp": json.Number("98.6"), "qty": "12", "ok": int64(1), "lot": "A"}
	normalizeRecord(rec, fields)
	assert.Equal(t, entity.DataRecord{"temp": 98.6, "qty": 12.0, "ok": true, "lot": "A"}, rec)
}
