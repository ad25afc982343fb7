package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/logforms/constants"
	"github.com/joseph-ayodele/logforms/internal/common"
	"github.com/joseph-ayodele/logforms/internal/entity"
)

// TimestampLayout is the canonical form of every temporal value written.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

var temporalLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// groupedNumber matches thousands grouping such as 1,200 or -12,500.75.
var groupedNumber = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)

var timeOfDayLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04 PM",
	"3:04PM",
}

// RecordIngestor coerces entered values and writes one row per call.
type RecordIngestor struct {
	stores StoreSource
	logger *slog.Logger
}

func NewRecordIngestor(stores StoreSource, logger *slog.Logger) *RecordIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordIngestor{stores: stores, logger: logger}
}

// Save coerces data against fields and inserts it into the coordinates' table.
// Keys in data that no field declares are ignored.
func (r *RecordIngestor) Save(ctx context.Context, coords entity.StoreCoordinates, fields []entity.FieldDefinition, data map[string]any) (entity.DataRecord, error) {
	start := time.Now()
	coords = coords.Normalize()
	if err := common.ValidateStruct(coords); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, common.InputError(common.CodeInvalidRequest, "schema has no fields", common.ErrInvalidInput)
	}

	values, err := CoerceAll(fields, data)
	if err != nil {
		return nil, err
	}
	if extra := unknownKeys(fields, data); len(extra) > 0 {
		r.logger.Info("store.save.ignored_keys", "table", coords.TableName, "keys", extra)
	}

	store, release, err := r.stores.Get(ctx, coords)
	if err != nil {
		if ae := asInputError(err); ae != nil {
			return nil, ae
		}
		return nil, common.WriteError(common.CodeWriteFailed, "could not connect to the store: "+backendMessage(err), err)
	}
	defer release()

	rec, err := store.Insert(ctx, coords.TableName, values)
	if err != nil {
		class := Classify(err)
		r.logger.Warn("store.save.failed", "provider", coords.Provider, "table", coords.TableName,
			"class", class.String(), "error", err)
		return nil, common.WriteError(common.CodeWriteFailed, "insert failed: "+backendMessage(err), err)
	}

	normalizeRecord(rec, fields)
	r.logger.Info("store.save.ok", "provider", coords.Provider, "table", coords.TableName,
		"columns", len(values), "elapsed_ms", time.Since(start).Milliseconds())
	return rec, nil
}

// CoerceAll converts every declared field's raw value. All value errors are
// collected into a single input error.
func CoerceAll(fields []entity.FieldDefinition, data map[string]any) ([]ColumnValue, error) {
	sorted := entity.SortFields(fields)
	values := make([]ColumnValue, 0, len(sorted))
	var details []common.ValidationError
	for _, f := range sorted {
		v, err := Coerce(f, data[f.Key])
		if err != nil {
			details = append(details, common.ValidationError{Field: f.Key, Message: err.Error()})
			continue
		}
		values = append(values, ColumnValue{Name: f.Key, Value: v})
	}
	if len(details) > 0 {
		names := make([]string, len(details))
		for i, d := range details {
			names[i] = d.Field
		}
		return nil, common.InputError(common.CodeInvalidFieldValue,
			"invalid value for "+strings.Join(names, ", "), common.ErrValidation).WithDetails(details)
	}
	return values, nil
}

// Coerce converts one raw value to its storage form. Empty, missing and null
// values become nil. Time-of-day values become an instant on 1970-01-01 UTC
// because MapSchema stores every temporal field in a timestamp column.
func Coerce(f entity.FieldDefinition, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}
	switch f.Type {
	case constants.FieldNumber:
		return coerceNumber(raw)
	case constants.FieldBoolean:
		return coerceBoolean(raw)
	case constants.FieldDate, constants.FieldDatetime, constants.FieldTime:
		return coerceTemporal(f.Type, raw)
	}
	return passthrough(raw)
}

func passthrough(raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		s = fmt.Sprint(raw)
	}
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	return s, nil
}

func coerceNumber(raw any) (any, error) {
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case float32:
		n = float64(v)
	case int:
		n = float64(v)
	case int64:
		n = float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", v.String())
		}
		n = f
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		if groupedNumber.MatchString(s) {
			s = strings.ReplaceAll(s, ",", "")
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a number", v)
		}
		n = f
	default:
		return nil, fmt.Errorf("%v is not a number", raw)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil, fmt.Errorf("%v is not a finite number", raw)
	}
	return n, nil
}

func coerceBoolean(raw any) (any, error) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		if s == "" {
			return nil, nil
		}
		return s == "true" || s == "1", nil
	case float64:
		return v == 1, nil
	case json.Number:
		return v.String() == "1", nil
	}
	return false, nil
}

func coerceTemporal(t constants.FieldType, raw any) (any, error) {
	s, ok := raw.(string)
	if !ok {
		return nil, fmt.Errorf("%v is not a %s", raw, t)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	ts, err := parseInstant(t, s)
	if err != nil {
		return nil, err
	}
	return ts.UTC().Format(TimestampLayout), nil
}

func parseInstant(t constants.FieldType, s string) (time.Time, error) {
	if t == constants.FieldTime {
		for _, layout := range timeOfDayLayouts {
			if tod, err := time.Parse(layout, strings.ToUpper(s)); err == nil {
				return time.Date(1970, 1, 1, tod.Hour(), tod.Minute(), tod.Second(), 0, time.UTC), nil
			}
		}
	}
	for _, layout := range temporalLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a valid %s", s, t)
}

func unknownKeys(fields []entity.FieldDefinition, data map[string]any) []string {
	known := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		known[f.Key] = struct{}{}
	}
	var extra []string
	for k := range data {
		if _, ok := known[k]; !ok {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return extra
}

// normalizeRecord turns numeric columns returned as text or json.Number back
// into float64, and driver timestamps into the canonical layout.
func normalizeRecord(rec entity.DataRecord, fields []entity.FieldDefinition) {
	for _, f := range fields {
		v, ok := rec[f.Key]
		if !ok || v == nil {
			continue
		}
		switch f.Type {
		case constants.FieldNumber:
			switch n := v.(type) {
			case json.Number:
				if x, err := n.Float64(); err == nil {
					rec[f.Key] = x
				}
			case string:
				if x, err := strconv.ParseFloat(n, 64); err == nil {
					rec[f.Key] = x
				}
			case int64:
				rec[f.Key] = float64(n)
			}
		case constants.FieldBoolean:
			if n, ok := v.(int64); ok {
				rec[f.Key] = n != 0
			}
		}
	}
	for k, v := range rec {
		if ts, ok := v.(time.Time); ok {
			rec[k] = ts.UTC().Format(TimestampLayout)
		}
	}
}
