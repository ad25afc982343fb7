package repository

import (
	"github.com/joseph-ayodele/logforms/constants"
	"github.com/joseph-ayodele/logforms/internal/entity"
)

// StorageTypeFor maps a field type onto its column type. Unknown and free-text
// types fall back to a bounded varchar.
func StorageTypeFor(t constants.FieldType) constants.StorageType {
	switch t {
	case constants.FieldNumber:
		return constants.StorageNumeric
	case constants.FieldDate:
		return constants.StorageDate
	case constants.FieldDatetime, constants.FieldTime:
		return constants.StorageTimestamp
	case constants.FieldBoolean:
		return constants.StorageBoolean
	case constants.FieldTextarea:
		return constants.StorageText
	default:
		return constants.StorageVarchar
	}
}

// GeneratedColumns are the non-nullable columns every log table starts with.
func GeneratedColumns() []entity.StorageColumn {
	return []entity.StorageColumn{
		{Name: constants.ColumnID, Type: constants.StorageUUID, Nullable: false, Default: constants.DefaultGenerateUUID},
		{Name: constants.ColumnCreatedAt, Type: constants.StorageTimestamp, Nullable: false, Default: constants.DefaultNow},
	}
}

// MapSchema derives the storage schema for fields. It has no side effects:
// the same input always yields the same schema. Fields are laid out by order.
func MapSchema(tableName string, fields []entity.FieldDefinition) entity.StorageSchema {
	if tableName == "" {
		tableName = constants.DefaultTableName
	}
	sorted := entity.SortFields(fields)

	cols := GeneratedColumns()
	for _, f := range sorted {
		cols = append(cols, entity.StorageColumn{
			Name:     f.Key,
			Type:     StorageTypeFor(f.Type),
			Nullable: true,
		})
	}
	return entity.StorageSchema{
		TableName:  tableName,
		Columns:    cols,
		PrimaryKey: constants.ColumnID,
	}
}

// MapEnvelope is MapSchema over an envelope's field list.
func MapEnvelope(env entity.AnalysisEnvelope, tableName string) entity.StorageSchema {
	return MapSchema(tableName, env.DataSchema.Fields)
}
