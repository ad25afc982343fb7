package entity

import "github.com/joseph-ayodele/logforms/constants"

// StorageColumn represents one column of a provisioned log table.
type StorageColumn struct {
	Name     string                `json:"name" validate:"required,ident"`
	Type     constants.StorageType `json:"type" validate:"required,storagetype"`
	Nullable bool                  `json:"nullable"`
	Default  string                `json:"defaultValue,omitempty" validate:"coldefault"`
}

// StorageSchema represents the table layout derived from a field list.
type StorageSchema struct {
	TableName  string          `json:"tableName" validate:"required,ident"`
	Columns    []StorageColumn `json:"columns" validate:"required,min=1,unique=Name,dive"`
	PrimaryKey string          `json:"primaryKey,omitempty" validate:"omitempty,ident"`
}

// Column looks up a column by name.
func (s StorageSchema) Column(name string) (StorageColumn, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return StorageColumn{}, false
}

// ColumnNames returns the column names in declaration order.
func (s StorageSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}
