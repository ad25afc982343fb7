package server

import (
	"github.com/joseph-ayodele/logforms/internal/entity"
	"github.com/joseph-ayodele/logforms/internal/templating"
)

// Request bodies, one per endpoint. Coordinates are validated again by the
// repository after defaults are applied.

type createSchemaRequest struct {
	Config entity.StoreCoordinates `json:"config" validate:"required"`
	// Schema is a ready storage layout and is validated once its table
	// name default is applied. Fields is mapped server-side. Exactly one
	// of them is sent.
	Schema *entity.StorageSchema    `json:"schema" validate:"-"`
	Fields []entity.FieldDefinition `json:"fields" validate:"required_without=Schema,excluded_with=Schema,omitempty,unique=Key,dive"`
}

type saveDataRequest struct {
	Config entity.StoreCoordinates  `json:"config" validate:"required"`
	Data   map[string]any           `json:"data" validate:"required"`
	Fields []entity.FieldDefinition `json:"schema" validate:"required,min=1,unique=Key,dive"`
}

type mapSchemaRequest struct {
	TableName string                   `json:"tableName" validate:"omitempty,ident"`
	Fields    []entity.FieldDefinition `json:"fields" validate:"required,min=1,unique=Key,dive"`
}

type renderRequest struct {
	Template string            `json:"template" validate:"required"`
	Format   templating.Format `json:"format" validate:"required,oneof=html markdown"`
	Values   map[string]string `json:"values"`
}

type exportRequest struct {
	DataSchema entity.DataSchema `json:"data_schema" validate:"required"`
	Rows       int               `json:"rows" validate:"omitempty,min=1,max=5000"`
}
