package repository

import (
	"context"

	"github.com/joseph-ayodele/logforms/internal/entity"
)

// ColumnValue is one column assignment of an insert.
type ColumnValue struct {
	Name  string
	Value any
}

// Store is one backing store addressed by a set of coordinates.
type Store interface {
	// Dialect is the ent dialect DDL is rendered in.
	Dialect() string
	Ping(ctx context.Context) error
	TableExists(ctx context.Context, table string) (bool, error)
	// ExecDDL runs a single schema statement.
	ExecDDL(ctx context.Context, ddl string) error
	// Insert writes one row and returns the stored row.
	Insert(ctx context.Context, table string, values []ColumnValue) (entity.DataRecord, error)
	Close() error
}
