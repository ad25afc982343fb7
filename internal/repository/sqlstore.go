package repository

import (
	"context"
	"fmt"
	"log/slog"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/logforms/constants"
	"github.com/joseph-ayodele/logforms/internal/entity"
)

// SQLStore talks to postgres or sqlite through ent's SQL driver.
type SQLStore struct {
	drv     *entsql.Driver
	dialect string
	onClose func()
	logger  *slog.Logger
}

var _ Store = (*SQLStore)(nil)

// NewSQLStore wraps drv. onClose, when set, runs after the driver is closed
// (e.g. closing the pgx pool behind it).
func NewSQLStore(drv *entsql.Driver, onClose func(), logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{drv: drv, dialect: drv.Dialect(), onClose: onClose, logger: logger}
}

func (s *SQLStore) Dialect() string { return s.dialect }

func (s *SQLStore) Ping(ctx context.Context) error {
	return HealthCheck(ctx, s.drv.DB(), 0, s.logger)
}

func (s *SQLStore) TableExists(ctx context.Context, table string) (bool, error) {
	b := entsql.Dialect(s.dialect)
	var sel *entsql.Selector
	if s.dialect == dialect.SQLite {
		sel = b.Select(entsql.Count("*")).
			From(entsql.Table("sqlite_master")).
			Where(entsql.And(entsql.EQ("type", "table"), entsql.EQ("name", table)))
	} else {
		sel = b.Select(entsql.Count("*")).
			From(entsql.Table("tables").Schema("information_schema")).
			Where(entsql.And(entsql.ExprP("table_schema = current_schema()"), entsql.EQ("table_name", table)))
	}
	query, args := sel.Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return false, fmt.Errorf("lookup table %q: %w", table, err)
	}
	defer rows.Close()

	var n int64
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return false, fmt.Errorf("scan table lookup: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLStore) ExecDDL(ctx context.Context, ddl string) error {
	return s.drv.Exec(ctx, ddl, []any{}, nil)
}

func (s *SQLStore) Insert(ctx context.Context, table string, values []ColumnValue) (entity.DataRecord, error) {
	ins := entsql.Dialect(s.dialect).Insert(table)
	returning := []string{constants.ColumnID, constants.ColumnCreatedAt}
	if len(values) == 0 {
		ins.Default()
	} else {
		cols := make([]string, len(values))
		vals := make([]any, len(values))
		for i, v := range values {
			cols[i] = v.Name
			vals[i] = v.Value
			returning = append(returning, v.Name)
		}
		ins.Columns(cols...).Values(vals...)
	}
	query, args := ins.Returning(returning...).Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("insert into %q returned no row", table)
	}
	rec, err := scanRecord(&rows)
	if err != nil {
		return nil, err
	}
	return rec, rows.Err()
}

func (s *SQLStore) Close() error {
	err := s.drv.Close()
	if s.onClose != nil {
		s.onClose()
	}
	return err
}

// scanRecord reads the current row into a column-name keyed record.
func scanRecord(rows *entsql.Rows) (entity.DataRecord, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, fmt.Errorf("scan inserted row: %w", err)
	}
	rec := make(entity.DataRecord, len(cols))
	for i, c := range cols {
		if b, ok := vals[i].([]byte); ok {
			rec[c] = string(b)
			continue
		}
		rec[c] = vals[i]
	}
	return rec, nil
}
