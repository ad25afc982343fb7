package repository

import (
	"fmt"
	"strconv"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/joseph-ayodele/logforms/constants"
	"github.com/joseph-ayodele/logforms/internal/entity"
)

// columnType renders a storage type for the dialect.
func columnType(d string, t constants.StorageType) string {
	if d == dialect.SQLite {
		switch t {
		case constants.StorageNumeric:
			return "real"
		case constants.StorageBoolean:
			return "boolean"
		case constants.StorageVarchar:
			return "varchar(" + strconv.Itoa(constants.VarcharLength) + ")"
		default:
			// uuid, timestamps and dates are stored as canonical text
			return "text"
		}
	}
	switch t {
	case constants.StorageUUID:
		return "uuid"
	case constants.StorageTimestamp:
		return "timestamptz"
	case constants.StorageNumeric, constants.StorageDate, constants.StorageBoolean, constants.StorageText:
		return string(t)
	default:
		return "varchar(" + strconv.Itoa(constants.VarcharLength) + ")"
	}
}

// columnDefault translates the symbolic defaults for the dialect.
func columnDefault(d, symbolic string) string {
	switch symbolic {
	case constants.DefaultGenerateUUID:
		if d == dialect.SQLite {
			return "(lower(hex(randomblob(4))) || '-' || lower(hex(randomblob(2))) || '-4' || substr(lower(hex(randomblob(2))), 2) || '-' || lower(hex(randomblob(2))) || '-' || lower(hex(randomblob(6))))"
		}
		return "gen_random_uuid()"
	case constants.DefaultNow:
		if d == dialect.SQLite {
			return "(strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))"
		}
		return "now()"
	}
	return ""
}

// RenderDDL renders a single idempotent CREATE TABLE IF NOT EXISTS statement
// for schema in the given ent dialect.
func RenderDDL(d string, schema entity.StorageSchema) (string, error) {
	if len(schema.Columns) == 0 {
		return "", fmt.Errorf("schema %q has no columns", schema.TableName)
	}
	pk := schema.PrimaryKey
	if pk == "" {
		pk = constants.ColumnID
	}
	if _, ok := schema.Column(pk); !ok {
		return "", fmt.Errorf("primary key %q is not a column of %q", pk, schema.TableName)
	}

	defs := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		def := ""
		if c.Default != "" {
			def = columnDefault(d, c.Default)
			if def == "" {
				return "", fmt.Errorf("column %q: unsupported default %q", c.Name, c.Default)
			}
		}
		defs[i] = def
	}

	ddl := entsql.Dialect(d).String(func(b *entsql.Builder) {
		b.WriteString("CREATE TABLE IF NOT EXISTS ").Ident(schema.TableName).Pad()
		b.Wrap(func(b *entsql.Builder) {
			for i, c := range schema.Columns {
				if i > 0 {
					b.Comma()
				}
				b.Ident(c.Name).Pad().WriteString(columnType(d, c.Type))
				if defs[i] != "" {
					b.WriteString(" DEFAULT ").WriteString(defs[i])
				}
				if !c.Nullable {
					b.WriteString(" NOT NULL")
				}
			}
			b.Comma().WriteString("PRIMARY KEY ").Wrap(func(b *entsql.Builder) {
				b.Ident(pk)
			})
		})
	})
	return ddl, nil
}
