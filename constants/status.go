package constants

// StorageType is the column type a field is persisted as.
type StorageType string

// Stable values; the DDL renderer translates them per dialect.
const (
	StorageUUID      StorageType = "uuid"
	StorageTimestamp StorageType = "timestamp"
	StorageNumeric   StorageType = "numeric"
	StorageDate      StorageType = "date"
	StorageBoolean   StorageType = "boolean"
	StorageText      StorageType = "text"
	StorageVarchar   StorageType = "varchar" // bounded, see VarcharLength
)

// VarcharLength bounds the default text column.
const VarcharLength = 255

// Generated columns every provisioned table starts with.
const (
	ColumnID        = "id"
	ColumnCreatedAt = "created_at"
)

// Symbolic column defaults. Anything else is rejected before DDL is rendered.
const (
	DefaultGenerateUUID = "gen_random_uuid()"
	DefaultNow          = "now()"
)

// DefaultTableName is used when the caller does not name a table.
const DefaultTableName = "log_entries"

// Provider identifies a backing store flavor.
type Provider string

const (
	ProviderSupabase   Provider = "supabase"
	ProviderPostgreSQL Provider = "postgresql"
	ProviderSQLite     Provider = "sqlite"
)

// ModelTier selects the extraction model.
type ModelTier string

const (
	TierFast         ModelTier = "fast"
	TierHighFidelity ModelTier = "high_fidelity"
)

// UserTier values accepted on analysis requests.
var UserTiers = []string{"free", "pro"}
