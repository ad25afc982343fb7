package entity

import (
	"strings"

	"github.com/joseph-ayodele/logforms/constants"
)

// StoreCoordinates addresses one tenant's backing store. They arrive with
// every request and are never shared across fingerprints.
type StoreCoordinates struct {
	Provider         constants.Provider `json:"provider" validate:"omitempty,oneof=supabase postgresql sqlite"`
	APIURL           string             `json:"apiUrl" validate:"required_if=Provider supabase"`
	APIKey           string             `json:"apiKey" validate:"required_if=Provider supabase"`
	ConnectionString string             `json:"connectionString" validate:"required_if=Provider postgresql,required_if=Provider sqlite"`
	TableName        string             `json:"tableName" validate:"omitempty,ident"`
	// SupportsDDL declares whether statements may be executed against the store.
	// nil means the provider default.
	SupportsDDL *bool `json:"supportsDdl,omitempty"`
}

// Normalize fills in the provider and table defaults.
func (c StoreCoordinates) Normalize() StoreCoordinates {
	c.Provider = constants.Provider(strings.ToLower(strings.TrimSpace(string(c.Provider))))
	if c.Provider == "" {
		c.Provider = constants.ProviderSupabase
	}
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	if c.TableName == "" {
		c.TableName = constants.DefaultTableName
	}
	return c
}

// DDLCapable resolves the declared capability: SQL providers execute DDL
// directly, supabase only when the caller says an exec_sql function exists.
func (c StoreCoordinates) DDLCapable() bool {
	if c.SupportsDDL != nil {
		return *c.SupportsDDL
	}
	return c.Provider == constants.ProviderPostgreSQL || c.Provider == constants.ProviderSQLite
}
