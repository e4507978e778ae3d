package sqlutil

import (
	"database/sql"
	"strings"
)

// Helper functions for converting between Go types and sql.Null* types

// ToSqlString converts a Go string pointer to sql.NullString
func ToSqlString(val *string) sql.NullString {
	if val == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *val, Valid: true}
}

// FromSqlString converts sql.NullString to Go string with default
func FromSqlString(val sql.NullString, defaultVal string) string {
	if !val.Valid {
		return defaultVal
	}
	return val.String
}

// NonEmpty returns nil for blank strings, so optional text columns store NULL
func NonEmpty(val string) *string {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	return &val
}
