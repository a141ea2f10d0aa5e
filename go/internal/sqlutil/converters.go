package sqlutil

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// Helper functions for converting between Go types and pgtype nullable types

// ToPgInt4 converts a Go int pointer to pgtype.Int4
func ToPgInt4(val *int) pgtype.Int4 {
	if val == nil {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(*val), Valid: true}
}

// FromPgInt4 converts pgtype.Int4 to a Go int pointer
func FromPgInt4(val pgtype.Int4) *int {
	if !val.Valid {
		return nil
	}
	i := int(val.Int32)
	return &i
}

// FromPgText converts pgtype.Text to a Go string with default
func FromPgText(val pgtype.Text, defaultVal string) string {
	if !val.Valid {
		return defaultVal
	}
	return val.String
}
