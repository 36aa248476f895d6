package repo

import (
	"database/sql"
	"strings"
)

func nullString(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

func nullInt64(value *int64) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

func stringPtr(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}

func int64Ptr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}

func columns(fields []string) string {
	return strings.Join(fields, ", ")
}
