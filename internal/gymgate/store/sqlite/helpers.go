package sqlite

import (
	"database/sql"
	"time"
)

// nullStr maps the empty string to NULL for optional text columns.
func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func strOf(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func msToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func timePtrOf(ni sql.NullInt64) *time.Time {
	if !ni.Valid {
		return nil
	}
	t := msToTime(ni.Int64)
	return &t
}
