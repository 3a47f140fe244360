package store

import (
	"database/sql"
	"fmt"
	"time"
)

// checkRowsErr surfaces errors raised during row iteration that rows.Next()
// does not report directly. Call after every for rows.Next() loop.
func checkRowsErr(rows *sql.Rows) error {
	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows iteration error: %w", err)
	}
	return nil
}

// parseTime reads an RFC3339 timestamp column, tolerating legacy rows with
// unparseable values by returning the zero time.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
