package database

import "strings"

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. The driver surfaces these as plain errors, so the message is the
// only reliable signal.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
