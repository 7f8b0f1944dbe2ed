package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Driver-specific unique-violation messages. Postgres reports code
// 23505, MySQL 1062, SQLite 2067; none of them share an error type.
var duplicateKeyMarkers = []string{
	"duplicate key value violates unique constraint",
	"Error 1062",
	"UNIQUE constraint failed",
}

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	for _, marker := range duplicateKeyMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
