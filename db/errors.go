package db

import (
	"strings"

	"github.com/teranos/dxfcore/errors"
)

// ErrDatabaseClosed is returned when a store is used after Close
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed reports wrapped ErrDatabaseClosed errors and the raw
// driver errors of a closed *sql.DB, which can not be wrapped at the source
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}
