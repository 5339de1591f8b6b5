package database

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

var (
	driverMu      sync.RWMutex
	currentDriver = "sqlite3"
)

// SetDriver records the active database driver. Connect calls this; tests
// may call it directly when exercising driver-specific SQL.
func SetDriver(driver string) {
	driverMu.Lock()
	defer driverMu.Unlock()
	currentDriver = strings.ToLower(driver)
}

// Driver returns the active database driver name.
func Driver() string {
	driverMu.RLock()
	defer driverMu.RUnlock()
	return currentDriver
}

// IsMySQL returns true if using MySQL/MariaDB.
func IsMySQL() bool {
	d := Driver()
	return d == "mysql" || d == "mariadb"
}

// IsPostgreSQL returns true if using PostgreSQL.
func IsPostgreSQL() bool {
	return Driver() == "postgres"
}

// IsSQLite returns true if using SQLite.
func IsSQLite() bool {
	return Driver() == "sqlite3"
}

var dollarPlaceholder = regexp.MustCompile(`\$\d+`)

// ConvertPlaceholders converts SQL placeholders to the format required by the
// current database. All queries in the codebase use ? placeholders; this is
// the only function that adapts them.
//
// - PostgreSQL: ? becomes $1, $2, ...
// - MySQL and SQLite: ? passed through as-is
//
// Queries written with $N placeholders panic: they would silently break the
// moment the driver changes.
func ConvertPlaceholders(query string) string {
	if dollarPlaceholder.MatchString(query) {
		panic(fmt.Sprintf("ConvertPlaceholders: $N placeholders are not allowed, use ?. Query: %s", query))
	}

	if !IsPostgreSQL() || !strings.Contains(query, "?") {
		return query
	}

	var result strings.Builder
	paramNum := 1
	for _, c := range query {
		if c == '?' {
			fmt.Fprintf(&result, "$%d", paramNum)
			paramNum++
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}
