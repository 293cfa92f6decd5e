// Package sqlite provides the embedded SQLite flavour of the product store,
// using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// DriverName is the database/sql name registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Dialect renders SQLite statements. DECIMAL(10,2) only sets numeric
// affinity in SQLite; values are stored as given.
type Dialect struct{}

func (Dialect) Name() string { return "sqlite" }

func (Dialect) QuoteTable(parts []string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ".")
}

func (Dialect) CreateTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    item_id VARCHAR(255) UNIQUE NOT NULL,
    item_name VARCHAR(255) NOT NULL,
    original_price DECIMAL(10,2) NOT NULL,
    selling_price DECIMAL(10,2) NOT NULL
)`, table)
}

func (Dialect) UpsertSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (item_id, item_name, original_price, selling_price)
VALUES (?, ?, ?, ?)
ON CONFLICT (item_id) DO UPDATE SET
    item_name = excluded.item_name,
    original_price = excluded.original_price,
    selling_price = excluded.selling_price`, table)
}

// DSN builds the driver data source name for a database file.
func DSN(path string) string {
	return path + "?_pragma=busy_timeout(5000)"
}

// Open returns a handle for the database file at path without connecting.
// SQLite serializes writers, so the pool holds a single connection.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
