// Package mysql provides the MySQL and MariaDB flavour of the product store,
// using github.com/go-sql-driver/mysql.
package mysql

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"github.com/vvka-141/prodmig/pkg/prodmig"
)

// Dialect renders MySQL statements. Upserts use ON DUPLICATE KEY UPDATE, so
// RowsAffected counts 1 per inserted row and 2 per updated row.
type Dialect struct{}

func (Dialect) Name() string { return "mysql" }

func (Dialect) QuoteTable(parts []string) string {
	quoted := make([]string, len(parts))
	for i, p := range parts {
		quoted[i] = "`" + strings.ReplaceAll(p, "`", "``") + "`"
	}
	return strings.Join(quoted, ".")
}

func (Dialect) CreateTableSQL(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    id INT AUTO_INCREMENT PRIMARY KEY,
    item_id VARCHAR(255) UNIQUE NOT NULL,
    item_name VARCHAR(255) NOT NULL,
    original_price DECIMAL(10,2) NOT NULL,
    selling_price DECIMAL(10,2) NOT NULL
)`, table)
}

func (Dialect) UpsertSQL(table string) string {
	return fmt.Sprintf(`INSERT INTO %s (item_id, item_name, original_price, selling_price)
VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
    item_name = VALUES(item_name),
    original_price = VALUES(original_price),
    selling_price = VALUES(selling_price)`, table)
}

// Open returns a handle for cfg without connecting.
func Open(cfg *driver.Config) (*sql.DB, error) {
	connector, err := driver.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid mysql configuration: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

type driverLogger struct {
	logger prodmig.Logger
}

func (l driverLogger) Print(v ...any) {
	l.logger.Verbose("mysql driver: %s", strings.TrimSpace(fmt.Sprint(v...)))
}

// SetLogger routes the driver's own diagnostics (packet errors, dropped
// connections) to logger instead of stderr. The driver logger is process-wide.
func SetLogger(logger prodmig.Logger) error {
	return driver.SetLogger(driverLogger{logger: logger})
}
