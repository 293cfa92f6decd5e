package retry

import (
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes outside the wholesale-transient classes.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
	pgCodeLockNotAvailable     = "55P03"
)

// PostgreSQL classes that are transient as a whole:
// 08 connection exception, 53 insufficient resources, 57 operator intervention.
var pgTransientClasses = []string{"08", "53", "57"}

// MySQL server error numbers for transient conditions.
// See: https://dev.mysql.com/doc/mysql-errors/8.0/en/server-error-reference.html
const (
	mysqlErrTooManyConnections = 1040
	mysqlErrServerShutdown     = 1053
	mysqlErrLockWaitTimeout    = 1205
	mysqlErrLockDeadlock       = 1213
	mysqlErrTooManyUserConns   = 1203
)

var transientMessagePatterns = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"connection failure",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"server closed the connection",
	"unexpected eof",
	"invalid connection",
	"bad connection",
}

// StoreErrorClassifier decides whether a failed connection attempt is worth
// repeating. It understands PostgreSQL and MySQL server errors as well as
// network and driver-level connection failures.
type StoreErrorClassifier struct{}

func NewStoreErrorClassifier() *StoreErrorClassifier {
	return &StoreErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *StoreErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isTransientPgCode(pgErr.Code)
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return isTransientMySQLNumber(myErr.Number)
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}

	if isNetworkError(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientMessagePatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

func isTransientPgCode(code string) bool {
	for _, class := range pgTransientClasses {
		if strings.HasPrefix(code, class) {
			return true
		}
	}
	switch code {
	case pgCodeSerializationFailure, pgCodeDeadlockDetected, pgCodeLockNotAvailable:
		return true
	}
	return false
}

func isTransientMySQLNumber(n uint16) bool {
	switch n {
	case mysqlErrTooManyConnections,
		mysqlErrServerShutdown,
		mysqlErrLockWaitTimeout,
		mysqlErrLockDeadlock,
		mysqlErrTooManyUserConns:
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary || dnsErr.IsTimeout
	}

	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	if opErr.Timeout() {
		return true
	}
	return errors.Is(opErr.Err, syscall.ECONNREFUSED) ||
		errors.Is(opErr.Err, syscall.ECONNRESET) ||
		errors.Is(opErr.Err, syscall.ENETUNREACH) ||
		errors.Is(opErr.Err, syscall.EHOSTUNREACH)
}
