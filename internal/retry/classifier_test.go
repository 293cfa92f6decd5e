package retry

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestStoreErrorClassifier_IsTransient(t *testing.T) {
	classifier := NewStoreErrorClassifier()

	tests := []struct {
		name        string
		err         error
		isTransient bool
	}{
		{"nil", nil, false},

		{"pg connection_failure (08006)", &pgconn.PgError{Code: "08006"}, true},
		{"pg too_many_connections (53300)", &pgconn.PgError{Code: "53300"}, true},
		{"pg cannot_connect_now (57P03)", &pgconn.PgError{Code: "57P03", Message: "the database system is starting up"}, true},
		{"pg deadlock_detected (40P01)", &pgconn.PgError{Code: "40P01"}, true},
		{"pg lock_not_available (55P03)", &pgconn.PgError{Code: "55P03"}, true},
		{"pg invalid_password (28P01)", &pgconn.PgError{Code: "28P01", Message: "password authentication failed"}, false},
		{"pg unique_violation (23505)", &pgconn.PgError{Code: "23505"}, false},
		{"pg undefined_table (42P01)", &pgconn.PgError{Code: "42P01"}, false},

		{"mysql too many connections", &mysql.MySQLError{Number: 1040, Message: "Too many connections"}, true},
		{"mysql deadlock", &mysql.MySQLError{Number: 1213}, true},
		{"mysql lock wait timeout", &mysql.MySQLError{Number: 1205}, true},
		{"mysql access denied", &mysql.MySQLError{Number: 1045, Message: "Access denied"}, false},
		{"mysql unknown database", &mysql.MySQLError{Number: 1049, Message: "Unknown database"}, false},
		{"mysql duplicate entry", &mysql.MySQLError{Number: 1062}, false},

		{"driver bad conn", driver.ErrBadConn, true},
		{"mysql invalid conn", fmt.Errorf("ping: %w", mysql.ErrInvalidConn), true},

		{"address error",
			&net.OpError{Op: "dial", Net: "tcp", Err: &net.AddrError{Err: "missing port in address"}}, false},
		{"syscall refused",
			&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
		{"syscall reset",
			&net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}, true},
		{"temporary dns", &net.DNSError{Err: "server misbehaving", Name: "db", IsTemporary: true}, true},
		{"unknown host", &net.DNSError{Err: "no such host", Name: "db", IsNotFound: true}, false},

		{"wrapped refused message", errors.New("failed to connect: dial tcp 127.0.0.1:5432: connection refused"), true},
		{"plain error", errors.New("something else"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifier.IsTransient(tt.err); got != tt.isTransient {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.isTransient)
			}
		})
	}
}

func TestStoreErrorClassifier_WrappedErrors(t *testing.T) {
	classifier := NewStoreErrorClassifier()

	wrapped := fmt.Errorf("connect: %w", &pgconn.PgError{Code: "57P01"})
	if !classifier.IsTransient(wrapped) {
		t.Error("expected wrapped admin_shutdown to be transient")
	}

	wrappedFatal := fmt.Errorf("connect: %w", &mysql.MySQLError{Number: 1045, Message: "Access denied"})
	if classifier.IsTransient(wrappedFatal) {
		t.Error("expected wrapped access denied to be fatal")
	}
}
