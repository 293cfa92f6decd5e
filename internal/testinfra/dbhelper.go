// Package testinfra provides databases for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// TestConnEnv points PostgreSQL integration tests at an existing server
	// instead of a container.
	TestConnEnv = "PRODMIG_TEST_CONN"

	// TestMySQLDSNEnv enables MySQL integration tests. There is no container fallback.
	TestMySQLDSNEnv = "PRODMIG_TEST_MYSQL_DSN"
)

// shopImage matches the oldest server the product tables are deployed to.
const shopImage = "postgres:17-alpine"

var (
	shopOnce sync.Once
	shopConn string
	shopErr  error
)

// sharedShopDatabase starts one PostgreSQL container per test binary holding an
// empty "shop" database. Tests isolate themselves with UniqueTableName.
func sharedShopDatabase() (string, error) {
	shopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		ctr, err := postgres.Run(ctx, shopImage,
			postgres.WithDatabase("shop"),
			postgres.WithUsername("importer"),
			postgres.WithPassword("importer"),
			testcontainers.WithWaitStrategy(
				// The entrypoint restarts the server once after initdb.
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(time.Minute),
			),
		)
		if err != nil {
			shopErr = fmt.Errorf("start shop database: %w", err)
			return
		}

		shopConn, err = ctr.ConnectionString(ctx, "sslmode=disable", "application_name=prodmig-tests")
		if err != nil {
			_ = ctr.Terminate(context.Background())
			shopErr = fmt.Errorf("shop database connection string: %w", err)
		}
	})
	return shopConn, shopErr
}

// GetTestConnectionString returns the PostgreSQL test connection string.
// Priority: PRODMIG_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(TestConnEnv); connString != "" {
		return connString
	}

	connString, err := sharedShopDatabase()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", TestConnEnv, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// RequireMySQL returns the DSN from PRODMIG_TEST_MYSQL_DSN or skips the test.
func RequireMySQL(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	dsn := os.Getenv(TestMySQLDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", TestMySQLDSNEnv)
	}
	return dsn
}

// UniqueTableName returns a table name no other test run uses, so tests
// can share one server.
func UniqueTableName(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
