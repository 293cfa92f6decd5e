package prodmig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one product row recovered from a value-tuple line of the dump.
// Records are built by the extractor, handed once to the loader, and never
// mutated afterwards.
type Record struct {
	// ItemID is the natural key; the target table enforces its uniqueness.
	ItemID string

	// ItemName has SQL quote escaping already resolved ('' -> ').
	ItemName string

	OriginalPrice decimal.Decimal
	SellingPrice  decimal.Decimal
}

// String returns a compact human-readable form for log output.
func (r Record) String() string {
	return fmt.Sprintf("%s %q %s/%s", r.ItemID, r.ItemName, r.OriginalPrice.StringFixed(2), r.SellingPrice.StringFixed(2))
}

// ExtractStats describes what the extractor saw while scanning a file.
type ExtractStats struct {
	// Lines is the total number of lines read under the adopted encoding.
	Lines int

	// Candidates counts lines that looked like value tuples (start with "('").
	Candidates int

	// SkippedLines holds the 1-based line numbers of candidates that failed to decode.
	SkippedLines []int
}

// Skipped returns the number of candidate lines that were dropped.
func (s ExtractStats) Skipped() int {
	return len(s.SkippedLines)
}

// ExtractResult is the output of a successful extraction run.
type ExtractResult struct {
	// Records in file order, duplicates included.
	Records []Record

	// Encoding is the name of the candidate encoding that decoded the whole file.
	Encoding string

	Stats ExtractStats
}

// LoadResult is the output of a load run.
type LoadResult struct {
	// RowsAffected is the engine-reported count. MySQL counts an update as two
	// affected rows; PostgreSQL and SQLite count one per statement.
	RowsAffected int64

	// NothingToDo is true when the loader received no records and never touched the store.
	NothingToDo bool
}

// MigrationConfig contains everything needed for one extract-then-load run.
type MigrationConfig struct {
	// InputPath is the SQL dump to read.
	InputPath string

	// Table is the target table name, optionally schema-qualified.
	Table string

	// Encodings is the ordered list of candidate encodings to try.
	Encodings []string

	// Connection describes the target store.
	Connection *ConnectionConfig

	// Timeout bounds the whole run.
	Timeout time.Duration

	Verbose bool
}

// Validate checks if the MigrationConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *MigrationConfig) Validate() error {
	var errs []error

	if c.InputPath == "" {
		errs = append(errs, fmt.Errorf("InputPath is required: %w", ErrInvalidConfig))
	}

	if c.Table == "" {
		errs = append(errs, fmt.Errorf("Table is required: %w", ErrInvalidConfig))
	}

	if len(c.Encodings) == 0 {
		errs = append(errs, fmt.Errorf("at least one candidate encoding is required: %w", ErrInvalidConfig))
	}

	if c.Connection == nil {
		errs = append(errs, fmt.Errorf("Connection is required: %w", ErrInvalidConfig))
	} else if err := c.Connection.Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// Driver identifies the relational engine behind the store.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
	DriverSQLite   Driver = "sqlite"
)

// ParseDriver accepts the canonical driver names and their common aliases.
func ParseDriver(s string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "postgres", "postgresql", "pg", "pgx":
		return DriverPostgres, nil
	case "mysql", "mariadb":
		return DriverMySQL, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnsupportedDriver)
	}
}

// DefaultPort returns the conventional TCP port for the driver, or 0 for file-backed engines.
func (d Driver) DefaultPort() int {
	switch d {
	case DriverPostgres:
		return 5432
	case DriverMySQL:
		return 3306
	default:
		return 0
	}
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Driver Driver

	Host     string
	Port     int
	Database string // database name, or the file path for SQLite
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	// Additional connection parameters
	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWS RDS IAM authentication (AuthMethodAWSIAM)
	AWSRegion string

	// Google Cloud SQL IAM authentication (AuthMethodGoogleIAM), format project:region:instance
	GoogleInstance string

	// Azure Entra ID authentication (AuthMethodAzureEntraID).
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// Validate checks driver-specific requirements.
func (c *ConnectionConfig) Validate() error {
	var errs []error

	switch c.Driver {
	case DriverPostgres, DriverMySQL:
		if c.Host == "" && c.AuthMethod != AuthMethodGoogleIAM {
			errs = append(errs, fmt.Errorf("host is required: %w", ErrInvalidConfig))
		}
		if c.Database == "" {
			errs = append(errs, fmt.Errorf("database name is required: %w", ErrInvalidConfig))
		}
	case DriverSQLite:
		if c.Database == "" {
			errs = append(errs, fmt.Errorf("database file path is required: %w", ErrInvalidConfig))
		}
	default:
		errs = append(errs, fmt.Errorf("driver %q: %w", c.Driver, ErrUnsupportedDriver))
	}

	if !c.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %v: %w", c.AuthMethod, ErrUnsupportedAuthMethod))
	} else if c.AuthMethod != AuthMethodStandard && c.Driver != DriverPostgres {
		errs = append(errs, fmt.Errorf("%s authentication requires the postgres driver: %w", c.AuthMethod, ErrUnsupportedAuthMethod))
	}

	return errors.Join(errs...)
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps the names used in prodmig.yaml to an AuthMethod.
// An empty string means standard authentication.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam", "aws_iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam", "google_iam", "gcp":
		return AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra-id", "azure_entra_id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("%q: %w", s, ErrUnsupportedAuthMethod)
	}
}
