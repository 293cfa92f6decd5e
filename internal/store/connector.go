package store

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vvka-141/prodmig/internal/retry"
	"github.com/vvka-141/prodmig/internal/store/mysql"
	"github.com/vvka-141/prodmig/internal/store/postgres"
	"github.com/vvka-141/prodmig/internal/store/sqlite"
	"github.com/vvka-141/prodmig/internal/store/sqlstore"
	"github.com/vvka-141/prodmig/pkg/prodmig"
)

// Connection pool configuration constants
const (
	// DefaultMaxConns covers the single transaction of a load plus the
	// ensure-table statement.
	DefaultMaxConns = 2

	// DefaultMaxConnIdleTime releases idle connections between runs of a long-lived process.
	DefaultMaxConnIdleTime = 5 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config, logger prodmig.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("%s: %s", notice.Severity, notice.Message)
	}
}

func connectExecutor(logger prodmig.Logger) *retry.Executor {
	return retry.NewConnectExecutor().WithOnRetry(func(attempt int, err error, delay time.Duration) {
		logger.Verbose("Connection attempt %d failed, retrying in %v: %v", attempt+1, delay, err)
	})
}

// NewConnector is a prodmig.ConnectorFactory: it validates the table name and
// creates the Connector for the configured driver and authentication method.
func NewConnector(config *prodmig.ConnectionConfig, table string, logger prodmig.Logger) (prodmig.Connector, error) {
	parts, err := ParseTableName(table)
	if err != nil {
		return nil, err
	}

	switch config.Driver {
	case prodmig.DriverPostgres:
		return newPostgresConnector(config, parts, logger)

	case prodmig.DriverMySQL:
		if config.AuthMethod != prodmig.AuthMethodStandard {
			return nil, fmt.Errorf("%s authentication requires the postgres driver: %w", config.AuthMethod, prodmig.ErrUnsupportedAuthMethod)
		}
		if err := mysql.SetLogger(logger); err != nil {
			return nil, err
		}
		open := func() (*sql.DB, error) { return mysql.Open(MySQLConfig(config)) }
		return NewSQLConnector(config, open, mysql.Dialect{}, parts, logger), nil

	case prodmig.DriverSQLite:
		if config.AuthMethod != prodmig.AuthMethodStandard {
			return nil, fmt.Errorf("%s authentication requires the postgres driver: %w", config.AuthMethod, prodmig.ErrUnsupportedAuthMethod)
		}
		open := func() (*sql.DB, error) { return sqlite.Open(config.Database) }
		return NewSQLConnector(config, open, sqlite.Dialect{}, parts, logger), nil

	default:
		return nil, fmt.Errorf("driver %q: %w", config.Driver, prodmig.ErrUnsupportedDriver)
	}
}

var _ prodmig.ConnectorFactory = NewConnector

func newPostgresConnector(config *prodmig.ConnectionConfig, table []string, logger prodmig.Logger) (prodmig.Connector, error) {
	switch config.AuthMethod {
	case prodmig.AuthMethodStandard:
		return NewPostgresConnector(config, table, logger), nil

	case prodmig.AuthMethodAWSIAM:
		endpoint := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
		provider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
		if err != nil {
			return nil, err
		}
		return NewTokenBasedConnector(config, table, logger, provider, "AWS IAM"), nil

	case prodmig.AuthMethodGoogleIAM:
		if config.GoogleInstance == "" {
			return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", prodmig.ErrInvalidConfig)
		}
		if config.Username == "" {
			return nil, fmt.Errorf("Google Cloud SQL IAM auth requires username (-U): %w", prodmig.ErrInvalidConfig)
		}
		return NewGoogleCloudSQLConnector(config, table, logger), nil

	case prodmig.AuthMethodAzureEntraID:
		provider, err := NewAzureTokenProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
		if err != nil {
			return nil, err
		}
		return NewTokenBasedConnector(config, table, logger, provider, "Azure"), nil

	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, prodmig.ErrUnsupportedAuthMethod)
	}
}

// PostgresConnector opens a pgx pool with automatic retry on transient
// failures. With a TokenProvider, a fresh token is used as the password on
// every attempt.
type PostgresConnector struct {
	config        *prodmig.ConnectionConfig
	table         []string
	logger        prodmig.Logger
	retryExecutor *retry.Executor

	tokenProvider TokenProvider
	providerName  string
}

// NewPostgresConnector creates a connector for username/password authentication.
func NewPostgresConnector(config *prodmig.ConnectionConfig, table []string, logger prodmig.Logger) *PostgresConnector {
	return &PostgresConnector{
		config:        config,
		table:         table,
		logger:        logger,
		retryExecutor: connectExecutor(logger),
	}
}

// NewTokenBasedConnector creates a connector for cloud providers that
// authenticate with short-lived tokens (AWS IAM, Azure Entra ID).
// providerName is used in messages (e.g., "AWS IAM", "Azure").
func NewTokenBasedConnector(config *prodmig.ConnectionConfig, table []string, logger prodmig.Logger, tokenProvider TokenProvider, providerName string) *PostgresConnector {
	c := NewPostgresConnector(config, table, logger)
	c.tokenProvider = tokenProvider
	c.providerName = providerName
	return c
}

func (c *PostgresConnector) Connect(ctx context.Context) (prodmig.Store, error) {
	var pool *pgxpool.Pool

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		cfg := *c.config
		if c.tokenProvider != nil {
			token, expiresOn, err := c.tokenProvider.GetToken(ctx)
			if err != nil {
				return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
			}
			if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
				c.logger.Info("Warning: %s token expires in %v", c.providerName, remaining.Round(time.Second))
			}
			cfg.Password = token
		}

		poolConfig, err := pgxpool.ParseConfig(BuildConnectionString(&cfg))
		if err != nil {
			return fmt.Errorf("failed to parse connection config: %w", err)
		}
		configurePool(poolConfig, c.logger)

		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, c.config)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return wrapConnectionError(err, c.config)
		}

		pool = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return postgres.New(pool, c.table, nil), nil
}

// GoogleCloudSQLConnector connects to Google Cloud SQL using IAM database
// authentication through the Cloud SQL Go Connector. The dialer is released
// when the returned Store is closed.
type GoogleCloudSQLConnector struct {
	config        *prodmig.ConnectionConfig
	table         []string
	logger        prodmig.Logger
	retryExecutor *retry.Executor
}

// NewGoogleCloudSQLConnector creates a connector for config.GoogleInstance
// (format: project:region:instance).
func NewGoogleCloudSQLConnector(config *prodmig.ConnectionConfig, table []string, logger prodmig.Logger) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{
		config:        config,
		table:         table,
		logger:        logger,
		retryExecutor: connectExecutor(logger),
	}
}

func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (prodmig.Store, error) {
	instance := c.config.GoogleInstance

	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("failed to create Cloud SQL dialer: %w", err)
	}

	dsn := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=disable", instance, c.config.Username, c.config.Database)
	if c.config.AppName != "" {
		dsn += " application_name=" + c.config.AppName
	}

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		dialer.Close()
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}
	poolConfig.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
		return dialer.Dial(ctx, instance)
	}
	configurePool(poolConfig, c.logger)

	var pool *pgxpool.Pool
	err = c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, c.config)
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return wrapConnectionError(err, c.config)
		}
		pool = p
		return nil
	})
	if err != nil {
		dialer.Close()
		return nil, err
	}

	return postgres.New(pool, c.table, dialer.Close), nil
}

// SQLConnector opens a database/sql handle (MySQL, SQLite) and verifies it
// with a ping, retrying transient failures.
type SQLConnector struct {
	config        *prodmig.ConnectionConfig
	open          func() (*sql.DB, error)
	dialect       sqlstore.Dialect
	table         []string
	retryExecutor *retry.Executor
}

// NewSQLConnector creates a connector around open. open must not connect;
// Connect pings the handle it returns.
func NewSQLConnector(config *prodmig.ConnectionConfig, open func() (*sql.DB, error), dialect sqlstore.Dialect, table []string, logger prodmig.Logger) *SQLConnector {
	return &SQLConnector{
		config:        config,
		open:          open,
		dialect:       dialect,
		table:         table,
		retryExecutor: connectExecutor(logger),
	}
}

func (c *SQLConnector) Connect(ctx context.Context) (prodmig.Store, error) {
	var db *sql.DB

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		handle, err := c.open()
		if err != nil {
			return err
		}
		if err := handle.PingContext(ctx); err != nil {
			handle.Close()
			return wrapConnectionError(err, c.config)
		}
		db = handle
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sqlstore.New(db, c.dialect, c.table), nil
}

// wrapConnectionError wraps raw driver connection errors with actionable guidance.
func wrapConnectionError(err error, config *prodmig.ConnectionConfig) error {
	errStr := strings.ToLower(err.Error())
	host, port, database := config.Host, config.Port, config.Database
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	if config.Driver == prodmig.DriverSQLite {
		switch {
		case strings.Contains(errStr, "unable to open") || strings.Contains(errStr, "cannot open"):
			return fmt.Errorf(`cannot open SQLite database "%s"

Possible causes:
  - The parent directory does not exist
  - No write permission for the file or its directory

Original error: %w`, database, err)
		default:
			return fmt.Errorf("failed to open SQLite database %s: %w", database, err)
		}
	}

	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		return fmt.Errorf(`connection refused to %s

Possible causes:
  - %s
  - Wrong host or port
  - Firewall blocking the connection

Original error: %w`, addr, serverDownHint(config), err)

	case strings.Contains(errStr, "no such host") || strings.Contains(errStr, "no host"):
		return fmt.Errorf(`cannot resolve host "%s"

Possible causes:
  - Hostname is misspelled
  - DNS is not configured or reachable
  - Network connection issue

Original error: %w`, host, err)

	case strings.Contains(errStr, "password authentication failed") || strings.Contains(errStr, "access denied"):
		return fmt.Errorf(`authentication failed for database "%s"

Possible causes:
  - Wrong password (check %s)
  - Wrong username
  - User does not have access to the database

Original error: %w`, database, passwordHint(config), err)

	case strings.Contains(errStr, "does not exist") || strings.Contains(errStr, "unknown database"):
		return fmt.Errorf(`database "%s" does not exist

To create it:
  %s

Original error: %w`, database, createDatabaseHint(config), err)

	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		return fmt.Errorf(`connection timed out to %s

Possible causes:
  - Server is overloaded or unresponsive
  - Network latency or packet loss
  - Firewall silently dropping packets

Original error: %w`, addr, err)

	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		return fmt.Errorf(`SSL/TLS connection error

Possible causes:
  - Server requires SSL but --sslmode is wrong
  - Certificate verification failed (try --sslmode=require)

Original error: %w`, err)

	case strings.Contains(errStr, "too many connections"):
		return fmt.Errorf(`too many connections to database "%s"

Possible causes:
  - Connection limit reached on the server
  - Stale connections from previous runs

Original error: %w`, database, err)

	default:
		return fmt.Errorf("failed to connect to database: %w", err)
	}
}

func serverDownHint(config *prodmig.ConnectionConfig) string {
	if config.Driver == prodmig.DriverMySQL {
		return fmt.Sprintf("MySQL is not running (check: mysqladmin ping -h %s -P %d)", config.Host, config.Port)
	}
	return fmt.Sprintf("PostgreSQL is not running (check: pg_isready -h %s -p %d)", config.Host, config.Port)
}

func passwordHint(config *prodmig.ConnectionConfig) string {
	if config.Driver == prodmig.DriverMySQL {
		return "$MYSQL_PWD"
	}
	return "$PGPASSWORD or ~/.pgpass"
}

func createDatabaseHint(config *prodmig.ConnectionConfig) string {
	if config.Driver == prodmig.DriverMySQL {
		return fmt.Sprintf("mysql -e 'CREATE DATABASE `%s`'", config.Database)
	}
	return "createdb " + config.Database
}
